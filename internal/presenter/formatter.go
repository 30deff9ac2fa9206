package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-chess-client/internal/protocol"
	"github.com/park285/cheese-chess-client/pkg/sessiondto"
)

const (
	defaultElo = 1200
	// lowTime marks a clock that should be flagged.
	lowTime = 30 * time.Second
)

// Formatter renders session views into terminal text blocks.
type Formatter struct{}

func NewFormatter() *Formatter { return &Formatter{} }

// FormatClock renders d as m:ss, rounding partial seconds down.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// LowTime reports whether d should be shown as running out.
func LowTime(d time.Duration) bool { return d < lowTime }

func (f *Formatter) Status(v sessiondto.View) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("♞ %s", v.Status))
	if v.RoomID != "" {
		sb.WriteString(fmt.Sprintf(" | room %s", v.RoomID))
	}
	if v.Color != "" {
		sb.WriteString(fmt.Sprintf(" | you play %s", strings.ToLower(v.Color)))
	}
	sb.WriteString("\n")

	if !v.HasSnapshot() {
		sb.WriteString("• waiting for the first position\n")
		return sb.String()
	}
	sb.WriteString(f.playerLine("White", v.Players.White, v.Clocks.White, v.Clocks.Active == string(protocol.White)))
	sb.WriteString(f.playerLine("Black", v.Players.Black, v.Clocks.Black, v.Clocks.Active == string(protocol.Black)))

	switch {
	case v.Outcome != nil:
		sb.WriteString(fmt.Sprintf("• %s\n", v.Outcome.Text))
	case v.InputEnabled:
		sb.WriteString("• your move\n")
	default:
		sb.WriteString("• waiting for opponent\n")
	}
	if v.Selected != "" {
		sb.WriteString(fmt.Sprintf("• selected %s -> %s\n", v.Selected, strings.Join(v.Destinations, " ")))
	}
	if v.Pending != nil {
		sb.WriteString(fmt.Sprintf("• sent %s%s", v.Pending.From, v.Pending.To))
		if v.Pending.Promotion != "" {
			sb.WriteString("=" + strings.ToLower(v.Pending.Promotion))
		}
		sb.WriteString("\n")
	}
	if len(v.PromotionChoices) > 0 {
		sb.WriteString(fmt.Sprintf("• promote to: %s\n", strings.ToLower(strings.Join(v.PromotionChoices, ", "))))
	}
	if v.DrawOfferPending {
		sb.WriteString("• draw offered: `accept` or `decline`\n")
	}
	return sb.String()
}

func (f *Formatter) playerLine(side string, p sessiondto.Player, d time.Duration, active bool) string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "?"
	}
	elo := defaultElo
	if p.Elo != nil {
		elo = *p.Elo
	}
	marker := " "
	if active {
		marker = "▶"
	}
	clock := FormatClock(d)
	if LowTime(d) {
		clock += " !"
	}
	return fmt.Sprintf("%s %s: %s (%d) %s\n", marker, side, name, elo, clock)
}

// Board draws the FEN placement as an 8x8 grid from the given side's view.
// Black sees rank 1 at the top.
func (f *Formatter) Board(fen string, perspective string) string {
	rows := strings.Split(protocol.Placement(fen), "/")
	if len(rows) != 8 {
		return ""
	}
	grid := make([][8]byte, 8)
	for r, row := range rows {
		col := 0
		for i := 0; i < len(row) && col < 8; i++ {
			ch := row[i]
			if ch >= '1' && ch <= '8' {
				for n := 0; n < int(ch-'0') && col < 8; n++ {
					grid[r][col] = '.'
					col++
				}
				continue
			}
			grid[r][col] = ch
			col++
		}
		for ; col < 8; col++ {
			grid[r][col] = '.'
		}
	}

	flip := perspective == string(protocol.Black)
	var sb strings.Builder
	for i := 0; i < 8; i++ {
		r := i
		if flip {
			r = 7 - i
		}
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for j := 0; j < 8; j++ {
			c := j
			if flip {
				c = 7 - j
			}
			sb.WriteByte(grid[r][c])
			if j < 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\n")
	}
	if flip {
		sb.WriteString("  h g f e d c b a\n")
	} else {
		sb.WriteString("  a b c d e f g h\n")
	}
	return sb.String()
}

func (f *Formatter) Notice(n sessiondto.Notice) string {
	switch n.Kind {
	case sessiondto.NoticeServerError:
		return "⚠ " + n.Message
	case sessiondto.NoticeGameOver:
		return "🏁 " + n.Message
	case sessiondto.NoticeConnectionLost:
		return "✖ " + n.Message
	default:
		return "• " + n.Message
	}
}

func (f *Formatter) Chat(c sessiondto.ChatEntry) string {
	sender := strings.TrimSpace(c.Sender)
	if sender == "" {
		sender = "?"
	}
	return fmt.Sprintf("[%s] %s", sender, c.Text)
}

func (f *Formatter) Help() string {
	return `commands:
  move e2e4 | move e2 e4   submit a move
  select e2                select a square (again to move)
  promote queen            finish a promotion (queen, rook, bishop, knight)
  chat <text>              send a chat line
  draw                     offer a draw
  accept | decline         answer a draw offer
  resign                   resign (asks for confirmation)
  status                   show the board and clocks
  quit                     leave`
}
