package session

import (
	"github.com/park285/cheese-chess-client/internal/clock"
	"github.com/park285/cheese-chess-client/internal/protocol"
)

type Status string

const (
	StatusConnecting         Status = "CONNECTING"
	StatusAwaitingAssignment Status = "AWAITING_ASSIGNMENT"
	StatusActive             Status = "ACTIVE"
	StatusAwaitingPromotion  Status = "AWAITING_PROMOTION"
	StatusGameOver           Status = "GAME_OVER"
	// StatusClosed follows the end of the channel without a game_over.
	StatusClosed Status = "CLOSED"
)


// Snapshot is the last server-reported position.
type Snapshot struct {
	FEN         string
	ActiveColor protocol.Color
}

type Player struct {
	Name string
	Elo  *int
}

type Players struct {
	White Player
	Black Player
}

// PendingMove is the last locally submitted move, kept for highlighting until
// the next snapshot. During promotion it is provisional and has no piece yet.
type PendingMove struct {
	From      string
	To        string
	Promotion protocol.PromotionPiece
}

type ChatEntry struct {
	Sender string
	Text   string
}

type Outcome struct {
	Result        protocol.Result
	Reason        string
	ResignedColor protocol.Color
}

// State is everything one session knows. It is only mutated by the reducer
// functions of this package, each of which returns a new value.
type State struct {
	Status Status
	RoomID string
	Color  protocol.Color

	Snapshot *Snapshot
	Players  Players
	Clock    clock.Clock

	Pending      *PendingMove
	Selected     string
	Destinations []string

	// Chat is append-only, in arrival order.
	Chat             []ChatEntry
	DrawOfferPending bool
	Outcome          *Outcome
}

func NewState() State {
	return State{Status: StatusConnecting, Clock: clock.New()}
}

// Terminal reports whether the session can no longer change the game.
func (s State) Terminal() bool {
	return s.Status == StatusGameOver || s.Status == StatusClosed
}

// InputEnabled is true iff the color is assigned, a snapshot is known, it is
// that color's turn and the game is still running.
func (s State) InputEnabled() bool {
	if s.Terminal() || !s.Color.Valid() || s.Snapshot == nil {
		return false
	}
	return s.Snapshot.ActiveColor == s.Color
}

// Ticking reports whether the local countdown should run.
func (s State) Ticking() bool {
	return !s.Terminal() && s.Snapshot != nil
}

func (s State) clearSelection() State {
	s.Selected = ""
	s.Destinations = nil
	return s
}

// clone detaches slices and pointers so the copy can leave the engine goroutine.
func (s State) clone() State {
	if s.Snapshot != nil {
		snap := *s.Snapshot
		s.Snapshot = &snap
	}
	if s.Pending != nil {
		p := *s.Pending
		s.Pending = &p
	}
	if s.Outcome != nil {
		o := *s.Outcome
		s.Outcome = &o
	}
	s.Players.White.Elo = cloneInt(s.Players.White.Elo)
	s.Players.Black.Elo = cloneInt(s.Players.Black.Elo)
	s.Destinations = append([]string(nil), s.Destinations...)
	s.Chat = append([]ChatEntry(nil), s.Chat...)
	return s
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
