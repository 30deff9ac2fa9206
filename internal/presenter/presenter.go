package presenter

import (
	"fmt"
	"io"
	"sync"

	"github.com/park285/cheese-chess-client/pkg/sessiondto"
)

// Presenter writes session output to a terminal. It prints the board when the
// position or status changes and new chat lines as they arrive. Notices are
// printed as they come.
// Clock-only updates are not printed; Status shows them on demand.
type Presenter struct {
	out  io.Writer
	form *Formatter

	mu       sync.Mutex
	last     sessiondto.View
	seen     bool
	chatSeen int
}

func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out, form: NewFormatter()}
}

// View is suitable as session.Config.OnView.
func (p *Presenter) View(v sessiondto.View) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	// the chat log only grows, so everything past chatSeen is new
	if len(v.Chat) < p.chatSeen {
		p.chatSeen = 0
	}
	for _, c := range v.Chat[p.chatSeen:] {
		fmt.Fprintln(p.out, p.form.Chat(c))
	}
	p.chatSeen = len(v.Chat)

	changed := !p.seen ||
		v.FEN != p.last.FEN ||
		v.Status != p.last.Status ||
		v.Selected != p.last.Selected ||
		len(v.PromotionChoices) != len(p.last.PromotionChoices) ||
		v.DrawOfferPending != p.last.DrawOfferPending
	p.last, p.seen = v, true
	if changed {
		p.writeStatus(v)
	}
}

// Notice is suitable as session.Config.OnNotice.
func (p *Presenter) Notice(n sessiondto.Notice) {
	if p == nil || n.Message == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.form.Notice(n))
}

// Status prints the last view, clocks included.
func (p *Presenter) Status() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeStatus(p.last)
}

func (p *Presenter) Line(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, s)
}

func (p *Presenter) Help() { p.Line(p.form.Help()) }

func (p *Presenter) writeStatus(v sessiondto.View) {
	if v.HasSnapshot() {
		fmt.Fprint(p.out, p.form.Board(v.FEN, v.Color))
	}
	fmt.Fprint(p.out, p.form.Status(v))
}
