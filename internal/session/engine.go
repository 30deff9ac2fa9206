package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/park285/cheese-chess-client/internal/clock"
	"github.com/park285/cheese-chess-client/internal/journal"
	"github.com/park285/cheese-chess-client/internal/msgcat"
	"github.com/park285/cheese-chess-client/internal/obslog"
	"github.com/park285/cheese-chess-client/internal/protocol"
	"github.com/park285/cheese-chess-client/internal/rules"
	"github.com/park285/cheese-chess-client/internal/wsconn"
	"github.com/park285/cheese-chess-client/pkg/sessiondto"
	"go.uber.org/zap"
)

const (
	inboxSize    = 64
	closeTimeout = 5 * time.Second
)

// Channel is the duplex connection the engine drives. *wsconn.Handle implements it.
type Channel interface {
	Connect(ctx context.Context) error
	Send(msg protocol.Outbound) bool
	OnEvent(fn func(protocol.Inbound)) func()
	OnStateChange(fn func(wsconn.State)) func()
	Close(ctx context.Context) error
}

var _ Channel = (*wsconn.Handle)(nil)

// Journal receives session records without blocking. *journal.Recorder implements it.
type Journal interface {
	RecordLive(l journal.Live)
	RecordResult(r journal.Result)
}

type Config struct {
	Token  string
	Intent Intent

	// Conn configures the default websocket channel. Ignored when Channel is set.
	Conn    wsconn.Config
	Channel Channel

	Rules   Rules
	Clock   clockwork.Clock
	Catalog *msgcat.Catalog
	Journal Journal
	Logger  *zap.Logger

	// OnView and OnNotice run on the engine goroutine. They must not call
	// Engine methods synchronously.
	OnView   func(sessiondto.View)
	OnNotice func(sessiondto.Notice)
}

// Engine owns one session. A single goroutine applies inbound events, clock
// ticks and local commands in arrival order, so State needs no locking.
type Engine struct {
	id     string
	cfg    Config
	ch     Channel
	log    *zap.Logger
	ticker clockwork.Ticker
	unsubs []func()

	inbox    chan input
	cmds     chan command
	stopReq  chan struct{}
	stopOnce sync.Once
	stopping chan struct{}
	done     chan struct{}

	viewM sync.RWMutex
	view  sessiondto.View
}

// input is one item from the channel, kept in arrival order.
type input struct {
	ev   *protocol.Inbound
	conn wsconn.State
}

type command struct {
	name  string
	apply func(State) (State, []protocol.Outbound, []Notice, error)
	reply chan error
}

// Start validates cfg, subscribes to the channel and connects. A missing token
// fails with ErrNoToken; connection problems are reported through the view.
func Start(ctx context.Context, cfg Config) (*Engine, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrNoToken
	}
	if cfg.Rules == nil {
		cfg.Rules = rules.New()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = msgcat.MustDefault()
	}
	if cfg.Logger == nil {
		cfg.Logger = obslog.L()
	}

	id := uuid.NewString()
	e := &Engine{
		id:       id,
		cfg:      cfg,
		log:      cfg.Logger.With(zap.String("session", id)),
		inbox:    make(chan input, inboxSize),
		cmds:     make(chan command),
		stopReq:  make(chan struct{}),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
	e.ch = cfg.Channel
	if e.ch == nil {
		conn := cfg.Conn
		if conn.Logger == nil {
			conn.Logger = e.log
		}
		e.ch = wsconn.New(conn, cfg.Token)
	}
	e.unsubs = append(e.unsubs,
		e.ch.OnEvent(func(ev protocol.Inbound) { e.push(input{ev: &ev}) }),
		e.ch.OnStateChange(func(st wsconn.State) { e.push(input{conn: st}) }),
	)
	e.ticker = clock.NewTicker(cfg.Clock)

	state := NewState()
	e.publish(state)
	go e.run(ctx, state)

	e.log.Info("session_start",
		zap.String("join", cfg.Intent.JoinRoomID),
		zap.Bool("create", cfg.Intent.Create),
		zap.Bool("bot", cfg.Intent.Bot),
	)
	if err := e.ch.Connect(ctx); err != nil {
		e.log.Warn("session_connect_failed", zap.Error(err))
	}
	return e, nil
}

func (e *Engine) ID() string { return e.id }

// View returns the latest published view. Its slices must not be modified.
func (e *Engine) View() sessiondto.View {
	e.viewM.RLock()
	defer e.viewM.RUnlock()
	return e.view
}

// Done is closed once the engine goroutine has stopped.
func (e *Engine) Done() <-chan struct{} { return e.done }

func (e *Engine) Select(square string) error {
	return e.do("select", func(s State) (State, []protocol.Outbound, []Notice, error) {
		next, out, err := Select(s, e.cfg.Rules, square)
		return next, out, nil, err
	})
}

func (e *Engine) ProposeMove(from, to string) error {
	return e.do("move", func(s State) (State, []protocol.Outbound, []Notice, error) {
		next, out, err := ProposeMove(s, e.cfg.Rules, from, to)
		return next, out, nil, err
	})
}

func (e *Engine) ChoosePromotion(piece protocol.PromotionPiece) error {
	return e.do("promote", func(s State) (State, []protocol.Outbound, []Notice, error) {
		next, out, err := ChoosePromotion(s, piece)
		return next, out, nil, err
	})
}

func (e *Engine) OfferDraw() error {
	return e.do("draw_offer", OfferDraw)
}

func (e *Engine) RespondDraw(accept bool) error {
	return e.do("draw_respond", func(s State) (State, []protocol.Outbound, []Notice, error) {
		next, out, err := RespondDraw(s, accept)
		return next, out, nil, err
	})
}

func (e *Engine) Resign(confirmed bool) error {
	return e.do("resign", func(s State) (State, []protocol.Outbound, []Notice, error) {
		next, out, err := Resign(s, confirmed)
		return next, out, nil, err
	})
}

func (e *Engine) SendChat(text string) error {
	return e.do("chat", func(s State) (State, []protocol.Outbound, []Notice, error) {
		next, out, err := SendChat(s, text)
		return next, out, nil, err
	})
}

// Close stops the ticker, detaches from the channel and closes it. Safe to call twice.
func (e *Engine) Close(ctx context.Context) error {
	e.stopOnce.Do(func() { close(e.stopReq) })
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) do(name string, apply func(State) (State, []protocol.Outbound, []Notice, error)) error {
	reply := make(chan error, 1)
	select {
	case e.cmds <- command{name: name, apply: apply, reply: reply}:
	case <-e.stopping:
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-e.done:
		return ErrClosed
	}
}

func (e *Engine) push(in input) {
	select {
	case e.inbox <- in:
	case <-e.stopping:
	}
}

func (e *Engine) run(ctx context.Context, s State) {
	defer close(e.done)
	connections := 0
	for {
		select {
		case <-ctx.Done():
			e.shutdown(s)
			return
		case <-e.stopReq:
			e.shutdown(s)
			return

		case in := <-e.inbox:
			if in.ev != nil {
				s = e.handleEvent(s, *in.ev)
				continue
			}
			var stop bool
			s, stop = e.handleConn(s, in.conn, &connections)
			if stop {
				e.shutdown(s)
				return
			}

		case <-e.ticker.Chan():
			if s.Ticking() {
				s = Tick(s)
				e.publish(s)
			}

		case cmd := <-e.cmds:
			next, out, notices, err := cmd.apply(s)
			if err != nil {
				e.log.Debug("session_command_rejected", zap.String("cmd", cmd.name), zap.Error(err))
			}
			s = next
			e.send(out)
			e.emit(s, notices)
			e.publish(s)
			cmd.reply <- err
		}
	}
}

func (e *Engine) handleEvent(s State, ev protocol.Inbound) State {
	if !ev.Type.Inbound() {
		e.log.Debug("session_event_ignored", zap.String("type", string(ev.Type)))
		return s
	}
	if ev.Type == protocol.TypeAssignedColor && s.Color.Valid() {
		e.log.Warn("assigned_color_repeated", zap.String("have", string(s.Color)), zap.String("got", string(ev.Color)))
	}
	prev := s.Status
	next, notices := Reduce(s, ev)
	if next.Status != prev {
		e.log.Info("session_status", zap.String("from", string(prev)), zap.String("to", string(next.Status)))
	}
	e.record(next, ev.Type, prev)
	e.emit(next, notices)
	e.publish(next)
	return next
}

func (e *Engine) handleConn(s State, st wsconn.State, connections *int) (State, bool) {
	e.log.Debug("session_conn", zap.String("state", string(st)))
	switch st {
	case wsconn.StateConnected:
		*connections++
		next, out, notices := Connected(s, e.cfg.Intent, *connections > 1)
		e.send(out)
		e.emit(next, notices)
		e.publish(next)
		return next, false
	case wsconn.StateReconnecting:
		// a finished room has nothing to rejoin
		if s.Status == StatusGameOver {
			e.log.Info("session_link_lost_after_game")
			return s, true
		}
		return s, false
	case wsconn.StateFailed, wsconn.StateClosed:
		next, notices := Disconnected(s)
		e.emit(next, notices)
		e.publish(next)
		return next, true
	default:
		return s, false
	}
}

func (e *Engine) send(out []protocol.Outbound) {
	for _, msg := range out {
		if !e.ch.Send(msg) {
			e.log.Warn("session_send_dropped", zap.String("type", string(msg.Type)))
			continue
		}
		e.log.Debug("session_send", zap.String("type", string(msg.Type)))
	}
}

func (e *Engine) emit(s State, notices []Notice) {
	if e.cfg.OnNotice == nil {
		return
	}
	for _, n := range notices {
		e.cfg.OnNotice(e.render(s, n))
	}
}

func (e *Engine) render(s State, n Notice) sessiondto.Notice {
	cat := e.cfg.Catalog
	out := sessiondto.Notice{Kind: n.Kind, Code: string(n.Code)}
	switch n.Kind {
	case sessiondto.NoticeServerError:
		out.Message = cat.ErrorText(n.Code)
	case sessiondto.NoticeGameOver:
		if s.Outcome != nil {
			out.Message = cat.GameOverText(s.Outcome.Result, s.Outcome.Reason, s.Outcome.ResignedColor)
		}
	case sessiondto.NoticeDrawOffered:
		out.Message = cat.Text(msgcat.NoticeDrawOffered, nil, "Draw offered.")
	case sessiondto.NoticeDrawOfferSent:
		out.Message = cat.Text(msgcat.NoticeDrawOfferSent, nil, "Draw offer sent.")
	case sessiondto.NoticeDrawDeclined:
		out.Message = cat.Text(msgcat.NoticeDrawDeclined, nil, "Draw declined.")
	case sessiondto.NoticeConnectionLost:
		out.Message = cat.Text(msgcat.NoticeConnectionLost, nil, "Connection lost.")
	case sessiondto.NoticeReconnected:
		out.Message = cat.Text(msgcat.NoticeReconnected, nil, "Reconnected.")
	}
	return out
}

func (e *Engine) record(s State, t protocol.EventType, prev Status) {
	if e.cfg.Journal == nil || s.RoomID == "" {
		return
	}
	switch {
	case t == protocol.TypeState && s.Snapshot != nil && !s.Terminal():
		e.cfg.Journal.RecordLive(journal.Live{
			SessionID: e.id,
			RoomID:    s.RoomID,
			Color:     string(s.Color),
			FEN:       s.Snapshot.FEN,
			WhiteName: s.Players.White.Name,
			BlackName: s.Players.Black.Name,
			ChatLines: len(s.Chat),
			UpdatedAt: e.cfg.Clock.Now(),
		})
	case t == protocol.TypeGameOver && prev != StatusGameOver && s.Outcome != nil:
		r := journal.Result{
			SessionID:     e.id,
			RoomID:        s.RoomID,
			Color:         string(s.Color),
			Result:        string(s.Outcome.Result),
			Reason:        s.Outcome.Reason,
			ResignedColor: string(s.Outcome.ResignedColor),
			WhiteName:     s.Players.White.Name,
			BlackName:     s.Players.Black.Name,
			EndedAt:       e.cfg.Clock.Now(),
		}
		if s.Snapshot != nil {
			r.FinalFEN = s.Snapshot.FEN
		}
		e.cfg.Journal.RecordResult(r)
	}
}

func (e *Engine) shutdown(s State) {
	close(e.stopping)
	e.ticker.Stop()
	for _, unsub := range e.unsubs {
		unsub()
	}
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := e.ch.Close(ctx); err != nil {
		e.log.Warn("session_channel_close", zap.Error(err))
	}
	if !s.Terminal() {
		s.Status = StatusClosed
	}
	e.publish(s)
	e.log.Info("session_end", zap.String("status", string(s.Status)))
}

func (e *Engine) publish(s State) {
	v := e.toView(s)
	e.viewM.Lock()
	e.view = v
	e.viewM.Unlock()
	if e.cfg.OnView != nil {
		e.cfg.OnView(v)
	}
}

func (e *Engine) toView(s State) sessiondto.View {
	s = s.clone()
	pair := s.Clock.Pair()
	v := sessiondto.View{
		SessionID: e.id,
		Status:    string(s.Status),
		RoomID:    s.RoomID,
		Color:     string(s.Color),
		Players: sessiondto.Players{
			White: sessiondto.Player{Name: s.Players.White.Name, Elo: s.Players.White.Elo},
			Black: sessiondto.Player{Name: s.Players.Black.Name, Elo: s.Players.Black.Elo},
		},
		Clocks:           sessiondto.Clocks{White: pair.White, Black: pair.Black, Active: string(s.Clock.Active())},
		Selected:         s.Selected,
		Destinations:     s.Destinations,
		DrawOfferPending: s.DrawOfferPending,
		InputEnabled:     s.InputEnabled(),
	}
	if s.Snapshot != nil {
		v.FEN = s.Snapshot.FEN
		v.ActiveColor = string(s.Snapshot.ActiveColor)
	}
	if s.Pending != nil {
		v.Pending = &sessiondto.Move{From: s.Pending.From, To: s.Pending.To, Promotion: string(s.Pending.Promotion)}
	}
	if s.Status == StatusAwaitingPromotion {
		for _, p := range protocol.PromotionPieces {
			v.PromotionChoices = append(v.PromotionChoices, string(p))
		}
	}
	for _, c := range s.Chat {
		v.Chat = append(v.Chat, sessiondto.ChatEntry{Sender: c.Sender, Text: c.Text})
	}
	if s.Outcome != nil {
		v.Outcome = &sessiondto.Outcome{
			Result:        string(s.Outcome.Result),
			Reason:        s.Outcome.Reason,
			ResignedColor: string(s.Outcome.ResignedColor),
			Text:          e.cfg.Catalog.GameOverText(s.Outcome.Result, s.Outcome.Reason, s.Outcome.ResignedColor),
		}
	}
	return v
}
