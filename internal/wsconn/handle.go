package wsconn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/park285/cheese-chess-client/internal/obslog"
	"github.com/park285/cheese-chess-client/internal/protocol"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// State is the lifecycle of a Handle.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateFailed       State = "failed"
	StateClosed       State = "closed"
	StateDisabled     State = "disabled"
)

var (
	ErrDisabled = errors.New("websocket handle disabled")
	ErrClosed   = errors.New("websocket handle closed")
)

const (
	writeTimeout = 5 * time.Second
	pingTimeout  = 3 * time.Second
	readLimit    = 1 << 20
)

type Config struct {
	BaseURL string
	// ReconnectAttempts is how many redials follow a dropped or failed connection.
	// Zero means a drop ends the handle in StateFailed.
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	PingInterval      time.Duration
	DialTimeout       time.Duration
	SendBuffer        int
	Logger            *zap.Logger
}

func (c Config) withDefaults() Config {
	if c.ReconnectAttempts < 0 {
		c.ReconnectAttempts = 0
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 500 * time.Millisecond
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 32
	}
	if c.Logger == nil {
		c.Logger = obslog.L()
	}
	return c
}

// Handle is a client connection to the game endpoint. Inbound frames are
// decoded to protocol.Inbound and fanned out to subscribers; frames that do
// not decode are dropped. All methods are safe for concurrent use.
type Handle struct {
	cfg      Config
	target   string
	disabled bool
	log      *zap.Logger

	mu     sync.Mutex
	state  State
	link   *link
	closed bool

	subM      sync.RWMutex
	nextSub   int
	eventSubs map[int]func(protocol.Inbound)
	stateSubs map[int]func(State)

	rootCtx    context.Context
	rootCancel context.CancelFunc
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// link is one established connection. A reconnect replaces the link.
type link struct {
	conn *websocket.Conn
	out  chan protocol.Outbound
	done chan struct{}
	once sync.Once
}

func (l *link) shut(code websocket.StatusCode, reason string) bool {
	first := false
	l.once.Do(func() {
		first = true
		close(l.done)
		_ = l.conn.Close(code, reason)
	})
	return first
}

// New resolves the target for token. An invalid scheme does not fail: the
// returned handle is disabled, never connects, drops sends and never emits events.
func New(cfg Config, token string) *Handle {
	cfg = cfg.withDefaults()
	h := &Handle{
		cfg:       cfg,
		log:       cfg.Logger.With(zap.String("token", obslog.TokenPreview(token))),
		state:     StateDisconnected,
		eventSubs: make(map[int]func(protocol.Inbound)),
		stateSubs: make(map[int]func(State)),
	}
	h.rootCtx, h.rootCancel = context.WithCancel(context.Background())

	target, err := ResolveTarget(cfg.BaseURL, token)
	h.target = target
	if err != nil {
		h.disabled = true
		h.state = StateDisabled
		h.log.Error("ws_target_invalid", zap.String("base", cfg.BaseURL), zap.Error(err))
	}
	return h
}

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Handle) Disabled() bool { return h.disabled }

// Connect dials once. On failure the handle either schedules redials or moves
// to StateFailed, depending on ReconnectAttempts; the dial error is returned either way.
func (h *Handle) Connect(ctx context.Context) error {
	if h.disabled {
		return ErrDisabled
	}
	h.mu.Lock()
	switch {
	case h.closed:
		h.mu.Unlock()
		return ErrClosed
	case h.state == StateConnected, h.state == StateConnecting, h.state == StateReconnecting:
		h.mu.Unlock()
		return nil
	}
	h.mu.Unlock()

	h.setState(StateConnecting)
	if err := h.dial(ctx); err != nil {
		if !errors.Is(err, ErrClosed) {
			h.log.Warn("ws_connect_failed", zap.Error(err))
			h.lost()
		}
		return err
	}
	return nil
}

func (h *Handle) dial(ctx context.Context) error {
	dctx, cancel := context.WithTimeout(ctx, h.cfg.DialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dctx, h.target, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	conn.SetReadLimit(readLimit)

	l := &link{conn: conn, out: make(chan protocol.Outbound, h.cfg.SendBuffer), done: make(chan struct{})}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "close")
		return ErrClosed
	}
	h.link = l
	h.wg.Add(3)
	h.mu.Unlock()

	// Subscribers see "connected" before any frame of this link is dispatched.
	h.setState(StateConnected)
	h.log.Info("ws_connected")
	go h.writeLoop(l)
	go h.pingLoop(l)
	go h.readLoop(l)
	return nil
}

func (h *Handle) readLoop(l *link) {
	defer h.wg.Done()
	for {
		_, data, err := l.conn.Read(h.rootCtx)
		if err != nil {
			h.drop(l, err)
			return
		}
		ev, err := protocol.Decode(data)
		if err != nil {
			h.log.Debug("ws_frame_dropped", zap.Error(err))
			continue
		}
		h.dispatch(ev)
	}
}

func (h *Handle) writeLoop(l *link) {
	defer h.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case msg := <-l.out:
			ctx, cancel := context.WithTimeout(h.rootCtx, writeTimeout)
			err := wsjson.Write(ctx, l.conn, msg)
			cancel()
			if err != nil {
				h.drop(l, err)
				return
			}
			h.log.Debug("ws_sent", zap.String("type", string(msg.Type)))
		}
	}
}

func (h *Handle) pingLoop(l *link) {
	defer h.wg.Done()
	t := time.NewTicker(h.cfg.PingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-l.done:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(h.rootCtx, pingTimeout)
			err := l.conn.Ping(ctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				h.drop(l, fmt.Errorf("ping: %w", err))
				return
			}
		}
	}
}

// drop tears down l after a read, write or ping failure. Only the first caller
// per link proceeds.
func (h *Handle) drop(l *link, cause error) {
	if !l.shut(websocket.StatusGoingAway, "reconnect") {
		return
	}
	h.mu.Lock()
	if h.link == l {
		h.link = nil
	}
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return
	}
	h.log.Warn("ws_disconnected", zap.Error(cause))
	h.lost()
}

func (h *Handle) lost() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	if h.cfg.ReconnectAttempts == 0 {
		h.mu.Unlock()
		h.setState(StateFailed)
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()

	h.setState(StateReconnecting)
	go h.reconnect()
}

func (h *Handle) reconnect() {
	defer h.wg.Done()
	for attempt := 1; attempt <= h.cfg.ReconnectAttempts; attempt++ {
		t := time.NewTimer(backoffDuration(h.cfg.ReconnectDelay, attempt))
		select {
		case <-h.rootCtx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		err := h.dial(h.rootCtx)
		if err == nil {
			return
		}
		if errors.Is(err, ErrClosed) {
			return
		}
		h.log.Warn("ws_reconnect_failed", zap.Int("attempt", attempt), zap.Error(err))
	}
	h.log.Error("ws_reconnect_exhausted", zap.Int("attempts", h.cfg.ReconnectAttempts))
	h.setState(StateFailed)
}

// backoffDuration doubles base per attempt, capped at the sixth attempt.
func backoffDuration(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return base << uint(attempt-1)
}

// Send queues msg for the writer. It reports false, without blocking, when the
// handle is not connected or the send buffer is full.
func (h *Handle) Send(msg protocol.Outbound) bool {
	if h.disabled {
		h.log.Debug("ws_send_ignored", zap.String("type", string(msg.Type)), zap.String("reason", "disabled"))
		return false
	}
	h.mu.Lock()
	l, st := h.link, h.state
	h.mu.Unlock()
	if l == nil || st != StateConnected {
		h.log.Debug("ws_send_ignored", zap.String("type", string(msg.Type)), zap.String("state", string(st)))
		return false
	}
	select {
	case <-l.done:
		return false
	case l.out <- msg:
		return true
	default:
		h.log.Warn("ws_send_buffer_full", zap.String("type", string(msg.Type)))
		return false
	}
}

// OnEvent registers fn for decoded inbound events and returns its unsubscribe func.
// fn runs on the reader goroutine; it must not block or subscribe/unsubscribe.
func (h *Handle) OnEvent(fn func(protocol.Inbound)) func() {
	h.subM.Lock()
	defer h.subM.Unlock()
	h.nextSub++
	id := h.nextSub
	h.eventSubs[id] = fn
	return func() {
		h.subM.Lock()
		delete(h.eventSubs, id)
		h.subM.Unlock()
	}
}

// OnStateChange registers fn for lifecycle changes and returns its unsubscribe func.
func (h *Handle) OnStateChange(fn func(State)) func() {
	h.subM.Lock()
	defer h.subM.Unlock()
	h.nextSub++
	id := h.nextSub
	h.stateSubs[id] = fn
	return func() {
		h.subM.Lock()
		delete(h.stateSubs, id)
		h.subM.Unlock()
	}
}

func (h *Handle) dispatch(ev protocol.Inbound) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return
	}
	// Held across the calls so Close cannot return while a delivery is in flight.
	h.subM.RLock()
	defer h.subM.RUnlock()
	for _, fn := range h.eventSubs {
		fn(ev)
	}
}

func (h *Handle) setState(s State) {
	h.mu.Lock()
	if h.state == s || (h.closed && s != StateClosed) {
		h.mu.Unlock()
		return
	}
	h.state = s
	h.mu.Unlock()

	h.log.Debug("ws_state", zap.String("state", string(s)))
	h.subM.RLock()
	defer h.subM.RUnlock()
	for _, fn := range h.stateSubs {
		fn(s)
	}
}

// Close releases the connection and all goroutines. It is idempotent; after it
// returns no subscriber is invoked again.
func (h *Handle) Close(ctx context.Context) error {
	first := false
	h.closeOnce.Do(func() { first = true })
	if !first {
		return nil
	}

	h.mu.Lock()
	h.closed = true
	l := h.link
	h.link = nil
	h.mu.Unlock()

	if l != nil {
		l.shut(websocket.StatusNormalClosure, "close")
	}
	h.rootCancel()
	h.setState(StateClosed)

	h.subM.Lock()
	h.eventSubs = make(map[int]func(protocol.Inbound))
	h.stateSubs = make(map[int]func(State))
	h.subM.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
