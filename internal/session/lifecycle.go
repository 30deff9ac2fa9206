package session

import (
	"strings"

	"github.com/park285/cheese-chess-client/internal/protocol"
	"github.com/park285/cheese-chess-client/pkg/sessiondto"
)

// Intent is what the session asks the server for once connected.
// Precedence: join, then create, then bot. The zero Intent sends nothing.
type Intent struct {
	JoinRoomID string
	Create     bool
	Bot        bool
}

// Message returns the intent frame, if any.
func (i Intent) Message() (protocol.Outbound, bool) {
	switch {
	case strings.TrimSpace(i.JoinRoomID) != "":
		return protocol.Join(strings.TrimSpace(i.JoinRoomID)), true
	case i.Create:
		return protocol.Create(), true
	case i.Bot:
		return protocol.CreateBot(), true
	default:
		return protocol.Outbound{}, false
	}
}

// Connected handles a newly opened connection. The first connection sends the
// intent; later ones rejoin the known room, falling back to the intent when
// no room was assigned yet.
func Connected(s State, intent Intent, reconnect bool) (State, []protocol.Outbound, []Notice) {
	if s.Terminal() {
		return s, nil, nil
	}
	if s.Status == StatusConnecting {
		s.Status = StatusAwaitingAssignment
	}
	var notices []Notice
	if reconnect {
		notices = append(notices, Notice{Kind: sessiondto.NoticeReconnected})
	}
	if s.RoomID != "" {
		return s, []protocol.Outbound{protocol.Join(s.RoomID)}, notices
	}
	if msg, ok := intent.Message(); ok {
		return s, []protocol.Outbound{msg}, notices
	}
	return s, nil, notices
}

// Disconnected handles the end of the channel. A finished game keeps its
// outcome; anything else is closed.
func Disconnected(s State) (State, []Notice) {
	if s.Terminal() {
		return s, nil
	}
	s.Status = StatusClosed
	s.Pending = nil
	s.DrawOfferPending = false
	return s.clearSelection(), []Notice{{Kind: sessiondto.NoticeConnectionLost}}
}

// Tick advances the local clock by one interval when a position is known.
func Tick(s State) State {
	if !s.Ticking() {
		return s
	}
	s.Clock.Tick()
	return s
}
