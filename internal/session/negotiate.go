package session

import (
	"strings"

	"github.com/park285/cheese-chess-client/internal/protocol"
	"github.com/park285/cheese-chess-client/pkg/sessiondto"
)

func OfferDraw(s State) (State, []protocol.Outbound, []Notice, error) {
	if s.Terminal() {
		return s, nil, nil, ErrGameOver
	}
	return s, []protocol.Outbound{protocol.DrawOffer()}, []Notice{{Kind: sessiondto.NoticeDrawOfferSent}}, nil
}

// RespondDraw answers the pending offer. The flag is cleared either way.
func RespondDraw(s State, accept bool) (State, []protocol.Outbound, error) {
	if !s.DrawOfferPending {
		return s, nil, ErrNoDrawOffer
	}
	s.DrawOfferPending = false
	if accept {
		return s, []protocol.Outbound{protocol.DrawAccept()}, nil
	}
	return s, []protocol.Outbound{protocol.DrawDecline()}, nil
}

// Resign sends nothing unless confirmed is true.
func Resign(s State, confirmed bool) (State, []protocol.Outbound, error) {
	if s.Terminal() {
		return s, nil, ErrGameOver
	}
	if !confirmed {
		return s, nil, ErrResignNotConfirmed
	}
	return s, []protocol.Outbound{protocol.Resign()}, nil
}

func SendChat(s State, text string) (State, []protocol.Outbound, error) {
	if strings.TrimSpace(text) == "" {
		return s, nil, ErrEmptyChat
	}
	if s.Status == StatusClosed {
		return s, nil, ErrClosed
	}
	return s, []protocol.Outbound{protocol.Chat(text)}, nil
}
