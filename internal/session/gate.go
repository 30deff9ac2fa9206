package session

import (
	"strings"

	"github.com/park285/cheese-chess-client/internal/protocol"
)

// Rules is the move-legality capability the gate consults. Positions are
// always passed as the current snapshot FEN.
type Rules interface {
	LegalDestinations(fen, from string) []string
	IsPromotion(fen, from, to string) bool
	Owner(fen, square string) (protocol.Color, bool)
}

func normSquare(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func turnCheck(s State) error {
	if !s.InputEnabled() {
		return ErrInputDisabled
	}
	if s.Status == StatusAwaitingPromotion {
		return ErrPromotionPending
	}
	return nil
}

// ProposeMove validates from->to locally. Promotions park the move until
// ChoosePromotion; everything else is sent at once. Rejections never reach the network.
func ProposeMove(s State, r Rules, from, to string) (State, []protocol.Outbound, error) {
	if err := turnCheck(s); err != nil {
		return s, nil, err
	}
	from, to = normSquare(from), normSquare(to)
	fen := s.Snapshot.FEN

	if owner, ok := r.Owner(fen, from); !ok || owner != s.Color {
		return s.clearSelection(), nil, ErrIllegalMove
	}
	if !contains(r.LegalDestinations(fen, from), to) {
		return s.clearSelection(), nil, ErrIllegalMove
	}

	if r.IsPromotion(fen, from, to) {
		s.Status = StatusAwaitingPromotion
		s.Pending = &PendingMove{From: from, To: to}
		return s, nil, nil
	}
	s.Pending = &PendingMove{From: from, To: to}
	return s.clearSelection(), []protocol.Outbound{protocol.Move(from, to, "")}, nil
}

// ChoosePromotion completes a parked promotion with exactly one move frame.
func ChoosePromotion(s State, piece protocol.PromotionPiece) (State, []protocol.Outbound, error) {
	if s.Status != StatusAwaitingPromotion || s.Pending == nil {
		return s, nil, ErrNotAwaitingPromotion
	}
	if !piece.Valid() {
		return s, nil, ErrInvalidPromotion
	}
	if !s.InputEnabled() {
		return s, nil, ErrInputDisabled
	}
	pending := *s.Pending
	pending.Promotion = piece
	s.Pending = &pending
	s.Status = StatusActive
	return s.clearSelection(), []protocol.Outbound{protocol.Move(pending.From, pending.To, piece)}, nil
}

// Select is the click-to-move flow. With nothing selected, an own piece with
// legal moves becomes the selection. With a selection, a listed destination
// proposes the move; any other square clears the selection.
func Select(s State, r Rules, square string) (State, []protocol.Outbound, error) {
	if err := turnCheck(s); err != nil {
		return s, nil, err
	}
	square = normSquare(square)
	fen := s.Snapshot.FEN

	if s.Selected == "" {
		owner, ok := r.Owner(fen, square)
		if !ok || owner != s.Color {
			return s, nil, nil
		}
		dests := r.LegalDestinations(fen, square)
		if len(dests) == 0 {
			return s, nil, nil
		}
		s.Selected = square
		s.Destinations = dests
		return s, nil, nil
	}

	if contains(s.Destinations, square) {
		return ProposeMove(s, r, s.Selected, square)
	}
	return s.clearSelection(), nil, nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
