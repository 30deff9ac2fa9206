// Package rules answers move-legality questions about a single FEN position.
// The session never keeps a rules game of its own; every call rebuilds the
// position from the latest server snapshot.
package rules

import (
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-chess-client/internal/protocol"
)

// Standard evaluates positions with corentings/chess.
type Standard struct{}

func New() Standard { return Standard{} }

// LegalDestinations returns the squares the piece on from can move to, without duplicates.
// An unparsable FEN or empty square yields nil.
func (Standard) LegalDestinations(fen, from string) []string {
	from = normSquare(from)
	pos := position(fen)
	if pos == nil || from == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, mv := range pos.ValidMoves() {
		if mv.S1().String() != from {
			continue
		}
		to := mv.S2().String()
		if seen[to] {
			continue
		}
		seen[to] = true
		out = append(out, to)
	}
	return out
}

// IsPromotion reports whether from->to is a legal pawn move onto the last rank.
func (Standard) IsPromotion(fen, from, to string) bool {
	from, to = normSquare(from), normSquare(to)
	pos := position(fen)
	if pos == nil {
		return false
	}
	for _, mv := range pos.ValidMoves() {
		if mv.S1().String() == from && mv.S2().String() == to && mv.Promo() != nchess.NoPieceType {
			return true
		}
	}
	return false
}

// Owner returns the color of the piece on square, if any.
func (Standard) Owner(fen, square string) (protocol.Color, bool) {
	square = normSquare(square)
	pos := position(fen)
	if pos == nil {
		return "", false
	}
	for sq, piece := range pos.Board().SquareMap() {
		if sq.String() != square {
			continue
		}
		switch piece.Color() {
		case nchess.White:
			return protocol.White, true
		case nchess.Black:
			return protocol.Black, true
		}
	}
	return "", false
}

func position(fen string) *nchess.Position {
	opt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil
	}
	return nchess.NewGame(opt).Position()
}

func normSquare(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
