package protocol

import "strings"

// EventType is the "type" discriminator of every frame on the game channel.
type EventType string

const (
	// client -> server
	TypeJoin       EventType = "join"
	TypeCreate     EventType = "create"
	TypeCreateBot  EventType = "create_bot"
	TypeMove       EventType = "move"
	TypeResign     EventType = "resign"
	TypeDrawAccept EventType = "draw_accept"

	// both directions
	TypeChat        EventType = "chat"
	TypeDrawOffer   EventType = "draw_offer"
	TypeDrawDecline EventType = "draw_decline"

	// server -> client
	TypeAssignedColor EventType = "assigned_color"
	TypeState         EventType = "state"
	TypeError         EventType = "error"
	TypeGameOver      EventType = "game_over"
)

// Color identifies a side as the server names it.
type Color string

const (
	White Color = "WHITE"
	Black Color = "BLACK"
)

func (c Color) Valid() bool { return c == White || c == Black }

// colorFromSide maps the FEN side-to-move token ("w"/"b") to a Color.
func colorFromSide(s string) (Color, bool) {
	switch s {
	case "w":
		return White, true
	case "b":
		return Black, true
	default:
		return "", false
	}
}

// Result is the terminal outcome carried by game_over.
type Result string

const (
	WhiteWin Result = "WHITE_WIN"
	BlackWin Result = "BLACK_WIN"
	Draw     Result = "DRAW"
)

// Reasons the server attaches to game_over.
const (
	ReasonResignation = "RESIGNATION"
	ReasonAgreement   = "AGREEMENT"
)

// PromotionPiece is the piece a pawn promotes to.
type PromotionPiece string

const (
	PromoteQueen  PromotionPiece = "QUEEN"
	PromoteRook   PromotionPiece = "ROOK"
	PromoteBishop PromotionPiece = "BISHOP"
	PromoteKnight PromotionPiece = "KNIGHT"
)

// PromotionPieces lists the only pieces a promotion may choose, in menu order.
var PromotionPieces = []PromotionPiece{PromoteQueen, PromoteRook, PromoteBishop, PromoteKnight}

func (p PromotionPiece) Valid() bool {
	switch p {
	case PromoteQueen, PromoteRook, PromoteBishop, PromoteKnight:
		return true
	default:
		return false
	}
}

// ParsePromotionPiece accepts full names and single letters, case-insensitive.
func ParsePromotionPiece(s string) (PromotionPiece, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QUEEN", "Q":
		return PromoteQueen, true
	case "ROOK", "R":
		return PromoteRook, true
	case "BISHOP", "B":
		return PromoteBishop, true
	case "KNIGHT", "N":
		return PromoteKnight, true
	default:
		return "", false
	}
}

// ErrorCode is the code of a server error frame. The set is open: servers may
// send codes this client does not know.
type ErrorCode string

const (
	CodeNotYourTurn    ErrorCode = "not_your_turn"
	CodeIllegalMove    ErrorCode = "illegal_move"
	CodeUnauthorized   ErrorCode = "unauthorized"
	CodeRoomIDRequired ErrorCode = "roomId_required"
	CodeJoinFailed     ErrorCode = "join_failed"
)

// Inbound reports whether t is a server -> client type this client acts on.
func (t EventType) Inbound() bool {
	switch t {
	case TypeAssignedColor, TypeState, TypeChat, TypeDrawOffer, TypeDrawDecline, TypeError, TypeGameOver:
		return true
	default:
		return false
	}
}
