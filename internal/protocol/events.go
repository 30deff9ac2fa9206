package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks an inbound frame that is not a usable event.
var ErrMalformed = errors.New("malformed frame")

// Outbound is a client -> server intent. Optional fields are omitted from the wire.
type Outbound struct {
	Type           EventType      `json:"type"`
	RoomID         string         `json:"roomId,omitempty"`
	From           string         `json:"from,omitempty"`
	To             string         `json:"to,omitempty"`
	PromotionPiece PromotionPiece `json:"promotionPiece,omitempty"`
	Text           string         `json:"text,omitempty"`
}

func Join(roomID string) Outbound { return Outbound{Type: TypeJoin, RoomID: roomID} }
func Create() Outbound            { return Outbound{Type: TypeCreate} }
func CreateBot() Outbound         { return Outbound{Type: TypeCreateBot} }
func Resign() Outbound            { return Outbound{Type: TypeResign} }
func DrawOffer() Outbound         { return Outbound{Type: TypeDrawOffer} }
func DrawAccept() Outbound        { return Outbound{Type: TypeDrawAccept} }
func DrawDecline() Outbound       { return Outbound{Type: TypeDrawDecline} }
func Chat(text string) Outbound   { return Outbound{Type: TypeChat, Text: text} }

// Move builds a move intent; promo may be empty.
func Move(from, to string, promo PromotionPiece) Outbound {
	return Outbound{Type: TypeMove, From: from, To: to, PromotionPiece: promo}
}

// Inbound is a server -> client event. Fields not used by Type stay zero.
type Inbound struct {
	Type EventType `json:"type"`

	// assigned_color
	RoomID string `json:"roomId,omitempty"`
	Color  Color  `json:"color,omitempty"`

	// state
	FEN       string `json:"fen,omitempty"`
	WhiteName string `json:"whiteName,omitempty"`
	WhiteElo  *int   `json:"whiteElo,omitempty"`
	BlackName string `json:"blackName,omitempty"`
	BlackElo  *int   `json:"blackElo,omitempty"`
	WhiteTime *int64 `json:"whiteTime,omitempty"` // ms remaining
	BlackTime *int64 `json:"blackTime,omitempty"` // ms remaining

	// chat
	Sender string `json:"sender,omitempty"`
	Text   string `json:"text,omitempty"`

	// error
	Code ErrorCode `json:"code,omitempty"`

	// game_over
	Result        Result `json:"result,omitempty"`
	Reason        string `json:"reason,omitempty"`
	ResignedColor Color  `json:"resignedColor,omitempty"`

	// derived from FEN by Decode
	ActiveColor Color `json:"-"`
}

// Decode parses one frame. Frames that are not JSON objects, lack a type, or
// lack the fields their type depends on return ErrMalformed.
func Decode(raw []byte) (Inbound, error) {
	var ev Inbound
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	ev.Type = EventType(strings.TrimSpace(string(ev.Type)))
	if ev.Type == "" {
		return Inbound{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	switch ev.Type {
	case TypeAssignedColor:
		if !ev.Color.Valid() {
			return Inbound{}, fmt.Errorf("%w: assigned_color with color %q", ErrMalformed, ev.Color)
		}
	case TypeState:
		active, err := ActiveColorFromFEN(ev.FEN)
		if err != nil {
			return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		ev.ActiveColor = active
	}
	return ev, nil
}

// ActiveColorFromFEN returns the side to move (second FEN field).
func ActiveColorFromFEN(fen string) (Color, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return "", fmt.Errorf("fen %q has no side-to-move field", fen)
	}
	c, ok := colorFromSide(fields[1])
	if !ok {
		return "", fmt.Errorf("fen side-to-move %q", fields[1])
	}
	return c, nil
}

// Placement returns the piece-placement field of a FEN string.
func Placement(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
