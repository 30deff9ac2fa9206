package msgcat

import (
	"strings"

	"github.com/park285/cheese-chess-client/internal/protocol"
)

// Notice keys.
const (
	NoticeDrawOffered    = "notice.draw_offered"
	NoticeDrawOfferSent  = "notice.draw_offer_sent"
	NoticeDrawDeclined   = "notice.draw_declined"
	NoticeConnectionLost = "notice.connection_lost"
	NoticeReconnected    = "notice.reconnected"
)

var errorKeys = map[protocol.ErrorCode]string{
	protocol.CodeNotYourTurn:    "error.not_your_turn",
	protocol.CodeIllegalMove:    "error.illegal_move",
	protocol.CodeUnauthorized:   "error.unauthorized",
	protocol.CodeRoomIDRequired: "error.roomId_required",
	protocol.CodeJoinFailed:     "error.join_failed",
}

// ErrorText maps a server error code to a message. Codes without an entry use
// the fallback template, which always carries the raw code.
func (c *Catalog) ErrorText(code protocol.ErrorCode) string {
	raw := "Server error: " + string(code)
	if key, ok := errorKeys[code]; ok && c.Has(key) {
		return c.Text(key, nil, raw)
	}
	return c.Text("error.fallback", map[string]string{"Code": string(code)}, raw)
}

// ColorName is the display name of a side.
func (c *Catalog) ColorName(col protocol.Color) string {
	switch col {
	case protocol.White:
		return c.Text("color.white", nil, "White")
	case protocol.Black:
		return c.Text("color.black", nil, "Black")
	default:
		return string(col)
	}
}

// GameOverText builds the terminal banner: the result, plus who resigned or
// that it was agreed. Unknown results are shown raw.
func (c *Catalog) GameOverText(result protocol.Result, reason string, resigned protocol.Color) string {
	var text string
	switch result {
	case protocol.WhiteWin:
		text = c.Text("gameover.white_win", nil, "White wins")
	case protocol.BlackWin:
		text = c.Text("gameover.black_win", nil, "Black wins")
	case protocol.Draw:
		text = c.Text("gameover.draw", nil, "Draw")
	default:
		text = c.Text("gameover.fallback", map[string]string{"Result": string(result)}, "Game over: "+string(result))
	}

	switch strings.ToUpper(strings.TrimSpace(reason)) {
	case protocol.ReasonResignation:
		if resigned.Valid() {
			return c.Text("gameover.resigned", map[string]string{"Text": text, "Color": c.ColorName(resigned)}, text)
		}
	case protocol.ReasonAgreement:
		return c.Text("gameover.agreement", map[string]string{"Text": text}, text)
	}
	return text
}
