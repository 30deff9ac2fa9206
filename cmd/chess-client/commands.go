package main

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/park285/cheese-chess-client/internal/protocol"
)

var (
	squareRe = regexp.MustCompile(`^[a-h][1-8]$`)
	uciRe    = regexp.MustCompile(`^([a-h][1-8])([a-h][1-8])([qrbn])?$`)

	errUnknownCommand = errors.New("unknown command, try `help`")
)

type actionKind string

const (
	actMove    actionKind = "move"
	actSelect  actionKind = "select"
	actPromote actionKind = "promote"
	actChat    actionKind = "chat"
	actDraw    actionKind = "draw"
	actAccept  actionKind = "accept"
	actDecline actionKind = "decline"
	actResign  actionKind = "resign"
	actConfirm actionKind = "yes"
	actStatus  actionKind = "status"
	actHelp    actionKind = "help"
	actQuit    actionKind = "quit"
	actNone    actionKind = ""
)

type action struct {
	kind   actionKind
	from   string
	to     string
	promo  protocol.PromotionPiece
	square string
	text   string
}

// parseLine turns one stdin line into an action. A bare UCI move such as
// e2e4 or e7e8q is accepted without the move keyword.
func parseLine(line string) (action, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return action{kind: actNone}, nil
	}
	word, rest, _ := strings.Cut(line, " ")
	word = strings.ToLower(word)
	rest = strings.TrimSpace(rest)

	switch word {
	case "move", "m":
		return parseMove(rest)
	case "select", "s":
		sq := strings.ToLower(rest)
		if !squareRe.MatchString(sq) {
			return action{}, fmt.Errorf("select needs a square like e2")
		}
		return action{kind: actSelect, square: sq}, nil
	case "promote", "p":
		piece, ok := protocol.ParsePromotionPiece(rest)
		if !ok {
			return action{}, fmt.Errorf("promote to queen, rook, bishop or knight")
		}
		return action{kind: actPromote, promo: piece}, nil
	case "chat", "say":
		return action{kind: actChat, text: rest}, nil
	case "draw":
		return action{kind: actDraw}, nil
	case "accept":
		return action{kind: actAccept}, nil
	case "decline":
		return action{kind: actDecline}, nil
	case "resign":
		return action{kind: actResign}, nil
	case "yes", "y":
		return action{kind: actConfirm}, nil
	case "status":
		return action{kind: actStatus}, nil
	case "help", "?":
		return action{kind: actHelp}, nil
	case "quit", "exit", "q":
		return action{kind: actQuit}, nil
	}
	if uciRe.MatchString(strings.ToLower(line)) {
		return parseMove(line)
	}
	return action{}, errUnknownCommand
}

func parseMove(arg string) (action, error) {
	arg = strings.ToLower(strings.Join(strings.Fields(arg), ""))
	m := uciRe.FindStringSubmatch(arg)
	if m == nil {
		return action{}, fmt.Errorf("move needs from and to squares like e2e4")
	}
	a := action{kind: actMove, from: m[1], to: m[2]}
	if m[3] != "" {
		a.promo, _ = protocol.ParsePromotionPiece(m[3])
	}
	return a, nil
}
