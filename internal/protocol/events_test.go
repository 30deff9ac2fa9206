package protocol

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDecodeState(t *testing.T) {
	raw := `{"type":"state","fen":"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"whiteName":"alice","whiteElo":1320,"blackName":"bob","whiteTime":590000,"blackTime":600000}`
	ev, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Type != TypeState || ev.ActiveColor != Black {
		t.Fatalf("type=%q active=%q", ev.Type, ev.ActiveColor)
	}
	if ev.WhiteElo == nil || *ev.WhiteElo != 1320 || ev.BlackElo != nil {
		t.Fatalf("elo mapping wrong: %v %v", ev.WhiteElo, ev.BlackElo)
	}
	if ev.WhiteTime == nil || *ev.WhiteTime != 590000 {
		t.Fatalf("whiteTime = %v", ev.WhiteTime)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":           `{{`,
		"no type":            `{"fen":"8/8/8/8/8/8/8/8 w - - 0 1"}`,
		"blank type":         `{"type":"  "}`,
		"bad assigned color": `{"type":"assigned_color","color":"GREEN"}`,
		"state without fen":  `{"type":"state"}`,
		"state bad side":     `{"type":"state","fen":"8/8/8/8/8/8/8/8 x - - 0 1"}`,
		"array payload":      `[1,2]`,
	}
	for name, raw := range cases {
		if _, err := Decode([]byte(raw)); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: err = %v, want ErrMalformed", name, err)
		}
	}
}

func TestDecodeKeepsUnknownTypes(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"spectator_joined","name":"x"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Type != "spectator_joined" {
		t.Fatalf("type = %q", ev.Type)
	}
}

func TestDecodeGameOverAndError(t *testing.T) {
	ev, err := Decode([]byte(`{"type":"game_over","result":"BLACK_WIN","reason":"RESIGNATION","resignedColor":"WHITE"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Result != BlackWin || ev.Reason != ReasonResignation || ev.ResignedColor != White {
		t.Fatalf("game_over = %+v", ev)
	}
	ev, err = Decode([]byte(`{"type":"error","code":"rate_limited"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Code != "rate_limited" {
		t.Fatalf("code = %q", ev.Code)
	}
}

func TestOutboundOmitsEmptyFields(t *testing.T) {
	b, err := json.Marshal(Move("e2", "e4", ""))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "promotionPiece") || strings.Contains(s, "roomId") {
		t.Fatalf("unexpected optional fields: %s", s)
	}
	b, _ = json.Marshal(Move("e7", "e8", PromoteKnight))
	if !strings.Contains(string(b), `"promotionPiece":"KNIGHT"`) {
		t.Fatalf("promotion missing: %s", b)
	}
	b, _ = json.Marshal(Join("r1"))
	if string(b) != `{"type":"join","roomId":"r1"}` {
		t.Fatalf("join = %s", b)
	}
}

func TestActiveColorFromFEN(t *testing.T) {
	c, err := ActiveColorFromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil || c != White {
		t.Fatalf("got %q, %v", c, err)
	}
	if _, err := ActiveColorFromFEN("garbage"); err == nil {
		t.Fatalf("expected error for one-field fen")
	}
}

func TestParsePromotionPiece(t *testing.T) {
	for in, want := range map[string]PromotionPiece{"q": PromoteQueen, "Rook": PromoteRook, " n ": PromoteKnight, "BISHOP": PromoteBishop} {
		got, ok := ParsePromotionPiece(in)
		if !ok || got != want {
			t.Fatalf("%q -> %q %v", in, got, ok)
		}
	}
	if _, ok := ParsePromotionPiece("king"); ok {
		t.Fatalf("king must not be a promotion piece")
	}
}
