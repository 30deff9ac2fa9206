package session

import (
	"errors"
	"testing"

	"github.com/park285/cheese-chess-client/internal/protocol"
	"github.com/park285/cheese-chess-client/internal/rules"
)

func activeAs(c protocol.Color, fen string) State {
	return apply(NewState(), assigned(c), snapshot(fen))
}

func TestProposeMoveSendsLegalMove(t *testing.T) {
	s, out, err := ProposeMove(activeAs(protocol.White, startFEN), rules.New(), "E2", "e4")
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	if len(out) != 1 || out[0] != protocol.Move("e2", "e4", "") {
		t.Fatalf("out = %+v", out)
	}
	if s.Pending == nil || s.Pending.From != "e2" || s.Pending.To != "e4" {
		t.Fatalf("pending = %+v", s.Pending)
	}
}

func TestProposeMoveRejectsLocally(t *testing.T) {
	r := rules.New()
	cases := []struct {
		name     string
		s        State
		from, to string
		want     error
	}{
		{"not our turn", activeAs(protocol.Black, startFEN), "e7", "e5", ErrInputDisabled},
		{"no snapshot", apply(NewState(), assigned(protocol.White)), "e2", "e4", ErrInputDisabled},
		{"opponent piece", activeAs(protocol.White, startFEN), "e7", "e5", ErrIllegalMove},
		{"empty square", activeAs(protocol.White, startFEN), "e4", "e5", ErrIllegalMove},
		{"illegal destination", activeAs(protocol.White, startFEN), "e2", "e5", ErrIllegalMove},
	}
	for _, tc := range cases {
		_, out, err := ProposeMove(tc.s, r, tc.from, tc.to)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v want %v", tc.name, err, tc.want)
		}
		if len(out) != 0 {
			t.Fatalf("%s: sent %+v", tc.name, out)
		}
	}
}

func TestPromotionSendsExactlyOneMove(t *testing.T) {
	r := rules.New()
	s, out, err := ProposeMove(activeAs(protocol.White, whitePromote), r, "e7", "e8")
	if err != nil || len(out) != 0 {
		t.Fatalf("propose: out=%+v err=%v", out, err)
	}
	if s.Status != StatusAwaitingPromotion {
		t.Fatalf("status = %s", s.Status)
	}

	// everything else waits for the piece
	if _, _, err := ProposeMove(s, r, "a1", "b1"); !errors.Is(err, ErrPromotionPending) {
		t.Fatalf("second move err = %v", err)
	}
	if _, _, err := ChoosePromotion(s, "k"); !errors.Is(err, ErrInvalidPromotion) {
		t.Fatalf("king promotion err = %v", err)
	}

	s, out, err = ChoosePromotion(s, protocol.PromoteKnight)
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if len(out) != 1 || out[0] != protocol.Move("e7", "e8", protocol.PromoteKnight) {
		t.Fatalf("out = %+v", out)
	}
	if s.Status != StatusActive || s.Pending.Promotion != protocol.PromoteKnight {
		t.Fatalf("status=%s pending=%+v", s.Status, s.Pending)
	}
	if _, out, err := ChoosePromotion(s, protocol.PromoteQueen); !errors.Is(err, ErrNotAwaitingPromotion) || len(out) != 0 {
		t.Fatalf("repeat choose: out=%+v err=%v", out, err)
	}
}

func TestPromotionSurvivesSameTurnSnapshot(t *testing.T) {
	s, _, _ := ProposeMove(activeAs(protocol.White, whitePromote), rules.New(), "e7", "e8")
	s = apply(s, snapshot(whitePromote))
	if s.Status != StatusAwaitingPromotion || s.Pending == nil {
		t.Fatalf("promotion dropped: %s %+v", s.Status, s.Pending)
	}
	s = apply(s, snapshot(blackToMove))
	if s.Status != StatusActive || s.Pending != nil {
		t.Fatalf("promotion kept after turn passed: %s %+v", s.Status, s.Pending)
	}
	if _, out, err := ChoosePromotion(s, protocol.PromoteQueen); err == nil || len(out) != 0 {
		t.Fatalf("stale promotion sent %+v", out)
	}
}

func TestSelectClickFlow(t *testing.T) {
	r := rules.New()
	s := activeAs(protocol.White, startFEN)

	s, out, err := Select(s, r, "e7")
	if err != nil || s.Selected != "" || len(out) != 0 {
		t.Fatalf("opponent square selected: %q %v", s.Selected, err)
	}
	s, _, _ = Select(s, r, "g1")
	if s.Selected != "g1" || len(s.Destinations) != 2 {
		t.Fatalf("selected=%q dests=%v", s.Selected, s.Destinations)
	}
	s, out, _ = Select(s, r, "a5")
	if s.Selected != "" || len(out) != 0 {
		t.Fatalf("unlisted square kept selection")
	}
	s, _, _ = Select(s, r, "g1")
	s, out, err = Select(s, r, "f3")
	if err != nil || len(out) != 1 || out[0] != protocol.Move("g1", "f3", "") {
		t.Fatalf("click move: out=%+v err=%v", out, err)
	}
	if s.Selected != "" || s.Destinations != nil {
		t.Fatalf("selection kept after move")
	}
}

func TestSnapshotClearsSelection(t *testing.T) {
	s, _, _ := Select(activeAs(protocol.White, startFEN), rules.New(), "b1")
	if s.Selected == "" {
		t.Fatalf("nothing selected")
	}
	s = apply(s, snapshot(startFEN))
	if s.Selected != "" || s.Destinations != nil {
		t.Fatalf("selection survived snapshot")
	}
}

func TestServerRejectionClearsPending(t *testing.T) {
	s, _, _ := ProposeMove(activeAs(protocol.White, startFEN), rules.New(), "e2", "e4")
	s = apply(s, protocol.Inbound{Type: protocol.TypeError, Code: protocol.CodeIllegalMove})
	if s.Pending != nil {
		t.Fatalf("pending kept after illegal_move")
	}
}
