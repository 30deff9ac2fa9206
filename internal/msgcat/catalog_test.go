package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/cheese-chess-client/internal/protocol"
)

func TestErrorTextKnownCodes(t *testing.T) {
	c := MustDefault()
	for _, code := range []protocol.ErrorCode{
		protocol.CodeNotYourTurn,
		protocol.CodeIllegalMove,
		protocol.CodeUnauthorized,
		protocol.CodeRoomIDRequired,
		protocol.CodeJoinFailed,
	} {
		got := c.ErrorText(code)
		if got == "" || strings.Contains(got, "Server error") {
			t.Fatalf("%s -> %q", code, got)
		}
	}
}

func TestErrorTextUnknownCodeCarriesRawCode(t *testing.T) {
	got := MustDefault().ErrorText("rate_limited")
	if !strings.Contains(got, "rate_limited") {
		t.Fatalf("fallback lost the code: %q", got)
	}
}

func TestGameOverText(t *testing.T) {
	c := MustDefault()
	cases := []struct {
		result   protocol.Result
		reason   string
		resigned protocol.Color
		want     string
	}{
		{protocol.WhiteWin, "", "", "White wins"},
		{protocol.BlackWin, protocol.ReasonResignation, protocol.White, "Black wins (White resigned)"},
		{protocol.Draw, protocol.ReasonAgreement, "", "Draw by agreement"},
		{"ABANDONED", "", "", "Game over: ABANDONED"},
	}
	for _, tc := range cases {
		if got := c.GameOverText(tc.result, tc.reason, tc.resigned); got != tc.want {
			t.Fatalf("GameOverText(%s,%s,%s) = %q, want %q", tc.result, tc.reason, tc.resigned, got, tc.want)
		}
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("error:\n  illegal_move: \"nope\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.ErrorText(protocol.CodeIllegalMove); got != "nope" {
		t.Fatalf("override not applied: %q", got)
	}
	if got := c.ErrorText(protocol.CodeJoinFailed); got != "Could not join the room." {
		t.Fatalf("embedded value lost: %q", got)
	}
}

func TestOverrideDirRejectsDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("notice:\n  draw_offered: x\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestRenderMissingKey(t *testing.T) {
	if _, err := MustDefault().Render("nope.nothing", nil); err == nil {
		t.Fatalf("expected error")
	}
}
