package clock

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/park285/cheese-chess-client/internal/protocol"
)

func TestTickDoesNothingBeforeFirstPosition(t *testing.T) {
	c := New()
	c.Tick()
	if got := c.Pair(); got.White != DefaultBudget || got.Black != DefaultBudget {
		t.Fatalf("unsynced clock moved: %+v", got)
	}
}

func TestTickDecrementsOnlyActiveSide(t *testing.T) {
	c := New()
	c.Sync(Pair{White: 5 * time.Second, Black: 7 * time.Second})
	c.SetActive(protocol.Black)
	c.Tick()
	c.Tick()
	got := c.Pair()
	if got.White != 5*time.Second {
		t.Fatalf("white changed: %v", got.White)
	}
	if got.Black != 5*time.Second {
		t.Fatalf("black = %v, want 5s", got.Black)
	}
}

func TestTickFloorsAtZero(t *testing.T) {
	c := New()
	c.Sync(Pair{White: 1500 * time.Millisecond, Black: time.Minute})
	c.SetActive(protocol.White)
	for i := 0; i < 5; i++ {
		c.Tick()
	}
	if got := c.Pair().White; got != 0 {
		t.Fatalf("white = %v, want 0", got)
	}
}

func TestSyncOverwritesLocalCountdown(t *testing.T) {
	c := New()
	c.Sync(Pair{White: 10 * time.Second, Black: 10 * time.Second})
	c.SetActive(protocol.White)
	c.Tick()
	c.Tick()
	c.Tick()
	// server says white actually has more time than the local countdown
	c.Sync(Pair{White: 9 * time.Second, Black: -3 * time.Second})
	got := c.Pair()
	if got.White != 9*time.Second || got.Black != 0 {
		t.Fatalf("after sync = %+v", got)
	}
}

func TestSyncSideLeavesOtherSide(t *testing.T) {
	c := New()
	c.SyncSide(protocol.Black, 42*time.Second)
	got := c.Pair()
	if got.Black != 42*time.Second || got.White != DefaultBudget {
		t.Fatalf("pair = %+v", got)
	}
}

func TestCopiesAreIndependent(t *testing.T) {
	a := New()
	a.SetActive(protocol.White)
	b := a
	b.Tick()
	if a.Pair().White != DefaultBudget {
		t.Fatalf("copy tick leaked into original")
	}
}

func TestNewTickerFiresOnFakeClock(t *testing.T) {
	fc := clockwork.NewFakeClock()
	tk := NewTicker(fc)
	defer tk.Stop()
	fc.BlockUntil(1)
	fc.Advance(Interval)
	select {
	case <-tk.Chan():
	case <-time.After(time.Second):
		t.Fatalf("ticker did not fire")
	}
}
