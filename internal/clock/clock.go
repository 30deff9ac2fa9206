package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/park285/cheese-chess-client/internal/protocol"
)

const (
	// Interval is how often the active side is decremented locally.
	Interval = time.Second
	// DefaultBudget is the per-side time shown before the first snapshot.
	DefaultBudget = 10 * time.Minute
)

// Pair holds remaining time for both sides.
type Pair struct {
	White time.Duration
	Black time.Duration
}

// Clock is the local countdown between server snapshots. The server value
// always wins: Sync overwrites whatever the local countdown reached.
// Clock is a value type; copies are independent.
type Clock struct {
	pair   Pair
	active protocol.Color
	synced bool
}

func New() Clock {
	return Clock{pair: Pair{White: DefaultBudget, Black: DefaultBudget}}
}

// Sync replaces both sides with authoritative values. Negative values clamp to zero.
func (c *Clock) Sync(p Pair) {
	c.pair = Pair{White: clampZero(p.White), Black: clampZero(p.Black)}
	c.synced = true
}

// SyncSide replaces one side only, for snapshots that carry a single time.
func (c *Clock) SyncSide(side protocol.Color, d time.Duration) {
	switch side {
	case protocol.White:
		c.pair.White = clampZero(d)
	case protocol.Black:
		c.pair.Black = clampZero(d)
	default:
		return
	}
	c.synced = true
}

// SetActive marks whose clock runs. It also counts as having seen a position,
// which is what enables ticking.
func (c *Clock) SetActive(side protocol.Color) {
	if !side.Valid() {
		return
	}
	c.active = side
	c.synced = true
}

func (c *Clock) Active() protocol.Color { return c.active }

// Tick subtracts one Interval from the active side, floored at zero.
// It is a no-op until a position has been seen.
func (c *Clock) Tick() {
	if !c.synced {
		return
	}
	switch c.active {
	case protocol.White:
		c.pair.White = clampZero(c.pair.White - Interval)
	case protocol.Black:
		c.pair.Black = clampZero(c.pair.Black - Interval)
	}
}

func (c Clock) Pair() Pair { return c.pair }

// NewTicker starts the once-per-Interval ticker that drives Tick.
func NewTicker(clk clockwork.Clock) clockwork.Ticker {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return clk.NewTicker(Interval)
}

func clampZero(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// FromMillis converts a wire millisecond value.
func FromMillis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
