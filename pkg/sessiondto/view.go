package sessiondto

import "time"

type Player struct {
	Name string
	Elo  *int
}

type Players struct {
	White Player
	Black Player
}

type Clocks struct {
	White  time.Duration
	Black  time.Duration
	Active string
}

type Move struct {
	From      string
	To        string
	Promotion string
}

type ChatEntry struct {
	Sender string
	Text   string
}

type Outcome struct {
	Result        string
	Reason        string
	ResignedColor string
	Text          string
}

// View is an immutable copy of a session handed to observers.
type View struct {
	SessionID string
	Status    string
	RoomID    string
	Color     string

	FEN         string
	ActiveColor string
	Players     Players
	Clocks      Clocks

	Pending          *Move
	Selected         string
	Destinations     []string
	PromotionChoices []string

	Chat             []ChatEntry
	DrawOfferPending bool
	InputEnabled     bool
	Outcome          *Outcome
}

func (v View) HasSnapshot() bool { return v.FEN != "" }
