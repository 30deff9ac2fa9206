package session

import "errors"

var (
	ErrNoToken              = errors.New("session: bearer token required")
	ErrClosed               = errors.New("session: closed")
	ErrInputDisabled        = errors.New("session: input disabled")
	ErrPromotionPending     = errors.New("session: promotion choice pending")
	ErrIllegalMove          = errors.New("session: illegal move")
	ErrNotAwaitingPromotion = errors.New("session: no promotion pending")
	ErrInvalidPromotion     = errors.New("session: promotion piece must be queen, rook, bishop or knight")
	ErrEmptyChat            = errors.New("session: empty chat message")
	ErrResignNotConfirmed   = errors.New("session: resignation not confirmed")
	ErrNoDrawOffer          = errors.New("session: no draw offer to answer")
	ErrGameOver             = errors.New("session: game is over")
)
