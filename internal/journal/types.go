// Package journal persists what a client session saw: a live record per room
// for rejoining after a restart, and the final result of each game.
package journal

import (
	"context"
	"errors"
	"time"
)

// Live is the latest known position of an in-progress session.
type Live struct {
	SessionID string    `json:"sessionId"`
	RoomID    string    `json:"roomId"`
	Color     string    `json:"color"`
	FEN       string    `json:"fen"`
	WhiteName string    `json:"whiteName,omitempty"`
	BlackName string    `json:"blackName,omitempty"`
	ChatLines int       `json:"chatLines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Result is a finished game as this client saw it.
type Result struct {
	SessionID     string    `json:"sessionId"`
	RoomID        string    `json:"roomId"`
	Color         string    `json:"color"`
	Result        string    `json:"result"`
	Reason        string    `json:"reason,omitempty"`
	ResignedColor string    `json:"resignedColor,omitempty"`
	FinalFEN      string    `json:"finalFen,omitempty"`
	WhiteName     string    `json:"whiteName,omitempty"`
	BlackName     string    `json:"blackName,omitempty"`
	EndedAt       time.Time `json:"endedAt"`
}

type Store interface {
	SaveLive(ctx context.Context, l Live) error
	SaveResult(ctx context.Context, r Result) error
}

// Multi writes to every store and joins their errors.
type Multi []Store

func (m Multi) SaveLive(ctx context.Context, l Live) error {
	var errs []error
	for _, s := range m {
		if err := s.SaveLive(ctx, l); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) SaveResult(ctx context.Context, r Result) error {
	var errs []error
	for _, s := range m {
		if err := s.SaveResult(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
