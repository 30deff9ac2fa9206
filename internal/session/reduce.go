package session

import (
	"github.com/park285/cheese-chess-client/internal/clock"
	"github.com/park285/cheese-chess-client/internal/protocol"
	"github.com/park285/cheese-chess-client/pkg/sessiondto"
)

// Notice is a reducer-level message; the engine renders its text.
type Notice struct {
	Kind sessiondto.NoticeKind
	Code protocol.ErrorCode
}

// Reduce applies one inbound event. Types the client does not know leave the
// state untouched.
func Reduce(s State, ev protocol.Inbound) (State, []Notice) {
	switch ev.Type {
	case protocol.TypeAssignedColor:
		return onAssigned(s, ev), nil
	case protocol.TypeState:
		return onSnapshot(s, ev), nil
	case protocol.TypeChat:
		s.Chat = appendChat(s.Chat, ChatEntry{Sender: ev.Sender, Text: ev.Text})
		return s, nil
	case protocol.TypeDrawOffer:
		if s.Terminal() {
			return s, nil
		}
		s.DrawOfferPending = true
		return s, []Notice{{Kind: sessiondto.NoticeDrawOffered}}
	case protocol.TypeDrawDecline:
		return s, []Notice{{Kind: sessiondto.NoticeDrawDeclined}}
	case protocol.TypeError:
		// a rejected move leaves nothing to highlight
		if ev.Code == protocol.CodeIllegalMove || ev.Code == protocol.CodeNotYourTurn {
			if s.Status != StatusAwaitingPromotion {
				s.Pending = nil
			}
		}
		return s, []Notice{{Kind: sessiondto.NoticeServerError, Code: ev.Code}}
	case protocol.TypeGameOver:
		return onGameOver(s, ev), []Notice{{Kind: sessiondto.NoticeGameOver}}
	default:
		return s, nil
	}
}

func onAssigned(s State, ev protocol.Inbound) State {
	if s.Color.Valid() {
		return s
	}
	s.Color = ev.Color
	if s.RoomID == "" {
		s.RoomID = ev.RoomID
	}
	if s.Status == StatusConnecting || s.Status == StatusAwaitingAssignment {
		s.Status = StatusActive
	}
	return s
}

func onSnapshot(s State, ev protocol.Inbound) State {
	s.Snapshot = &Snapshot{FEN: ev.FEN, ActiveColor: ev.ActiveColor}
	s.Players = Players{
		White: Player{Name: ev.WhiteName, Elo: cloneInt(ev.WhiteElo)},
		Black: Player{Name: ev.BlackName, Elo: cloneInt(ev.BlackElo)},
	}
	switch {
	case ev.WhiteTime != nil && ev.BlackTime != nil:
		s.Clock.Sync(clock.Pair{White: clock.FromMillis(*ev.WhiteTime), Black: clock.FromMillis(*ev.BlackTime)})
	case ev.WhiteTime != nil:
		s.Clock.SyncSide(protocol.White, clock.FromMillis(*ev.WhiteTime))
	case ev.BlackTime != nil:
		s.Clock.SyncSide(protocol.Black, clock.FromMillis(*ev.BlackTime))
	}
	s.Clock.SetActive(ev.ActiveColor)

	s = s.clearSelection()
	if s.Status == StatusAwaitingPromotion && s.InputEnabled() {
		// the promotion choice is still ours to make on this position
		return s
	}
	s.Pending = nil
	if s.Status == StatusAwaitingPromotion {
		s.Status = StatusActive
	}
	return s
}

func onGameOver(s State, ev protocol.Inbound) State {
	if s.Status == StatusClosed {
		return s
	}
	s.Status = StatusGameOver
	s.Outcome = &Outcome{Result: ev.Result, Reason: ev.Reason, ResignedColor: ev.ResignedColor}
	s.DrawOfferPending = false
	s.Pending = nil
	return s.clearSelection()
}

func appendChat(log []ChatEntry, e ChatEntry) []ChatEntry {
	// copy so views already published keep their slice
	out := make([]ChatEntry, 0, len(log)+1)
	out = append(out, log...)
	return append(out, e)
}
