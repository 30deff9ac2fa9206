package sessiondto

// NoticeKind classifies a one-shot message for the local participant.
type NoticeKind string

const (
	NoticeServerError    NoticeKind = "server_error"
	NoticeDrawOffered    NoticeKind = "draw_offered"
	NoticeDrawOfferSent  NoticeKind = "draw_offer_sent"
	NoticeDrawDeclined   NoticeKind = "draw_declined"
	NoticeGameOver       NoticeKind = "game_over"
	NoticeConnectionLost NoticeKind = "connection_lost"
	NoticeReconnected    NoticeKind = "reconnected"
)

type Notice struct {
	Kind    NoticeKind
	Code    string
	Message string
}
