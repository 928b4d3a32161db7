package socket

import (
	"encoding/json"
)

// SocketEvent is the wire envelope for every frame in either direction.
type SocketEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// PresencePayload announces a client's presence. The server keys presence on
// the authenticated token identity, not the user id carried here; the field
// stays for wire compatibility with older clients that still send it.
type PresencePayload struct {
	UserId uint `json:"user_id"`
}

type RequestHistoryPayload struct {
	UserId      uint `json:"user_id"`
	RecipientId uint `json:"recipient_id"`
}

type SendMessagePayload struct {
	SenderId    uint   `json:"sender_id"`
	RecipientId uint   `json:"recipient_id"`
	Body        string `json:"body"`
}

type PresenceSetPayload struct {
	UserIds []uint `json:"user_ids"`
}

type SendFailedPayload struct {
	RecipientId uint     `json:"recipient_id"`
	Reasons     []string `json:"reasons"`
}
