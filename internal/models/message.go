package models

import "time"

// Sender types carried on every message.
const (
	SenderTypeUser  = "user"
	SenderTypeAdmin = "admin"
)

// Message statuses.
const (
	StatusSent = "sent"
	StatusSeen = "seen"
)

// Message is a single chat message. ID is server-assigned and globally unique;
// it is the only key used to deduplicate messages arriving through both the
// socket and the REST history feed.
type Message struct {
	ID             string    `json:"_id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderType     string    `json:"senderType"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
	Status         string    `json:"status"`
}

// Seen reports whether the message has been read by the receiving side.
func (m Message) Seen() bool {
	return m.Status == StatusSeen
}
