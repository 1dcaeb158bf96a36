package models

import "encoding/json"

// Inbound event names (server -> client).
const (
	EventNewMessage           = "new_message"
	EventMessageSent          = "message_sent"
	EventMessageSeen          = "message_seen"
	EventUserTyping           = "user_typing"
	EventUserOnline           = "user_online"
	EventUserOffline          = "user_offline"
	EventUserJoined           = "user_joined"
	EventConversations        = "conversations"
	EventConversationMessages = "conversation_messages"
	EventError                = "error"
)

// Outbound event names (client -> server).
const (
	EventGetConversations        = "get_conversations"
	EventGetOnlineUsers          = "get_online_users"
	EventSendMessage             = "send_message"
	EventTypingStart             = "typing_start"
	EventTypingStop              = "typing_stop"
	EventMarkSeen                = "message_seen"
	EventGetConversationMessages = "get_conversation_messages"
)

// Envelope is the wire format for every socket frame, in both directions.
type Envelope struct {
	Event     string          `json:"event"`
	RequestID string          `json:"requestId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SendMessagePayload is the body of an outgoing send_message frame.
type SendMessagePayload struct {
	ReceiverID   string `json:"receiverId"`
	Message      string `json:"message"`
	ReceiverType string `json:"receiverType"`
}

// TypingPayload is the body of typing_start and typing_stop frames.
type TypingPayload struct {
	ReceiverID   string `json:"receiverId"`
	ReceiverType string `json:"receiverType"`
}

// MarkSeenPayload is the body of an outgoing message_seen frame.
type MarkSeenPayload struct {
	ConversationID string `json:"conversationId"`
}

// GetMessagesPayload requests one backward page of a conversation's history.
type GetMessagesPayload struct {
	ConversationID string `json:"conversationId"`
	Limit          int    `json:"limit"`
	Skip           int    `json:"skip"`
}

// MessageSeenEvent is the inbound receipt that messages have been read.
// MessageIDs may be empty, in which case every message of the conversation
// is considered seen.
type MessageSeenEvent struct {
	ConversationID string   `json:"conversationId"`
	MessageIDs     []string `json:"messageIds,omitempty"`
}

// TypingEvent signals that a user started or stopped typing.
type TypingEvent struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// PresenceEvent carries either a single identity (user_online, user_offline,
// user_joined) or, on the reply to get_online_users, the full online set.
type PresenceEvent struct {
	UserID  string   `json:"userId,omitempty"`
	UserIDs []string `json:"userIds,omitempty"`
}

// ConversationMessagesEvent is one page of history delivered over the socket.
type ConversationMessagesEvent struct {
	ConversationID string    `json:"conversationId"`
	Messages       []Message `json:"messages"`
}

// ErrorEvent is a protocol-level error frame.
type ErrorEvent struct {
	Message string `json:"message"`
}
