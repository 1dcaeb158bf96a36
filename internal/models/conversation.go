package models

// ChatUser is the denormalized profile snapshot of the non-admin participant.
type ChatUser struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Verified bool   `json:"isVerified"`
}

// Conversation is a 1:1 channel between one end user and the admin pool.
// Placeholder conversations are synthesized from the user directory for users
// with no message history yet; they share the conversation id keyspace with
// real conversations so the first message promotes them in place.
type Conversation struct {
	ConversationID string   `json:"conversationId"`
	OtherUser      ChatUser `json:"otherUser"`
	LastMessage    *Message `json:"lastMessage,omitempty"`
	MessageCount   int      `json:"messageCount"`
	UnreadCount    int      `json:"unreadCount"`
	IsPlaceholder  bool     `json:"isPlaceholder,omitempty"`
}

// ComputeConversationID derives the conversation id for a pair of identities.
// The two ids are sorted before joining so both sides derive the same id,
// matching the server's own derivation.
func ComputeConversationID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// ChatStats is the dashboard summary served by the chat REST resource.
type ChatStats struct {
	TotalConversations int `json:"totalConversations"`
	TotalMessages      int `json:"totalMessages"`
	TotalUnread        int `json:"totalUnread"`
}
