package chatsync

import (
	"github.com/samandareo/quick-brand-admin/internal/config"
	"github.com/samandareo/quick-brand-admin/internal/models"
)

// MergeDirectory reconciles the "all known users" directory against the live
// conversation list into one unified contact list. A directory user with a
// real conversation contributes that conversation; everyone else gets a
// synthesized placeholder with the same deterministic conversation id the
// server will assign on first contact, so the first real message promotes
// the placeholder in place rather than forking a second entry.
func MergeDirectory(users []models.ChatUser, convs []models.Conversation, adminID string, mode SortMode) []models.Conversation {
	byOtherUser := make(map[string]models.Conversation, len(convs))
	for _, conv := range convs {
		if conv.OtherUser.ID != "" {
			byOtherUser[conv.OtherUser.ID] = conv
		}
	}

	merged := make([]models.Conversation, 0, len(users))
	for _, user := range users {
		if user.ID == "" {
			continue
		}
		if user.Name == "" {
			user.Name = config.UnknownUserName
		}

		if conv, ok := byOtherUser[user.ID]; ok {
			conv.OtherUser = user
			merged = append(merged, conv)
			continue
		}

		merged = append(merged, models.Conversation{
			ConversationID: models.ComputeConversationID(user.ID, adminID),
			OtherUser:      user,
			UnreadCount:    0,
			IsPlaceholder:  true,
		})
	}

	SortConversations(merged, mode)
	return merged
}
