package chatsync

import (
	"sort"
	"sync"
	"time"

	"github.com/samandareo/quick-brand-admin/internal/config"
	"github.com/samandareo/quick-brand-admin/internal/models"
)

// SortMode selects the ordering of a conversation listing.
type SortMode string

const (
	// SortRecent orders by last message timestamp, newest first.
	// Conversations with no messages sort last.
	SortRecent SortMode = "recent"
	// SortUnread orders by unread count, highest first; ties break by most
	// recent last message.
	SortUnread SortMode = "unread"
)

// ConversationStore holds every known conversation summary, keyed by its
// deterministic conversation id. It is the single source of truth for unread
// counts: the aggregate is always derived by summing the entries, never kept
// as separate state that could drift.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]*models.Conversation),
	}
}

// Replace swaps the entire store contents for a full snapshot, as delivered
// by the conversations event on connect and reconnect.
func (s *ConversationStore) Replace(convs []models.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = make(map[string]*models.Conversation, len(convs))
	for i := range convs {
		c := convs[i]
		normalize(&c)
		s.conversations[c.ConversationID] = &c
	}
}

// Upsert merges the incoming value into the store by conversation id. Fields
// with zero values in the incoming conversation leave the stored entry
// untouched, so a partial update never erases known state. A real
// conversation arriving over a placeholder promotes it in place.
func (s *ConversationStore) Upsert(conv models.Conversation) {
	if conv.ConversationID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	normalize(&conv)
	existing, ok := s.conversations[conv.ConversationID]
	if !ok {
		c := conv
		s.conversations[c.ConversationID] = &c
		return
	}

	if conv.OtherUser.ID != "" {
		existing.OtherUser = conv.OtherUser
	}
	if conv.LastMessage != nil {
		existing.LastMessage = conv.LastMessage
	}
	if conv.MessageCount != 0 {
		existing.MessageCount = conv.MessageCount
	}
	if conv.UnreadCount != 0 {
		existing.UnreadCount = conv.UnreadCount
	}
	// Only a placeholder stays a placeholder; promotion is a plain upsert.
	existing.IsPlaceholder = existing.IsPlaceholder && conv.IsPlaceholder
}

// ApplyMessage updates the summary for the conversation an inbound or echoed
// message belongs to, creating it on first contact. countUnread increments
// the unread counter by exactly one.
func (s *ConversationStore) ApplyMessage(msg models.Message, countUnread bool) {
	if msg.ConversationID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[msg.ConversationID]
	if !ok {
		conv = &models.Conversation{
			ConversationID: msg.ConversationID,
			OtherUser:      models.ChatUser{Name: config.UnknownUserName},
		}
		if msg.SenderType == models.SenderTypeUser {
			conv.OtherUser.ID = msg.SenderID
		}
		s.conversations[conv.ConversationID] = conv
	}

	m := msg
	conv.LastMessage = &m
	conv.MessageCount++
	conv.IsPlaceholder = false
	if countUnread {
		conv.UnreadCount++
	}
}

// ResetUnread zeroes the conversation's unread counter.
func (s *ConversationStore) ResetUnread(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[conversationID]; ok {
		conv.UnreadCount = 0
	}
}

// IncrementUnread bumps the conversation's unread counter by one.
func (s *ConversationStore) IncrementUnread(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[conversationID]; ok {
		conv.UnreadCount++
	}
}

// Get returns a copy of one conversation.
func (s *ConversationStore) Get(conversationID string) (models.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return models.Conversation{}, false
	}
	return *conv, true
}

// ListAll returns copies of every conversation in the requested order.
func (s *ConversationStore) ListAll(mode SortMode) []models.Conversation {
	s.mu.RLock()
	list := make([]models.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		list = append(list, *conv)
	}
	s.mu.RUnlock()

	SortConversations(list, mode)
	return list
}

// TotalUnread sums the unread counters across all conversations. This is the
// unread aggregate; it is recomputed from the store on every call so it can
// never desync from the per-conversation counters.
func (s *ConversationStore) TotalUnread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, conv := range s.conversations {
		total += conv.UnreadCount
	}
	return total
}

// SortConversations orders the slice in place. Missing last-message
// timestamps are treated as the epoch, pushing empty conversations last
// under recency ordering.
func SortConversations(list []models.Conversation, mode SortMode) {
	sort.SliceStable(list, func(i, j int) bool {
		if mode == SortUnread && list[i].UnreadCount != list[j].UnreadCount {
			return list[i].UnreadCount > list[j].UnreadCount
		}
		return lastTimestamp(list[i]).After(lastTimestamp(list[j]))
	})
}

func lastTimestamp(conv models.Conversation) time.Time {
	if conv.LastMessage != nil {
		return conv.LastMessage.Timestamp
	}
	return time.Time{}
}

func normalize(conv *models.Conversation) {
	if conv.OtherUser.Name == "" {
		conv.OtherUser.Name = config.UnknownUserName
	}
	if conv.UnreadCount < 0 {
		conv.UnreadCount = 0
	}
}
