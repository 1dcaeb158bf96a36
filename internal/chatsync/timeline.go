package chatsync

import (
	"sort"
	"sync"

	"github.com/samandareo/quick-brand-admin/internal/models"
)

// Timeline is the per-conversation message history for the one conversation
// the admin currently has open. It merges two append streams — the backward
// REST pagination feed and live socket pushes — deduplicated by message id.
// Switching conversations clears it and begins a fresh load.
type Timeline struct {
	mu sync.RWMutex

	conversationID string
	messages       []models.Message
	known          map[string]int // message id -> index into messages

	pageSize     int
	page         int
	hasMoreOlder bool
	loadingOlder bool
}

func NewTimeline(pageSize int) *Timeline {
	return &Timeline{
		known:    make(map[string]int),
		pageSize: pageSize,
	}
}

// Select makes conversationID the active conversation and resets all state,
// including the in-flight guard, so a stale response for the previous
// conversation cannot block loads of the new one.
func (t *Timeline) Select(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conversationID = conversationID
	t.messages = nil
	t.known = make(map[string]int)
	t.page = 0
	t.hasMoreOlder = false
	t.loadingOlder = false
}

// ConversationID returns the active conversation id, or "" when none is open.
func (t *Timeline) ConversationID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.conversationID
}

// ApplyInitial installs the most recent page, replacing any current contents.
// The page is expected newest-last. Returns false when the response is stale,
// i.e. the conversation is no longer the selected one; stale pages are
// discarded without touching the timeline.
func (t *Timeline) ApplyInitial(conversationID string, page []models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if conversationID != t.conversationID {
		return false
	}

	t.messages = nil
	t.known = make(map[string]int)
	for _, msg := range page {
		t.appendLocked(msg)
	}
	t.page = 1
	t.hasMoreOlder = len(page) >= t.pageSize
	t.loadingOlder = false
	return true
}

// BeginOlderLoad arms the in-flight guard and returns the page number to
// fetch. It refuses when a load is already running, no more history exists,
// or no initial page has been applied yet.
func (t *Timeline) BeginOlderLoad() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loadingOlder || !t.hasMoreOlder || t.page == 0 {
		return 0, false
	}
	t.loadingOlder = true
	return t.page + 1, true
}

// ApplyOlder prepends one older page, skipping entries already present.
// Stale responses (conversation switched since the fetch started) are
// dropped; the guard was already reset by Select.
func (t *Timeline) ApplyOlder(conversationID string, page []models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if conversationID != t.conversationID {
		return false
	}

	fresh := make([]models.Message, 0, len(page))
	for _, msg := range page {
		if msg.ID == "" {
			continue
		}
		if _, dup := t.known[msg.ID]; dup {
			continue
		}
		fresh = append(fresh, msg)
	}

	t.messages = append(fresh, t.messages...)
	t.reindexLocked()
	t.page++
	t.hasMoreOlder = len(page) >= t.pageSize
	t.loadingOlder = false
	return true
}

// AbortOlderLoad releases the in-flight guard after a failed fetch, leaving
// hasMoreOlder untouched so the user can retry by scrolling again.
func (t *Timeline) AbortOlderLoad(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if conversationID == t.conversationID {
		t.loadingOlder = false
	}
}

// AppendLive appends a live-pushed message at the tail. Duplicates (the same
// id already ingested through either channel) are dropped. Returns whether
// the message was appended.
func (t *Timeline) AppendLive(msg models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if msg.ConversationID != t.conversationID || t.conversationID == "" {
		return false
	}
	return t.appendLocked(msg)
}

// MarkSeen flips the status of the given message ids to seen. An empty id
// list marks every message in the conversation seen.
func (t *Timeline) MarkSeen(conversationID string, messageIDs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if conversationID != t.conversationID {
		return
	}

	if len(messageIDs) == 0 {
		for i := range t.messages {
			t.messages[i].Status = models.StatusSeen
		}
		return
	}
	for _, id := range messageIDs {
		if i, ok := t.known[id]; ok {
			t.messages[i].Status = models.StatusSeen
		}
	}
}

// HasMoreOlder reports whether older history remains to be fetched.
func (t *Timeline) HasMoreOlder() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hasMoreOlder
}

// Messages returns a copy of the timeline ordered by timestamp ascending.
// Ingestion order is arrival order; the display ordering is materialized
// here, at read time, and never cached.
func (t *Timeline) Messages() []models.Message {
	t.mu.RLock()
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	t.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Len returns the number of distinct messages currently held.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

func (t *Timeline) appendLocked(msg models.Message) bool {
	if msg.ID == "" {
		return false
	}
	if _, dup := t.known[msg.ID]; dup {
		return false
	}
	t.known[msg.ID] = len(t.messages)
	t.messages = append(t.messages, msg)
	return true
}

func (t *Timeline) reindexLocked() {
	t.known = make(map[string]int, len(t.messages))
	for i, msg := range t.messages {
		t.known[msg.ID] = i
	}
}
