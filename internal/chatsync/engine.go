package chatsync

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/samandareo/quick-brand-admin/internal/config"
	"github.com/samandareo/quick-brand-admin/internal/models"
)

// ErrNotConnected rejects outgoing actions attempted while the socket is
// down. Sending is an explicit failure, never a silent drop.
var ErrNotConnected = errors.New("chatsync: not connected to chat service")

// Transport is the outgoing half of the socket connection. All frame shapes
// are encapsulated behind named methods; no component outside the socket
// package issues raw frames.
type Transport interface {
	TypingSender
	Connected() bool
	SendMessage(receiverID, receiverType, text string) error
	SendMarkSeen(conversationID string) error
}

// HistoryAPI is the REST collaborator used for paginated history, mark-seen
// and the user directory.
type HistoryAPI interface {
	GetConversationMessages(ctx context.Context, conversationID string, limit, page int) ([]models.Message, error)
	MarkConversationSeen(ctx context.Context, conversationID string) error
	GetChatUsers(ctx context.Context, page, limit int, search string) ([]models.ChatUser, error)
	GetChatStats(ctx context.Context) (*models.ChatStats, error)
}

// Engine is the chat synchronization core: it routes inbound socket events
// into the stores, drives the paginated REST history feed, and exposes the
// derived state the UI layer reads. Store mutations for one inbound event and
// the read accessors share a single lock, so no reader ever observes an event
// half-applied.
type Engine struct {
	mu      sync.Mutex
	adminID string

	transport Transport
	api       HistoryAPI

	conversations *ConversationStore
	timeline      *Timeline
	presence      *PresenceTracker
	typing        *TypingNotifier

	lastErr string
}

func NewEngine(adminID string, transport Transport, api HistoryAPI) *Engine {
	return &Engine{
		adminID:       adminID,
		transport:     transport,
		api:           api,
		conversations: NewConversationStore(),
		timeline:      NewTimeline(config.MessagePageSize),
		presence:      NewPresenceTracker(),
		typing:        NewTypingNotifier(transport, config.TypingDebounce),
	}
}

// HandleEvent is the event router entry point, called by the socket read
// loop in strict delivery order. Unknown events and malformed payloads are
// logged and ignored; nothing here is fatal to the subsystem.
func (e *Engine) HandleEvent(event string, data json.RawMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch event {
	case models.EventNewMessage:
		e.handleNewMessage(data)
	case models.EventMessageSent:
		e.handleMessageSent(data)
	case models.EventMessageSeen:
		e.handleMessageSeen(data)
	case models.EventUserTyping:
		e.handleUserTyping(data)
	case models.EventUserOnline, models.EventUserJoined:
		e.handlePresence(data, true)
	case models.EventUserOffline:
		e.handlePresence(data, false)
	case models.EventConversations:
		e.handleConversations(data)
	case models.EventConversationMessages:
		e.handleConversationMessages(data)
	case models.EventError:
		e.handleError(data)
	default:
		log.Printf("WARNING: unhandled chat event %q", event)
	}
}

func (e *Engine) handleNewMessage(data json.RawMessage) {
	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("ERROR: decoding new_message: %v", err)
		return
	}
	if msg.ConversationID == "" && msg.SenderID != "" {
		msg.ConversationID = models.ComputeConversationID(msg.SenderID, e.adminID)
	}

	open := e.timeline.ConversationID() == msg.ConversationID
	if open {
		e.timeline.AppendLive(msg)
	}

	// The admin is actively viewing an open conversation, so an inbound
	// message there is seen immediately instead of counted unread.
	countUnread := msg.SenderType == models.SenderTypeUser && !open
	e.conversations.ApplyMessage(msg, countUnread)

	if open && msg.SenderType == models.SenderTypeUser {
		if err := e.transport.SendMarkSeen(msg.ConversationID); err != nil {
			log.Printf("WARNING: mark seen for %s failed: %v", msg.ConversationID, err)
		}
	}
}

func (e *Engine) handleMessageSent(data json.RawMessage) {
	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("ERROR: decoding message_sent: %v", err)
		return
	}
	// Server echo of the admin's own message: same dedup rule, never counted
	// unread.
	e.timeline.AppendLive(msg)
	e.conversations.ApplyMessage(msg, false)
}

func (e *Engine) handleMessageSeen(data json.RawMessage) {
	var ev models.MessageSeenEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		log.Printf("ERROR: decoding message_seen: %v", err)
		return
	}

	conversationID := ev.ConversationID
	if conversationID == "" {
		conversationID = e.timeline.ConversationID()
	}
	e.timeline.MarkSeen(conversationID, ev.MessageIDs)
	if ev.ConversationID != "" {
		e.conversations.ResetUnread(ev.ConversationID)
	}
}

func (e *Engine) handleUserTyping(data json.RawMessage) {
	var ev models.TypingEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		log.Printf("ERROR: decoding user_typing: %v", err)
		return
	}
	e.presence.SetTyping(ev.UserID, ev.IsTyping)
}

func (e *Engine) handlePresence(data json.RawMessage, online bool) {
	var ev models.PresenceEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		log.Printf("ERROR: decoding presence event: %v", err)
		return
	}
	switch {
	case len(ev.UserIDs) > 0 && online:
		e.presence.ReplaceOnline(ev.UserIDs)
	case online:
		e.presence.SetOnline(ev.UserID)
	default:
		e.presence.SetOffline(ev.UserID)
	}
}

func (e *Engine) handleConversations(data json.RawMessage) {
	var convs []models.Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		log.Printf("ERROR: decoding conversations snapshot: %v", err)
		return
	}
	e.conversations.Replace(convs)
}

func (e *Engine) handleConversationMessages(data json.RawMessage) {
	var ev models.ConversationMessagesEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		log.Printf("ERROR: decoding conversation_messages: %v", err)
		return
	}
	if !e.timeline.ApplyInitial(ev.ConversationID, ev.Messages) {
		log.Printf("WARNING: discarding stale history for %s", ev.ConversationID)
	}
}

func (e *Engine) handleError(data json.RawMessage) {
	var ev models.ErrorEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		log.Printf("ERROR: decoding error event: %v", err)
		return
	}
	e.lastErr = ev.Message
	log.Printf("ERROR: chat service reported: %s", ev.Message)
}

// OpenConversation selects a conversation, loads its most recent history
// page and, once the load has completed, marks it seen. The lock is not held
// across the REST call; a live push racing the fetch is reconciled by the
// timeline's dedup-by-id merge, and a stale response for an abandoned
// selection is discarded.
func (e *Engine) OpenConversation(ctx context.Context, conversationID string) ([]DayGroup, error) {
	e.timeline.Select(conversationID)

	msgs, err := e.api.GetConversationMessages(ctx, conversationID, config.MessagePageSize, 1)
	if err != nil {
		log.Printf("ERROR: loading history for %s: %v", conversationID, err)
		return nil, err
	}
	if !e.timeline.ApplyInitial(conversationID, msgs) {
		return nil, nil
	}

	// Mark seen only after the load completed: the admin has now actually
	// seen the content. No optimistic decrement on failure.
	if conv, ok := e.conversations.Get(conversationID); ok && conv.UnreadCount > 0 {
		if err := e.api.MarkConversationSeen(ctx, conversationID); err != nil {
			log.Printf("WARNING: mark seen for %s failed: %v", conversationID, err)
		} else {
			e.conversations.ResetUnread(conversationID)
		}
	}

	return e.TimelineGroups(), nil
}

// LoadOlderMessages fetches one more backward page for the open
// conversation. It is a no-op while a load is in flight or when no older
// history remains; a failed fetch releases the guard and leaves hasMoreOlder
// unchanged so scrolling again retries.
func (e *Engine) LoadOlderMessages(ctx context.Context) error {
	conversationID := e.timeline.ConversationID()
	page, ok := e.timeline.BeginOlderLoad()
	if !ok {
		return nil
	}

	msgs, err := e.api.GetConversationMessages(ctx, conversationID, config.MessagePageSize, page)
	if err != nil {
		e.timeline.AbortOlderLoad(conversationID)
		log.Printf("ERROR: loading older messages for %s: %v", conversationID, err)
		return err
	}
	e.timeline.ApplyOlder(conversationID, msgs)
	return nil
}

// Send delivers a message to an end user through the socket. Rejected with
// ErrNotConnected while disconnected.
func (e *Engine) Send(receiverID, text string) error {
	if !e.transport.Connected() {
		return ErrNotConnected
	}
	// The admin stopped typing the moment they sent.
	e.typing.Flush(receiverID, models.SenderTypeUser)
	return e.transport.SendMessage(receiverID, models.SenderTypeUser, text)
}

// NotifyTyping records local typing activity toward a user; the debounced
// stop signal is scheduled by the notifier.
func (e *Engine) NotifyTyping(receiverID string) error {
	if !e.transport.Connected() {
		return ErrNotConnected
	}
	e.typing.Signal(receiverID, models.SenderTypeUser)
	return nil
}

// Contacts fetches the user directory and reconciles it against the live
// conversation list, synthesizing placeholders for users without history.
func (e *Engine) Contacts(ctx context.Context, search string, mode SortMode) ([]models.Conversation, error) {
	users, err := e.api.GetChatUsers(ctx, 1, config.DirectoryPageSize, search)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return MergeDirectory(users, e.conversations.ListAll(SortRecent), e.adminID, mode), nil
}

// Stats fetches the dashboard summary from the REST resource.
func (e *Engine) Stats(ctx context.Context) (*models.ChatStats, error) {
	return e.api.GetChatStats(ctx)
}

// Conversations lists the conversation summaries in the requested order.
func (e *Engine) Conversations(mode SortMode) []models.Conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conversations.ListAll(mode)
}

// TimelineGroups returns the open conversation's messages grouped by
// calendar day, recomputed from the current timeline.
func (e *Engine) TimelineGroups() []DayGroup {
	e.mu.Lock()
	defer e.mu.Unlock()
	return GroupByDay(e.timeline.Messages(), time.Now())
}

// SelectedConversation returns the id of the open conversation, if any.
func (e *Engine) SelectedConversation() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeline.ConversationID()
}

// HasMoreOlder reports whether older history remains for the open
// conversation.
func (e *Engine) HasMoreOlder() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeline.HasMoreOlder()
}

// TotalUnread sums unread counters across all conversations.
func (e *Engine) TotalUnread() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conversations.TotalUnread()
}

// OnlineUsers returns the identities currently online.
func (e *Engine) OnlineUsers() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.presence.OnlineIDs()
}

// TypingUsers returns the identities currently typing at the admin.
func (e *Engine) TypingUsers() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.presence.TypingIDs()
}

// IsOnline reports one identity's presence.
func (e *Engine) IsOnline(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.presence.IsOnline(id)
}

// LastError returns the most recent protocol-level error frame text, or "".
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// HandleDisconnect clears transient typing state when the socket drops. The
// online set is kept and rebuilt by the explicit query after reconnect.
func (e *Engine) HandleDisconnect() {
	e.typing.StopAll()
}
