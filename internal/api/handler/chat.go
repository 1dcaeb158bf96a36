package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samandareo/quick-brand-admin/internal/chatsync"
)

func sortMode(c *gin.Context) chatsync.SortMode {
	if c.Query("sort") == string(chatsync.SortUnread) {
		return chatsync.SortUnread
	}
	return chatsync.SortRecent
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ConnectionState reports the socket state and the last error, if any.
func (h *Handler) ConnectionState(c *gin.Context) {
	resp := gin.H{"state": h.Conn.State()}
	if err := h.Conn.LastError(); err != nil {
		resp["error"] = err.Error()
	}
	if msg := h.Engine.LastError(); msg != "" {
		resp["serviceError"] = msg
	}
	c.JSON(http.StatusOK, resp)
}

// ListConversations serves the conversation summaries, sorted by recency or
// by unread count (?sort=recent|unread).
func (h *Handler) ListConversations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"conversations": h.Engine.Conversations(sortMode(c)),
		"totalUnread":   h.Engine.TotalUnread(),
	})
}

// ListContacts serves the unified contact list: real conversations plus
// synthesized placeholders for directory users without history.
func (h *Handler) ListContacts(c *gin.Context) {
	contacts, err := h.Engine.Contacts(c.Request.Context(), c.Query("search"), sortMode(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

// Timeline serves the open conversation's history grouped by calendar day.
func (h *Handler) Timeline(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"conversationId": h.Engine.SelectedConversation(),
		"hasMoreOlder":   h.Engine.HasMoreOlder(),
		"groups":         h.Engine.TimelineGroups(),
	})
}

// UnreadCount serves the aggregate unread counter.
func (h *Handler) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"totalUnread": h.Engine.TotalUnread()})
}

// Presence serves the online and typing sets.
func (h *Handler) Presence(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"online": h.Engine.OnlineUsers(),
		"typing": h.Engine.TypingUsers(),
	})
}

// Stats proxies the chat dashboard summary.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Engine.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type selectRequest struct {
	ConversationID string `json:"conversationId" binding:"required"`
}

// SelectConversation opens a conversation and returns its first history page.
func (h *Handler) SelectConversation(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	groups, err := h.Engine.OpenConversation(c.Request.Context(), req.ConversationID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conversationId": req.ConversationID,
		"hasMoreOlder":   h.Engine.HasMoreOlder(),
		"groups":         groups,
	})
}

// LoadOlder fetches one more backward page for the open conversation. A
// request while a load is in flight, or past the end of history, is a no-op.
func (h *Handler) LoadOlder(c *gin.Context) {
	if err := h.Engine.LoadOlderMessages(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hasMoreOlder": h.Engine.HasMoreOlder(),
		"groups":       h.Engine.TimelineGroups(),
	})
}

type sendRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Message    string `json:"message" binding:"required"`
}

// SendMessage forwards an outgoing message through the socket. Rejected
// explicitly while disconnected.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Engine.Send(req.ReceiverID, req.Message); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, chatsync.ErrNotConnected) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

type typingRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

// Typing records local typing activity; the debounced stop signal is
// scheduled by the engine.
func (h *Handler) Typing(c *gin.Context) {
	var req typingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Engine.NotifyTyping(req.ReceiverID); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
