package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/samandareo/quick-brand-admin/internal/chatsync"
	"github.com/samandareo/quick-brand-admin/internal/socket"
)

// Handler exposes the chat engine's derived state to the admin UI over a
// local HTTP surface. The stores stay owned by the engine; everything served
// here is a read-only snapshot, and user actions are forwarded to the named
// engine methods.
type Handler struct {
	Engine *chatsync.Engine
	Conn   *socket.Client
}

func NewHandler(engine *chatsync.Engine, conn *socket.Client) *Handler {
	return &Handler{Engine: engine, Conn: conn}
}

// RegisterRoutes mounts the chat routes on the router.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	chat := r.Group("/chat")
	{
		chat.GET("/state", h.ConnectionState)
		chat.GET("/conversations", h.ListConversations)
		chat.GET("/contacts", h.ListContacts)
		chat.GET("/timeline", h.Timeline)
		chat.GET("/unread", h.UnreadCount)
		chat.GET("/presence", h.Presence)
		chat.GET("/stats", h.Stats)

		chat.POST("/select", h.SelectConversation)
		chat.POST("/older", h.LoadOlder)
		chat.POST("/send", h.SendMessage)
		chat.POST("/typing", h.Typing)
	}
}
