package socket_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samandareo/quick-brand-admin/internal/models"
	"github.com/samandareo/quick-brand-admin/internal/socket"
)

var upgrader = websocket.Upgrader{}

// chatServer is a minimal stand-in for the chat service's socket endpoint:
// it records the bearer credential and every frame an admin client sends.
type chatServer struct {
	srv *httptest.Server

	mu     sync.Mutex
	auth   string
	frames []models.Envelope
	conns  []*websocket.Conn
}

func newChatServer(t *testing.T) *chatServer {
	t.Helper()
	cs := &chatServer{}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		cs.auth = r.Header.Get("Authorization")
		cs.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cs.mu.Lock()
		cs.conns = append(cs.conns, conn)
		cs.mu.Unlock()

		for {
			var env models.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			cs.mu.Lock()
			cs.frames = append(cs.frames, env)
			cs.mu.Unlock()
		}
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func (cs *chatServer) wsURL() string {
	return "ws" + strings.TrimPrefix(cs.srv.URL, "http")
}

func (cs *chatServer) bearer() string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.auth
}

func (cs *chatServer) recorded() []models.Envelope {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]models.Envelope(nil), cs.frames...)
}

func (cs *chatServer) push(t *testing.T, env models.Envelope) {
	t.Helper()
	waitFor(t, func() bool {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		return len(cs.conns) > 0
	})
	cs.mu.Lock()
	defer cs.mu.Unlock()
	require.NoError(t, cs.conns[len(cs.conns)-1].WriteJSON(env))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestClient_ConnectSkippedWithoutIdentity(t *testing.T) {
	client := socket.NewClient("ws://127.0.0.1:1/chat", "", "")
	require.NoError(t, client.Connect())
	assert.Equal(t, socket.StateDisconnected, client.State())
	assert.False(t, client.Connected())
}

func TestClient_SendRejectedWhileDisconnected(t *testing.T) {
	client := socket.NewClient("ws://127.0.0.1:1/chat", "admin", "tok")
	assert.ErrorIs(t, client.SendMessage("u1", "user", "hi"), socket.ErrNotConnected)
	assert.ErrorIs(t, client.SendMarkSeen("admin_u1"), socket.ErrNotConnected)
}

func TestClient_ConnectSendsBearerAndBootstraps(t *testing.T) {
	server := newChatServer(t)
	client := socket.NewClient(server.wsURL(), "admin", "tok-123")

	require.NoError(t, client.Connect())
	defer client.Disconnect()
	assert.True(t, client.Connected())

	// Every fresh connection re-requests the conversation list and the
	// online set.
	waitFor(t, func() bool { return len(server.recorded()) >= 2 })
	frames := server.recorded()
	assert.Equal(t, "Bearer tok-123", server.bearer())
	assert.Equal(t, models.EventGetConversations, frames[0].Event)
	assert.Equal(t, models.EventGetOnlineUsers, frames[1].Event)
	assert.NotEmpty(t, frames[0].RequestID)
	assert.NotEmpty(t, frames[1].RequestID)
}

func TestClient_OutgoingFrameShapes(t *testing.T) {
	server := newChatServer(t)
	client := socket.NewClient(server.wsURL(), "admin", "tok")
	require.NoError(t, client.Connect())
	defer client.Disconnect()

	require.NoError(t, client.SendMessage("u1", "user", "salom"))
	require.NoError(t, client.SendTypingStart("u1", "user"))
	require.NoError(t, client.SendMarkSeen("admin_u1"))
	require.NoError(t, client.RequestConversationMessages("admin_u1", 20, 40))

	waitFor(t, func() bool { return len(server.recorded()) >= 6 })
	frames := server.recorded()[2:] // past the bootstrap pair

	assert.Equal(t, models.EventSendMessage, frames[0].Event)
	var sendPayload models.SendMessagePayload
	require.NoError(t, json.Unmarshal(frames[0].Data, &sendPayload))
	assert.Equal(t, models.SendMessagePayload{ReceiverID: "u1", Message: "salom", ReceiverType: "user"}, sendPayload)

	assert.Equal(t, models.EventTypingStart, frames[1].Event)
	assert.Equal(t, models.EventMarkSeen, frames[2].Event)

	assert.Equal(t, models.EventGetConversationMessages, frames[3].Event)
	var pagePayload models.GetMessagesPayload
	require.NoError(t, json.Unmarshal(frames[3].Data, &pagePayload))
	assert.Equal(t, 20, pagePayload.Limit)
	assert.Equal(t, 40, pagePayload.Skip)
}

func TestClient_DispatchesInboundEventsInOrder(t *testing.T) {
	server := newChatServer(t)
	client := socket.NewClient(server.wsURL(), "admin", "tok")

	var mu sync.Mutex
	var events []string
	client.SetEventHandler(func(event string, data json.RawMessage) {
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
	})

	require.NoError(t, client.Connect())
	defer client.Disconnect()

	server.push(t, models.Envelope{Event: models.EventUserOnline, Data: json.RawMessage(`{"userId":"u1"}`)})
	server.push(t, models.Envelope{Event: models.EventNewMessage, Data: json.RawMessage(`{"_id":"m1"}`)})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 2
	})
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{models.EventUserOnline, models.EventNewMessage}, events)
}

func TestClient_AuthRejectionIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	var mu sync.Mutex
	var states []socket.State
	client := socket.NewClient("ws"+strings.TrimPrefix(srv.URL, "http"), "admin", "expired")
	client.SetStateHandler(func(state socket.State, err error) {
		mu.Lock()
		states = append(states, state)
		mu.Unlock()
	})

	err := client.Connect()
	assert.ErrorIs(t, err, socket.ErrAuthFailed)
	assert.Equal(t, socket.StateError, client.State())
	assert.ErrorIs(t, client.LastError(), socket.ErrAuthFailed)

	// No background retry follows an authentication failure.
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []socket.State{socket.StateConnecting, socket.StateError}, states)
}

func TestClient_DisconnectIsQuiet(t *testing.T) {
	server := newChatServer(t)
	client := socket.NewClient(server.wsURL(), "admin", "tok")

	var mu sync.Mutex
	var states []socket.State
	client.SetStateHandler(func(state socket.State, err error) {
		mu.Lock()
		states = append(states, state)
		mu.Unlock()
	})

	require.NoError(t, client.Connect())
	client.Disconnect()

	assert.Equal(t, socket.StateDisconnected, client.State())
	assert.ErrorIs(t, client.SendMessage("u1", "user", "hi"), socket.ErrNotConnected)

	// A deliberate disconnect never spawns the reconnect loop.
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []socket.State{socket.StateConnecting, socket.StateConnected, socket.StateDisconnected}, states)

	// Second disconnect is a no-op.
	client.Disconnect()
}
