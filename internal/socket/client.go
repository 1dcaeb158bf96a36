package socket

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/samandareo/quick-brand-admin/internal/config"
	"github.com/samandareo/quick-brand-admin/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16
	sendBuffer     = 256
)

// State is the observable connection state other components gate on.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateError        State = "error"
)

var (
	// ErrAuthFailed marks a terminal authentication failure. It is never
	// retried; the admin has to log in again.
	ErrAuthFailed = errors.New("socket: authentication rejected")

	// ErrNotConnected rejects outgoing frames while the socket is down.
	ErrNotConnected = errors.New("socket: not connected")

	// ErrRetriesExhausted is surfaced after the bounded reconnect attempts
	// all failed.
	ErrRetriesExhausted = errors.New("socket: reconnect attempts exhausted")

	errSendBufferFull = errors.New("socket: send buffer full")
)

// EventHandler receives every inbound protocol frame in delivery order.
type EventHandler func(event string, data json.RawMessage)

// StateHandler observes connection state transitions.
type StateHandler func(state State, err error)

// Client owns the single persistent connection to the chat service for one
// authenticated admin identity. It dials with the bearer credential, runs the
// read and write pumps, re-issues the two bootstrap requests after every
// successful (re)connect, and retries dropped connections a bounded number
// of times with a fixed delay.
type Client struct {
	url     string
	token   string
	adminID string

	handler EventHandler
	onState StateHandler

	reconnectDelay time.Duration
	maxReconnect   int

	mu      sync.Mutex
	conn    *websocket.Conn
	send    chan models.Envelope
	done    chan struct{}
	state   State
	lastErr error
	closing bool
}

// NewClient prepares a client; Connect establishes the connection.
func NewClient(socketURL, adminID, token string) *Client {
	return &Client{
		url:            socketURL,
		token:          token,
		adminID:        adminID,
		state:          StateDisconnected,
		reconnectDelay: config.ReconnectDelay,
		maxReconnect:   config.MaxReconnectAttempts,
	}
}

// SetEventHandler registers the inbound frame consumer. Must be called
// before Connect.
func (c *Client) SetEventHandler(h EventHandler) {
	c.handler = h
}

// SetStateHandler registers an observer for state transitions.
func (c *Client) SetStateHandler(h StateHandler) {
	c.onState = h
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether outgoing frames would currently be accepted.
func (c *Client) Connected() bool {
	return c.State() == StateConnected
}

// LastError returns the error behind the current state, if any.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Connect dials the chat service. A missing identity or credential makes it
// a no-op: there is nothing to authenticate as. At most one connection is
// ever active; calling Connect while connected or connecting does nothing.
// An authentication rejection is terminal and is not retried; any other dial
// failure starts the bounded reconnect loop in the background.
func (c *Client) Connect() error {
	if c.adminID == "" || c.token == "" {
		log.Println("WARNING: socket connect skipped: no authenticated identity")
		return nil
	}

	err := c.dial()
	if err != nil && !errors.Is(err, ErrAuthFailed) {
		go c.reconnectLoop()
	}
	return err
}

func (c *Client) dial() error {
	c.mu.Lock()
	if c.state == StateConnected || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.closing = false
	c.mu.Unlock()
	c.notify(StateConnecting, nil)

	dialer := websocket.Dialer{HandshakeTimeout: config.ConnectTimeout}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, resp, err := dialer.Dial(c.url, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			c.setState(StateError, ErrAuthFailed)
			return ErrAuthFailed
		}
		c.setState(StateDisconnected, err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.send = make(chan models.Envelope, sendBuffer)
	c.done = make(chan struct{})
	c.state = StateConnected
	c.lastErr = nil
	send, done := c.send, c.done
	c.mu.Unlock()
	c.notify(StateConnected, nil)

	go c.writePump(conn, send, done)
	go c.readPump(conn)

	c.bootstrap()
	return nil
}

// Disconnect tears the connection down and stops the pumps. Used on logout
// and shutdown; no reconnect follows.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return
	}
	c.closing = true
	conn := c.conn
	done := c.done
	c.conn = nil
	c.send = nil
	c.done = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if done != nil {
		close(done)
	}
	if conn != nil {
		conn.Close()
	}
	c.notify(StateDisconnected, nil)
}

// --- Outgoing frames ---

// SendMessage delivers a chat message to a receiver.
func (c *Client) SendMessage(receiverID, receiverType, text string) error {
	return c.enqueue(models.EventSendMessage, models.SendMessagePayload{
		ReceiverID:   receiverID,
		Message:      text,
		ReceiverType: receiverType,
	})
}

// SendTypingStart signals the admin started typing at a receiver.
func (c *Client) SendTypingStart(receiverID, receiverType string) error {
	return c.enqueue(models.EventTypingStart, models.TypingPayload{
		ReceiverID:   receiverID,
		ReceiverType: receiverType,
	})
}

// SendTypingStop signals the admin stopped typing.
func (c *Client) SendTypingStop(receiverID, receiverType string) error {
	return c.enqueue(models.EventTypingStop, models.TypingPayload{
		ReceiverID:   receiverID,
		ReceiverType: receiverType,
	})
}

// SendMarkSeen asks the server to reset a conversation's unread counter.
func (c *Client) SendMarkSeen(conversationID string) error {
	return c.enqueue(models.EventMarkSeen, models.MarkSeenPayload{
		ConversationID: conversationID,
	})
}

// RequestConversations asks for the full conversation snapshot.
func (c *Client) RequestConversations() error {
	return c.enqueue(models.EventGetConversations, nil)
}

// RequestOnlineUsers asks for the full online user set.
func (c *Client) RequestOnlineUsers() error {
	return c.enqueue(models.EventGetOnlineUsers, nil)
}

// RequestConversationMessages requests one history page over the socket.
func (c *Client) RequestConversationMessages(conversationID string, limit, skip int) error {
	return c.enqueue(models.EventGetConversationMessages, models.GetMessagesPayload{
		ConversationID: conversationID,
		Limit:          limit,
		Skip:           skip,
	})
}

func (c *Client) enqueue(event string, payload interface{}) error {
	var data json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		data = b
	}

	c.mu.Lock()
	send := c.send
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || send == nil {
		return ErrNotConnected
	}

	// send is never closed; a drop racing this point leaves the frame in an
	// abandoned buffer instead of panicking.
	env := models.Envelope{
		Event:     event,
		RequestID: uuid.NewString(),
		Data:      data,
	}
	select {
	case send <- env:
		return nil
	default:
		return errSendBufferFull
	}
}

// bootstrap issues the two requests every fresh connection starts with, so
// the conversation list and the online set are rebuilt after each reconnect.
func (c *Client) bootstrap() {
	if err := c.RequestConversations(); err != nil {
		log.Printf("WARNING: bootstrap get_conversations failed: %v", err)
	}
	if err := c.RequestOnlineUsers(); err != nil {
		log.Printf("WARNING: bootstrap get_online_users failed: %v", err)
	}
}

// --- Pumps ---

func (c *Client) readPump(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ERROR: socket read: %v", err)
			}
			c.handleDrop(err)
			return
		}

		var env models.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("ERROR: decoding socket frame: %v", err)
			continue
		}
		if c.handler != nil {
			c.handler(env.Event, env.Data)
		}
	}
}

func (c *Client) writePump(conn *websocket.Conn, send chan models.Envelope, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case env := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(env)
			if err != nil {
				log.Printf("ERROR: encoding socket frame: %v", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleDrop runs when the read pump dies. A deliberate Disconnect ends
// here quietly; a remote drop triggers the bounded reconnect loop.
func (c *Client) handleDrop(cause error) {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return
	}
	done := c.done
	c.conn = nil
	c.send = nil
	c.done = nil
	c.state = StateDisconnected
	c.lastErr = cause
	c.mu.Unlock()

	if done != nil {
		close(done)
	}
	c.notify(StateDisconnected, cause)

	go c.reconnectLoop()
}

func (c *Client) reconnectLoop() {
	for attempt := 1; attempt <= c.maxReconnect; attempt++ {
		time.Sleep(c.reconnectDelay)

		c.mu.Lock()
		closing := c.closing
		c.mu.Unlock()
		if closing {
			return
		}

		log.Printf("WARNING: socket reconnect attempt %d/%d", attempt, c.maxReconnect)
		err := c.dial()
		if err == nil {
			return
		}
		if errors.Is(err, ErrAuthFailed) {
			return
		}
	}
	c.setState(StateError, ErrRetriesExhausted)
}

func (c *Client) setState(state State, err error) {
	c.mu.Lock()
	c.state = state
	c.lastErr = err
	c.mu.Unlock()
	c.notify(state, err)
}

func (c *Client) notify(state State, err error) {
	if c.onState != nil {
		c.onState(state, err)
	}
}
