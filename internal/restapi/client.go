package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samandareo/quick-brand-admin/internal/models"
)

const defaultTimeout = 30 * time.Second

// Client is the authenticated HTTP+JSON client for the chat REST resources.
// Every request carries the admin bearer token; the transport's own timeout
// bounds each call.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a REST client rooted at baseURL.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the uniform envelope the platform backend wraps every
// payload in.
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, query map[string]string) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		params := url.Values{}
		for k, v := range query {
			params.Set(k, v)
		}
		u += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Success {
		msg := envelope.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("api error (HTTP %d): %s", resp.StatusCode, msg)
	}
	return envelope.Data, nil
}

// messagesPage is the paginated history payload.
type messagesPage struct {
	Messages []models.Message `json:"messages"`
}

// GetConversationMessages fetches one backward page of a conversation's
// history. Pages count from 1; page 1 is the most recent window.
func (c *Client) GetConversationMessages(ctx context.Context, conversationID string, limit, page int) ([]models.Message, error) {
	data, err := c.doRequest(ctx, http.MethodGet,
		"/api/chats/conversations/"+url.PathEscape(conversationID)+"/messages",
		nil,
		map[string]string{
			"limit": strconv.Itoa(limit),
			"page":  strconv.Itoa(page),
		})
	if err != nil {
		return nil, err
	}

	var payload messagesPage
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return payload.Messages, nil
}

// MarkConversationSeen resets the conversation's unread counter server-side.
// The call is idempotent; duplicate invocations are harmless.
func (c *Client) MarkConversationSeen(ctx context.Context, conversationID string) error {
	_, err := c.doRequest(ctx, http.MethodPut,
		"/api/chats/conversations/"+url.PathEscape(conversationID)+"/seen", nil, nil)
	return err
}

type usersPage struct {
	Users      []models.ChatUser `json:"users"`
	TotalPages int               `json:"totalPages"`
}

// GetChatUsers fetches one page of the chat user directory. search filters by
// name or phone; an empty search returns everyone.
func (c *Client) GetChatUsers(ctx context.Context, page, limit int, search string) ([]models.ChatUser, error) {
	query := map[string]string{
		"page":  strconv.Itoa(page),
		"limit": strconv.Itoa(limit),
	}
	if search != "" {
		query["search"] = search
	}

	data, err := c.doRequest(ctx, http.MethodGet, "/api/chats/users", nil, query)
	if err != nil {
		return nil, err
	}

	var payload usersPage
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return payload.Users, nil
}

// GetChatStats fetches the dashboard summary.
func (c *Client) GetChatStats(ctx context.Context) (*models.ChatStats, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/chats/stats", nil, nil)
	if err != nil {
		return nil, err
	}

	var stats models.ChatStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &stats, nil
}

// GetUnreadCount fetches the server-side total unread count.
func (c *Client) GetUnreadCount(ctx context.Context) (int, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/chats/unread-count", nil, nil)
	if err != nil {
		return 0, err
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("decode unread count: %w", err)
	}
	return payload.Count, nil
}

// GetConversationBetween fetches the conversation between two identities, or
// nil when none exists yet.
func (c *Client) GetConversationBetween(ctx context.Context, userID, adminID string) (*models.Conversation, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/chats/conversations/between", nil, map[string]string{
		"userId":  userID,
		"adminId": adminID,
	})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var conv models.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return &conv, nil
}
