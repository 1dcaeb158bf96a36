package chatsync_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/samandareo/quick-brand-admin/internal/models"
)

// MockTransport is a testify mock over the chatsync.Transport interface.
type MockTransport struct {
	mock.Mock

	mu        sync.Mutex
	connected bool
}

func newMockTransport(connected bool) *MockTransport {
	return &MockTransport{connected: connected}
}

func (m *MockTransport) SetConnected(v bool) {
	m.mu.Lock()
	m.connected = v
	m.mu.Unlock()
}

func (m *MockTransport) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockTransport) SendMessage(receiverID, receiverType, text string) error {
	args := m.Called(receiverID, receiverType, text)
	return args.Error(0)
}

func (m *MockTransport) SendMarkSeen(conversationID string) error {
	args := m.Called(conversationID)
	return args.Error(0)
}

func (m *MockTransport) SendTypingStart(receiverID, receiverType string) error {
	args := m.Called(receiverID, receiverType)
	return args.Error(0)
}

func (m *MockTransport) SendTypingStop(receiverID, receiverType string) error {
	args := m.Called(receiverID, receiverType)
	return args.Error(0)
}

// fakeHistoryAPI is a hand-rolled HistoryAPI with pluggable behavior per
// method, for tests that need to control response timing and content.
type fakeHistoryAPI struct {
	getMessages func(ctx context.Context, conversationID string, limit, page int) ([]models.Message, error)
	markSeen    func(ctx context.Context, conversationID string) error
	getUsers    func(ctx context.Context, page, limit int, search string) ([]models.ChatUser, error)
	getStats    func(ctx context.Context) (*models.ChatStats, error)

	mu            sync.Mutex
	markSeenCalls []string
}

func (f *fakeHistoryAPI) GetConversationMessages(ctx context.Context, conversationID string, limit, page int) ([]models.Message, error) {
	if f.getMessages == nil {
		return nil, nil
	}
	return f.getMessages(ctx, conversationID, limit, page)
}

func (f *fakeHistoryAPI) MarkConversationSeen(ctx context.Context, conversationID string) error {
	f.mu.Lock()
	f.markSeenCalls = append(f.markSeenCalls, conversationID)
	f.mu.Unlock()
	if f.markSeen == nil {
		return nil
	}
	return f.markSeen(ctx, conversationID)
}

func (f *fakeHistoryAPI) GetChatUsers(ctx context.Context, page, limit int, search string) ([]models.ChatUser, error) {
	if f.getUsers == nil {
		return nil, nil
	}
	return f.getUsers(ctx, page, limit, search)
}

func (f *fakeHistoryAPI) GetChatStats(ctx context.Context) (*models.ChatStats, error) {
	if f.getStats == nil {
		return nil, nil
	}
	return f.getStats(ctx)
}

func (f *fakeHistoryAPI) seenCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.markSeenCalls...)
}
