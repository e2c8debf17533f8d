package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
	pkgcache "github.com/fitpulse/fitpulse-backend/pkg/cache"
)

// MockConversationRepository is a mock implementation of ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) GetOrCreate(p1 uint64, k1 domain.Role, p2 uint64, k2 domain.Role) (*domain.Conversation, error) {
	args := m.Called(p1, k1, p2, k2)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) FindByID(id uint64) (*domain.Conversation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) FindByParticipant(userID uint64) ([]*domain.Conversation, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) TotalUnread(userID uint64) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockMessageRepository is a mock implementation of MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(msg *domain.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockMessageRepository) FindByID(id uint64) (*domain.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByConversation(conversationID, viewerID uint64, page, limit int) ([]*domain.Message, int64, error) {
	args := m.Called(conversationID, viewerID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) MarkDelivered(messageID, receiverID uint64) error {
	args := m.Called(messageID, receiverID)
	return args.Error(0)
}

func (m *MockMessageRepository) MarkRead(messageID, receiverID uint64) error {
	args := m.Called(messageID, receiverID)
	return args.Error(0)
}

func (m *MockMessageRepository) MarkAllRead(conversationID, participantID uint64) (int64, error) {
	args := m.Called(conversationID, participantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) MarkFailed(messageID, senderID uint64) error {
	args := m.Called(messageID, senderID)
	return args.Error(0)
}

func (m *MockMessageRepository) SoftDeleteBySender(messageID, senderID uint64) error {
	args := m.Called(messageID, senderID)
	return args.Error(0)
}

func (m *MockMessageRepository) LastContent(conversationID uint64) (string, error) {
	args := m.Called(conversationID)
	return args.String(0), args.Error(1)
}

// MockMemberRepository is a mock implementation of MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) FindByID(id uint64) (*domain.Member, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) Role(id uint64) (domain.Role, error) {
	args := m.Called(id)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *MockMemberRepository) IsAdmin(id uint64) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

// MockConnectionRepository is a mock implementation of ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) MayMessage(senderID, receiverID uint64) (bool, error) {
	args := m.Called(senderID, receiverID)
	return args.Bool(0), args.Error(1)
}

func (m *MockConnectionRepository) IsBlocked(blockerID, blockedID uint64) (bool, error) {
	args := m.Called(blockerID, blockedID)
	return args.Bool(0), args.Error(1)
}

// MockReactionRepository is a mock implementation of ReactionRepository
type MockReactionRepository struct {
	mock.Mock
}

func (m *MockReactionRepository) Toggle(messageID, reactorID uint64, glyph string) (domain.ToggleAction, error) {
	args := m.Called(messageID, reactorID, glyph)
	return args.Get(0).(domain.ToggleAction), args.Error(1)
}

func (m *MockReactionRepository) Summary(messageID uint64) ([]domain.ReactionSummaryItem, error) {
	args := m.Called(messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReactionSummaryItem), args.Error(1)
}

// recordingEmitter captures emitted events for assertions
type recordingEmitter struct {
	mu     sync.Mutex
	events []emittedEvent
}

type emittedEvent struct {
	MemberID  uint64
	EventType string
	Payload   interface{}
}

func (e *recordingEmitter) Emit(memberID uint64, eventType string, payload interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emittedEvent{MemberID: memberID, EventType: eventType, Payload: payload})
}

func (e *recordingEmitter) all() []emittedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]emittedEvent, len(e.events))
	copy(out, e.events)
	return out
}

// fakeConversationStore is an in-memory ConversationRepository with real
// get-or-create race semantics, for concurrency tests
type fakeConversationStore struct {
	mu     sync.Mutex
	nextID uint64
	byKey  map[string]*domain.Conversation
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{byKey: make(map[string]*domain.Conversation)}
}

func (f *fakeConversationStore) GetOrCreate(p1 uint64, k1 domain.Role, p2 uint64, k2 domain.Role) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := domain.PairKeyFor(p1, p2)
	if conv, ok := f.byKey[key]; ok {
		return conv, nil
	}
	f.nextID++
	conv := &domain.Conversation{
		ID:               f.nextID,
		PairKey:          key,
		Participant1ID:   p1,
		Participant1Kind: k1,
		Participant2ID:   p2,
		Participant2Kind: k2,
	}
	f.byKey[key] = conv
	return conv, nil
}

func (f *fakeConversationStore) FindByID(id uint64) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conv := range f.byKey {
		if conv.ID == id {
			return conv, nil
		}
	}
	return nil, common.ErrConversationNotFound
}

func (f *fakeConversationStore) FindByParticipant(userID uint64) ([]*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Conversation
	for _, conv := range f.byKey {
		if conv.HasParticipant(userID) {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (f *fakeConversationStore) TotalUnread(userID uint64) (int64, error) {
	return 0, nil
}

// recordingCache is an in-memory cache.Service that tracks which users were
// invalidated
type recordingCache struct {
	mu            sync.Mutex
	invalidated   []uint64
	badges        map[uint64]int64
	conversations map[uint64][]byte
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		badges:        make(map[uint64]int64),
		conversations: make(map[uint64][]byte),
	}
}

func (c *recordingCache) Get(ctx context.Context, key string, dest interface{}) error {
	return pkgcache.ErrCacheMiss
}

func (c *recordingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (c *recordingCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}

func (c *recordingCache) GetUnreadBadge(ctx context.Context, userID uint64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if count, ok := c.badges[userID]; ok {
		return count, nil
	}
	return 0, pkgcache.ErrCacheMiss
}

func (c *recordingCache) SetUnreadBadge(ctx context.Context, userID uint64, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.badges[userID] = count
	return nil
}

func (c *recordingCache) GetConversations(ctx context.Context, userID uint64) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if data, ok := c.conversations[userID]; ok {
		return data, nil
	}
	return nil, pkgcache.ErrCacheMiss
}

func (c *recordingCache) SetConversations(ctx context.Context, userID uint64, data interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conversations[userID] = b
	return nil
}

func (c *recordingCache) InvalidateUser(ctx context.Context, userIDs ...uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		c.invalidated = append(c.invalidated, id)
		delete(c.badges, id)
		delete(c.conversations, id)
	}
	return nil
}

func (c *recordingCache) invalidatedIDs() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uint64, len(c.invalidated))
	copy(out, c.invalidated)
	return out
}

// failingNotificationStore simulates a broken notifications table
type failingNotificationStore struct {
	err error
}

func (s *failingNotificationStore) Create(n *domain.Notification) error {
	return s.err
}
