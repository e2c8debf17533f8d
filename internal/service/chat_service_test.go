package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
)

func newChatServiceForTest(
	convRepo *MockConversationRepository,
	msgRepo *MockMessageRepository,
	memberRepo *MockMemberRepository,
	gate *MockConnectionRepository,
	emitter NotificationEmitter,
) ChatService {
	return NewChatService(convRepo, msgRepo, memberRepo, gate, nil, emitter, nil)
}

func TestGetOrCreateConversation_Self(t *testing.T) {
	convRepo := new(MockConversationRepository)
	memberRepo := new(MockMemberRepository)
	svc := newChatServiceForTest(convRepo, new(MockMessageRepository), memberRepo, new(MockConnectionRepository), nil)

	_, err := svc.GetOrCreateConversation(7, 7)

	assert.ErrorIs(t, err, common.ErrSelfConversation)
	convRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrCreateConversation_UnknownPeer(t *testing.T) {
	convRepo := new(MockConversationRepository)
	memberRepo := new(MockMemberRepository)
	memberRepo.On("Role", uint64(1)).Return(domain.RoleUser, nil)
	memberRepo.On("Role", uint64(999)).Return(domain.Role(""), common.ErrReceiverNotFound)

	svc := newChatServiceForTest(convRepo, new(MockMessageRepository), memberRepo, new(MockConnectionRepository), nil)

	_, err := svc.GetOrCreateConversation(1, 999)

	assert.ErrorIs(t, err, common.ErrReceiverNotFound)
	convRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrCreateConversation_Success(t *testing.T) {
	convRepo := new(MockConversationRepository)
	memberRepo := new(MockMemberRepository)
	memberRepo.On("Role", uint64(3)).Return(domain.RoleTrainer, nil)
	memberRepo.On("Role", uint64(2)).Return(domain.RoleUser, nil)

	want := &domain.Conversation{ID: 10, PairKey: "2:3"}
	convRepo.On("GetOrCreate", uint64(3), domain.RoleTrainer, uint64(2), domain.RoleUser).Return(want, nil)

	svc := newChatServiceForTest(convRepo, new(MockMessageRepository), memberRepo, new(MockConnectionRepository), nil)

	conv, err := svc.GetOrCreateConversation(3, 2)

	assert.NoError(t, err)
	assert.Equal(t, uint64(10), conv.ID)
	convRepo.AssertExpectations(t)
}

// Concurrent callers on the same pair, in either order, must converge on one
// conversation row.
func TestGetOrCreateConversation_ConcurrentConvergence(t *testing.T) {
	store := newFakeConversationStore()
	memberRepo := new(MockMemberRepository)
	memberRepo.On("Role", mock.Anything).Return(domain.RoleUser, nil)

	svc := NewChatService(store, new(MockMessageRepository), memberRepo, new(MockConnectionRepository), nil, nil, nil)

	const n = 32
	results := make([]*domain.Conversation, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var conv *domain.Conversation
			var err error
			if i%2 == 0 {
				conv, err = svc.GetOrCreateConversation(5, 9)
			} else {
				conv, err = svc.GetOrCreateConversation(9, 5)
			}
			assert.NoError(t, err)
			results[i] = conv
		}(i)
	}
	wg.Wait()

	for _, conv := range results {
		assert.Equal(t, results[0].ID, conv.ID)
		assert.Equal(t, "5:9", conv.PairKey)
	}
}

func TestSendMessage_EmptyContent(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	svc := newChatServiceForTest(new(MockConversationRepository), msgRepo, new(MockMemberRepository), new(MockConnectionRepository), nil)

	_, err := svc.SendMessage(1, 10, &domain.SendMessageRequest{Content: "   "})

	assert.ErrorIs(t, err, common.ErrEmptyContent)
	msgRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestSendMessage_AdminKindRejected(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	svc := newChatServiceForTest(new(MockConversationRepository), msgRepo, new(MockMemberRepository), new(MockConnectionRepository), nil)

	_, err := svc.SendMessage(1, 10, &domain.SendMessageRequest{Content: "hi", Kind: domain.KindAdmin})

	assert.ErrorIs(t, err, common.ErrInvalidInput)
	msgRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestSendMessage_NotParticipant(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindByID", uint64(10)).Return(&domain.Conversation{
		ID: 10, Participant1ID: 1, Participant2ID: 2,
	}, nil)

	msgRepo := new(MockMessageRepository)
	svc := newChatServiceForTest(convRepo, msgRepo, new(MockMemberRepository), new(MockConnectionRepository), nil)

	_, err := svc.SendMessage(99, 10, &domain.SendMessageRequest{Content: "hi"})

	assert.ErrorIs(t, err, common.ErrNotParticipant)
	msgRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestSendMessage_GateBlocked(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindByID", uint64(10)).Return(&domain.Conversation{
		ID: 10, Participant1ID: 1, Participant2ID: 2,
	}, nil)

	gate := new(MockConnectionRepository)
	gate.On("MayMessage", uint64(1), uint64(2)).Return(false, nil)

	msgRepo := new(MockMessageRepository)
	svc := newChatServiceForTest(convRepo, msgRepo, new(MockMemberRepository), gate, nil)

	_, err := svc.SendMessage(1, 10, &domain.SendMessageRequest{Content: "hi"})

	assert.ErrorIs(t, err, common.ErrMessagingBlocked)
	msgRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestSendMessage_Success(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindByID", uint64(10)).Return(&domain.Conversation{
		ID: 10, Participant1ID: 1, Participant2ID: 2,
	}, nil)

	gate := new(MockConnectionRepository)
	gate.On("MayMessage", uint64(1), uint64(2)).Return(true, nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("Create", mock.MatchedBy(func(m *domain.Message) bool {
		return m.ConversationID == 10 && m.SenderID == 1 && m.ReceiverID == 2 && m.Kind == domain.KindText
	})).Run(func(args mock.Arguments) {
		stored := args.Get(0).(*domain.Message)
		stored.ID = 55
		stored.DeliveryStatus = domain.StatusSent
	}).Return(nil)

	emitter := &recordingEmitter{}
	svc := newChatServiceForTest(convRepo, msgRepo, new(MockMemberRepository), gate, emitter)

	resp, err := svc.SendMessage(1, 10, &domain.SendMessageRequest{Content: "see you at 6"})

	assert.NoError(t, err)
	assert.Equal(t, uint64(55), resp.ID)
	assert.Equal(t, domain.StatusSent, resp.DeliveryStatus)

	events := emitter.all()
	if assert.Len(t, events, 1) {
		assert.Equal(t, uint64(2), events[0].MemberID)
		assert.Equal(t, domain.NotificationNewMessage, events[0].EventType)
	}
	msgRepo.AssertExpectations(t)
}

func TestSendMessage_StoreErrorPropagates(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindByID", uint64(10)).Return(&domain.Conversation{
		ID: 10, Participant1ID: 1, Participant2ID: 2,
	}, nil)

	gate := new(MockConnectionRepository)
	gate.On("MayMessage", uint64(1), uint64(2)).Return(true, nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("Create", mock.Anything).Return(errors.New("connection reset"))

	emitter := &recordingEmitter{}
	svc := newChatServiceForTest(convRepo, msgRepo, new(MockMemberRepository), gate, emitter)

	_, err := svc.SendMessage(1, 10, &domain.SendMessageRequest{Content: "hi"})

	assert.Error(t, err)
	assert.Empty(t, emitter.all())
}

// A failed transition reverses the receiver's unread increment, so the
// receiver's cached badge must drop along with the sender's.
func TestMarkFailed_InvalidatesBothBadges(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	msgRepo.On("FindByID", uint64(55)).Return(&domain.Message{
		ID: 55, ConversationID: 10, SenderID: 1, ReceiverID: 2,
	}, nil)
	msgRepo.On("MarkFailed", uint64(55), uint64(1)).Return(nil)

	cache := newRecordingCache()
	svc := NewChatService(new(MockConversationRepository), msgRepo, new(MockMemberRepository), new(MockConnectionRepository), nil, nil, cache)

	assert.NoError(t, svc.MarkFailed(55, 1))
	assert.ElementsMatch(t, []uint64{1, 2}, cache.invalidatedIDs())
	msgRepo.AssertExpectations(t)
}

func TestMarkFailed_UnknownMessage(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	msgRepo.On("FindByID", uint64(404)).Return(nil, errors.New("record not found"))

	svc := newChatServiceForTest(new(MockConversationRepository), msgRepo, new(MockMemberRepository), new(MockConnectionRepository), nil)

	assert.ErrorIs(t, svc.MarkFailed(404, 1), common.ErrMessageNotFound)
	msgRepo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything)
}

func TestMarkRead_Delegates(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	msgRepo.On("MarkRead", uint64(55), uint64(2)).Return(nil)

	svc := newChatServiceForTest(new(MockConversationRepository), msgRepo, new(MockMemberRepository), new(MockConnectionRepository), nil)

	assert.NoError(t, svc.MarkRead(55, 2))
	msgRepo.AssertExpectations(t)
}

func TestMarkAllRead_ReturnsCount(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	msgRepo.On("MarkAllRead", uint64(10), uint64(2)).Return(int64(7), nil)

	svc := newChatServiceForTest(new(MockConversationRepository), msgRepo, new(MockMemberRepository), new(MockConnectionRepository), nil)

	n, err := svc.MarkAllRead(10, 2)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestListMessages_NonParticipantNonAdmin(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindByID", uint64(10)).Return(&domain.Conversation{
		ID: 10, Participant1ID: 1, Participant2ID: 2,
	}, nil)

	memberRepo := new(MockMemberRepository)
	memberRepo.On("IsAdmin", uint64(99)).Return(false, nil)

	svc := newChatServiceForTest(convRepo, new(MockMessageRepository), memberRepo, new(MockConnectionRepository), nil)

	_, _, err := svc.ListMessages(10, 99, 1, 50)

	assert.ErrorIs(t, err, common.ErrNotParticipant)
}

func TestListMessages_AdminAllowed(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindByID", uint64(10)).Return(&domain.Conversation{
		ID: 10, Participant1ID: 1, Participant2ID: 2,
	}, nil)

	memberRepo := new(MockMemberRepository)
	memberRepo.On("IsAdmin", uint64(42)).Return(true, nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("ListByConversation", uint64(10), uint64(42), 1, 50).Return([]*domain.Message{}, int64(0), nil)

	svc := newChatServiceForTest(convRepo, msgRepo, memberRepo, new(MockConnectionRepository), nil)

	_, meta, err := svc.ListMessages(10, 42, 1, 50)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), meta.Total)
}

func TestListMessages_ClampsPagination(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindByID", uint64(10)).Return(&domain.Conversation{
		ID: 10, Participant1ID: 1, Participant2ID: 2,
	}, nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("ListByConversation", uint64(10), uint64(1), 1, 50).Return([]*domain.Message{}, int64(0), nil)

	svc := newChatServiceForTest(convRepo, msgRepo, new(MockMemberRepository), new(MockConnectionRepository), nil)

	_, _, err := svc.ListMessages(10, 1, -3, 5000)

	assert.NoError(t, err)
	msgRepo.AssertExpectations(t)
}

func TestListConversations_ServedFromCache(t *testing.T) {
	cache := newRecordingCache()
	warm := []*domain.ConversationResponse{{ID: 10, PeerID: 2, PeerNickname: "jin", UnreadCount: 3}}
	assert.NoError(t, cache.SetConversations(context.Background(), 1, warm))

	convRepo := new(MockConversationRepository)
	svc := NewChatService(convRepo, new(MockMessageRepository), new(MockMemberRepository), new(MockConnectionRepository), nil, nil, cache)

	got, err := svc.ListConversations(1)

	assert.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, uint64(10), got[0].ID)
		assert.Equal(t, int64(3), got[0].UnreadCount)
	}
	convRepo.AssertNotCalled(t, "FindByParticipant", mock.Anything)
}

func TestListConversations_PopulatesCache(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindByParticipant", uint64(1)).Return([]*domain.Conversation{
		{ID: 10, Participant1ID: 1, Participant2ID: 2, Unread1: 3},
	}, nil).Once()

	msgRepo := new(MockMessageRepository)
	msgRepo.On("LastContent", uint64(10)).Return("see you at 6", nil).Once()

	memberRepo := new(MockMemberRepository)
	memberRepo.On("FindByID", uint64(2)).Return(&domain.Member{ID: 2, Nickname: "jin"}, nil).Once()

	cache := newRecordingCache()
	svc := NewChatService(convRepo, msgRepo, memberRepo, new(MockConnectionRepository), nil, nil, cache)

	first, err := svc.ListConversations(1)
	assert.NoError(t, err)

	// second call is served from cache; Once() above fails the test if the
	// store is hit again
	second, err := svc.ListConversations(1)
	assert.NoError(t, err)

	if assert.Len(t, second, 1) {
		assert.Equal(t, first[0].ID, second[0].ID)
		assert.Equal(t, first[0].UnreadCount, second[0].UnreadCount)
	}
	convRepo.AssertExpectations(t)
	msgRepo.AssertExpectations(t)
}

func TestSendMessage_NotificationInsertFailureSwallowed(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindByID", uint64(10)).Return(&domain.Conversation{
		ID: 10, Participant1ID: 1, Participant2ID: 2,
	}, nil)

	gate := new(MockConnectionRepository)
	gate.On("MayMessage", uint64(1), uint64(2)).Return(true, nil)

	msgRepo := new(MockMessageRepository)
	msgRepo.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(*domain.Message).ID = 55
	}).Return(nil)

	emitter := &recordingEmitter{}
	notifStore := &failingNotificationStore{err: errors.New("table full")}
	svc := NewChatService(convRepo, msgRepo, new(MockMemberRepository), gate, notifStore, emitter, nil)

	resp, err := svc.SendMessage(1, 10, &domain.SendMessageRequest{Content: "hi"})

	assert.NoError(t, err)
	assert.Equal(t, uint64(55), resp.ID)
	assert.Len(t, emitter.all(), 1)
}

func TestUnreadBadge_FallsBackToStore(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("TotalUnread", uint64(2)).Return(int64(4), nil)

	svc := newChatServiceForTest(convRepo, new(MockMessageRepository), new(MockMemberRepository), new(MockConnectionRepository), nil)

	count, err := svc.UnreadBadge(2)

	assert.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
