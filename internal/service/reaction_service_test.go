package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
)

func reactionFixtures() (*MockReactionRepository, *MockMessageRepository, *MockConversationRepository, *MockMemberRepository) {
	msgRepo := new(MockMessageRepository)
	msgRepo.On("FindByID", uint64(55)).Return(&domain.Message{
		ID: 55, ConversationID: 10, SenderID: 1, ReceiverID: 2,
	}, nil)

	convRepo := new(MockConversationRepository)
	convRepo.On("FindByID", uint64(10)).Return(&domain.Conversation{
		ID: 10, Participant1ID: 1, Participant2ID: 2,
	}, nil)

	return new(MockReactionRepository), msgRepo, convRepo, new(MockMemberRepository)
}

func TestToggle_EmptyGlyph(t *testing.T) {
	reactionRepo, msgRepo, convRepo, memberRepo := reactionFixtures()
	svc := NewReactionService(reactionRepo, msgRepo, convRepo, memberRepo, nil)

	_, err := svc.Toggle(55, 2, "  ")

	assert.ErrorIs(t, err, common.ErrInvalidInput)
	reactionRepo.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggle_NonParticipantRejected(t *testing.T) {
	reactionRepo, msgRepo, convRepo, memberRepo := reactionFixtures()
	memberRepo.On("IsAdmin", uint64(99)).Return(false, nil)
	svc := NewReactionService(reactionRepo, msgRepo, convRepo, memberRepo, nil)

	_, err := svc.Toggle(55, 99, "👍")

	assert.ErrorIs(t, err, common.ErrNotParticipant)
	reactionRepo.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggle_MessageNotFound(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	msgRepo.On("FindByID", uint64(404)).Return(nil, common.ErrMessageNotFound)

	svc := NewReactionService(new(MockReactionRepository), msgRepo, new(MockConversationRepository), new(MockMemberRepository), nil)

	_, err := svc.Toggle(404, 2, "👍")

	assert.ErrorIs(t, err, common.ErrMessageNotFound)
}

func TestToggle_AddedNotifiesSender(t *testing.T) {
	reactionRepo, msgRepo, convRepo, memberRepo := reactionFixtures()
	reactionRepo.On("Toggle", uint64(55), uint64(2), "💪").Return(domain.ToggleAdded, nil)

	emitter := &recordingEmitter{}
	svc := NewReactionService(reactionRepo, msgRepo, convRepo, memberRepo, emitter)

	action, err := svc.Toggle(55, 2, "💪")

	assert.NoError(t, err)
	assert.Equal(t, domain.ToggleAdded, action)

	events := emitter.all()
	if assert.Len(t, events, 1) {
		assert.Equal(t, uint64(1), events[0].MemberID)
		assert.Equal(t, domain.NotificationReactionAdded, events[0].EventType)
	}
}

func TestToggle_RemovedStaysSilent(t *testing.T) {
	reactionRepo, msgRepo, convRepo, memberRepo := reactionFixtures()
	reactionRepo.On("Toggle", uint64(55), uint64(2), "💪").Return(domain.ToggleRemoved, nil)

	emitter := &recordingEmitter{}
	svc := NewReactionService(reactionRepo, msgRepo, convRepo, memberRepo, emitter)

	action, err := svc.Toggle(55, 2, "💪")

	assert.NoError(t, err)
	assert.Equal(t, domain.ToggleRemoved, action)
	assert.Empty(t, emitter.all())
}

func TestToggle_OwnMessageNoSelfNotification(t *testing.T) {
	reactionRepo, msgRepo, convRepo, memberRepo := reactionFixtures()
	reactionRepo.On("Toggle", uint64(55), uint64(1), "🔥").Return(domain.ToggleAdded, nil)

	emitter := &recordingEmitter{}
	svc := NewReactionService(reactionRepo, msgRepo, convRepo, memberRepo, emitter)

	_, err := svc.Toggle(55, 1, "🔥")

	assert.NoError(t, err)
	assert.Empty(t, emitter.all())
}

func TestSummary_AdminAllowed(t *testing.T) {
	reactionRepo, msgRepo, convRepo, memberRepo := reactionFixtures()
	memberRepo.On("IsAdmin", uint64(42)).Return(true, nil)
	reactionRepo.On("Summary", uint64(55)).Return([]domain.ReactionSummaryItem{
		{Glyph: "👍", Count: 2, ReactorIDs: []uint64{1, 2}},
	}, nil)

	svc := NewReactionService(reactionRepo, msgRepo, convRepo, memberRepo, nil)

	items, err := svc.Summary(55, 42)

	assert.NoError(t, err)
	if assert.Len(t, items, 1) {
		assert.Equal(t, 2, items[0].Count)
	}
}

func TestSummary_NonParticipantRejected(t *testing.T) {
	reactionRepo, msgRepo, convRepo, memberRepo := reactionFixtures()
	memberRepo.On("IsAdmin", uint64(99)).Return(false, nil)

	svc := NewReactionService(reactionRepo, msgRepo, convRepo, memberRepo, nil)

	_, err := svc.Summary(55, 99)

	assert.ErrorIs(t, err, common.ErrNotParticipant)
	reactionRepo.AssertNotCalled(t, "Summary", mock.Anything)
}
