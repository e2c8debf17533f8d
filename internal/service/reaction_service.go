package service

import (
	"strings"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
	"github.com/fitpulse/fitpulse-backend/internal/repository"
)

// ReactionService toggles and aggregates reactions. Reacting to (or reading
// reactions of) a message requires being a participant of its conversation
// or an admin — never a silent no-op for outsiders.
type ReactionService interface {
	Toggle(messageID, reactorID uint64, glyph string) (domain.ToggleAction, error)
	Summary(messageID, viewerID uint64) ([]domain.ReactionSummaryItem, error)
}

type reactionService struct {
	reactionRepo repository.ReactionRepository
	msgRepo      repository.MessageRepository
	convRepo     repository.ConversationRepository
	memberRepo   repository.MemberRepository
	emitter      NotificationEmitter
}

// NewReactionService creates a new ReactionService
func NewReactionService(
	reactionRepo repository.ReactionRepository,
	msgRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	memberRepo repository.MemberRepository,
	emitter NotificationEmitter,
) ReactionService {
	return &reactionService{
		reactionRepo: reactionRepo,
		msgRepo:      msgRepo,
		convRepo:     convRepo,
		memberRepo:   memberRepo,
		emitter:      emitter,
	}
}

// Toggle flips the reactor's glyph on the message
func (s *reactionService) Toggle(messageID, reactorID uint64, glyph string) (domain.ToggleAction, error) {
	if strings.TrimSpace(glyph) == "" {
		return "", common.ErrInvalidInput
	}

	msg, err := s.authorize(messageID, reactorID)
	if err != nil {
		return "", err
	}

	action, err := s.reactionRepo.Toggle(messageID, reactorID, glyph)
	if err != nil {
		return "", err
	}

	if action == domain.ToggleAdded && s.emitter != nil && msg.SenderID != reactorID {
		s.emitter.Emit(msg.SenderID, domain.NotificationReactionAdded, ReactionPayload{
			MessageID: messageID,
			ReactorID: reactorID,
			Glyph:     glyph,
		})
	}
	return action, nil
}

// Summary returns the message's reaction aggregate in deterministic order
func (s *reactionService) Summary(messageID, viewerID uint64) ([]domain.ReactionSummaryItem, error) {
	if _, err := s.authorize(messageID, viewerID); err != nil {
		return nil, err
	}
	return s.reactionRepo.Summary(messageID)
}

// authorize loads the message and verifies the actor can see it
func (s *reactionService) authorize(messageID, actorID uint64) (*domain.Message, error) {
	msg, err := s.msgRepo.FindByID(messageID)
	if err != nil {
		return nil, common.ErrMessageNotFound
	}

	conv, err := s.convRepo.FindByID(msg.ConversationID)
	if err != nil {
		return nil, common.ErrConversationNotFound
	}
	if conv.HasParticipant(actorID) {
		return msg, nil
	}

	isAdmin, err := s.memberRepo.IsAdmin(actorID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, common.ErrNotParticipant
	}
	return msg, nil
}
