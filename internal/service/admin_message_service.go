package service

import (
	"context"
	"strings"

	pkgcache "github.com/fitpulse/fitpulse-backend/pkg/cache"
	pkglogger "github.com/fitpulse/fitpulse-backend/pkg/logger"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
	"github.com/fitpulse/fitpulse-backend/internal/repository"
)

// AdminMessageService is the privileged bypass path: a verified admin can
// message any participant without a privacy/connection gate. The role check
// happens here, inside the same call as the write — route middleware is only
// defense in depth, because this path skips every other gate in the system.
type AdminMessageService interface {
	SendAdminMessage(adminID, receiverID uint64, content string) (*domain.MessageResponse, error)
	GetAdminConversations(adminID uint64) ([]*domain.ConversationResponse, error)
}

type adminMessageService struct {
	convRepo   repository.ConversationRepository
	msgRepo    repository.MessageRepository
	memberRepo repository.MemberRepository
	notifStore NotificationStore
	emitter    NotificationEmitter
	cache      pkgcache.Service
}

// NewAdminMessageService creates a new AdminMessageService
func NewAdminMessageService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	memberRepo repository.MemberRepository,
	notifStore NotificationStore,
	emitter NotificationEmitter,
	cache pkgcache.Service,
) AdminMessageService {
	return &adminMessageService{
		convRepo:   convRepo,
		msgRepo:    msgRepo,
		memberRepo: memberRepo,
		notifStore: notifStore,
		emitter:    emitter,
		cache:      cache,
	}
}

// SendAdminMessage injects a message into the admin↔receiver conversation,
// creating it if needed. No privacy gate runs on this path; the mandatory
// check is that the caller actually holds the admin role.
func (s *adminMessageService) SendAdminMessage(adminID, receiverID uint64, content string) (*domain.MessageResponse, error) {
	isAdmin, err := s.memberRepo.IsAdmin(adminID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, common.ErrUnauthorized
	}

	if adminID == receiverID {
		return nil, common.ErrSelfConversation
	}
	if strings.TrimSpace(content) == "" {
		return nil, common.ErrEmptyContent
	}

	receiverRole, err := s.memberRepo.Role(receiverID)
	if err != nil {
		return nil, err
	}

	conv, err := s.convRepo.GetOrCreate(adminID, domain.RoleAdmin, receiverID, receiverRole)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ConversationID: conv.ID,
		SenderID:       adminID,
		ReceiverID:     receiverID,
		Content:        content,
		Kind:           domain.KindAdmin,
		IsAdminMessage: true,
	}
	// Identical initial-state side effects as a normal send: insert in `sent`,
	// increment the receiver's unread counter, advance last-message refs.
	if err := s.msgRepo.Create(msg); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateUser(context.Background(), adminID, receiverID)
	}
	s.notifyAdminMessage(msg)

	return msg.ToResponse(), nil
}

// GetAdminConversations returns every conversation the admin participates in,
// annotated with peer, last message and the admin's unread count
func (s *adminMessageService) GetAdminConversations(adminID uint64) ([]*domain.ConversationResponse, error) {
	isAdmin, err := s.memberRepo.IsAdmin(adminID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, common.ErrUnauthorized
	}

	convs, err := s.convRepo.FindByParticipant(adminID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		lastContent, err := s.msgRepo.LastContent(conv.ID)
		if err != nil {
			return nil, err
		}
		peerID, _ := conv.Peer(adminID)
		peerNickname := ""
		if peer, err := s.memberRepo.FindByID(peerID); err == nil {
			peerNickname = peer.Nickname
		}
		responses = append(responses, conv.ToResponse(adminID, preview(lastContent), peerNickname))
	}
	return responses, nil
}

func (s *adminMessageService) notifyAdminMessage(msg *domain.Message) {
	if s.notifStore != nil {
		n := &domain.Notification{
			MemberID:       msg.ReceiverID,
			Type:           domain.NotificationAdminMessage,
			Title:          "Message from FitPulse team",
			Content:        preview(msg.Content),
			SenderID:       msg.SenderID,
			ConversationID: msg.ConversationID,
			MessageID:      msg.ID,
			CreatedAt:      msg.CreatedAt,
		}
		if err := s.notifStore.Create(n); err != nil {
			pkglogger.GetLogger().Warn().Err(err).
				Uint64("message_id", msg.ID).
				Msg("notification insert failed")
		}
	}
	if s.emitter != nil {
		s.emitter.Emit(msg.ReceiverID, domain.NotificationAdminMessage, NewMessagePayload{
			ConversationID: msg.ConversationID,
			MessageID:      msg.ID,
			SenderID:       msg.SenderID,
			Preview:        preview(msg.Content),
			IsAdminMessage: true,
		})
	}
}
