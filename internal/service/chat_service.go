package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	pkgcache "github.com/fitpulse/fitpulse-backend/pkg/cache"
	pkglogger "github.com/fitpulse/fitpulse-backend/pkg/logger"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
	"github.com/fitpulse/fitpulse-backend/internal/repository"
)

const previewLen = 80

// ChatService is the normal messaging path: conversation registry access,
// sends gated by the privacy/connection check, delivery transitions, and
// history/list reads. The admin bypass path lives in AdminMessageService.
type ChatService interface {
	GetOrCreateConversation(requesterID, peerID uint64) (*domain.Conversation, error)
	SendMessage(senderID, conversationID uint64, req *domain.SendMessageRequest) (*domain.MessageResponse, error)
	MarkDelivered(messageID, receiverID uint64) error
	MarkRead(messageID, receiverID uint64) error
	MarkAllRead(conversationID, participantID uint64) (int64, error)
	MarkFailed(messageID, senderID uint64) error
	DeleteMessage(messageID, senderID uint64) error
	ListConversations(userID uint64) ([]*domain.ConversationResponse, error)
	ListMessages(conversationID, viewerID uint64, page, limit int) ([]*domain.MessageResponse, *common.Meta, error)
	UnreadBadge(userID uint64) (int64, error)
}

type chatService struct {
	convRepo   repository.ConversationRepository
	msgRepo    repository.MessageRepository
	memberRepo repository.MemberRepository
	gate       repository.ConnectionRepository
	notifStore NotificationStore
	emitter    NotificationEmitter
	cache      pkgcache.Service
}

// NewChatService creates a new ChatService
func NewChatService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	memberRepo repository.MemberRepository,
	gate repository.ConnectionRepository,
	notifStore NotificationStore,
	emitter NotificationEmitter,
	cache pkgcache.Service,
) ChatService {
	return &chatService{
		convRepo:   convRepo,
		msgRepo:    msgRepo,
		memberRepo: memberRepo,
		gate:       gate,
		notifStore: notifStore,
		emitter:    emitter,
		cache:      cache,
	}
}

// GetOrCreateConversation resolves the one conversation between requester
// and peer, creating it on first contact. Participant kinds are resolved
// from the members table and frozen at creation time.
func (s *chatService) GetOrCreateConversation(requesterID, peerID uint64) (*domain.Conversation, error) {
	if requesterID == peerID {
		return nil, common.ErrSelfConversation
	}

	requesterRole, err := s.memberRepo.Role(requesterID)
	if err != nil {
		return nil, err
	}
	peerRole, err := s.memberRepo.Role(peerID)
	if err != nil {
		return nil, err
	}

	return s.convRepo.GetOrCreate(requesterID, requesterRole, peerID, peerRole)
}

// SendMessage appends a message on the normal path. The privacy/connection
// gate runs first — this is the branch the admin gateway deliberately skips.
func (s *chatService) SendMessage(senderID, conversationID uint64, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	kind := req.Kind
	if kind == "" {
		kind = domain.KindText
	}
	if !kind.Valid() || kind == domain.KindAdmin {
		return nil, common.ErrInvalidInput
	}
	if kind == domain.KindText && strings.TrimSpace(req.Content) == "" {
		return nil, common.ErrEmptyContent
	}

	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		return nil, common.ErrConversationNotFound
	}
	if !conv.HasParticipant(senderID) {
		return nil, common.ErrNotParticipant
	}
	receiverID, _ := conv.Peer(senderID)

	allowed, err := s.gate.MayMessage(senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, common.ErrMessagingBlocked
	}

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        req.Content,
		Kind:           kind,
		ReplyToID:      req.ReplyToID,
	}
	if req.Attachment != nil {
		msg.Attachment = *req.Attachment
	}

	if err := s.msgRepo.Create(msg); err != nil {
		return nil, err
	}

	s.invalidate(senderID, receiverID)
	s.notify(msg, domain.NotificationNewMessage)

	return msg.ToResponse(), nil
}

// MarkDelivered acknowledges reception of a message
func (s *chatService) MarkDelivered(messageID, receiverID uint64) error {
	return s.msgRepo.MarkDelivered(messageID, receiverID)
}

// MarkRead transitions a message into read and updates the unread badge
func (s *chatService) MarkRead(messageID, receiverID uint64) error {
	if err := s.msgRepo.MarkRead(messageID, receiverID); err != nil {
		return err
	}
	s.invalidate(receiverID)
	return nil
}

// MarkAllRead batch-reads a conversation for one participant
func (s *chatService) MarkAllRead(conversationID, participantID uint64) (int64, error) {
	n, err := s.msgRepo.MarkAllRead(conversationID, participantID)
	if err != nil {
		return 0, err
	}
	s.invalidate(participantID)
	return n, nil
}

// MarkFailed records a transport failure for a sent message. The transition
// reverses the receiver's unread increment, so both badges are invalidated.
func (s *chatService) MarkFailed(messageID, senderID uint64) error {
	msg, err := s.msgRepo.FindByID(messageID)
	if err != nil {
		return common.ErrMessageNotFound
	}
	if err := s.msgRepo.MarkFailed(messageID, senderID); err != nil {
		return err
	}
	s.invalidate(senderID, msg.ReceiverID)
	return nil
}

// DeleteMessage soft-deletes a message from the sender's own view
func (s *chatService) DeleteMessage(messageID, senderID uint64) error {
	return s.msgRepo.SoftDeleteBySender(messageID, senderID)
}

// ListConversations returns the user's conversations annotated with peer,
// last message preview and unread count, most recent first. Served from cache
// when warm; every counter mutation invalidates the entry.
func (s *chatService) ListConversations(userID uint64) ([]*domain.ConversationResponse, error) {
	ctx := context.Background()
	if s.cache != nil {
		if data, err := s.cache.GetConversations(ctx, userID); err == nil {
			var cached []*domain.ConversationResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	convs, err := s.convRepo.FindByParticipant(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		lastContent, err := s.msgRepo.LastContent(conv.ID)
		if err != nil {
			return nil, err
		}
		peerID, _ := conv.Peer(userID)
		peerNickname := ""
		if peer, err := s.memberRepo.FindByID(peerID); err == nil {
			peerNickname = peer.Nickname
		}
		responses = append(responses, conv.ToResponse(userID, preview(lastContent), peerNickname))
	}

	if s.cache != nil {
		_ = s.cache.SetConversations(ctx, userID, responses)
	}
	return responses, nil
}

// ListMessages returns a page of conversation history for a participant (or admin)
func (s *chatService) ListMessages(conversationID, viewerID uint64, page, limit int) ([]*domain.MessageResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		return nil, nil, common.ErrConversationNotFound
	}
	if !conv.HasParticipant(viewerID) {
		isAdmin, err := s.memberRepo.IsAdmin(viewerID)
		if err != nil || !isAdmin {
			return nil, nil, common.ErrNotParticipant
		}
	}

	messages, total, err := s.msgRepo.ListByConversation(conversationID, viewerID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = m.ToResponse()
	}
	return responses, common.NewMeta(page, limit, total), nil
}

// UnreadBadge returns the user's total unread count across conversations,
// served from cache when warm
func (s *chatService) UnreadBadge(userID uint64) (int64, error) {
	ctx := context.Background()
	if s.cache != nil {
		if count, err := s.cache.GetUnreadBadge(ctx, userID); err == nil {
			return count, nil
		}
	}

	count, err := s.convRepo.TotalUnread(userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.SetUnreadBadge(ctx, userID, count)
	}
	return count, nil
}

// notify persists a feed entry and emits the real-time event. Failures here
// are logged and swallowed: message durability outranks notification delivery.
func (s *chatService) notify(msg *domain.Message, eventType string) {
	if s.notifStore != nil {
		n := &domain.Notification{
			MemberID:       msg.ReceiverID,
			Type:           eventType,
			Title:          "New message",
			Content:        preview(msg.Content),
			SenderID:       msg.SenderID,
			ConversationID: msg.ConversationID,
			MessageID:      msg.ID,
			CreatedAt:      time.Now(),
		}
		if err := s.notifStore.Create(n); err != nil {
			pkglogger.GetLogger().Warn().Err(err).
				Uint64("message_id", msg.ID).
				Msg("notification insert failed")
		}
	}

	if s.emitter != nil {
		s.emitter.Emit(msg.ReceiverID, eventType, NewMessagePayload{
			ConversationID: msg.ConversationID,
			MessageID:      msg.ID,
			SenderID:       msg.SenderID,
			Preview:        preview(msg.Content),
			IsAdminMessage: msg.IsAdminMessage,
		})
	}
}

func (s *chatService) invalidate(userIDs ...uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(context.Background(), userIDs...); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("cache invalidation failed")
	}
}

func preview(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= previewLen {
		return content
	}
	return string(runes[:previewLen])
}
