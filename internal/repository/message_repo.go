package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
	pkglogger "github.com/fitpulse/fitpulse-backend/pkg/logger"
)

// MessageRepository message data access interface. Every method that changes
// delivery state runs the counter mutation in the same transaction as the
// state change, so a conversation's unread counters never drift from its
// message set (the batch reset in MarkAllRead is the recovery path if they
// somehow do).
type MessageRepository interface {
	Create(msg *domain.Message) error
	FindByID(id uint64) (*domain.Message, error)
	ListByConversation(conversationID, viewerID uint64, page, limit int) ([]*domain.Message, int64, error)
	MarkDelivered(messageID, receiverID uint64) error
	MarkRead(messageID, receiverID uint64) error
	MarkAllRead(conversationID, participantID uint64) (int64, error)
	MarkFailed(messageID, senderID uint64) error
	SoftDeleteBySender(messageID, senderID uint64) error
	LastContent(conversationID uint64) (string, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create appends a message in `sent` state and, in the same unit of work,
// increments the receiver's unread counter and advances the conversation's
// last-message reference. The conversation row is the write-contention point,
// so it is locked first.
func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		conv, err := lockConversation(tx, msg.ConversationID)
		if err != nil {
			return err
		}

		if conv.SlotOf(msg.ReceiverID) == 0 || conv.SlotOf(msg.SenderID) == 0 {
			return common.ErrNotParticipant
		}

		// reply_to must point into the same conversation
		if msg.ReplyToID != nil {
			var parent domain.Message
			if err := tx.First(&parent, *msg.ReplyToID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return common.ErrReplyMismatch
				}
				return err
			}
			if parent.ConversationID != msg.ConversationID {
				return common.ErrReplyMismatch
			}
		}

		msg.DeliveryStatus = domain.StatusSent
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now()
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		unreadCol := conv.UnreadColumn(msg.ReceiverID)
		return tx.Model(&domain.Conversation{}).
			Where("id = ?", conv.ID).
			Updates(map[string]interface{}{
				unreadCol:         gorm.Expr(unreadCol+" + ?", 1),
				"last_message_id": msg.ID,
				"last_message_at": msg.CreatedAt,
			}).Error
	})
}

// FindByID finds a message by ID
func (r *messageRepository) FindByID(id uint64) (*domain.Message, error) {
	var msg domain.Message
	if err := r.db.First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByConversation returns a page of conversation history, newest first
// (creation time, insertion id as tiebreak). Messages the viewer soft-deleted
// as sender are hidden from their own view only.
func (r *messageRepository) ListByConversation(conversationID, viewerID uint64, page, limit int) ([]*domain.Message, int64, error) {
	var messages []*domain.Message
	var total int64

	base := r.db.Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("NOT (deleted_by_sender = ? AND sender_id = ?)", true, viewerID)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := base.
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&messages).Error
	return messages, total, err
}

// MarkDelivered transitions sent → delivered for the receiving participant.
// Requests against an equal-or-later state are a no-op. No counter change:
// delivered is not read.
func (r *messageRepository) MarkDelivered(messageID, receiverID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		msg, err := lockMessage(tx, messageID)
		if err != nil {
			return err
		}
		if msg.ReceiverID != receiverID {
			return common.ErrNotParticipant
		}
		if !msg.DeliveryStatus.CanTransition(domain.StatusDelivered) {
			return nil // no-op, never backward
		}

		updates := map[string]interface{}{
			"delivery_status": domain.StatusDelivered,
		}
		if msg.DeliveredAt == nil {
			updates["delivered_at"] = time.Now()
		}
		return tx.Model(&domain.Message{}).Where("id = ?", msg.ID).Updates(updates).Error
	})
}

// MarkRead transitions the message into read, backfilling delivered_at when
// the delivered step was skipped, and decrements the receiver's unread
// counter in the same transaction. The counter clamps at zero; hitting the
// clamp is an anomaly worth logging, not a failure.
func (r *messageRepository) MarkRead(messageID, receiverID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		conversationID, err := conversationIDOf(tx, messageID)
		if err != nil {
			return err
		}
		// conversation before message: same lock order as Create and
		// MarkAllRead, so concurrent transitions cannot deadlock
		conv, err := lockConversation(tx, conversationID)
		if err != nil {
			return err
		}
		msg, err := lockMessage(tx, messageID)
		if err != nil {
			return err
		}
		if msg.ReceiverID != receiverID {
			return common.ErrNotParticipant
		}
		if !msg.DeliveryStatus.CanTransition(domain.StatusRead) {
			return nil // already read, or failed (terminal)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"delivery_status": domain.StatusRead,
			"is_read":         true,
			"read_at":         now,
		}
		if msg.DeliveredAt == nil {
			updates["delivered_at"] = now
		}
		if err := tx.Model(&domain.Message{}).Where("id = ?", msg.ID).Updates(updates).Error; err != nil {
			return err
		}

		return decrementUnread(tx, conv, receiverID, 1)
	})
}

// MarkAllRead transitions every unread message addressed to the participant
// into read and resets their unread counter to an absolute 0. The reset (not
// a per-row decrement) makes the counter converge even if a prior increment
// was missed.
func (r *messageRepository) MarkAllRead(conversationID, participantID uint64) (int64, error) {
	var transitioned int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		conv, err := lockConversation(tx, conversationID)
		if err != nil {
			return err
		}
		if conv.SlotOf(participantID) == 0 {
			return common.ErrNotParticipant
		}

		now := time.Now()
		res := tx.Model(&domain.Message{}).
			Where("conversation_id = ? AND receiver_id = ?", conversationID, participantID).
			Where("delivery_status NOT IN ?", []domain.DeliveryStatus{domain.StatusRead, domain.StatusFailed}).
			Updates(map[string]interface{}{
				"delivery_status": domain.StatusRead,
				"is_read":         true,
				"read_at":         now,
				"delivered_at":    gorm.Expr("COALESCE(delivered_at, ?)", now),
			})
		if res.Error != nil {
			return res.Error
		}
		transitioned = res.RowsAffected

		unreadCol := conv.UnreadColumn(participantID)
		return tx.Model(&domain.Conversation{}).
			Where("id = ?", conversationID).
			UpdateColumn(unreadCol, 0).Error
	})
	return transitioned, err
}

// MarkFailed records a sender-side transport failure. Only reachable from
// `sent`; the initial unread increment is reversed because the receiver will
// never see the message as pending.
func (r *messageRepository) MarkFailed(messageID, senderID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		conversationID, err := conversationIDOf(tx, messageID)
		if err != nil {
			return err
		}
		conv, err := lockConversation(tx, conversationID)
		if err != nil {
			return err
		}
		msg, err := lockMessage(tx, messageID)
		if err != nil {
			return err
		}
		if msg.SenderID != senderID {
			return common.ErrForbidden
		}
		if !msg.DeliveryStatus.CanTransition(domain.StatusFailed) {
			return nil
		}

		if err := tx.Model(&domain.Message{}).
			Where("id = ?", msg.ID).
			UpdateColumn("delivery_status", domain.StatusFailed).Error; err != nil {
			return err
		}

		return decrementUnread(tx, conv, msg.ReceiverID, 1)
	})
}

// SoftDeleteBySender hides a message from the sender's own view. Receiver
// view and unread bookkeeping are untouched.
func (r *messageRepository) SoftDeleteBySender(messageID, senderID uint64) error {
	res := r.db.Model(&domain.Message{}).
		Where("id = ? AND sender_id = ?", messageID, senderID).
		UpdateColumn("deleted_by_sender", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrMessageNotFound
	}
	return nil
}

// LastContent returns the content of the conversation's most recent message
func (r *messageRepository) LastContent(conversationID uint64) (string, error) {
	var msg domain.Message
	err := r.db.Select("content").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return msg.Content, nil
}

// lockMessage fetches a message under a row lock so concurrent transition
// requests on the same message serialize
func lockMessage(tx *gorm.DB, id uint64) (*domain.Message, error) {
	var msg domain.Message
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// lockConversation fetches a conversation under a row lock. Every transaction
// that touches both tables takes this lock before any message row lock.
func lockConversation(tx *gorm.DB, id uint64) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// conversationIDOf resolves a message's conversation without taking the
// message lock, so the conversation lock can be acquired first
func conversationIDOf(tx *gorm.DB, messageID uint64) (uint64, error) {
	var msg domain.Message
	if err := tx.Select("conversation_id").First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, common.ErrMessageNotFound
		}
		return 0, err
	}
	return msg.ConversationID, nil
}

// decrementUnread lowers the participant's unread counter on an already locked
// conversation, clamping at zero. A clamp means an increment was missed
// somewhere; log it and move on. The next MarkAllRead resets the counter
// absolutely.
func decrementUnread(tx *gorm.DB, conv *domain.Conversation, participantID uint64, n int64) error {
	unreadCol := conv.UnreadColumn(participantID)
	current := conv.UnreadFor(participantID)

	next := current - n
	if next < 0 {
		pkglogger.GetLogger().Warn().
			Uint64("conversation_id", conv.ID).
			Uint64("participant_id", participantID).
			Int64("counter", current).
			Int64("decrement", n).
			Msg("unread counter underflow clamped to zero")
		next = 0
	}
	return tx.Model(&domain.Conversation{}).
		Where("id = ?", conv.ID).
		UpdateColumn(unreadCol, next).Error
}
