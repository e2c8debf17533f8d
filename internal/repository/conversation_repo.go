package repository

import (
	"errors"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
)

// ConversationRepository conversation data access interface
type ConversationRepository interface {
	GetOrCreate(p1 uint64, k1 domain.Role, p2 uint64, k2 domain.Role) (*domain.Conversation, error)
	FindByID(id uint64) (*domain.Conversation, error)
	FindByParticipant(userID uint64) ([]*domain.Conversation, error)
	TotalUnread(userID uint64) (int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// GetOrCreate resolves the single conversation for an unordered participant
// pair, creating it on first contact. Kinds on an existing conversation are
// never overwritten (first write wins). A concurrent insert losing the race
// on the pair_key unique index falls back to a re-read instead of erroring.
func (r *conversationRepository) GetOrCreate(p1 uint64, k1 domain.Role, p2 uint64, k2 domain.Role) (*domain.Conversation, error) {
	key := domain.PairKeyFor(p1, p2)

	var conv domain.Conversation
	err := r.db.Where("pair_key = ?", key).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	conv = domain.Conversation{
		PairKey:          key,
		Participant1ID:   p1,
		Participant1Kind: k1,
		Participant2ID:   p2,
		Participant2Kind: k2,
		LastMessageAt:    now,
	}
	err = r.db.Create(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !isDuplicateKey(err) {
		return nil, err
	}

	// Lost the race; the winner's row is the conversation.
	var existing domain.Conversation
	if err := r.db.Where("pair_key = ?", key).First(&existing).Error; err != nil {
		return nil, common.ErrStorageFailure
	}
	return &existing, nil
}

// FindByID finds a conversation by ID
func (r *conversationRepository) FindByID(id uint64) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := r.db.First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByParticipant returns every conversation the user participates in,
// most recent activity first
func (r *conversationRepository) FindByParticipant(userID uint64) ([]*domain.Conversation, error) {
	var convs []*domain.Conversation
	err := r.db.
		Where("participant1_id = ? OR participant2_id = ?", userID, userID).
		Order("last_message_at DESC, id DESC").
		Find(&convs).Error
	return convs, err
}

// TotalUnread sums the user's unread counters across all conversations
func (r *conversationRepository) TotalUnread(userID uint64) (int64, error) {
	var total int64
	err := r.db.Model(&domain.Conversation{}).
		Select("COALESCE(SUM(CASE WHEN participant1_id = ? THEN unread1 ELSE unread2 END), 0)", userID).
		Where("participant1_id = ? OR participant2_id = ?", userID, userID).
		Scan(&total).Error
	return total, err
}

// isDuplicateKey detects a unique-constraint violation across the GORM
// translator and the raw MySQL driver error
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
