package repository

import (
	"gorm.io/gorm"

	"github.com/fitpulse/fitpulse-backend/internal/domain"
)

// ConnectionRepository is the privacy/connection gate for the normal send
// path: blocks always win, otherwise an accepted trainer-client connection
// in either orientation is required. The admin bypass gateway never calls it.
type ConnectionRepository interface {
	MayMessage(senderID, receiverID uint64) (bool, error)
	IsBlocked(blockerID, blockedID uint64) (bool, error)
}

type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

// IsBlocked reports whether blocker has blocked blocked
func (r *connectionRepository) IsBlocked(blockerID, blockedID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

// MayMessage decides whether the normal path may deliver from sender to receiver
func (r *connectionRepository) MayMessage(senderID, receiverID uint64) (bool, error) {
	blocked, err := r.IsBlocked(receiverID, senderID)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, nil
	}

	var count int64
	err = r.db.Model(&domain.Connection{}).
		Where("status = ?", "accepted").
		Where("(trainer_id = ? AND client_id = ?) OR (trainer_id = ? AND client_id = ?)",
			senderID, receiverID, receiverID, senderID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
