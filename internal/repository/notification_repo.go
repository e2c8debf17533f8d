package repository

import (
	"gorm.io/gorm"

	"github.com/fitpulse/fitpulse-backend/internal/domain"
)

// NotificationRepository notification feed data access
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification
func (r *NotificationRepository) Create(n *domain.Notification) error {
	return r.db.Create(n).Error
}

// GetUnreadCount returns the unread notification count for a member
func (r *NotificationRepository) GetUnreadCount(memberID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("member_id = ? AND is_read = ?", memberID, false).
		Count(&count).Error
	return count, err
}

// GetList returns a page of notifications, newest first
func (r *NotificationRepository) GetList(memberID uint64, offset, limit int) ([]domain.Notification, int64, error) {
	var notifications []domain.Notification
	var total int64

	if err := r.db.Model(&domain.Notification{}).
		Where("member_id = ?", memberID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("member_id = ?", memberID).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	return notifications, total, err
}

// MarkAsRead marks one notification as read; scoped to the owner
func (r *NotificationRepository) MarkAsRead(id, memberID uint64) error {
	res := r.db.Model(&domain.Notification{}).
		Where("id = ? AND member_id = ?", id, memberID).
		UpdateColumn("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllAsRead marks every notification of the member as read
func (r *NotificationRepository) MarkAllAsRead(memberID uint64) error {
	return r.db.Model(&domain.Notification{}).
		Where("member_id = ? AND is_read = ?", memberID, false).
		UpdateColumn("is_read", true).Error
}
