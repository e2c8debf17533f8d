package service

import (
	"time"

	"github.com/fitpulse/fitpulse-backend/internal/domain"
	"github.com/fitpulse/fitpulse-backend/internal/repository"
)

// NotificationService handles the persisted notification feed
type NotificationService struct {
	repo *repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// GetUnreadCount returns the unread notification count for a member
func (s *NotificationService) GetUnreadCount(memberID uint64) (*domain.NotificationSummaryResponse, error) {
	count, err := s.repo.GetUnreadCount(memberID)
	if err != nil {
		return nil, err
	}
	return &domain.NotificationSummaryResponse{TotalUnread: count}, nil
}

// GetList returns paginated notifications for a member
func (s *NotificationService) GetList(memberID uint64, page, limit int) (*domain.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	notifications, total, err := s.repo.GetList(memberID, offset, limit)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(memberID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.NotificationItem, len(notifications))
	for i, n := range notifications {
		items[i] = domain.NotificationItem{
			ID:             n.ID,
			Type:           n.Type,
			Title:          n.Title,
			Content:        n.Content,
			SenderID:       n.SenderID,
			ConversationID: n.ConversationID,
			MessageID:      n.MessageID,
			IsRead:         n.IsRead,
			CreatedAt:      n.CreatedAt.Format(time.RFC3339),
		}
	}

	return &domain.NotificationListResponse{
		Items:       items,
		Total:       total,
		UnreadCount: unreadCount,
		Page:        page,
		Limit:       limit,
	}, nil
}

// MarkAsRead marks one notification as read
func (s *NotificationService) MarkAsRead(id, memberID uint64) error {
	return s.repo.MarkAsRead(id, memberID)
}

// MarkAllAsRead marks all of a member's notifications as read
func (s *NotificationService) MarkAllAsRead(memberID uint64) error {
	return s.repo.MarkAllAsRead(memberID)
}
