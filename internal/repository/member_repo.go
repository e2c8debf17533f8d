package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/fitpulse/fitpulse-backend/internal/common"
	"github.com/fitpulse/fitpulse-backend/internal/domain"
)

// MemberRepository member data access interface; it is the Identity & Role
// Resolver consumed by the messaging services.
type MemberRepository interface {
	FindByID(id uint64) (*domain.Member, error)
	Role(id uint64) (domain.Role, error)
	IsAdmin(id uint64) (bool, error)
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// FindByID finds a member by ID
func (r *memberRepository) FindByID(id uint64) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrReceiverNotFound
		}
		return nil, err
	}
	return &member, nil
}

// Role returns the member's role
func (r *memberRepository) Role(id uint64) (domain.Role, error) {
	member, err := r.FindByID(id)
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

// IsAdmin reports whether the member holds the admin role
func (r *memberRepository) IsAdmin(id uint64) (bool, error) {
	role, err := r.Role(id)
	if err != nil {
		return false, err
	}
	return role == domain.RoleAdmin, nil
}
