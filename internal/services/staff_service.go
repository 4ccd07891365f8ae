package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "github.com/danielodella-summer87/cafecitos-sub000/internal/errors"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
)

// staffService handles staff authentication and actor resolution.
type staffService struct {
	db *gorm.DB
}

// NewStaffService creates a new StaffServicer.
func NewStaffService(db *gorm.DB) StaffServicer {
	return &staffService{db: db}
}

// AttemptLogin verifies the email/password pair against an active staff
// login.
func (s *staffService) AttemptLogin(email, password string) (*models.StaffMember, error) {
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var staff models.StaffMember
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(email), true).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &staff, nil
}

// GetStaffByID retrieves an active staff member by ID.
func (s *staffService) GetStaffByID(id string) (*models.StaffMember, error) {
	var staff models.StaffMember
	if err := s.db.Where("id = ? AND is_active = ?", id, true).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStaffNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &staff, nil
}

// ActorFor builds the acting identity for a staff member. Called on
// every request so capability or café changes apply immediately.
func (s *staffService) ActorFor(staff *models.StaffMember) Actor {
	return Actor{
		StaffID:   staff.ID,
		CafeID:    staff.CafeID,
		ProfileID: staff.ProfileID,
		CanIssue:  staff.CanIssue,
		CanRedeem: staff.CanRedeem,
		IsOwner:   staff.IsOwner,
	}
}

// StoreRefreshTokenHash persists the hash of the staff member's current
// refresh token.
func (s *staffService) StoreRefreshTokenHash(staffID, tokenHash string) error {
	if err := s.db.Model(&models.StaffMember{}).Where("id = ?", staffID).
		Update("refresh_token_hash", tokenHash).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for a staff member.
func (s *staffService) GetRefreshTokenHash(staffID string) (string, error) {
	var staff models.StaffMember
	if err := s.db.Select("refresh_token_hash").Where("id = ?", staffID).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrStaffNotFound
		}
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return staff.RefreshTokenHash, nil
}
