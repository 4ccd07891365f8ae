package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/danielodella-summer87/cafecitos-sub000/internal/errors"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
)

// directoryService resolves profiles for the ledger guards. Identity
// numbers arrive already normalized (digits only) and are treated as
// opaque keys.
type directoryService struct {
	db *gorm.DB
}

// NewDirectoryService creates a new DirectoryServicer.
func NewDirectoryService(db *gorm.DB) DirectoryServicer {
	return &directoryService{db: db}
}

// ResolveConsumer finds the active profile for an identity number and
// rejects non-consumer roles. The distinction matters to the operator:
// "no such account" and "that account cannot hold points" need
// different guidance.
func (s *directoryService) ResolveConsumer(identityNumber string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("identity_number = ? AND is_active = ?", identityNumber, true).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrConsumerNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	if profile.Role != models.RoleConsumer {
		return nil, apperrors.ErrInvalidRole
	}
	return &profile, nil
}

// GetProfileByID retrieves a profile by ID.
func (s *directoryService) GetProfileByID(id string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return &profile, nil
}
