package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/danielodella-summer87/cafecitos-sub000/internal/errors"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
)

// policyService reads the global settings record. The flag is read
// fresh on every call, never cached: an operator flipping it expects
// immediate effect on the next redemption.
type policyService struct {
	db *gorm.DB
}

// NewPolicyService creates a new PolicyServicer.
func NewPolicyService(db *gorm.DB) PolicyServicer {
	return &policyService{db: db}
}

// AllowCrossCafeRedeem returns the global cross-café redemption flag.
// A missing settings row fails open (permissive) rather than blocking
// every redemption on absent configuration.
func (s *policyService) AllowCrossCafeRedeem() (bool, error) {
	var setting models.Setting
	if err := s.db.Order("created_at ASC").First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	return setting.AllowCrossCafeRedeem, nil
}
