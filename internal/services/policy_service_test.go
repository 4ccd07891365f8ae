package services

import (
	"testing"

	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/testutil"
)

func TestAllowCrossCafeRedeem(t *testing.T) {
	t.Run("defaults_to_true_without_settings_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		policy := NewPolicyService(db)

		allowed, err := policy.AllowCrossCafeRedeem()
		testutil.AssertNoError(t, err)
		if !allowed {
			t.Error("expected cross-cafe redeem to default to allowed")
		}
	})

	t.Run("reads_stored_value", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		policy := NewPolicyService(db)
		testutil.SetCrossCafeRedeem(t, db, false)

		allowed, err := policy.AllowCrossCafeRedeem()
		testutil.AssertNoError(t, err)
		if allowed {
			t.Error("expected cross-cafe redeem to be disabled")
		}
	})

	t.Run("reads_fresh_after_change", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		policy := NewPolicyService(db)
		testutil.SetCrossCafeRedeem(t, db, false)

		allowed, err := policy.AllowCrossCafeRedeem()
		testutil.AssertNoError(t, err)
		if allowed {
			t.Fatal("expected cross-cafe redeem to be disabled")
		}

		if err := db.Model(&models.Setting{}).Where("1 = 1").
			Update("allow_cross_cafe_redeem", true).Error; err != nil {
			t.Fatalf("failed to update setting: %v", err)
		}

		allowed, err = policy.AllowCrossCafeRedeem()
		testutil.AssertNoError(t, err)
		if !allowed {
			t.Error("expected the flag change to be visible immediately")
		}
	})
}
