package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestConsumer creates an active consumer profile with a unique
// identity number.
func CreateTestConsumer(t *testing.T, db *gorm.DB) *models.Profile {
	t.Helper()
	return CreateTestProfile(t, db, models.RoleConsumer)
}

// CreateTestProfile creates an active profile with the given role.
func CreateTestProfile(t *testing.T, db *gorm.DB, role models.Role) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		IdentityNumber: fmt.Sprintf("3000%06d", nextID()),
		Role:           role,
		FirstName:      "Test",
		LastName:       fmt.Sprintf("Profile %d", nextID()),
		IsActive:       true,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return profile
}

// CreateTestCafe creates an active café with a fresh owner profile.
func CreateTestCafe(t *testing.T, db *gorm.DB) *models.Cafe {
	t.Helper()

	owner := CreateTestProfile(t, db, models.RoleOwner)
	cafe := &models.Cafe{
		Name:           fmt.Sprintf("Test Cafe %d", nextID()),
		Address:        "Av. Siempreviva 742",
		OwnerProfileID: owner.ID,
		IsActive:       true,
	}
	if err := db.Create(cafe).Error; err != nil {
		t.Fatalf("failed to create test cafe: %v", err)
	}
	return cafe
}

// CreateTestStaff creates an active staff login at the given café with
// both issue and redeem capabilities and no linked consumer profile.
func CreateTestStaff(t *testing.T, db *gorm.DB, cafeID string) *models.StaffMember {
	t.Helper()
	return CreateTestStaffMember(t, db, cafeID, nil, true, true, false)
}

// CreateTestStaffMember creates a staff login with explicit capability
// flags and an optional linked consumer profile.
func CreateTestStaffMember(t *testing.T, db *gorm.DB, cafeID string, profileID *string, canIssue, canRedeem, isOwner bool) *models.StaffMember {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	staff := &models.StaffMember{
		CafeID:      cafeID,
		ProfileID:   profileID,
		Email:       fmt.Sprintf("staff%d@test.com", nextID()),
		Password:    string(hash),
		DisplayName: fmt.Sprintf("Staff %d", nextID()),
		CanIssue:    canIssue,
		CanRedeem:   canRedeem,
		IsOwner:     isOwner,
		IsActive:    true,
	}
	if err := db.Create(staff).Error; err != nil {
		t.Fatalf("failed to create test staff member: %v", err)
	}
	return staff
}

// CreateTestEarn appends an earn transaction crediting the profile at
// the café.
func CreateTestEarn(t *testing.T, db *gorm.DB, profileID, cafeID string, amount int64) *models.PointTransaction {
	t.Helper()
	return createTestTx(t, db, models.TxTypeEarn, &cafeID, nil, &profileID, amount, time.Now())
}

// CreateTestRedeem appends a redeem transaction debiting the profile at
// the café.
func CreateTestRedeem(t *testing.T, db *gorm.DB, profileID, cafeID string, amount int64) *models.PointTransaction {
	t.Helper()
	return createTestTx(t, db, models.TxTypeRedeem, &cafeID, &profileID, nil, amount, time.Now())
}

// CreateTestAdjust appends an adjust credit without a café context.
func CreateTestAdjust(t *testing.T, db *gorm.DB, profileID string, amount int64) *models.PointTransaction {
	t.Helper()
	return createTestTx(t, db, models.TxTypeAdjust, nil, nil, &profileID, amount, time.Now())
}

// CreateTestTransactionAt appends a transaction with an explicit
// timestamp, for windowed report tests.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, txType models.TxType, cafeID *string, fromID, toID *string, amount int64, at time.Time) *models.PointTransaction {
	t.Helper()
	return createTestTx(t, db, txType, cafeID, fromID, toID, amount, at)
}

func createTestTx(t *testing.T, db *gorm.DB, txType models.TxType, cafeID *string, fromID, toID *string, amount int64, at time.Time) *models.PointTransaction {
	t.Helper()

	tx := &models.PointTransaction{
		Type:          txType,
		CafeID:        cafeID,
		FromProfileID: fromID,
		ToProfileID:   toID,
		Amount:        amount,
		CreatedAt:     at,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// SetCrossCafeRedeem writes the global settings row with the given flag.
func SetCrossCafeRedeem(t *testing.T, db *gorm.DB, allowed bool) {
	t.Helper()

	setting := &models.Setting{AllowCrossCafeRedeem: allowed}
	if err := db.Create(setting).Error; err != nil {
		t.Fatalf("failed to create test setting: %v", err)
	}
	// Create ignores false on a column defaulting to true; force it.
	if err := db.Model(setting).Update("allow_cross_cafe_redeem", allowed).Error; err != nil {
		t.Fatalf("failed to update test setting: %v", err)
	}
}
