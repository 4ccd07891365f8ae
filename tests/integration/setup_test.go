package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danielodella-summer87/cafecitos-sub000/internal/handlers"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/logger"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/middleware"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/services"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

// identityCounter hands out unique identity numbers across tests.
var identityCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Profile{},
		&models.Cafe{},
		&models.StaffMember{},
		&models.PointTransaction{},
		&models.Setting{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	staffService := services.NewStaffService(db)
	directoryService := services.NewDirectoryService(db)
	policyService := services.NewPolicyService(db)
	ledgerService := services.NewLedgerService(db, directoryService, policyService)
	reportService := services.NewReportService(db)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(staffService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, staffService, auditService)
	reportHandler := handlers.NewReportHandler(reportService, staffService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	points := protected.Group("/points")
	points.POST("/issue", ledgerHandler.Issue)
	points.POST("/redeem", ledgerHandler.Redeem)
	points.POST("/transfer", ledgerHandler.Transfer)
	points.POST("/adjust", ledgerHandler.Adjust)

	profiles := protected.Group("/profiles")
	profiles.GET("/:id/balance", ledgerHandler.GetBalance)
	profiles.GET("/:id/cafes/:cafeId/summary", ledgerHandler.GetCafeSummary)
	profiles.GET("/:id/transactions", ledgerHandler.GetTransactions)

	reports := protected.Group("/reports")
	reports.GET("/rollup", reportHandler.Rollup)
	reports.GET("/top-consumers", reportHandler.TopConsumers)
	reports.GET("/alerts", reportHandler.Alerts)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// createCafe seeds a café with an owner profile.
func (app *testApp) createCafe(t *testing.T, name string) *models.Cafe {
	t.Helper()

	owner := app.createProfile(t, models.RoleOwner)
	cafe := &models.Cafe{
		Name:           name,
		Address:        "Av. Corrientes 1234",
		OwnerProfileID: owner.ID,
		IsActive:       true,
	}
	if err := app.DB.Create(cafe).Error; err != nil {
		t.Fatalf("failed to create cafe: %v", err)
	}
	return cafe
}

// createProfile seeds a profile with a unique identity number.
func (app *testApp) createProfile(t *testing.T, role models.Role) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		IdentityNumber: fmt.Sprintf("4000%06d", identityCounter.Add(1)),
		Role:           role,
		FirstName:      "Inte",
		LastName:       "Gración",
		IsActive:       true,
	}
	if err := app.DB.Create(profile).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return profile
}

// createStaff seeds a staff login and returns it with its plaintext password.
func (app *testApp) createStaff(t *testing.T, cafeID string, isOwner bool) (*models.StaffMember, string) {
	t.Helper()

	const password = "password123"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	staff := &models.StaffMember{
		CafeID:      cafeID,
		Email:       fmt.Sprintf("staff%d@integration.test", identityCounter.Add(1)),
		Password:    string(hash),
		DisplayName: "Test Staff",
		CanIssue:    true,
		CanRedeem:   true,
		IsOwner:     isOwner,
		IsActive:    true,
	}
	if err := app.DB.Create(staff).Error; err != nil {
		t.Fatalf("failed to create staff: %v", err)
	}
	return staff, password
}

// login authenticates a staff login and returns the access token.
func (app *testApp) login(t *testing.T, email, password string) string {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string)
}
