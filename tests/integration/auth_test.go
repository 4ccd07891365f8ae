package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
)

func TestLoginFlow(t *testing.T) {
	app := setupApp(t)
	cafe := app.createCafe(t, "Café Flores")
	staff, password := app.createStaff(t, cafe.ID, false)

	t.Run("valid_login_returns_token_pair", func(t *testing.T) {
		body := fmt.Sprintf(`{"email":%q,"password":%q}`, staff.Email, password)
		rec := app.request("POST", "/api/v1/auth/login", body, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["access_token"] == "" || result["refresh_token"] == "" {
			t.Error("expected both tokens")
		}
	})

	t.Run("wrong_password_rejected", func(t *testing.T) {
		body := fmt.Sprintf(`{"email":%q,"password":"wrong"}`, staff.Email)
		rec := app.request("POST", "/api/v1/auth/login", body, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestRefreshFlow(t *testing.T) {
	app := setupApp(t)
	cafe := app.createCafe(t, "Café Belgrano")
	staff, password := app.createStaff(t, cafe.ID, false)

	body := fmt.Sprintf(`{"email":%q,"password":%q}`, staff.Email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	refreshToken := parseJSON(t, rec)["refresh_token"].(string)

	t.Run("refresh_rotates_tokens", func(t *testing.T) {
		body := fmt.Sprintf(`{"refresh_token":%q}`, refreshToken)
		rec := app.request("POST", "/api/v1/auth/refresh", body, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		newToken := parseJSON(t, rec)["refresh_token"].(string)
		if newToken == refreshToken {
			t.Error("expected a rotated refresh token")
		}

		// The old token no longer matches the stored hash.
		body = fmt.Sprintf(`{"refresh_token":%q}`, refreshToken)
		rec = app.request("POST", "/api/v1/auth/refresh", body, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected old token to be rejected, got %d", rec.Code)
		}
	})
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	app := setupApp(t)
	consumer := app.createProfile(t, models.RoleConsumer)

	paths := []struct {
		method string
		path   string
		body   string
	}{
		{"POST", "/api/v1/points/issue", fmt.Sprintf(`{"identity_number":%q,"amount":5}`, consumer.IdentityNumber)},
		{"POST", "/api/v1/points/redeem", fmt.Sprintf(`{"identity_number":%q,"amount":5}`, consumer.IdentityNumber)},
		{"GET", "/api/v1/profiles/" + consumer.ID + "/balance", ""},
		{"GET", "/api/v1/reports/alerts", ""},
	}
	for _, p := range paths {
		rec := app.request(p.method, p.path, p.body, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestReportsRequireOwner(t *testing.T) {
	app := setupApp(t)
	cafe := app.createCafe(t, "Café Villa Crespo")
	staff, staffPassword := app.createStaff(t, cafe.ID, false)
	owner, ownerPassword := app.createStaff(t, cafe.ID, true)
	staffToken := app.login(t, staff.Email, staffPassword)
	ownerToken := app.login(t, owner.Email, ownerPassword)

	rec := app.request("GET", "/api/v1/reports/rollup?scope=global&window=week", "", staffToken)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for staff, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/reports/rollup?scope=global&window=week", "", ownerToken)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for owner, got %d: %s", rec.Code, rec.Body.String())
	}
}
