package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/danielodella-summer87/cafecitos-sub000/internal/errors"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/models"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/pagination"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/projection"
	"github.com/danielodella-summer87/cafecitos-sub000/internal/services"
)

// --- mock ledger service ---

type mockLedgerService struct {
	appendFn             func(tx *models.PointTransaction) (*models.PointTransaction, error)
	queryBySubjectFn     func(profileID string, q services.SubjectQuery) ([]models.PointTransaction, error)
	balanceFn            func(profileID string) (int64, error)
	cafeSummaryFn        func(profileID, cafeID string) (*projection.CafeSummary, error)
	issueFn              func(actor services.Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error)
	redeemFn             func(actor services.Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error)
	transferFn           func(actor services.Actor, fromIdentityNumber, toIdentityNumber string, amount int64, note string) (*models.PointTransaction, *models.PointTransaction, error)
	adjustFn             func(actor services.Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error)
	recentTransactionsFn func(profileID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.PointTransaction], error)
}

func (m *mockLedgerService) Append(tx *models.PointTransaction) (*models.PointTransaction, error) {
	if m.appendFn != nil {
		return m.appendFn(tx)
	}
	return tx, nil
}

func (m *mockLedgerService) QueryBySubject(profileID string, q services.SubjectQuery) ([]models.PointTransaction, error) {
	if m.queryBySubjectFn != nil {
		return m.queryBySubjectFn(profileID, q)
	}
	return nil, nil
}

func (m *mockLedgerService) Balance(profileID string) (int64, error) {
	if m.balanceFn != nil {
		return m.balanceFn(profileID)
	}
	return 0, nil
}

func (m *mockLedgerService) CafeSummary(profileID, cafeID string) (*projection.CafeSummary, error) {
	if m.cafeSummaryFn != nil {
		return m.cafeSummaryFn(profileID, cafeID)
	}
	return &projection.CafeSummary{}, nil
}

func (m *mockLedgerService) Issue(actor services.Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error) {
	if m.issueFn != nil {
		return m.issueFn(actor, identityNumber, amount, note)
	}
	return &models.PointTransaction{}, nil
}

func (m *mockLedgerService) Redeem(actor services.Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error) {
	if m.redeemFn != nil {
		return m.redeemFn(actor, identityNumber, amount, note)
	}
	return &models.PointTransaction{}, nil
}

func (m *mockLedgerService) Transfer(actor services.Actor, fromIdentityNumber, toIdentityNumber string, amount int64, note string) (*models.PointTransaction, *models.PointTransaction, error) {
	if m.transferFn != nil {
		return m.transferFn(actor, fromIdentityNumber, toIdentityNumber, amount, note)
	}
	return &models.PointTransaction{}, &models.PointTransaction{}, nil
}

func (m *mockLedgerService) Adjust(actor services.Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error) {
	if m.adjustFn != nil {
		return m.adjustFn(actor, identityNumber, amount, note)
	}
	return &models.PointTransaction{}, nil
}

func (m *mockLedgerService) RecentTransactions(profileID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.PointTransaction], error) {
	if m.recentTransactionsFn != nil {
		return m.recentTransactionsFn(profileID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.PointTransaction{}, 1, 20, 0)
	return &resp, nil
}

var _ services.LedgerServicer = (*mockLedgerService)(nil)

func setupLedgerRouter(handler *LedgerHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectStaffID(testStaffID))
	auth.POST("/points/issue", handler.Issue)
	auth.POST("/points/redeem", handler.Redeem)
	auth.POST("/points/transfer", handler.Transfer)
	auth.POST("/points/adjust", handler.Adjust)
	auth.GET("/profiles/:id/balance", handler.GetBalance)
	auth.GET("/profiles/:id/cafes/:cafeId/summary", handler.GetCafeSummary)
	auth.GET("/profiles/:id/transactions", handler.GetTransactions)
	return r
}

func TestLedgerHandler_Issue(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			issueFn: func(actor services.Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error) {
				to := testProfileID
				return &models.PointTransaction{
					ID:          "tx-1",
					Type:        models.TxTypeEarn,
					ToProfileID: &to,
					Amount:      amount,
				}, nil
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/issue",
			`{"identity_number":"30001234","amount":5}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["amount"].(float64) != 5 {
			t.Errorf("expected amount 5, got %v", tx["amount"])
		}
		if tx["tx_type"] != "earn" {
			t.Errorf("expected earn, got %v", tx["tx_type"])
		}
	})

	t.Run("returns 401 without authentication", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockStaffService{}, &mockAuditService{})
		r := gin.New()
		r.POST("/points/issue", handler.Issue)

		rec := doRequest(r, "POST", "/points/issue",
			`{"identity_number":"30001234","amount":5}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed identity number", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/issue",
			`{"identity_number":"abc-123","amount":5}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/issue",
			`{"identity_number":"30001234","amount":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("maps self-service rejection to 403", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			issueFn: func(services.Actor, string, int64, string) (*models.PointTransaction, error) {
				return nil, apperrors.ErrSelfServiceForbidden
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/issue",
			`{"identity_number":"30001234","amount":5}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SELF_SERVICE_FORBIDDEN")
	})

	t.Run("maps unknown consumer to 404", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			issueFn: func(services.Actor, string, int64, string) (*models.PointTransaction, error) {
				return nil, apperrors.ErrConsumerNotFound
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/issue",
			`{"identity_number":"30001234","amount":5}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CONSUMER_NOT_FOUND")
	})
}

func TestLedgerHandler_Redeem(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			redeemFn: func(actor services.Actor, identityNumber string, amount int64, note string) (*models.PointTransaction, error) {
				from := testProfileID
				return &models.PointTransaction{
					ID:            "tx-2",
					Type:          models.TxTypeRedeem,
					FromProfileID: &from,
					Amount:        amount,
				}, nil
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/redeem",
			`{"identity_number":"30001234","amount":3}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("maps insufficient balance to 400", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			redeemFn: func(services.Actor, string, int64, string) (*models.PointTransaction, error) {
				return nil, apperrors.ErrInsufficientBalance
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/redeem",
			`{"identity_number":"30001234","amount":100}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSUFFICIENT_BALANCE")
	})

	t.Run("maps cafe-scoped rejection to 400", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			redeemFn: func(services.Actor, string, int64, string) (*models.PointTransaction, error) {
				return nil, apperrors.ErrInsufficientCafeBalance
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/redeem",
			`{"identity_number":"30001234","amount":8}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSUFFICIENT_CAFE_BALANCE")
	})
}

func TestLedgerHandler_Transfer(t *testing.T) {
	t.Run("returns both legs on success", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			transferFn: func(actor services.Actor, from, to string, amount int64, note string) (*models.PointTransaction, *models.PointTransaction, error) {
				return &models.PointTransaction{ID: "out-1", Type: models.TxTypeTransferOut, Amount: amount},
					&models.PointTransaction{ID: "in-1", Type: models.TxTypeTransferIn, Amount: amount},
					nil
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/transfer",
			`{"from_identity_number":"30001234","to_identity_number":"30005678","amount":6}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		out := result["transfer_out"].(map[string]interface{})
		in := result["transfer_in"].(map[string]interface{})
		if out["tx_type"] != "transfer_out" || in["tx_type"] != "transfer_in" {
			t.Errorf("unexpected leg types: %v / %v", out["tx_type"], in["tx_type"])
		}
	})

	t.Run("maps same-account transfer to 400", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			transferFn: func(services.Actor, string, string, int64, string) (*models.PointTransaction, *models.PointTransaction, error) {
				return nil, nil, apperrors.ErrSameProfileTransfer
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/transfer",
			`{"from_identity_number":"30001234","to_identity_number":"30001234","amount":6}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SAME_PROFILE_TRANSFER")
	})

	t.Run("returns 400 on missing destination", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/transfer",
			`{"from_identity_number":"30001234","amount":6}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestLedgerHandler_Adjust(t *testing.T) {
	t.Run("maps owner-only rejection to 403", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			adjustFn: func(services.Actor, string, int64, string) (*models.PointTransaction, error) {
				return nil, apperrors.ErrPermissionDenied
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "POST", "/points/adjust",
			`{"identity_number":"30001234","amount":20}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PERMISSION_DENIED")
	})
}

func TestLedgerHandler_GetBalance(t *testing.T) {
	t.Run("returns the replayed balance", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			balanceFn: func(profileID string) (int64, error) {
				if profileID != testProfileID {
					t.Errorf("expected profile %s, got %s", testProfileID, profileID)
				}
				return 42, nil
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "GET", "/profiles/"+testProfileID+"/balance", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["balance"].(float64) != 42 {
			t.Errorf("expected balance 42, got %v", result["balance"])
		}
	})

	t.Run("returns 400 on malformed profile ID", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "GET", "/profiles/not-a-uuid/balance", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestLedgerHandler_GetCafeSummary(t *testing.T) {
	handler := NewLedgerHandler(&mockLedgerService{
		cafeSummaryFn: func(profileID, cafeID string) (*projection.CafeSummary, error) {
			return &projection.CafeSummary{Earned: 8, Redeemed: 2, Available: 6}, nil
		},
	}, &mockStaffService{}, &mockAuditService{})
	r := setupLedgerRouter(handler)

	rec := doRequest(r, "GET", "/profiles/"+testProfileID+"/cafes/"+testCafeID+"/summary", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["available"].(float64) != 6 {
		t.Errorf("expected available 6, got %v", result["available"])
	}
}

func TestLedgerHandler_GetTransactions(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		var gotFilter services.TransactionFilter
		ledgerSvc := &mockLedgerService{
			recentTransactionsFn: func(profileID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.PointTransaction], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.PointTransaction{}, page.Page, page.PageSize, 0)
				return &resp, nil
			},
		}
		handler := NewLedgerHandler(ledgerSvc, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "GET", "/profiles/"+testProfileID+"/transactions?tx_type=redeem&cafe_id="+testCafeID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.TxTypeRedeem {
			t.Error("expected tx_type filter to be passed through")
		}
		if gotFilter.CafeID == nil || *gotFilter.CafeID != testCafeID {
			t.Error("expected cafe_id filter to be passed through")
		}
	})

	t.Run("returns 400 on unknown tx_type", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "GET", "/profiles/"+testProfileID+"/transactions?tx_type=refund", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad timestamp", func(t *testing.T) {
		handler := NewLedgerHandler(&mockLedgerService{}, &mockStaffService{}, &mockAuditService{})
		r := setupLedgerRouter(handler)

		rec := doRequest(r, "GET", "/profiles/"+testProfileID+"/transactions?from=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
