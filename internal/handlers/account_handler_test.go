package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "kumoney/internal/errors"
	"kumoney/internal/models"
	"kumoney/internal/pagination"
	"kumoney/internal/services"
)

const testAccountID = "0190a1b2-c3d4-7e5f-8a9b-aaaaaaaaaaaa"

// --- mock account service ---

type mockAccountService struct {
	createAccountFn   func(userID, title, icon, description string, balance int64) (*models.Account, error)
	getUserAccountsFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	getAccountByIDFn  func(userID, accountID string) (*models.Account, error)
	updateAccountFn   func(userID, accountID string, fields services.AccountUpdateFields) (*models.Account, error)
	deleteAccountFn   func(userID, accountID string) error
}

func (m *mockAccountService) CreateAccount(userID, title, icon, description string, balance int64) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(userID, title, icon, description, balance)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	if m.getUserAccountsFn != nil {
		return m.getUserAccountsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Account{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAccountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(userID, accountID)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) UpdateAccount(userID, accountID string, fields services.AccountUpdateFields) (*models.Account, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(userID, accountID, fields)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) DeleteAccount(userID, accountID string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(userID, accountID)
	}
	return nil
}

// verify interface compliance
var _ services.AccountServicer = (*mockAccountService)(nil)

func setupAccountRouter(handler *AccountHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/accounts", handler.CreateAccount)
	auth.GET("/accounts", handler.GetUserAccounts)
	auth.GET("/accounts/:id", handler.GetAccountByID)
	auth.PUT("/accounts/:id", handler.UpdateAccount)
	auth.DELETE("/accounts/:id", handler.DeleteAccount)
	return r
}

func TestAccountHandler_CreateAccount(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		acctSvc := &mockAccountService{
			createAccountFn: func(userID, title, icon, desc string, balance int64) (*models.Account, error) {
				return &models.Account{
					Base:        models.Base{ID: testAccountID},
					UserID:      userID,
					Title:       title,
					Icon:        icon,
					Description: desc,
					Balance:     balance,
				}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc))

		rec := doRequest(r, "POST", "/accounts", `{"title":"Dompet","icon":"wallet","balance":50000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		acct := parseJSON(t, rec)["account"].(map[string]interface{})
		if acct["title"] != "Dompet" {
			t.Errorf("expected Dompet, got %v", acct["title"])
		}
		if acct["balance"] != float64(50000) {
			t.Errorf("expected balance 50000, got %v", acct["balance"])
		}
	})

	t.Run("returns 400 on missing title", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}))

		rec := doRequest(r, "POST", "/accounts", `{"icon":"wallet"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("passes service errors through", func(t *testing.T) {
		acctSvc := &mockAccountService{
			createAccountFn: func(_, _, _, _ string, _ int64) (*models.Account, error) {
				return nil, apperrors.ErrAccountLimitReached
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc))

		rec := doRequest(r, "POST", "/accounts", `{"title":"Dompet","icon":"wallet"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_LIMIT_REACHED")
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		r := gin.New()
		r.POST("/accounts", NewAccountHandler(&mockAccountService{}).CreateAccount)

		rec := doRequest(r, "POST", "/accounts", `{"title":"Dompet","icon":"wallet"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAccountHandler_GetUserAccounts(t *testing.T) {
	t.Run("returns 200 with paginated accounts", func(t *testing.T) {
		var gotPage pagination.PageRequest
		acctSvc := &mockAccountService{
			getUserAccountsFn: func(_ string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
				gotPage = page
				resp := pagination.NewPageResponse([]models.Account{{Title: "Dompet"}}, 2, 5, 6)
				return &resp, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc))

		rec := doRequest(r, "GET", "/accounts?page=2&page_size=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("expected page 2 size 5, got %+v", gotPage)
		}
		result := parseJSON(t, rec)
		if result["total_pages"] != float64(2) {
			t.Errorf("expected 2 total pages, got %v", result["total_pages"])
		}
	})

	t.Run("returns 400 on oversized page", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}))

		rec := doRequest(r, "GET", "/accounts?page_size=1000", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAccountHandler_GetAccountByID(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		acctSvc := &mockAccountService{
			getAccountByIDFn: func(_, accountID string) (*models.Account, error) {
				return &models.Account{Base: models.Base{ID: accountID}, Title: "Dompet"}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc))

		rec := doRequest(r, "GET", "/accounts/"+testAccountID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		acct := parseJSON(t, rec)["account"].(map[string]interface{})
		if acct["id"] != testAccountID {
			t.Errorf("expected %s, got %v", testAccountID, acct["id"])
		}
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}))

		rec := doRequest(r, "GET", "/accounts/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		acctSvc := &mockAccountService{
			getAccountByIDFn: func(_, _ string) (*models.Account, error) {
				return nil, apperrors.ErrAccountNotFound
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc))

		rec := doRequest(r, "GET", "/accounts/"+testAccountID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_NOT_FOUND")
	})
}

func TestAccountHandler_UpdateAccount(t *testing.T) {
	t.Run("passes only provided fields", func(t *testing.T) {
		var got services.AccountUpdateFields
		acctSvc := &mockAccountService{
			updateAccountFn: func(_, _ string, fields services.AccountUpdateFields) (*models.Account, error) {
				got = fields
				return &models.Account{Balance: *fields.Balance}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc))

		rec := doRequest(r, "PUT", "/accounts/"+testAccountID, `{"balance":0}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Balance == nil || *got.Balance != 0 {
			t.Errorf("expected explicit zero balance, got %v", got.Balance)
		}
		if got.Title != nil || got.Icon != nil || got.Description != nil {
			t.Errorf("expected other fields nil, got %+v", got)
		}
	})

	t.Run("returns 400 on empty body", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}))

		rec := doRequest(r, "PUT", "/accounts/"+testAccountID, `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var deleted string
		acctSvc := &mockAccountService{
			deleteAccountFn: func(_, accountID string) error {
				deleted = accountID
				return nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc))

		rec := doRequest(r, "DELETE", "/accounts/"+testAccountID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deleted != testAccountID {
			t.Errorf("expected %s deleted, got %q", testAccountID, deleted)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		acctSvc := &mockAccountService{
			deleteAccountFn: func(_, _ string) error { return apperrors.ErrAccountNotFound },
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc))

		rec := doRequest(r, "DELETE", "/accounts/"+testAccountID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
