package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"

	"kumoney/internal/metrics"
	"kumoney/internal/models"
	"kumoney/internal/services"
	"kumoney/internal/testutil"
)

// echo replies with the body the handler received.
func echo(c *gin.Context) {
	raw, _ := io.ReadAll(c.Request.Body)
	c.JSON(http.StatusOK, gin.H{"body": string(raw)})
}

func setupLimitRouter(db *gorm.DB, userID string) *gin.Engine {
	limits := services.NewLimitService(db)
	categories := services.NewCategoryService(db)

	r := gin.New()
	auth := r.Group("", injectUser(userID))
	auth.POST("/accounts", AccountLimit(limits), echo)
	auth.PUT("/accounts/:id", AccountBalanceLimit(limits), echo)
	auth.POST("/categories", CategoryLimit(limits), echo)
	auth.POST("/transactions", TransactionLimit(limits, categories), echo)
	return r
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func freeUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestSubscription(t, db, user.ID, models.PlanFree, nil)
	return user
}

func assertDetail(t *testing.T, rec *httptest.ResponseRecorder, key string, want float64) {
	t.Helper()
	details, ok := errorObject(t, parseBody(t, rec))["details"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected details in %s", rec.Body.String())
	}
	if details[key] != want {
		t.Errorf("expected details.%s = %v, got %v", key, want, details[key])
	}
}

func TestAccountLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := freeUser(t, db)
	r := setupLimitRouter(db, user.ID)

	t.Run("passes the body through", func(t *testing.T) {
		payload := `{"title":"Dompet","icon":"wallet","balance":1000}`
		rec := send(r, http.MethodPost, "/accounts", payload)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := parseBody(t, rec)["body"]; got != payload {
			t.Errorf("handler saw %q", got)
		}
	})

	t.Run("denies opening balance over the total limit", func(t *testing.T) {
		testutil.CreateTestAccount(t, db, user.ID, 9_000_000)

		rec := send(r, http.MethodPost, "/accounts", `{"title":"Tabungan","icon":"bank","balance":2000000}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseBody(t, rec), "ACCOUNT_BALANCE_LIMIT_REACHED")
		assertDetail(t, rec, "limit", 10_000_000)
		assertDetail(t, rec, "current_total_balance", 9_000_000)
		assertDetail(t, rec, "new_total_balance", 11_000_000)
		assertDetail(t, rec, "remaining", 1_000_000)
	})

	t.Run("allows reaching the limit exactly", func(t *testing.T) {
		rec := send(r, http.MethodPost, "/accounts", `{"title":"Tabungan","icon":"bank","balance":1000000}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("denies beyond the account count", func(t *testing.T) {
		testutil.CreateTestAccount(t, db, user.ID, 0)
		testutil.CreateTestAccount(t, db, user.ID, 0)
		before := promtestutil.ToFloat64(metrics.LimitDenials.WithLabelValues(string(services.LimitAccountCount)))

		rec := send(r, http.MethodPost, "/accounts", `{"title":"Extra","icon":"wallet"}`)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseBody(t, rec), "ACCOUNT_LIMIT_REACHED")
		assertDetail(t, rec, "limit", 3)
		assertDetail(t, rec, "current", 3)

		after := promtestutil.ToFloat64(metrics.LimitDenials.WithLabelValues(string(services.LimitAccountCount)))
		if after != before+1 {
			t.Errorf("expected denial metric to increase by 1, got %v -> %v", before, after)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := send(r, http.MethodPost, "/accounts", `{"balance":"lots"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseBody(t, rec), "INVALID_INPUT")
	})
}

func TestLimitBodySize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := freeUser(t, db)
	r := setupLimitRouter(db, user.ID)

	t.Run("oversized body is refused", func(t *testing.T) {
		payload := `{"title":"Dompet","icon":"wallet","description":"` + strings.Repeat("x", maxPeekBytes) + `"}`
		rec := send(r, http.MethodPost, "/accounts", payload)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", rec.Code)
		}
		assertErrorCode(t, parseBody(t, rec), "PAYLOAD_TOO_LARGE")
	})

	t.Run("body at the peek limit passes intact", func(t *testing.T) {
		prefix, suffix := `{"title":"Dompet","icon":"wallet","description":"`, `"}`
		payload := prefix + strings.Repeat("x", maxPeekBytes-len(prefix)-len(suffix)) + suffix
		rec := send(r, http.MethodPost, "/accounts", payload)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := parseBody(t, rec)["body"]; got != payload {
			t.Errorf("handler saw a %d byte body, want %d", len(got.(string)), len(payload))
		}
	})
}

func TestAccountBalanceLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := freeUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID, 4_000_000)
	testutil.CreateTestAccount(t, db, user.ID, 5_000_000)
	r := setupLimitRouter(db, user.ID)
	path := "/accounts/" + account.ID

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"no balance field", path, `{"title":"Renamed"}`, http.StatusOK},
		{"unchanged balance", path, `{"balance":4000000}`, http.StatusOK},
		{"up to the limit", path, `{"balance":5000000}`, http.StatusOK},
		{"over the limit", path, `{"balance":5000001}`, http.StatusForbidden},
		{"unknown account left to the handler", "/accounts/0192a000-dead-7000-8000-000000000000", `{"balance":99000000}`, http.StatusOK},
		{"malformed id left to the handler", "/accounts/not-a-uuid", `{"balance":99000000}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(r, http.MethodPut, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("deny payload", func(t *testing.T) {
		rec := send(r, http.MethodPut, path, `{"balance":7000000}`)
		assertErrorCode(t, parseBody(t, rec), "ACCOUNT_BALANCE_LIMIT_REACHED")
		assertDetail(t, rec, "old_balance", 4_000_000)
		assertDetail(t, rec, "new_balance", 7_000_000)
		assertDetail(t, rec, "current_total_balance", 9_000_000)
		assertDetail(t, rec, "new_total_balance", 12_000_000)
	})
}

func TestCategoryLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := freeUser(t, db)
	r := setupLimitRouter(db, user.ID)

	for i := 0; i < 10; i++ {
		testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)
	}

	rec := send(r, http.MethodPost, "/categories", `{"title":"Jajan","icon":"food","type":"expenses"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, parseBody(t, rec), "CATEGORY_LIMIT_REACHED")
	assertDetail(t, rec, "limit", 10)
	assertDetail(t, rec, "current", 10)
}

func TestTransactionLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := freeUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID, 0)
	expenses := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)
	incomes := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncomes)
	testutil.CreateTestTransaction(t, db, user.ID, account, expenses, 9_500_000)

	stranger := freeUser(t, db)
	foreign := testutil.CreateTestCategory(t, db, stranger.ID, models.CategoryTypeIncomes)

	r := setupLimitRouter(db, user.ID)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing category", `{"amount":1000}`, http.StatusBadRequest, "CATEGORY_ID_REQUIRED"},
		{"zero amount", `{"category_id":"` + expenses.ID + `","amount":0}`, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"negative amount", `{"category_id":"` + expenses.ID + `","amount":-5}`, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"malformed category id", `{"category_id":"abc","amount":10}`, http.StatusNotFound, "CATEGORY_NOT_FOUND"},
		{"someone else's category", `{"category_id":"` + foreign.ID + `","amount":10}`, http.StatusNotFound, "CATEGORY_NOT_FOUND"},
		{"expenses within limit", `{"category_id":"` + expenses.ID + `","amount":500000}`, http.StatusOK, ""},
		{"expenses over limit", `{"category_id":"` + expenses.ID + `","amount":500001}`, http.StatusForbidden, "TRANSACTION_LIMIT_REACHED"},
		{"incomes counted separately", `{"category_id":"` + incomes.ID + `","amount":10000000}`, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(r, http.MethodPost, "/transactions", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantCode != "" {
				assertErrorCode(t, parseBody(t, rec), tt.wantCode)
			} else if got := parseBody(t, rec)["body"]; got != tt.body {
				t.Errorf("handler saw %q, want %q", got, tt.body)
			}
		})
	}

	t.Run("deny payload", func(t *testing.T) {
		rec := send(r, http.MethodPost, "/transactions", `{"category_id":"`+expenses.ID+`","amount":600000}`)
		errObj := errorObject(t, parseBody(t, rec))
		details := errObj["details"].(map[string]interface{})
		if details["type"] != "expenses" {
			t.Errorf("expected type expenses, got %v", details["type"])
		}
		assertDetail(t, rec, "current", 9_500_000)
		assertDetail(t, rec, "new_amount", 600_000)
		assertDetail(t, rec, "after_update", 10_100_000)
	})
}

func TestLimitWithoutSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	r := setupLimitRouter(db, user.ID)

	rec := send(r, http.MethodPost, "/categories", `{}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	assertErrorCode(t, parseBody(t, rec), "NO_SUBSCRIPTION")
}

func TestLimitRequiresUser(t *testing.T) {
	r := gin.New()
	r.POST("/categories", CategoryLimit(services.NewLimitService(nil)), echo)

	rec := send(r, http.MethodPost, "/categories", `{}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
