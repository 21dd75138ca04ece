package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"kumoney/internal/metrics"
)

const (
	invoiceDurationSeconds = 86400
	invoiceCurrency        = "IDR"
)

// XenditClient creates invoices through the Xendit REST API.
type XenditClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewXenditClient creates a client whose every call is bounded by timeout.
func NewXenditClient(baseURL, secretKey string, timeout time.Duration) *XenditClient {
	return &XenditClient{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type createInvoiceRequest struct {
	ExternalID         string `json:"external_id"`
	Amount             int64  `json:"amount"`
	PayerEmail         string `json:"payer_email"`
	Description        string `json:"description"`
	InvoiceDuration    int    `json:"invoice_duration"`
	Currency           string `json:"currency"`
	ReminderTime       int    `json:"reminder_time"`
	SuccessRedirectURL string `json:"success_redirect_url"`
	FailureRedirectURL string `json:"failure_redirect_url"`
}

type invoiceResponse struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Status     string    `json:"status"`
	InvoiceURL string    `json:"invoice_url"`
	ExpiryDate time.Time `json:"expiry_date"`
}

type errorResponse struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// CreateCheckout creates a 24h IDR invoice for req.
func (c *XenditClient) CreateCheckout(ctx context.Context, req CheckoutRequest) (session *CheckoutSession, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = ErrorCode(err)
		}
		metrics.GatewayRequestDuration.WithLabelValues("create_invoice", outcome).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(createInvoiceRequest{
		ExternalID:         req.ExternalID,
		Amount:             req.Amount,
		PayerEmail:         req.PayerEmail,
		Description:        req.Description,
		InvoiceDuration:    invoiceDurationSeconds,
		Currency:           invoiceCurrency,
		ReminderTime:       1,
		SuccessRedirectURL: req.SuccessURL,
		FailureRedirectURL: req.FailureURL,
	})
	if err != nil {
		return nil, &GatewayError{Code: DefaultErrorCode, Message: "failed to encode invoice", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/invoices", bytes.NewReader(body))
	if err != nil {
		return nil, &GatewayError{Code: DefaultErrorCode, Message: "failed to build request", Err: err}
	}
	httpReq.SetBasicAuth(c.secretKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		msg := "gateway unreachable"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			msg = "gateway timed out"
		}
		return nil, &GatewayError{Code: DefaultErrorCode, Message: msg, Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &GatewayError{Code: DefaultErrorCode, Message: "failed to read response", Retryable: true, Err: err}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr errorResponse
		_ = json.Unmarshal(raw, &apiErr)
		gwErr := &GatewayError{
			Code:       apiErr.ErrorCode,
			Message:    apiErr.Message,
			StatusCode: resp.StatusCode,
			Retryable:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
		if gwErr.Code == "" {
			gwErr.Code = DefaultErrorCode
		}
		if gwErr.Message == "" {
			gwErr.Message = fmt.Sprintf("unexpected status: %s", resp.Status)
		}
		return nil, gwErr
	}

	var invoice invoiceResponse
	if err := json.Unmarshal(raw, &invoice); err != nil {
		return nil, &GatewayError{Code: DefaultErrorCode, Message: "failed to decode invoice", Err: err}
	}

	return &CheckoutSession{
		InvoiceID:   invoice.ID,
		CheckoutURL: invoice.InvoiceURL,
		Status:      invoice.Status,
		ExpiresAt:   invoice.ExpiryDate,
	}, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
