package payment

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// notificationSchema is the subset of the invoice callback the reconciler relies on.
const notificationSchema = `{
  "type": "object",
  "required": ["external_id", "status"],
  "properties": {
    "id":             {"type": "string"},
    "external_id":    {"type": "string", "minLength": 1},
    "status":         {"type": "string", "minLength": 1},
    "amount":         {"type": "number", "minimum": 0},
    "paid_amount":    {"type": "number", "minimum": 0},
    "payment_method": {"type": "string"},
    "paid_at":        {"type": "string"}
  }
}`

var compiledNotificationSchema = mustCompileSchema(notificationSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("payment: invalid schema: %v", err))
	}
	return schema
}

// Notification is a decoded invoice callback.
type Notification struct {
	InvoiceID     string
	ExternalID    string
	Status        string
	Amount        int64
	PaidAmount    int64
	PaymentMethod string
	PaidAt        *time.Time
	Raw           string
}

type notificationPayload struct {
	ID            string  `json:"id"`
	ExternalID    string  `json:"external_id"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	PaidAmount    float64 `json:"paid_amount"`
	PaymentMethod string  `json:"payment_method"`
	PaidAt        string  `json:"paid_at"`
}

// ValidationError lists the schema violations of a rejected payload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid notification: " + strings.Join(e.Problems, "; ")
}

// ParseNotification validates body against the callback schema and decodes it.
func ParseNotification(body []byte) (*Notification, error) {
	result, err := compiledNotificationSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, &ValidationError{Problems: problems}
	}

	var p notificationPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}

	n := &Notification{
		InvoiceID:     p.ID,
		ExternalID:    p.ExternalID,
		Status:        p.Status,
		Amount:        int64(math.Round(p.Amount)),
		PaidAmount:    int64(math.Round(p.PaidAmount)),
		PaymentMethod: p.PaymentMethod,
		Raw:           string(body),
	}
	if p.PaidAt != "" {
		paidAt, err := time.Parse(time.RFC3339, p.PaidAt)
		if err != nil {
			return nil, &ValidationError{Problems: []string{fmt.Sprintf("paid_at: %v", err)}}
		}
		n.PaidAt = &paidAt
	}
	return n, nil
}

// CapturedAmount is the amount actually paid, falling back to the invoice amount.
func (n *Notification) CapturedAmount() int64 {
	if n.PaidAmount > 0 {
		return n.PaidAmount
	}
	return n.Amount
}
