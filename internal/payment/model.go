package payment

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Result describes a payment-initiation outcome. It is built once per
// initiation and never mutated afterwards.
type Result struct {
	MerchantID     string `json:"merchant_id,omitempty"`
	OrderReference string `json:"order_reference"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	Hash           string `json:"hash,omitempty"`
	Mode           string `json:"mode"`
	RedirectURL    string `json:"redirect_url,omitempty"`
	FailureURL     string `json:"failure_url,omitempty"`
	WebhookURL     string `json:"webhook_url,omitempty"`

	// Hosted-checkout extensions.
	IframeURL    string `json:"iframe_url,omitempty"`
	IntentionID  string `json:"intention_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

type RefundRequest struct {
	OrderID uint    `json:"order_id"`
	Amount  float64 `json:"amount,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

type RefundResult struct {
	OrderID       uint   `json:"order_id"`
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

func refundFailure(orderID uint, format string, args ...interface{}) *RefundResult {
	return &RefundResult{
		OrderID: orderID,
		Success: false,
		Message: fmt.Sprintf(format, args...),
	}
}

// formatAmount renders an order total the way gateways expect it.
func formatAmount(total float64) string {
	return strconv.FormatFloat(total, 'f', 2, 64)
}

// asString renders a decoded webhook value as a plain string.
func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
