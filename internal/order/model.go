package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type PaymentMethod string

const (
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	MethodCreditCard     PaymentMethod = "credit_card"
	MethodWallet         PaymentMethod = "wallet"
	MethodInstapay       PaymentMethod = "instapay"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentInReview PaymentStatus = "in_review"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentDetails is the gateway-specific blob stored on the order.
// Strategies merge into it, they never overwrite it wholesale.
type PaymentDetails map[string]interface{}

func (d PaymentDetails) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (d *PaymentDetails) Scan(src interface{}) error {
	if src == nil {
		*d = PaymentDetails{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported payment_details type %T", src)
	}

	return json.Unmarshal(raw, d)
}

// Merge returns a copy of d with the given keys set on top of the
// existing ones. Prior keys not present in extra are preserved.
func (d PaymentDetails) Merge(extra map[string]interface{}) PaymentDetails {
	merged := make(PaymentDetails, len(d)+len(extra))
	for k, v := range d {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

type Order struct {
	ID             uint
	UserID         *uint
	Total          float64
	PaymentMethod  PaymentMethod
	PaymentStatus  PaymentStatus
	PaymentID      string
	PaymentDetails PaymentDetails
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
