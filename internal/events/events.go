package events

import (
	"encoding/json"

	"soukly-be/internal/order"
)

const (
	PaymentSucceededName = "payment.succeeded"
	PaymentFailedName    = "payment.failed"
)

type Event interface {
	Name() string
}

// PaymentSucceeded is emitted exactly once per handled webhook after the
// order's payment mutation commits.
type PaymentSucceeded struct {
	Order   *order.Order
	Payload json.RawMessage
}

func (PaymentSucceeded) Name() string { return PaymentSucceededName }

type PaymentFailed struct {
	Order   *order.Order
	Payload json.RawMessage
	Reason  string
}

func (PaymentFailed) Name() string { return PaymentFailedName }
