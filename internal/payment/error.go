package payment

import "errors"

var (
	// ErrNoStrategy means no registered strategy can serve the order's
	// payment method. This is a deployment misconfiguration, not a
	// recoverable request error.
	ErrNoStrategy = errors.New("no payment strategy found")

	ErrUnsupportedGateway   = errors.New("unsupported payment gateway")
	ErrMissingPaymentMethod = errors.New("order has no payment method")
)
