package payment

import (
	"context"

	"soukly-be/internal/order"
)

// Gateway registry keys. cod and instapay are fixed; online methods
// route to the configured default gateway.
const (
	GatewayKashier  = "kashier"
	GatewayPaymob   = "paymob"
	GatewayCOD      = "cod"
	GatewayInstapay = "instapay"
)

// Strategy encapsulates how one payment method is initiated and how
// gateway callbacks mutate order state.
type Strategy interface {
	// CanHandle reports whether the order's payment method belongs to
	// this strategy.
	CanHandle(o *order.Order) bool

	// PaymentMethod returns the registry key this strategy registers
	// under by default.
	PaymentMethod() string

	// Execute initiates payment and returns the data the checkout flow
	// needs to render the payment UI.
	Execute(ctx context.Context, o *order.Order) (*Result, error)

	// ProcessSuccess applies a successful gateway callback. It is
	// idempotent: replaying the same transaction id is a no-op after
	// the first application.
	ProcessSuccess(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error)

	// ProcessFailure applies a failed gateway callback.
	ProcessFailure(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error)
}

// Refunder is the optional refund capability. Strategies that cannot
// refund simply do not implement it; callers type-assert before calling
// so absence is distinguishable from a refund that failed.
type Refunder interface {
	ProcessRefund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

// GatewayKeyFor maps a payment method to its gateway registry key.
// Cash on delivery and InstaPay bypass the configured online gateway.
func GatewayKeyFor(m order.PaymentMethod, defaultGateway string) string {
	switch m {
	case order.MethodCashOnDelivery:
		return GatewayCOD
	case order.MethodInstapay:
		return GatewayInstapay
	default:
		return defaultGateway
	}
}
