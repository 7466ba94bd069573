package payment

import (
	"context"
	"fmt"
	"sort"

	"soukly-be/internal/config"
	"soukly-be/internal/logger"
	"soukly-be/internal/order"

	"go.uber.org/zap"
)

// Processor routes payment operations to the strategy owning an
// order's payment method.
type Processor struct {
	strategies     map[string]Strategy
	methodGateways map[order.PaymentMethod]string
	defaultGateway string
	repo           order.Repository
}

func NewProcessor(cfg *config.Config, repo order.Repository) *Processor {
	return &Processor{
		strategies: make(map[string]Strategy),
		methodGateways: map[order.PaymentMethod]string{
			order.MethodCreditCard:     cfg.DefaultGateway,
			order.MethodWallet:         cfg.DefaultGateway,
			order.MethodCashOnDelivery: GatewayCOD,
			order.MethodInstapay:       GatewayInstapay,
		},
		defaultGateway: cfg.DefaultGateway,
		repo:           repo,
	}
}

// AddStrategy registers a strategy under its own gateway key, plus any
// extra keys (a gateway can serve several registry names).
func (p *Processor) AddStrategy(s Strategy, keys ...string) {
	p.strategies[s.PaymentMethod()] = s
	for _, k := range keys {
		p.strategies[k] = s
	}
}

// resolveStrategy finds the strategy for an order's payment method.
// Cash on delivery and InstaPay resolve directly, other methods go
// through the method-to-gateway table with the configured default as
// fallback, and as a last resort each registered strategy is asked
// whether it can handle the order.
func (p *Processor) resolveStrategy(o *order.Order) (Strategy, error) {
	if o.PaymentMethod == order.MethodCashOnDelivery {
		if s, ok := p.strategies[GatewayCOD]; ok {
			return s, nil
		}
	}
	if o.PaymentMethod == order.MethodInstapay {
		if s, ok := p.strategies[GatewayInstapay]; ok {
			return s, nil
		}
	}

	gateway, ok := p.methodGateways[o.PaymentMethod]
	if !ok {
		gateway = p.defaultGateway
	}
	if s, ok := p.strategies[gateway]; ok {
		return s, nil
	}

	for _, s := range p.strategies {
		if s.CanHandle(o) {
			return s, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoStrategy, o.PaymentMethod)
}

// ProcessPayment initiates payment for the order.
func (p *Processor) ProcessPayment(ctx context.Context, o *order.Order) (*Result, error) {
	s, err := p.resolveStrategy(o)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("initiating payment",
		zap.Uint("order_id", o.ID),
		zap.String("payment_method", string(o.PaymentMethod)),
		zap.String("strategy", s.PaymentMethod()),
	)

	return s.Execute(ctx, o)
}

// ProcessPaymentSuccess applies a successful gateway callback.
func (p *Processor) ProcessPaymentSuccess(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error) {
	s, err := p.resolveStrategy(o)
	if err != nil {
		return nil, err
	}
	return s.ProcessSuccess(ctx, o, data)
}

// ProcessPaymentFailure applies a failed gateway callback.
func (p *Processor) ProcessPaymentFailure(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error) {
	s, err := p.resolveStrategy(o)
	if err != nil {
		return nil, err
	}
	return s.ProcessFailure(ctx, o, data)
}

// ProcessRefund attempts a refund and always reports the outcome as a
// result. Missing orders, unresolvable strategies, and methods without
// refund support come back as failed results rather than errors so the
// admin surface renders them uniformly.
func (p *Processor) ProcessRefund(ctx context.Context, req RefundRequest) *RefundResult {
	log := logger.FromCtx(ctx).With(zap.Uint("order_id", req.OrderID))

	o, err := p.repo.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		log.Warn("refund requested for unknown order", zap.Error(err))
		return refundFailure(req.OrderID, "order %d not found", req.OrderID)
	}

	s, err := p.resolveStrategy(o)
	if err != nil {
		return refundFailure(req.OrderID, "no payment strategy for method %q", o.PaymentMethod)
	}

	r, ok := s.(Refunder)
	if !ok {
		return refundFailure(req.OrderID, "payment method %q does not support refunds", o.PaymentMethod)
	}

	res, err := r.ProcessRefund(ctx, req)
	if err != nil {
		log.Error("refund failed", zap.Error(err))
		return refundFailure(req.OrderID, "refund failed: %v", err)
	}
	return res
}

// SupportsPaymentMethod reports whether a strategy would resolve for
// the given method.
func (p *Processor) SupportsPaymentMethod(m order.PaymentMethod) bool {
	_, err := p.resolveStrategy(&order.Order{PaymentMethod: m})
	return err == nil
}

// SupportedPaymentMethods lists methods a strategy resolves for.
func (p *Processor) SupportedPaymentMethods() []order.PaymentMethod {
	all := []order.PaymentMethod{
		order.MethodCashOnDelivery,
		order.MethodCreditCard,
		order.MethodWallet,
		order.MethodInstapay,
	}

	var supported []order.PaymentMethod
	for _, m := range all {
		if p.SupportsPaymentMethod(m) {
			supported = append(supported, m)
		}
	}
	sort.Slice(supported, func(i, j int) bool { return supported[i] < supported[j] })
	return supported
}
