package payment

import (
	"context"

	"soukly-be/internal/config"
	"soukly-be/internal/logger"
	"soukly-be/internal/order"

	"go.uber.org/zap"
)

// CODStrategy handles cash-on-delivery orders. Nothing is collected at
// checkout; the payment stays pending until settlement is confirmed
// out of band (courier remittance).
type CODStrategy struct {
	cfg  *config.Config
	repo order.Repository
}

func NewCODStrategy(cfg *config.Config, repo order.Repository) *CODStrategy {
	return &CODStrategy{cfg: cfg, repo: repo}
}

func (s *CODStrategy) PaymentMethod() string { return GatewayCOD }

func (s *CODStrategy) CanHandle(o *order.Order) bool {
	return o.PaymentMethod == order.MethodCashOnDelivery
}

func (s *CODStrategy) Execute(ctx context.Context, o *order.Order) (*Result, error) {
	logger.FromCtx(ctx).Info("cash on delivery order accepted",
		zap.Uint("order_id", o.ID),
	)

	return &Result{
		OrderReference: OrderReference(s.cfg.AppName, o.ID),
		Amount:         formatAmount(o.Total),
		Currency:       "EGP",
	}, nil
}

func (s *CODStrategy) ProcessSuccess(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error) {
	txnID := asString(data["transaction_id"])
	if txnID == "" {
		txnID = asString(data["id"])
	}
	return markPaid(ctx, s.repo, o, GatewayCOD, txnID, nil)
}

func (s *CODStrategy) ProcessFailure(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error) {
	reason := asString(data["reason"])
	if reason == "" {
		reason = "cash collection failed"
	}
	return markFailed(ctx, s.repo, o, GatewayCOD, asString(data["transaction_id"]), reason, nil)
}
