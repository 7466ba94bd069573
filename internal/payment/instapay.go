package payment

import (
	"context"

	"soukly-be/internal/config"
	"soukly-be/internal/logger"
	"soukly-be/internal/order"

	"go.uber.org/zap"
)

// InstapayStrategy handles manually verified InstaPay transfers. The
// customer pays through their banking app and uploads a receipt; the
// order sits in review until an operator confirms or rejects it.
type InstapayStrategy struct {
	cfg  *config.Config
	repo order.Repository
}

func NewInstapayStrategy(cfg *config.Config, repo order.Repository) *InstapayStrategy {
	return &InstapayStrategy{cfg: cfg, repo: repo}
}

func (s *InstapayStrategy) PaymentMethod() string { return GatewayInstapay }

func (s *InstapayStrategy) CanHandle(o *order.Order) bool {
	return o.PaymentMethod == order.MethodInstapay
}

func (s *InstapayStrategy) Execute(ctx context.Context, o *order.Order) (*Result, error) {
	log := logger.FromCtx(ctx).With(zap.Uint("order_id", o.ID))

	updated, err := s.repo.UpdatePayment(ctx, o.ID, func(cur *order.Order) error {
		if cur.PaymentStatus == order.PaymentInReview {
			return nil
		}
		cur.PaymentStatus = order.PaymentInReview
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("instapay order awaiting receipt verification",
		zap.String("payment_status", string(updated.PaymentStatus)),
	)

	return &Result{
		OrderReference: OrderReference(s.cfg.AppName, o.ID),
		Amount:         formatAmount(o.Total),
		Currency:       "EGP",
		RedirectURL:    s.cfg.InstapayUploadURL,
	}, nil
}

// ProcessSuccess is invoked when an operator approves the uploaded
// receipt. The receipt reference doubles as the transaction id.
func (s *InstapayStrategy) ProcessSuccess(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error) {
	txnID := asString(data["receipt_reference"])
	if txnID == "" {
		txnID = asString(data["transaction_id"])
	}

	extra := map[string]interface{}{}
	if v := asString(data["verified_by"]); v != "" {
		extra["verified_by"] = v
	}

	return markPaid(ctx, s.repo, o, GatewayInstapay, txnID, extra)
}

func (s *InstapayStrategy) ProcessFailure(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error) {
	reason := asString(data["reason"])
	if reason == "" {
		reason = "receipt rejected"
	}
	return markFailed(ctx, s.repo, o, GatewayInstapay, asString(data["receipt_reference"]), reason, nil)
}
