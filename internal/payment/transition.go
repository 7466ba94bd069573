package payment

import (
	"context"
	"time"

	"soukly-be/internal/logger"
	"soukly-be/internal/order"

	"go.uber.org/zap"
)

// Payment transitions run inside the order repository's row-locked
// update, so payment_status and payment_details always change together
// and concurrent callbacks for the same order serialize.

func historyHas(details order.PaymentDetails, event, txnID string) bool {
	entries, _ := details["history"].([]interface{})
	for _, e := range entries {
		m, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		if asString(m["event"]) == event && asString(m["transaction_id"]) == txnID {
			return true
		}
	}
	return false
}

func appendHistory(details order.PaymentDetails, event, txnID string) {
	if historyHas(details, event, txnID) {
		return
	}
	entries, _ := details["history"].([]interface{})
	details["history"] = append(entries, map[string]interface{}{
		"event":          event,
		"transaction_id": txnID,
		"at":             time.Now().UTC().Format(time.RFC3339),
	})
}

func markPaid(
	ctx context.Context,
	repo order.Repository,
	o *order.Order,
	gateway, txnID string,
	extra map[string]interface{},
) (*order.Order, error) {

	log := logger.FromCtx(ctx).With(
		zap.Uint("order_id", o.ID),
		zap.String("gateway", gateway),
		zap.String("transaction_id", txnID),
	)

	return repo.UpdatePayment(ctx, o.ID, func(cur *order.Order) error {
		if cur.PaymentStatus == order.PaymentPaid && cur.PaymentID == txnID {
			log.Info("duplicate success callback ignored")
			return nil
		}

		details := map[string]interface{}{"gateway": gateway}
		for k, v := range extra {
			details[k] = v
		}

		cur.PaymentDetails = cur.PaymentDetails.Merge(details)
		appendHistory(cur.PaymentDetails, "paid", txnID)
		cur.PaymentStatus = order.PaymentPaid
		cur.PaymentID = txnID

		log.Info("order marked as paid")
		return nil
	})
}

func markFailed(
	ctx context.Context,
	repo order.Repository,
	o *order.Order,
	gateway, txnID, reason string,
	extra map[string]interface{},
) (*order.Order, error) {

	log := logger.FromCtx(ctx).With(
		zap.Uint("order_id", o.ID),
		zap.String("gateway", gateway),
		zap.String("transaction_id", txnID),
	)

	return repo.UpdatePayment(ctx, o.ID, func(cur *order.Order) error {
		// A settled payment never regresses on a late failure callback;
		// the delivery is recorded in the history instead.
		if cur.PaymentStatus == order.PaymentPaid {
			log.Warn("failure callback for settled payment ignored",
				zap.String("reason", reason),
			)
			appendHistory(cur.PaymentDetails, "failure_ignored", txnID)
			return nil
		}

		if cur.PaymentStatus == order.PaymentFailed && cur.PaymentID == txnID {
			log.Info("duplicate failure callback ignored")
			return nil
		}

		details := map[string]interface{}{"gateway": gateway}
		if reason != "" {
			details["failure_reason"] = reason
		}
		for k, v := range extra {
			details[k] = v
		}

		cur.PaymentDetails = cur.PaymentDetails.Merge(details)
		appendHistory(cur.PaymentDetails, "failed", txnID)
		cur.PaymentStatus = order.PaymentFailed
		cur.PaymentID = txnID

		log.Info("order marked as failed", zap.String("reason", reason))
		return nil
	})
}

func markRefunded(
	ctx context.Context,
	repo order.Repository,
	orderID uint,
	gateway, refundTxnID string,
) (*order.Order, error) {

	return repo.UpdatePayment(ctx, orderID, func(cur *order.Order) error {
		cur.PaymentDetails = cur.PaymentDetails.Merge(map[string]interface{}{
			"gateway":               gateway,
			"refund_transaction_id": refundTxnID,
		})
		appendHistory(cur.PaymentDetails, "refunded", refundTxnID)
		cur.PaymentStatus = order.PaymentRefunded
		return nil
	})
}
