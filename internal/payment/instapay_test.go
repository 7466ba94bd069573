package payment

import (
	"context"
	"testing"

	"soukly-be/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstapayStrategy(t *testing.T) {
	t.Run("CanHandle", func(t *testing.T) {
		s := NewInstapayStrategy(testConfig(), newFakeOrderRepo())

		assert.True(t, s.CanHandle(&order.Order{PaymentMethod: order.MethodInstapay}))
		assert.False(t, s.CanHandle(&order.Order{PaymentMethod: order.MethodWallet}))
	})

	t.Run("ExecuteMovesOrderIntoReview", func(t *testing.T) {
		repo := newFakeOrderRepo(&order.Order{ID: 21, Total: 300, PaymentStatus: order.PaymentPending})
		s := NewInstapayStrategy(testConfig(), repo)

		res, err := s.Execute(context.Background(), &order.Order{ID: 21, Total: 300})
		require.NoError(t, err)

		assert.Equal(t, "https://soukly.test/instapay/upload", res.RedirectURL)
		assert.Equal(t, "Soukly-21", res.OrderReference)

		o, _ := repo.GetOrderByID(context.Background(), 21)
		assert.Equal(t, order.PaymentInReview, o.PaymentStatus)
	})

	t.Run("OperatorApproval", func(t *testing.T) {
		repo := newFakeOrderRepo(&order.Order{ID: 21, PaymentStatus: order.PaymentInReview})
		s := NewInstapayStrategy(testConfig(), repo)

		updated, err := s.ProcessSuccess(context.Background(), &order.Order{ID: 21}, map[string]interface{}{
			"receipt_reference": "IPN-556677",
			"verified_by":       "ops@soukly.test",
		})
		require.NoError(t, err)

		assert.Equal(t, order.PaymentPaid, updated.PaymentStatus)
		assert.Equal(t, "IPN-556677", updated.PaymentID)
		assert.Equal(t, "ops@soukly.test", updated.PaymentDetails["verified_by"])
	})

	t.Run("OperatorRejection", func(t *testing.T) {
		repo := newFakeOrderRepo(&order.Order{ID: 21, PaymentStatus: order.PaymentInReview})
		s := NewInstapayStrategy(testConfig(), repo)

		updated, err := s.ProcessFailure(context.Background(), &order.Order{ID: 21}, map[string]interface{}{
			"receipt_reference": "IPN-556677",
			"reason":            "amount mismatch",
		})
		require.NoError(t, err)

		assert.Equal(t, order.PaymentFailed, updated.PaymentStatus)
		assert.Equal(t, "amount mismatch", updated.PaymentDetails["failure_reason"])
	})

	t.Run("NoRefundSupport", func(t *testing.T) {
		var s Strategy = NewInstapayStrategy(testConfig(), newFakeOrderRepo())

		_, ok := s.(Refunder)
		assert.False(t, ok)
	})
}
