package payment

import (
	"context"
	"testing"

	"soukly-be/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCODStrategy(t *testing.T) {
	t.Run("CanHandle", func(t *testing.T) {
		s := NewCODStrategy(testConfig(), newFakeOrderRepo())

		assert.True(t, s.CanHandle(&order.Order{PaymentMethod: order.MethodCashOnDelivery}))
		assert.False(t, s.CanHandle(&order.Order{PaymentMethod: order.MethodCreditCard}))
	})

	t.Run("ExecuteLeavesPaymentPending", func(t *testing.T) {
		repo := newFakeOrderRepo(&order.Order{ID: 11, Total: 75, PaymentStatus: order.PaymentPending})
		s := NewCODStrategy(testConfig(), repo)

		res, err := s.Execute(context.Background(), &order.Order{ID: 11, Total: 75})
		require.NoError(t, err)

		assert.Equal(t, "Soukly-11", res.OrderReference)
		assert.Equal(t, "75.00", res.Amount)
		assert.Empty(t, res.IframeURL)

		o, _ := repo.GetOrderByID(context.Background(), 11)
		assert.Equal(t, order.PaymentPending, o.PaymentStatus)
	})

	t.Run("ProcessSuccessOnRemittance", func(t *testing.T) {
		repo := newFakeOrderRepo(&order.Order{ID: 11, PaymentStatus: order.PaymentPending})
		s := NewCODStrategy(testConfig(), repo)

		updated, err := s.ProcessSuccess(context.Background(), &order.Order{ID: 11}, map[string]interface{}{
			"transaction_id": "COD-11",
		})
		require.NoError(t, err)

		assert.Equal(t, order.PaymentPaid, updated.PaymentStatus)
		assert.Equal(t, "COD-11", updated.PaymentID)
	})

	t.Run("NoRefundSupport", func(t *testing.T) {
		var s Strategy = NewCODStrategy(testConfig(), newFakeOrderRepo())

		_, ok := s.(Refunder)
		assert.False(t, ok)
	})
}
