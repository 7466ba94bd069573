package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"soukly-be/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymobStrategy_Execute(t *testing.T) {
	t.Run("CreatesIntention", func(t *testing.T) {
		var gotAuth string
		var gotBody map[string]interface{}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/intention/", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"int_abc123","client_secret":"csk_xyz789"}`))
		}))
		defer srv.Close()

		s := NewPaymobStrategy(testConfig(), newFakeOrderRepo())
		s.baseURL = srv.URL

		res, err := s.Execute(context.Background(), &order.Order{ID: 42, Total: 100})
		require.NoError(t, err)

		assert.Equal(t, "Token sk_test_secret", gotAuth)
		assert.Equal(t, float64(10000), gotBody["amount"])
		assert.Equal(t, "Soukly-42", gotBody["special_reference"])

		assert.Equal(t, "int_abc123", res.IntentionID)
		assert.Equal(t, "csk_xyz789", res.ClientSecret)
		assert.Equal(t, "live", res.Mode)
		assert.Contains(t, res.IframeURL, "publicKey=pk_test_public")
		assert.Contains(t, res.IframeURL, "clientSecret=csk_xyz789")
	})

	t.Run("FractionalAmountRoundsToCents", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(15055), body["amount"])
			_, _ = w.Write([]byte(`{"id":"int_1","client_secret":"csk_1"}`))
		}))
		defer srv.Close()

		s := NewPaymobStrategy(testConfig(), newFakeOrderRepo())
		s.baseURL = srv.URL

		_, err := s.Execute(context.Background(), &order.Order{ID: 1, Total: 150.55})
		require.NoError(t, err)
	})

	t.Run("GatewayError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid token"}`))
		}))
		defer srv.Close()

		s := NewPaymobStrategy(testConfig(), newFakeOrderRepo())
		s.baseURL = srv.URL

		res, err := s.Execute(context.Background(), &order.Order{ID: 1, Total: 100})
		assert.Nil(t, res)
		assert.ErrorContains(t, err, "Invalid token")
	})
}

func TestPaymobStrategy_ProcessSuccess(t *testing.T) {
	repo := newFakeOrderRepo(&order.Order{ID: 42, PaymentStatus: order.PaymentPending})
	s := NewPaymobStrategy(testConfig(), repo)

	data := map[string]interface{}{
		"id": json.Number("7788"),
		"order": map[string]interface{}{
			"id":                json.Number("9900"),
			"merchant_order_id": "Soukly-42",
		},
		"source_data": map[string]interface{}{
			"type":     "card",
			"sub_type": "MasterCard",
			"pan":      "1234",
		},
	}

	updated, err := s.ProcessSuccess(context.Background(), &order.Order{ID: 42}, data)
	require.NoError(t, err)

	assert.Equal(t, order.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, "7788", updated.PaymentID)
	assert.Equal(t, GatewayPaymob, updated.PaymentDetails["gateway"])
	assert.Equal(t, "9900", updated.PaymentDetails["paymob_order_id"])
	assert.Equal(t, "MasterCard", updated.PaymentDetails["source_sub_type"])
}

func TestPaymobStrategy_ProcessFailure(t *testing.T) {
	repo := newFakeOrderRepo(&order.Order{ID: 42, PaymentStatus: order.PaymentPending})
	s := NewPaymobStrategy(testConfig(), repo)

	data := map[string]interface{}{
		"id": json.Number("7789"),
		"data": map[string]interface{}{
			"message": "Transaction declined by issuer",
		},
	}

	updated, err := s.ProcessFailure(context.Background(), &order.Order{ID: 42}, data)
	require.NoError(t, err)

	assert.Equal(t, order.PaymentFailed, updated.PaymentStatus)
	assert.Equal(t, "Transaction declined by issuer", updated.PaymentDetails["failure_reason"])
}

func TestPaymobStrategy_ProcessRefund(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotBody map[string]interface{}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/acceptance/void_refund/refund", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_, _ = w.Write([]byte(`{"id":8899,"success":true}`))
		}))
		defer srv.Close()

		repo := newFakeOrderRepo(&order.Order{
			ID:            42,
			Total:         100,
			PaymentStatus: order.PaymentPaid,
			PaymentID:     "7788",
		})
		s := NewPaymobStrategy(testConfig(), repo)
		s.baseURL = srv.URL

		res, err := s.ProcessRefund(context.Background(), RefundRequest{OrderID: 42})
		require.NoError(t, err)

		assert.True(t, res.Success)
		assert.Equal(t, "8899", res.TransactionID)
		assert.Equal(t, "7788", gotBody["transaction_id"])
		assert.Equal(t, float64(10000), gotBody["amount_cents"])

		o, _ := repo.GetOrderByID(context.Background(), 42)
		assert.Equal(t, order.PaymentRefunded, o.PaymentStatus)
	})

	t.Run("NotAccepted", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":8900,"success":false}`))
		}))
		defer srv.Close()

		repo := newFakeOrderRepo(&order.Order{ID: 42, PaymentStatus: order.PaymentPaid, PaymentID: "7788"})
		s := NewPaymobStrategy(testConfig(), repo)
		s.baseURL = srv.URL

		res, err := s.ProcessRefund(context.Background(), RefundRequest{OrderID: 42})
		require.NoError(t, err)
		assert.False(t, res.Success)

		o, _ := repo.GetOrderByID(context.Background(), 42)
		assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
	})

	t.Run("PartialAmount", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(2500), body["amount_cents"])
			_, _ = w.Write([]byte(`{"id":8901,"success":true}`))
		}))
		defer srv.Close()

		repo := newFakeOrderRepo(&order.Order{ID: 42, Total: 100, PaymentStatus: order.PaymentPaid, PaymentID: "7788"})
		s := NewPaymobStrategy(testConfig(), repo)
		s.baseURL = srv.URL

		res, err := s.ProcessRefund(context.Background(), RefundRequest{OrderID: 42, Amount: 25})
		require.NoError(t, err)
		assert.True(t, res.Success)
	})
}
