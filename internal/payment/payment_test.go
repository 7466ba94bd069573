package payment

import (
	"context"
	"sync"

	"soukly-be/internal/config"
	"soukly-be/internal/order"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:           "Soukly",
		DefaultGateway:    GatewayKashier,
		KashierAPIKey:     "testkey",
		KashierMerchantID: "MID-12345",
		KashierMode:       "test",
		PaymobMode:        "live",
		PaymobSecretKey:   "sk_test_secret",
		PaymobPublicKey:   "pk_test_public",
		PaymobHMACSecret:  "paymobsecret",
		RedirectURL:       "https://soukly.test/payment/success",
		FailureURL:        "https://soukly.test/payment/failure",
		WebhookBaseURL:    "https://api.soukly.test",
		InstapayUploadURL: "https://soukly.test/instapay/upload",
	}
}

// fakeOrderRepo is an in-memory order.Repository for strategy and
// processor tests where SQL plumbing is not under test.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uint]*order.Order
}

func newFakeOrderRepo(orders ...*order.Order) *fakeOrderRepo {
	m := make(map[uint]*order.Order, len(orders))
	for _, o := range orders {
		m[o.ID] = o
	}
	return &fakeOrderRepo{orders: m}
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id uint) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) UpdatePayment(ctx context.Context, orderID uint, apply func(*order.Order) error) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	if err := apply(o); err != nil {
		return nil, err
	}
	return o, nil
}
