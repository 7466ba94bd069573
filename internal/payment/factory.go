package payment

import (
	"sync"

	"soukly-be/internal/order"
)

// StrategyBuilder constructs a strategy instance on first use.
type StrategyBuilder func() Strategy

// GatewayFactory builds gateway strategies lazily and caches them so
// repeated lookups for the same gateway return the same instance.
type GatewayFactory struct {
	mu       sync.Mutex
	builders map[string]StrategyBuilder
	cache    map[string]Strategy
}

func NewGatewayFactory() *GatewayFactory {
	return &GatewayFactory{
		builders: make(map[string]StrategyBuilder),
		cache:    make(map[string]Strategy),
	}
}

// Register adds a builder under the given gateway key, replacing any
// previous registration and invalidating its cached instance.
func (f *GatewayFactory) Register(gateway string, builder StrategyBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[gateway] = builder
	delete(f.cache, gateway)
}

// CreateGateway returns the cached strategy for the gateway, building
// it on first use. Unknown gateways yield ErrUnsupportedGateway.
func (f *GatewayFactory) CreateGateway(gateway string) (Strategy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.cache[gateway]; ok {
		return s, nil
	}

	builder, ok := f.builders[gateway]
	if !ok {
		return nil, ErrUnsupportedGateway
	}

	s := builder()
	f.cache[gateway] = s
	return s, nil
}

// CreateGatewayForOrder resolves the strategy for an order's payment
// method. Orders without a payment method are rejected before any
// gateway lookup happens.
func (f *GatewayFactory) CreateGatewayForOrder(o *order.Order, defaultGateway string) (Strategy, error) {
	if o.PaymentMethod == "" {
		return nil, ErrMissingPaymentMethod
	}
	return f.CreateGateway(GatewayKeyFor(o.PaymentMethod, defaultGateway))
}

// SupportedGateways lists the registered gateway keys.
func (f *GatewayFactory) SupportedGateways() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys := make([]string, 0, len(f.builders))
	for k := range f.builders {
		keys = append(keys, k)
	}
	return keys
}
