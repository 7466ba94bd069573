package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"soukly-be/internal/config"
	"soukly-be/internal/db"
	"soukly-be/internal/events"
	"soukly-be/internal/logger"
	"soukly-be/internal/middleware"
	"soukly-be/internal/order"
	"soukly-be/internal/payment"
	"soukly-be/internal/payment/signature"
	"soukly-be/internal/payment/webhook"
	"soukly-be/internal/transport"

	"go.uber.org/zap"
)

// Indirections for testing
var (
	initDBFunc      = db.InitDB
	startServerFunc = http.ListenAndServe
)

func setupRouter(
	api *transport.Handler,
	kashierWebhook http.Handler,
	paymobWebhook http.Handler,
	adminGuard func(http.Handler) http.Handler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", api.Healthz)
	mux.HandleFunc("/payments/initiate", api.InitiatePayment)
	mux.Handle("/webhook/kashier", kashierWebhook)
	mux.Handle("/webhook/paymob", paymobWebhook)
	mux.Handle("/admin/refunds", adminGuard(http.HandlerFunc(api.Refund)))

	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(handler)
	handler = logger.LoggingMiddleware(handler)
	handler = logger.RequestIDMiddleware(handler)
	return handler
}

func newServer(cfg *config.Config, database *sql.DB) http.Handler {
	orderRepo := order.NewRepository(database)
	webhookRepo := payment.NewWebhookRepository(database)

	factory := payment.NewGatewayFactory()
	factory.Register(payment.GatewayKashier, func() payment.Strategy {
		return payment.NewKashierStrategy(cfg, orderRepo)
	})
	factory.Register(payment.GatewayPaymob, func() payment.Strategy {
		return payment.NewPaymobStrategy(cfg, orderRepo)
	})
	factory.Register(payment.GatewayCOD, func() payment.Strategy {
		return payment.NewCODStrategy(cfg, orderRepo)
	})
	factory.Register(payment.GatewayInstapay, func() payment.Strategy {
		return payment.NewInstapayStrategy(cfg, orderRepo)
	})

	processor := payment.NewProcessor(cfg, orderRepo)
	for _, gateway := range factory.SupportedGateways() {
		s, err := factory.CreateGateway(gateway)
		if err != nil {
			log.Fatalf("failed to build %s gateway: %v", gateway, err)
		}
		processor.AddStrategy(s)
	}

	bus := events.NewBus()
	bus.Subscribe(events.PaymentSucceededName, func(ctx context.Context, e events.Event) {
		evt := e.(events.PaymentSucceeded)
		logger.FromCtx(ctx).Info("payment succeeded",
			zap.Uint("order_id", evt.Order.ID),
			zap.String("payment_id", evt.Order.PaymentID),
		)
	})
	bus.Subscribe(events.PaymentFailedName, func(ctx context.Context, e events.Event) {
		evt := e.(events.PaymentFailed)
		logger.FromCtx(ctx).Warn("payment failed",
			zap.Uint("order_id", evt.Order.ID),
			zap.String("reason", evt.Reason),
		)
	})

	kashierWebhook := webhook.NewKashierHandler(
		cfg.AppName,
		signature.NewKashierValidator(cfg.KashierAPIKey),
		orderRepo, processor, webhookRepo, bus,
	)
	paymobWebhook := webhook.NewPaymobHandler(
		cfg.AppName,
		signature.NewPaymobValidator(cfg.PaymobHMACSecret),
		orderRepo, processor, webhookRepo, bus,
	)

	api := transport.NewHandler(orderRepo, processor, database)

	return setupRouter(api, kashierWebhook, paymobWebhook, middleware.AdminAuth(cfg.AdminJWTSecret))
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	router := newServer(cfg, database)

	logger.L().Info("server listening",
		zap.String("app", cfg.AppName),
		zap.String("port", cfg.AppPort),
	)
	return startServerFunc(":"+cfg.AppPort, router)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
