package transport

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"soukly-be/internal/logger"
	"soukly-be/internal/metrics"
	"soukly-be/internal/middleware"
	"soukly-be/internal/order"
	"soukly-be/internal/payment"

	"go.uber.org/zap"
)

// PaymentService is the slice of the payment processor the HTTP layer
// drives.
type PaymentService interface {
	ProcessPayment(ctx context.Context, o *order.Order) (*payment.Result, error)
	ProcessRefund(ctx context.Context, req payment.RefundRequest) *payment.RefundResult
}

type apiResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, res apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		logger.L().Error("failed to write response", zap.Error(err))
	}
}

func writeErrorJSON(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, apiResponse{Status: "error", Message: message})
}

// Handler bundles the HTTP API endpoints outside the webhook surface.
type Handler struct {
	orders   order.Repository
	payments PaymentService
	db       *sql.DB
}

func NewHandler(orders order.Repository, payments PaymentService, db *sql.DB) *Handler {
	return &Handler{orders: orders, payments: payments, db: db}
}

type initiatePaymentRequest struct {
	OrderID uint `json:"order_id"`
}

// InitiatePayment starts the payment flow for an order and returns the
// data the storefront needs to render checkout.
func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == 0 {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			writeErrorJSON(w, http.StatusNotFound, "order not found")
			return
		}
		logger.FromCtx(ctx).Error("failed to load order", zap.Error(err))
		writeErrorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if o.PaymentStatus == order.PaymentPaid {
		writeErrorJSON(w, http.StatusConflict, "order is already paid")
		return
	}

	res, err := h.payments.ProcessPayment(ctx, o)
	if err != nil {
		if errors.Is(err, payment.ErrNoStrategy) {
			writeErrorJSON(w, http.StatusBadRequest, "unsupported payment method")
			return
		}
		logger.FromCtx(ctx).Error("payment initiation failed",
			zap.Uint("order_id", o.ID),
			zap.Error(err),
		)
		writeErrorJSON(w, http.StatusBadGateway, "payment initiation failed")
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Status: "success", Data: res})
}

type refundRequest struct {
	OrderID uint    `json:"order_id"`
	Amount  float64 `json:"amount,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

// Refund lets an operator reverse a settled payment. The route sits
// behind the admin JWT guard.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == 0 {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	log := logger.FromCtx(ctx).With(zap.Uint("order_id", req.OrderID))
	if sub, ok := middleware.AdminSubjectFromContext(ctx); ok {
		log = log.With(zap.String("requested_by", sub))
	}
	log.Info("refund requested",
		zap.Float64("amount", req.Amount),
		zap.String("reason", req.Reason),
	)

	res := h.payments.ProcessRefund(ctx, payment.RefundRequest{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Reason:  req.Reason,
	})

	code := http.StatusOK
	if !res.Success {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, apiResponse{Status: "success", Data: res})
}

// Healthz reports process and database liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			writeErrorJSON(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, apiResponse{Status: "success", Message: "ok", Data: map[string]any{
		"webhooks": metrics.SnapshotWebhooks(),
	}})
}
