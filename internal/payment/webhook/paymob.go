package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"soukly-be/internal/events"
	"soukly-be/internal/logger"
	"soukly-be/internal/metrics"
	"soukly-be/internal/order"
	"soukly-be/internal/payment"
	"soukly-be/internal/payment/signature"

	"go.uber.org/zap"
)

// PaymobHandler processes Paymob transaction callbacks.
type PaymobHandler struct {
	appName    string
	validator  signature.Validator
	orders     order.Repository
	processor  Processor
	deliveries payment.WebhookRepository
	bus        events.Publisher
}

func NewPaymobHandler(
	appName string,
	validator signature.Validator,
	orders order.Repository,
	processor Processor,
	deliveries payment.WebhookRepository,
	bus events.Publisher,
) *PaymobHandler {
	return &PaymobHandler{
		appName:    appName,
		validator:  validator,
		orders:     orders,
		processor:  processor,
		deliveries: deliveries,
		bus:        bus,
	}
}

// paymobOrderReference digs the merchant order reference out of the
// transaction object. Intention-based payments carry it under
// shipping_data.extra_description rather than merchant_order_id.
func paymobOrderReference(obj map[string]interface{}) string {
	orderObj, ok := obj["order"].(map[string]interface{})
	if !ok {
		return ""
	}
	if ref := fieldString(orderObj["merchant_order_id"]); ref != "" {
		return ref
	}
	if shipping, ok := orderObj["shipping_data"].(map[string]interface{}); ok {
		return fieldString(shipping["extra_description"])
	}
	return ""
}

// paymobFailureReason pulls the gateway's decline message off the
// transaction data blob, empty when Paymob sent none.
func paymobFailureReason(obj map[string]interface{}) string {
	if data, ok := obj["data"].(map[string]interface{}); ok {
		return fieldString(data["message"])
	}
	return ""
}

// paymobSucceeded reads the transaction success flag, which arrives as
// a JSON bool on transaction callbacks and as the string "true" on
// redirect-style deliveries.
func paymobSucceeded(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	default:
		return false
	}
}

func (h *PaymobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("gateway", payment.GatewayPaymob))
	metrics.WebhookReceived.Inc()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	if !h.validator.ValidateWebhookPayload(raw, r.Header, r.URL.Query()) {
		log.Warn("webhook rejected, signature invalid")
		metrics.WebhookRejected.Inc()
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	body, err := decodeBody(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	obj, ok := body["obj"].(map[string]interface{})
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing order reference")
		return
	}

	ref := paymobOrderReference(obj)
	if ref == "" {
		writeError(w, http.StatusBadRequest, "Missing order reference")
		return
	}

	succeeded := paymobSucceeded(obj["success"])

	eventType := "payment.failed"
	if succeeded {
		eventType = "payment.success"
	}
	eventID := fieldString(obj["id"])
	if eventID == "" {
		eventID = ref + ":" + eventType
	}

	deliveryID, isDup, err := h.deliveries.SaveWebhookDelivery(
		ctx, payment.GatewayPaymob, eventID, eventType, ref, json.RawMessage(raw), true,
	)
	if err != nil {
		log.Error("failed to record webhook delivery", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if isDup {
		log.Info("duplicate webhook delivery ignored", zap.String("event_id", eventID))
		metrics.WebhookDuplicate.Inc()
		writeSuccess(w, "Webhook already processed")
		return
	}

	orderID, err := payment.ParseOrderReference(h.appName, ref)
	if err != nil {
		_ = h.deliveries.MarkWebhookFailed(ctx, deliveryID, "invalid order reference")
		writeError(w, http.StatusBadRequest, "Invalid order reference")
		return
	}

	o, err := h.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			_ = h.deliveries.MarkWebhookFailed(ctx, deliveryID, "order not found")
			writeError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error("failed to load order", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if succeeded {
		updated, err := h.processor.ProcessPaymentSuccess(ctx, o, obj)
		if err != nil {
			log.Error("failed to process payment success", zap.Error(err))
			metrics.WebhookFailed.Inc()
			_ = h.deliveries.MarkWebhookFailed(ctx, deliveryID, err.Error())
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		h.bus.Publish(ctx, events.PaymentSucceeded{Order: updated, Payload: raw})
	} else {
		updated, err := h.processor.ProcessPaymentFailure(ctx, o, obj)
		if err != nil {
			log.Error("failed to process payment failure", zap.Error(err))
			metrics.WebhookFailed.Inc()
			_ = h.deliveries.MarkWebhookFailed(ctx, deliveryID, err.Error())
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		h.bus.Publish(ctx, events.PaymentFailed{
			Order:   updated,
			Payload: raw,
			Reason:  paymobFailureReason(obj),
		})
	}

	if err := h.deliveries.MarkWebhookProcessed(ctx, deliveryID); err != nil {
		log.Warn("failed to mark webhook processed", zap.Error(err))
	}
	metrics.WebhookProcessed.Inc()

	writeSuccess(w, "Webhook processed")
}
