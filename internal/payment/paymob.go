package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"soukly-be/internal/config"
	"soukly-be/internal/logger"
	"soukly-be/internal/order"

	"go.uber.org/zap"
)

const paymobBaseURL = "https://accept.paymob.com"

// PaymobStrategy drives card and wallet payments through Paymob's
// hosted unified checkout. Initiation creates an intention server-side;
// the client is handed the iframe URL and client secret.
type PaymobStrategy struct {
	cfg        *config.Config
	repo       order.Repository
	httpClient *http.Client
	baseURL    string
}

func NewPaymobStrategy(cfg *config.Config, repo order.Repository) *PaymobStrategy {
	return &PaymobStrategy{
		cfg:  cfg,
		repo: repo,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: paymobBaseURL,
	}
}

func (s *PaymobStrategy) PaymentMethod() string { return GatewayPaymob }

func (s *PaymobStrategy) CanHandle(o *order.Order) bool {
	return o.PaymentMethod == order.MethodCreditCard || o.PaymentMethod == order.MethodWallet
}

func (s *PaymobStrategy) Execute(ctx context.Context, o *order.Order) (*Result, error) {
	log := logger.FromCtx(ctx).With(
		zap.Uint("order_id", o.ID),
		zap.String("gateway", GatewayPaymob),
	)

	ref := OrderReference(s.cfg.AppName, o.ID)
	amountCents := int64(math.Round(o.Total * 100))

	body := map[string]interface{}{
		"amount":            amountCents,
		"currency":          "EGP",
		"special_reference": ref,
		"notification_url":  s.cfg.WebhookBaseURL + "/webhook/paymob",
		"redirection_url":   s.cfg.RedirectURL,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/intention/", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+s.cfg.PaymobSecretKey)
	req.Header.Set("Content-Type", "application/json")

	log.Info("creating paymob intention",
		zap.String("order_reference", ref),
		zap.Int64("amount_cents", amountCents),
	)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error("paymob intention request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read paymob response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("paymob returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", respBytes),
		)
		return nil, fmt.Errorf("paymob error: %s", string(respBytes))
	}

	var res struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := json.Unmarshal(respBytes, &res); err != nil {
		log.Error("failed decoding paymob response", zap.Error(err))
		return nil, err
	}

	log.Info("paymob intention created", zap.String("intention_id", res.ID))

	return &Result{
		OrderReference: ref,
		Amount:         formatAmount(o.Total),
		Currency:       "EGP",
		Mode:           s.cfg.PaymobMode,
		RedirectURL:    s.cfg.RedirectURL,
		FailureURL:     s.cfg.FailureURL,
		WebhookURL:     s.cfg.WebhookBaseURL + "/webhook/paymob",
		IntentionID:    res.ID,
		ClientSecret:   res.ClientSecret,
		IframeURL: fmt.Sprintf("%s/unifiedcheckout/?publicKey=%s&clientSecret=%s",
			s.baseURL, s.cfg.PaymobPublicKey, res.ClientSecret),
	}, nil
}

func (s *PaymobStrategy) ProcessSuccess(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error) {
	txnID := asString(data["id"])

	extra := map[string]interface{}{
		"transaction_id": txnID,
	}
	if orderObj, ok := data["order"].(map[string]interface{}); ok {
		extra["paymob_order_id"] = asString(orderObj["id"])
		extra["order_reference"] = asString(orderObj["merchant_order_id"])
	}
	if src, ok := data["source_data"].(map[string]interface{}); ok {
		if v := asString(src["type"]); v != "" {
			extra["source_type"] = v
		}
		if v := asString(src["sub_type"]); v != "" {
			extra["source_sub_type"] = v
		}
		if v := asString(src["pan"]); v != "" {
			extra["masked_pan"] = v
		}
	}

	return markPaid(ctx, s.repo, o, GatewayPaymob, txnID, extra)
}

func (s *PaymobStrategy) ProcessFailure(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error) {
	txnID := asString(data["id"])

	reason := asString(data["data.message"])
	if reason == "" {
		if inner, ok := data["data"].(map[string]interface{}); ok {
			reason = asString(inner["message"])
		}
	}
	if reason == "" {
		reason = "transaction declined"
	}

	return markFailed(ctx, s.repo, o, GatewayPaymob, txnID, reason, map[string]interface{}{
		"transaction_id": txnID,
	})
}

// ProcessRefund reverses a settled Paymob transaction.
func (s *PaymobStrategy) ProcessRefund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.Uint("order_id", req.OrderID),
		zap.String("gateway", GatewayPaymob),
	)

	o, err := s.repo.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentID == "" {
		return refundFailure(req.OrderID, "order %d has no settled transaction to refund", req.OrderID), nil
	}

	amount := req.Amount
	if amount == 0 {
		amount = o.Total
	}

	body := map[string]interface{}{
		"transaction_id": o.PaymentID,
		"amount_cents":   int64(math.Round(amount * 100)),
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/api/acceptance/void_refund/refund", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Token "+s.cfg.PaymobSecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		log.Error("paymob refund request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read paymob response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("paymob refund rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", respBytes),
		)
		return refundFailure(req.OrderID, "paymob refund rejected with status %d", resp.StatusCode), nil
	}

	var res struct {
		ID      json.Number `json:"id"`
		Success bool        `json:"success"`
	}
	if err := json.Unmarshal(respBytes, &res); err != nil {
		return nil, err
	}

	if !res.Success {
		return refundFailure(req.OrderID, "paymob refund was not accepted"), nil
	}

	if _, err := markRefunded(ctx, s.repo, o.ID, GatewayPaymob, res.ID.String()); err != nil {
		return nil, err
	}

	log.Info("paymob refund settled", zap.String("refund_transaction_id", res.ID.String()))

	return &RefundResult{
		OrderID:       req.OrderID,
		Success:       true,
		TransactionID: res.ID.String(),
	}, nil
}
