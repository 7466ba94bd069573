package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"soukly-be/internal/config"
	"soukly-be/internal/logger"
	"soukly-be/internal/order"

	"go.uber.org/zap"
)

const kashierBaseURL = "https://api.kashier.io"

// KashierStrategy drives card and wallet payments through Kashier's
// redirect checkout. Initiation is local: the checkout page is opened
// with an HMAC order hash, no API round trip needed.
type KashierStrategy struct {
	cfg        *config.Config
	repo       order.Repository
	httpClient *http.Client
	baseURL    string
}

func NewKashierStrategy(cfg *config.Config, repo order.Repository) *KashierStrategy {
	return &KashierStrategy{
		cfg:  cfg,
		repo: repo,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: kashierBaseURL,
	}
}

func (s *KashierStrategy) PaymentMethod() string { return GatewayKashier }

func (s *KashierStrategy) CanHandle(o *order.Order) bool {
	return o.PaymentMethod == order.MethodCreditCard || o.PaymentMethod == order.MethodWallet
}

func (s *KashierStrategy) Execute(ctx context.Context, o *order.Order) (*Result, error) {
	ref := OrderReference(s.cfg.AppName, o.ID)
	amount := formatAmount(o.Total)
	currency := "EGP"

	// Kashier order hash: HMAC-SHA256("mid.orderRef.amount.currency", apiKey).
	path := fmt.Sprintf("%s.%s.%s.%s", s.cfg.KashierMerchantID, ref, amount, currency)
	mac := hmac.New(sha256.New, []byte(s.cfg.KashierAPIKey))
	mac.Write([]byte(path))
	hash := hex.EncodeToString(mac.Sum(nil))

	logger.FromCtx(ctx).Info("kashier payment initiated",
		zap.Uint("order_id", o.ID),
		zap.String("order_reference", ref),
		zap.String("amount", amount),
		zap.String("mode", s.cfg.KashierMode),
	)

	return &Result{
		MerchantID:     s.cfg.KashierMerchantID,
		OrderReference: ref,
		Amount:         amount,
		Currency:       currency,
		Hash:           hash,
		Mode:           s.cfg.KashierMode,
		RedirectURL:    s.cfg.RedirectURL,
		FailureURL:     s.cfg.FailureURL,
		WebhookURL:     s.cfg.WebhookBaseURL + "/webhook/kashier",
	}, nil
}

func (s *KashierStrategy) ProcessSuccess(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error) {
	txnID := asString(data["transactionId"])

	extra := map[string]interface{}{
		"transaction_id":  txnID,
		"order_reference": asString(data["merchantOrderId"]),
	}
	if v := asString(data["kashierOrderId"]); v != "" {
		extra["kashier_order_id"] = v
	}
	if v := asString(data["method"]); v != "" {
		extra["method"] = v
	}
	if v := asString(data["cardBrand"]); v != "" {
		extra["card_brand"] = v
	}
	if v := asString(data["maskedCard"]); v != "" {
		extra["masked_card"] = v
	}

	return markPaid(ctx, s.repo, o, GatewayKashier, txnID, extra)
}

func (s *KashierStrategy) ProcessFailure(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error) {
	txnID := asString(data["transactionId"])

	reason := asString(data["transactionResponseMessage"])
	if reason == "" {
		reason = asString(data["status"])
	}

	return markFailed(ctx, s.repo, o, GatewayKashier, txnID, reason, map[string]interface{}{
		"transaction_id":  txnID,
		"order_reference": asString(data["merchantOrderId"]),
	})
}

// ProcessRefund reverses a settled Kashier transaction through the
// merchant API.
func (s *KashierStrategy) ProcessRefund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.Uint("order_id", req.OrderID),
		zap.String("gateway", GatewayKashier),
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
		"apiOperation":  "REFUND",
		"transactionId": o.PaymentID,
		"reason":        req.Reason,
		"transaction": map[string]interface{}{
			"amount":   formatAmount(amount),
			"currency": "EGP",
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/orders/%s", s.baseURL, OrderReference(s.cfg.AppName, o.ID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", s.cfg.KashierAPIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		log.Error("kashier refund request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read kashier response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("kashier refund rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", respBytes),
		)
		return refundFailure(req.OrderID, "kashier refund rejected with status %d", resp.StatusCode), nil
	}

	var res struct {
		Status   string `json:"status"`
		Response struct {
			TransactionID string `json:"transactionId"`
		} `json:"response"`
	}
	if err := json.Unmarshal(respBytes, &res); err != nil {
		return nil, err
	}

	if res.Status != "SUCCESS" {
		return refundFailure(req.OrderID, "kashier refund returned status %s", res.Status), nil
	}

	if _, err := markRefunded(ctx, s.repo, o.ID, GatewayKashier, res.Response.TransactionID); err != nil {
		return nil, err
	}

	log.Info("kashier refund settled",
		zap.String("refund_transaction_id", res.Response.TransactionID),
	)

	return &RefundResult{
		OrderID:       req.OrderID,
		Success:       true,
		TransactionID: res.Response.TransactionID,
	}, nil
}
