package signature

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"soukly-be/internal/logger"

	"go.uber.org/zap"
)

const paymobHMACHeader = "X-Paymob-HMAC"

// paymobSignedFields is the fixed field order Paymob signs, dotted paths
// resolved inside obj. The order is part of the scheme and must not change.
var paymobSignedFields = []string{
	"amount_cents",
	"created_at",
	"currency",
	"error_occured",
	"has_parent_transaction",
	"id",
	"integration_id",
	"is_3d_secure",
	"is_auth",
	"is_capture",
	"is_refunded",
	"is_standalone_payment",
	"is_voided",
	"order.id",
	"owner",
	"pending",
	"source_data.pan",
	"source_data.sub_type",
	"source_data.type",
	"success",
}

// PaymobValidator verifies Paymob transaction callbacks: HMAC-SHA512
// over the concatenation of twenty obj fields in fixed order. The
// received digest is read from the hmac query parameter first, then the
// X-Paymob-HMAC header, then an hmac field in the body.
type PaymobValidator struct {
	secret string
}

func NewPaymobValidator(secret string) *PaymobValidator {
	return &PaymobValidator{secret: secret}
}

func (v *PaymobValidator) ValidateWebhookPayload(rawBody []byte, headers http.Header, query url.Values) bool {
	received := query.Get("hmac")
	if received == "" {
		received = headers.Get(paymobHMACHeader)
	}

	payload, err := decodeBody(rawBody)
	if err != nil {
		logger.L().Warn("paymob webhook body is not valid JSON", zap.Error(err))
		return false
	}

	if received == "" {
		received, _ = payload["hmac"].(string)
	}
	if received == "" {
		logger.L().Warn("paymob webhook missing hmac")
		return false
	}

	obj, ok := payload["obj"].(map[string]interface{})
	if !ok {
		logger.L().Warn("paymob webhook missing obj envelope")
		return false
	}

	var sb strings.Builder
	for _, path := range paymobSignedFields {
		sb.WriteString(paymobFieldValue(obj, path))
	}

	mac := hmac.New(sha512.New, []byte(v.secret))
	mac.Write([]byte(sb.String()))
	computed := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(computed), []byte(strings.ToLower(received)))
}

// paymobFieldValue resolves a dotted path inside obj. Missing source_data
// fields render as the literal "NA"; any other missing field renders as
// the empty string.
func paymobFieldValue(obj map[string]interface{}, path string) string {
	parts := strings.Split(path, ".")
	var cur interface{} = obj
	for _, p := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			cur = nil
			break
		}
		cur, ok = m[p]
		if !ok {
			cur = nil
			break
		}
	}

	if cur == nil && strings.HasPrefix(path, "source_data.") {
		return "NA"
	}
	return stringify(cur)
}
