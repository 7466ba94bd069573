package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"soukly-be/internal/logger"

	"go.uber.org/zap"
)

const kashierSignatureHeader = "X-Kashier-Signature"

// KashierValidator verifies Kashier webhook payloads. The payload names
// its own signed fields in data.signatureKeys; those keys are sorted
// lexicographically, rendered as an RFC 3986 query string and signed
// with HMAC-SHA256 under the merchant API key.
type KashierValidator struct {
	apiKey string
}

func NewKashierValidator(apiKey string) *KashierValidator {
	return &KashierValidator{apiKey: apiKey}
}

func (v *KashierValidator) ValidateWebhookPayload(rawBody []byte, headers http.Header, query url.Values) bool {
	// Header lookup is case-insensitive; multi-value headers take the first.
	received := headers.Get(kashierSignatureHeader)
	if received == "" {
		logger.L().Warn("kashier webhook missing signature header")
		return false
	}

	payload, err := decodeBody(rawBody)
	if err != nil {
		logger.L().Warn("kashier webhook body is not valid JSON", zap.Error(err))
		return false
	}

	data, ok := payload["data"].(map[string]interface{})
	if !ok {
		logger.L().Warn("kashier webhook missing data envelope")
		return false
	}

	rawKeys, ok := data["signatureKeys"].([]interface{})
	if !ok || len(rawKeys) == 0 {
		logger.L().Warn("kashier webhook missing signatureKeys")
		return false
	}

	keys := make([]string, 0, len(rawKeys))
	for _, k := range rawKeys {
		name, ok := k.(string)
		if !ok {
			return false
		}
		keys = append(keys, name)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(encodeRFC3986(k))
		sb.WriteByte('=')
		sb.WriteString(encodeRFC3986(stringify(data[k])))
	}

	mac := hmac.New(sha256.New, []byte(v.apiKey))
	mac.Write([]byte(sb.String()))
	computed := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(computed), []byte(strings.ToLower(received)))
}
