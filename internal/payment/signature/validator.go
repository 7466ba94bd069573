package signature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Validator verifies the authenticity of an inbound webhook delivery.
// Implementations canonicalize over the raw request body: re-serialized
// JSON changes field order and whitespace and would break the digest.
type Validator interface {
	ValidateWebhookPayload(rawBody []byte, headers http.Header, query url.Values) bool
}

// decodeBody parses raw JSON keeping numbers as json.Number so they
// stringify exactly as the sender rendered them.
func decodeBody(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// stringify renders a decoded JSON value the way gateways canonicalize
// it: booleans as literal "true"/"false", numbers verbatim, nil as the
// empty string.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// encodeRFC3986 percent-encodes per RFC 3986 (space is %20, not +).
func encodeRFC3986(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
