package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"soukly-be/internal/logger"
	"soukly-be/internal/order"

	"go.uber.org/zap"
)

// Response is the stable JSON body returned for every webhook outcome.
// Gateways key their retry behavior off the HTTP status; the message is
// for operators reading delivery logs.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Processor is the slice of the payment processor webhook handlers
// dispatch through.
type Processor interface {
	ProcessPaymentSuccess(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error)
	ProcessPaymentFailure(ctx context.Context, o *order.Order, data map[string]interface{}) (*order.Order, error)
}

func writeResponse(w http.ResponseWriter, code int, status, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(Response{Status: status, Message: message}); err != nil {
		logger.L().Error("failed to write webhook response", zap.Error(err))
	}
}

func writeSuccess(w http.ResponseWriter, message string) {
	writeResponse(w, http.StatusOK, statusSuccess, message)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeResponse(w, code, statusError, message)
}

func fieldString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// decodeBody parses a raw webhook body preserving the original rendering
// of numeric fields.
func decodeBody(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}
