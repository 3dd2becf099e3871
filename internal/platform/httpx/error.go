package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Error is the JSON error body of the invoice API:
// {"error", "message", "status", "request_id"} plus any details at the top level.
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

// NewError builds an Error; the message is folded onto one line.
func NewError(code, message string, status int) Error {
	return Error{Code: code, Message: strings.Join(strings.Fields(message), " "), Status: status}
}

// WithDetails sets the extra fields merged into the body, e.g. the discount choices.
func (e Error) WithDetails(details map[string]any) Error {
	e.Details = details
	return e
}

// WriteError writes err with the chi request id taken from ctx.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	payload := map[string]any{
		"error":   err.Code,
		"message": err.Message,
		"status":  err.Status,
	}
	if id := middleware.GetReqID(ctx); id != "" {
		payload["request_id"] = id
	}
	for k, v := range err.Details {
		payload[k] = v
	}
	WriteJSON(w, err.Status, payload)
}

// WriteJSON encodes payload as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
