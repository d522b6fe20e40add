package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/4rinababan/chatfinance/internal/core"
)

type ChatResponse struct {
	Reply string `json:"reply"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.WarnContext(r.Context(), "Failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, ErrorResponse{Error: msg})
}

// statusForRequestError maps a request parsing error to a status and a
// client-safe message.
func statusForRequestError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "message is too long"
	case errors.Is(err, core.ErrEmptyMessage):
		return http.StatusBadRequest, "message is required"
	case errors.Is(err, ErrMalformed):
		return http.StatusBadRequest, "request body must be a JSON object with a \"message\" string"
	default:
		return http.StatusBadRequest, "invalid request"
	}
}
