package http

import (
	"context"
	"net/http"
	"time"

	applog "github.com/4rinababan/chatfinance/internal/log"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := ParseChatRequest(w, r)
	if err != nil {
		status, msg := statusForRequestError(err)
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rejected chat request",
			applog.FieldErrorType, applog.ErrorTypeValidation,
			applog.FieldError, err)
		writeError(w, r, status, msg)
		return
	}

	writeJSON(w, r, http.StatusOK, ChatResponse{Reply: s.replier.Reply(r.Context(), req.Message)})
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady pings the ledger when it supports health checks.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	status, code := "ready", http.StatusOK

	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.readyTimeout)
		defer cancel()

		if err := s.pinger.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				applog.FieldErrorType, applog.ErrorTypeDatabase,
				applog.FieldError, err)
			checks["ledger"] = "failed"
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["ledger"] = "ok"
		}
	}

	writeJSON(w, r, code, map[string]any{
		"status": status,
		"checks": checks,
	})
}
