package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/4rinababan/chatfinance/internal/core"
)

// MaxChatBodyBytes caps the POST /api/chat body.
const MaxChatBodyBytes = 4 << 10

var (
	ErrBodyTooLarge = errors.New("request body too large")
	ErrMalformed    = errors.New("malformed JSON body")
)

type ChatRequest struct {
	Message string `json:"message"`
}

// ParseChatRequest decodes and validates a chat request body. The message
// is returned with control characters stripped but otherwise untouched.
func ParseChatRequest(w http.ResponseWriter, r *http.Request) (ChatRequest, error) {
	var req ChatRequest

	body := http.MaxBytesReader(w, r.Body, MaxChatBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return ChatRequest{}, ErrBodyTooLarge
		case errors.Is(err, io.EOF):
			return ChatRequest{}, fmt.Errorf("%w: empty body", ErrMalformed)
		default:
			return ChatRequest{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	if dec.More() {
		return ChatRequest{}, fmt.Errorf("%w: trailing data after object", ErrMalformed)
	}

	req.Message = sanitizeInput(req.Message)
	if req.Message == "" {
		return ChatRequest{}, core.ErrEmptyMessage
	}
	return req, nil
}

// sanitizeInput removes control characters except tab and newlines, then
// trims surrounding whitespace.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
