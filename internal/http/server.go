// Package http exposes the chat endpoint and operational probes.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/4rinababan/chatfinance/internal/ledger"
	applog "github.com/4rinababan/chatfinance/internal/log"
	"github.com/4rinababan/chatfinance/internal/middleware/ratelimit"
	"github.com/4rinababan/chatfinance/internal/middleware/security"
	"github.com/4rinababan/chatfinance/internal/middleware/trace"
)

// Replier answers one chat message. It never fails; errors become replies.
type Replier interface {
	Reply(ctx context.Context, message string) string
}

type Options struct {
	Logger             *applog.Logger
	Pinger             ledger.Pinger       // optional readiness check
	Gatherer           prometheus.Gatherer // nil disables /metrics
	RateLimitPerMinute int
	ReadyTimeout       time.Duration
}

type Server struct {
	http.Server

	replier      Replier
	pinger       ledger.Pinger
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	readyTimeout time.Duration
	startedAt    time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, replier Replier, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 5 * time.Second
	}

	s := &Server{
		replier:      replier,
		pinger:       opts.Pinger,
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:     security.NewDetector(),
		readyTimeout: opts.ReadyTimeout,
		startedAt:    time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	if opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
	}

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, onLimit, http.MethodPost)(handler)
	handler = s.detector.Middleware(opts.Logger.WithComponent(applog.ComponentSecurity).Slog())(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = applog.AccessLog(s.detector.ExtractClientIP)(handler)
	handler = applog.Middleware(opts.Logger.WithComponent(applog.ComponentHTTP), trace.FromRequest)(handler)
	handler = trace.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
