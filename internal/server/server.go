// Package server exposes the distill endpoint so clients can clean up voice
// transcripts without holding the LLM API key themselves.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/gookit/validate"
	"golang.org/x/net/netutil"

	"github.com/julianstephens/architect/internal/completion"
	"github.com/julianstephens/architect/internal/config"
	"github.com/julianstephens/architect/internal/constants"
	"github.com/julianstephens/architect/internal/logger"
	"github.com/julianstephens/architect/internal/prompts"
)

const (
	msgMethodNotAllowed   = "Method not allowed"
	msgTranscriptRequired = "Transcript is required"
	msgInternal           = "Internal server error"
)

// RawCompleter returns the upstream completion payload untouched.
type RawCompleter interface {
	RawComplete(ctx context.Context, req completion.Request) ([]byte, error)
}

type Server struct {
	completer RawCompleter
	conf      config.Server
	cache     Cache
	metrics   Metrics
	maxTokens int
	log       *log.Logger
	started   time.Time
}

type Option func(*Server)

func WithCache(c Cache) Option {
	return func(s *Server) { s.cache = c }
}

func WithMetrics(m Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds a server from conf. The cache and metrics follow conf unless
// overridden by options.
func New(completer RawCompleter, conf config.Server, opts ...Option) *Server {
	s := &Server{
		completer: completer,
		conf:      conf,
		maxTokens: constants.DistillMaxTokens,
		log:       logger.Named("server"),
		started:   time.Now(),
	}
	if s.conf.MaxBodyBytes <= 0 {
		s.conf.MaxBodyBytes = constants.DefaultServerMaxBody
	}
	s.cache = NewCache(conf.CacheSizeMB, conf.CacheTTL)
	if conf.Metrics {
		s.metrics = NewMetrics()
	} else {
		s.metrics = noopMetrics{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler routes /api/distill, /health and, when enabled, /metrics.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc(constants.DefaultDistillRoute, s.Distill)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.Health)
	if s.conf.Metrics {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	mux.Handle("/", metricsMiddleware(s.metrics, api))
	return mux
}

type distillRequest struct {
	Transcript string `json:"transcript" validate:"required"`
}

type errorResponse struct {
	Error any `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, detail any) {
	body, err := json.Marshal(errorResponse{Error: detail})
	if err != nil {
		body = []byte(`{"error":"Internal server error"}`)
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, body)
}

// upstreamDetail keeps a JSON error body as JSON and anything else as a string.
func upstreamDetail(body string) any {
	if body != "" && json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	return body
}

// Distill forwards a transcript to the completion service with the distill
// prompt and relays the raw payload.
func (s *Server) Distill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.conf.MaxBodyBytes)
	var req distillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgTranscriptRequired)
		return
	}
	req.Transcript = strings.TrimSpace(req.Transcript)
	if v := validate.Struct(&req); !v.Validate() {
		writeError(w, http.StatusBadRequest, msgTranscriptRequired)
		return
	}

	if payload, ok := s.cache.Get(req.Transcript); ok {
		s.metrics.IncCacheHits()
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, payload)
		return
	}
	s.metrics.IncCacheMisses()

	payload, err := s.completer.RawComplete(r.Context(), completion.Request{
		Prompt:    prompts.Distill(req.Transcript),
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		var upstream *completion.Error
		if errors.As(err, &upstream) {
			s.metrics.IncUpstreamFailures(upstream.StatusCode)
			s.log.Warn("Upstream rejected distill request", "status", upstream.StatusCode)
			writeError(w, upstream.StatusCode, upstreamDetail(upstream.Body))
			return
		}
		s.metrics.IncUpstreamFailures(0)
		s.log.Error("Distill request failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	s.cache.Set(req.Transcript, payload)
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, payload)
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	uptime := time.Since(s.started)
	body, err := json.Marshal(healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
	})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.conf.Host, strconv.Itoa(s.conf.Port))
}

// Serve accepts at most conf.MaxConns concurrent connections on ln until ctx
// is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.conf.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.conf.MaxConns)
	}
	readTimeout := time.Duration(s.conf.ReadTimeout) * time.Second
	if readTimeout <= 0 {
		readTimeout = constants.DefaultServerReadTO * time.Second
	}
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: constants.DefaultLLMTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.log.Info("Listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("Gracefully stopped")
	return nil
}

// ListenAndServe listens on Addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, ln)
}
