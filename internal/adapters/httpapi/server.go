package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/armadio/wardrobe-ai-gateway/internal/core"
	"github.com/armadio/wardrobe-ai-gateway/internal/whitelist"
)

const (
	// analyzeBodyLimit bounds the /analyze request body. A 10 MiB image grows
	// to ~13.7 MiB as base64, plus the JSON envelope.
	analyzeBodyLimit = 32 << 20
	// textBodyLimit bounds the text-only endpoints.
	textBodyLimit = 1 << 20

	shutdownTimeout = 5 * time.Second
)

// Server is the gateway's inbound HTTP adapter
type Server struct {
	service *core.WardrobeService
	limiter core.RateLimiter
	trusted *whitelist.Checker
	logger  *zap.Logger
	addr    string
	srv     *http.Server
}

// NewServer creates a new API server
func NewServer(
	service *core.WardrobeService,
	limiter core.RateLimiter,
	trusted *whitelist.Checker,
	logger *zap.Logger,
	addr string,
) *Server {
	return &Server{
		service: service,
		limiter: limiter,
		trusted: trusted,
		logger:  logger,
		addr:    addr,
	}
}

// Start begins serving requests in the background
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/recommendations", s.handleRecommendations)
	mux.HandleFunc("/outfit", s.handleOutfit)
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.srv = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.logger.Info("API server listening", zap.String("address", s.addr))

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped unexpectedly", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.srv.Shutdown(ctx)
}

// writeCORS sets the CORS headers every response carries
func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// admit runs the shared preamble: CORS preflight, rate limiting and the
// method check, in that order. It reports whether the handler may proceed.
func (s *Server) admit(w http.ResponseWriter, r *http.Request) bool {
	writeCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return false
	}

	addr := clientAddr(r)
	if !s.trusted.IsTrusted(addr) {
		decision, err := s.limiter.Check(r.Context(), addr)
		if err != nil {
			s.logger.Warn("Rate limit check failed, admitting request", zap.Error(err))
		}
		if decision.Limited {
			retryAfter := int(decision.RetryAfter / time.Second)
			s.logger.Warn("Rate limit exceeded",
				zap.String("client", addr),
				zap.Int("retry_after", retryAfter))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Success:    false,
				Error:      "Too many requests. Please try again later.",
				RetryAfter: retryAfter,
			})
			return false
		}
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}

	return true
}

// clientAddr extracts the client address, preferring the first entry of
// X-Forwarded-For set by the fronting proxy.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
