// Package searchd serves an in-memory search index over HTTP so the HTTP
// transport has a backend to talk to.
//
// Routes:
//
//	GET /search?text=...        text term
//	GET /search?min=..&max=..   range term
//	GET /search?q=...           raw input, parsed like the search box
//	GET /metrics                Prometheus metrics
//	GET /healthz                liveness
package searchd

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/logging"
	"github.com/Iron-Ham/pulse/internal/metrics"
	"github.com/Iron-Ham/pulse/internal/term"
	"github.com/Iron-Ham/pulse/internal/transport"
)

// ServerOption configures the router.
type ServerOption func(*serverConfig)

type serverConfig struct {
	middlewares []func(http.Handler) http.Handler
	logger      *logging.Logger
}

// WithMiddlewares adds middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithLogger sets the request logger.
func WithLogger(l *logging.Logger) ServerOption {
	return func(cfg *serverConfig) {
		cfg.logger = l
	}
}

// NewRouter builds the search backend router over idx.
func NewRouter(idx *transport.Memory, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := logging.OrNop(cfg.logger).WithComponent("searchd")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(LoggingMiddleware(logger))
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	metrics.Mount(r)
	r.Get("/search", searchHandler(idx, logger))

	return r
}

// LoggingMiddleware logs each request at debug level.
func LoggingMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start).String(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func searchHandler(idx *transport.Memory, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := transport.DecodeQuery(r.URL.Query())
		if err != nil {
			resp := transport.ErrorResponse{Error: err.Error()}
			var rej *term.Rejection
			if errors.As(err, &rej) {
				resp = transport.ErrorResponse{Error: rej.Message(), Reason: rej.Reason.String()}
			}
			writeJSON(w, resp, http.StatusBadRequest)
			return
		}

		items, err := idx.Search(r.Context(), t)
		switch {
		case errors.Is(err, transport.ErrInjectedFailure):
			writeJSON(w, transport.ErrorResponse{Error: err.Error()}, http.StatusServiceUnavailable)
			return
		case errors.Is(err, errors.ErrInvalidInput):
			writeJSON(w, transport.ErrorResponse{Error: err.Error()}, http.StatusBadRequest)
			return
		case err != nil:
			logger.Warn("search failed",
				"term", t.String(),
				"request_id", middleware.GetReqID(r.Context()),
				"error", err.Error(),
			)
			writeJSON(w, transport.ErrorResponse{Error: "search failed"}, http.StatusInternalServerError)
			return
		}

		writeJSON(w, transport.SearchResponse{
			Found:   len(items) > 0,
			Matches: len(items),
			Term:    t.String(),
		}, http.StatusOK)
	}
}

func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Serve runs handler on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *logging.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, handler, logger)
}

// ServeListener is Serve on an existing listener.
func ServeListener(ctx context.Context, ln net.Listener, handler http.Handler, logger *logging.Logger) error {
	logger = logging.OrNop(logger).WithComponent("searchd")
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
