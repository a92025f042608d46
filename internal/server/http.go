package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/inletlabs/mailsense/internal/instrumentation"
)

const (
	// DefaultHTTPAddr is the default address for the HTTP transport.
	DefaultHTTPAddr = ":8080"

	// DefaultHTTPReadHeaderTimeout bounds how long reading request headers may take.
	DefaultHTTPReadHeaderTimeout = 10 * time.Second

	// DefaultHTTPIdleTimeout is the idle timeout for keep-alive connections.
	DefaultHTTPIdleTimeout = 120 * time.Second
)

// HTTPServerConfig holds configuration for the streamable HTTP transport.
type HTTPServerConfig struct {
	// Addr is the address to bind to (e.g., ":8080").
	Addr string

	// DisableStreaming forces plain request/response mode without SSE upgrades.
	DisableStreaming bool

	// Metrics records HTTP request metrics when set.
	Metrics *instrumentation.Metrics
}

// HTTPServer serves the MCP server over the streamable HTTP transport and
// exposes health check endpoints next to the /mcp endpoint.
type HTTPServer struct {
	httpServer    *http.Server
	healthChecker *HealthChecker
	addr          string
}

// NewHTTPServer creates an HTTP server wrapping the given MCP server.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, sc *ServerContext, config HTTPServerConfig) *HTTPServer {
	if config.Addr == "" {
		config.Addr = DefaultHTTPAddr
	}

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath("/mcp"),
	}
	if config.DisableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv, opts...)

	healthChecker := NewHealthChecker(sc)

	mux := http.NewServeMux()
	mux.Handle("/mcp", withHTTPMetrics(config.Metrics, mcpHandler))
	healthChecker.RegisterHealthEndpoints(mux)

	return &HTTPServer{
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           mux,
			ReadHeaderTimeout: DefaultHTTPReadHeaderTimeout,
			IdleTimeout:       DefaultHTTPIdleTimeout,
		},
		healthChecker: healthChecker,
		addr:          config.Addr,
	}
}

// withHTTPMetrics wraps a handler to record request counts and durations.
// Passing a nil metrics recorder returns the handler unchanged.
func withHTTPMetrics(metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// HealthChecker returns the health checker so callers can flip readiness.
func (s *HTTPServer) HealthChecker() *HealthChecker {
	return s.healthChecker
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Start starts the HTTP server in a blocking manner.
func (s *HTTPServer) Start() error {
	slog.Info("starting streamable HTTP server", "addr", s.addr, "endpoint", "/mcp")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.healthChecker.SetReady(false)
	slog.Info("shutting down streamable HTTP server")
	return s.httpServer.Shutdown(ctx)
}
