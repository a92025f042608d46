package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/inletlabs/mailsense/internal/analyzer"
	"github.com/inletlabs/mailsense/internal/config"
	"github.com/inletlabs/mailsense/internal/gmail"
	"github.com/inletlabs/mailsense/internal/google"
	"github.com/inletlabs/mailsense/internal/instrumentation"
)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx          context.Context
	cancel       context.CancelFunc
	cfg          config.Config
	gmailClients map[string]*gmail.Client // Maps account name to Gmail client
	analyzer     *analyzer.Analyzer
	metrics      *instrumentation.Metrics
	auditLogger  *instrumentation.AuditLogger
	mu           sync.RWMutex
	shutdown     bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, cfg config.Config) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:          shutdownCtx,
		cancel:       cancel,
		cfg:          cfg,
		gmailClients: make(map[string]*gmail.Client),
		analyzer: analyzer.New(analyzer.Config{
			APIKey:              cfg.OpenAIAPIKey,
			Model:               cfg.Model,
			MaxBodyChars:        cfg.MaxBodyChars,
			ConfidenceThreshold: cfg.ConfidenceThreshold,
		}),
		shutdown: false,
	}

	// Try to create default Gmail client, but don't fail if token is missing.
	// Clients will be lazily initialized when first needed.
	if google.HasToken() {
		client, err := gmail.NewClient(shutdownCtx, sc.cacheConfig())
		if err != nil {
			// Log but don't fail - will be re-attempted on first use
			slog.Warn("failed to create Gmail client for default account", "error", err)
		} else {
			sc.gmailClients["default"] = client
		}
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the server configuration
func (sc *ServerContext) Config() config.Config {
	return sc.cfg
}

func (sc *ServerContext) cacheConfig() gmail.CacheConfig {
	return gmail.CacheConfig{
		Size: sc.cfg.CacheSize,
		TTL:  sc.cfg.CacheTTL,
	}
}

// GmailClientForAccount returns the Gmail client for a specific account
// Creates and caches the client if it doesn't exist yet
// Returns nil if the account has no token
func (sc *ServerContext) GmailClientForAccount(account string) *gmail.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Check if client already exists
	if client, ok := sc.gmailClients[account]; ok {
		return client
	}

	// Try to create client if token exists
	if !google.HasTokenForAccount(account) {
		return nil
	}

	client, err := gmail.NewClientForAccount(sc.ctx, account, sc.cacheConfig())
	if err != nil {
		slog.Warn("failed to create Gmail client", "account", account, "error", err)
		return nil
	}

	sc.gmailClients[account] = client
	return client
}

// GmailClient returns the Gmail client for the default account
func (sc *ServerContext) GmailClient() *gmail.Client {
	return sc.GmailClientForAccount("default")
}

// SetGmailClientForAccount sets the Gmail client for a specific account
func (sc *ServerContext) SetGmailClientForAccount(account string, client *gmail.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.gmailClients[account] = client
}

// SetGmailClient sets the Gmail client for the default account
func (sc *ServerContext) SetGmailClient(client *gmail.Client) {
	sc.SetGmailClientForAccount("default", client)
}

// Analyzer returns the shared email analyzer
func (sc *ServerContext) Analyzer() *analyzer.Analyzer {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.analyzer
}

// SetAnalyzer replaces the email analyzer
func (sc *ServerContext) SetAnalyzer(a *analyzer.Analyzer) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.analyzer = a
}

// Metrics returns the metrics recorder, or nil if instrumentation is disabled
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil if audit logging is disabled
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
