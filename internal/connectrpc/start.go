package connectrpc

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/fpt/folio/internal/agent"
	"github.com/fpt/folio/internal/metrics"
	pkgLogger "github.com/fpt/folio/pkg/logger"
)

// ServerOptions configures the agent's HTTP endpoint.
type ServerOptions struct {
	Addr        string
	MetricsPath string // empty disables the metrics endpoint
	Logger      *pkgLogger.Logger
}

// NewHandler builds the HTTP handler for the bridge and, optionally, the
// metrics endpoint. It speaks HTTP/1.1 and cleartext HTTP/2.
func NewHandler(a *agent.Agent, opts ServerOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = pkgLogger.NewDiscardLogger()
	}

	mux := http.NewServeMux()
	mux.Handle(NewBridgeServer(a, logger).Handler())
	if opts.MetricsPath != "" {
		mux.Handle(opts.MetricsPath, metrics.Handler())
	}
	return h2c.NewHandler(mux, &http2.Server{})
}

// StartServer listens on opts.Addr and serves until ctx is cancelled.
func StartServer(ctx context.Context, a *agent.Agent, opts ServerOptions) error {
	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", opts.Addr)
	}
	return Serve(ctx, ln, a, opts)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, ln net.Listener, a *agent.Agent, opts ServerOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = pkgLogger.NewDiscardLogger()
	}

	srv := &http.Server{
		Handler:           NewHandler(a, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.InfoWithIntention(pkgLogger.IntentionStatus, "Bridge listening", "addr", ln.Addr().String())
	if opts.MetricsPath != "" {
		logger.DebugWithIntention(pkgLogger.IntentionConfig, "Metrics enabled", "path", opts.MetricsPath)
	}

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server error")
	}
	return nil
}
