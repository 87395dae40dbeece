package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ShutdownHook runs after shutdown starts and before the server drains
type ShutdownHook func(ctx context.Context) error

// NewHTTPServer wraps handler with the server timeouts used by serve
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run serves on ln until ctx is done, then runs hooks in order and shuts
// the server down within shutdownTimeout. Hook failures are logged only.
func Run(ctx context.Context, server *http.Server, ln net.Listener, logger *zap.Logger, shutdownTimeout time.Duration, hooks ...ShutdownHook) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		errc <- server.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i, h := range hooks {
		if h == nil {
			continue
		}
		if err := h(sctx); err != nil {
			logger.Warn("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
		}
	}

	if err := server.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	<-errc
	logger.Info("shutdown complete")
	return nil
}

// ListenAndRun listens on the server's address and calls Run
func ListenAndRun(ctx context.Context, server *http.Server, logger *zap.Logger, shutdownTimeout time.Duration, hooks ...ShutdownHook) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", server.Addr, err)
	}
	return Run(ctx, server, ln, logger, shutdownTimeout, hooks...)
}
