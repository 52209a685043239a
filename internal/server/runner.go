// Package server runs the HTTP listener and the media server session lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 30 * time.Second

// Config for the runner.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// ShutdownFunc runs after the HTTP server has drained.
type ShutdownFunc func(ctx context.Context) error

// Runner serves HTTP until its context is canceled, then shuts down
// gracefully and runs registered shutdown hooks in order.
type Runner struct {
	handler http.Handler
	config  Config
	hooks   []namedHook
	logger  *slog.Logger
}

type namedHook struct {
	name string
	fn   ShutdownFunc
}

// NewRunner creates a new runner.
func NewRunner(handler http.Handler, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Runner{
		handler: handler,
		config:  cfg,
		logger:  logger.With("component", "runner"),
	}
}

// OnShutdown registers a hook. Hook errors are logged, not returned.
func (r *Runner) OnShutdown(name string, fn ShutdownFunc) {
	r.hooks = append(r.hooks, namedHook{name: name, fn: fn})
}

// Run listens on the configured address and serves until ctx is canceled.
// Hooks run even when the address cannot be bound.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.ShutdownTimeout)
		defer cancel()
		r.runHooks(hookCtx)
		return fmt.Errorf("listen %s: %w", r.config.Addr, err)
	}
	return r.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled or the server fails.
// A clean shutdown returns nil.
func (r *Runner) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		// The parent context is already done; shutdown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		r.runHooks(shutdownCtx)
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		r.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

func (r *Runner) runHooks(ctx context.Context) {
	for _, h := range r.hooks {
		if err := h.fn(ctx); err != nil {
			r.logger.Warn("shutdown hook failed", "hook", h.name, "error", err)
		}
	}
}
