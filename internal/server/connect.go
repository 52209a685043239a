package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

// Authenticator opens a media server session.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// ConnectOptions tune the startup retry loop.
type ConnectOptions struct {
	Attempts uint
	Delay    time.Duration
	// Permanent reports errors that retrying cannot fix, such as bad credentials.
	Permanent func(error) bool
}

// Connect authenticates with exponential backoff. The server is often
// started alongside the media server, which may not be accepting logins yet.
func Connect(ctx context.Context, auth Authenticator, opts ConnectOptions, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Attempts == 0 {
		opts.Attempts = 5
	}
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}
	permanent := opts.Permanent
	if permanent == nil {
		permanent = func(error) bool { return false }
	}

	return retry.Do(
		func() error { return auth.Authenticate(ctx) },
		retry.Context(ctx),
		retry.Attempts(opts.Attempts),
		retry.Delay(opts.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !permanent(err) && !errors.Is(err, context.Canceled)
		}),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("authentication failed, retrying", "attempt", n+1, "error", err)
		}),
	)
}
