package service

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/ranjeet447/schoolerp-gateway/internal/observability/statsd"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
)

// Redirect reasons carried to the login screen.
const (
	RedirectReasonTokenExpired         = "token_expired"
	RedirectReasonUnauthorized         = "unauthorized"
	RedirectReasonLogout               = "logout"
	RedirectReasonCorruptImpersonation = "corrupt_impersonation"
)

// DefaultLoginPath is the login screen path prefix used when none is
// configured.
const DefaultLoginPath = "/auth/login"

// RedirectGuardOptions groups dependencies for RedirectGuard.
type RedirectGuardOptions struct {
	Store     ports.SessionStore
	Navigator ports.Navigator
	Logger    *slog.Logger
	Metrics   statsd.Sink
	// LoginPathPrefix identifies the login screen; Trigger never fires
	// while the application is already there.
	LoginPathPrefix string
}

// RedirectGuard is a process-wide single-flight latch around the
// redirect-to-login side effect. Many in-flight requests may observe an
// expired or rejected credential in the same instant; exactly one of them
// may clear the session store and navigate. The latch is an atomic
// compare-and-swap because dispatches run on real OS threads here, not a
// cooperative event loop. It resets only with a new guard instance — the
// process equivalent of a fresh page load.
type RedirectGuard struct {
	store     ports.SessionStore
	navigator ports.Navigator
	logger    *slog.Logger
	metrics   statsd.Sink
	loginPath string

	tripped atomic.Bool
}

// NewRedirectGuard constructs a RedirectGuard.
func NewRedirectGuard(opts RedirectGuardOptions) *RedirectGuard {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginPath := opts.LoginPathPrefix
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &RedirectGuard{
		store:     opts.Store,
		navigator: opts.Navigator,
		logger:    logger,
		metrics:   opts.Metrics,
		loginPath: loginPath,
	}
}

// Trigger clears the session store and navigates to the login screen,
// carrying reason and the pre-redirect path. Subsequent and concurrent
// triggers are no-ops. Triggering while already on the login screen is
// also a no-op, so a failing call made by the login screen itself cannot
// start a redirect storm.
func (g *RedirectGuard) Trigger(ctx context.Context, reason string) {
	current := g.navigator.CurrentPath()
	if strings.HasPrefix(current, g.loginPath) {
		return
	}

	if !g.tripped.CompareAndSwap(false, true) {
		return
	}

	g.logger.InfoContext(ctx, "session redirect triggered", "reason", reason, "from", current)
	if g.metrics != nil {
		g.metrics.Count(statsd.MetricRedirect, 1, map[string]string{"reason": reason})
	}

	// A failed clear is logged but never blocks the navigation: leaving
	// the user on a dead screen is worse than retrying the clear at login.
	if err := g.store.Clear(ctx); err != nil {
		g.logger.ErrorContext(ctx, "session clear during redirect failed", "error", err)
	}
	g.navigator.ToLogin(ctx, reason, current)
}

// Tripped reports whether a redirect has already been initiated.
func (g *RedirectGuard) Tripped() bool {
	return g.tripped.Load()
}
