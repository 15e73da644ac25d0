package headless

// Package headless implements the navigation port for process runtimes
// that have no browser location to mutate. Transitions are logged and the
// last destination recorded so the embedding program (CLI, tests) can act
// on it.

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
)

// LoginPath is the application path of the login screen.
const LoginPath = "/auth/login"

// Navigator records screen transitions instead of performing them. It is
// safe for concurrent use.
type Navigator struct {
	logger *slog.Logger

	mu      sync.Mutex
	current string
	last    string
}

var _ ports.Navigator = (*Navigator)(nil)

// NewNavigator creates a Navigator positioned at startPath.
func NewNavigator(logger *slog.Logger, startPath string) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	if startPath == "" {
		startPath = "/"
	}
	return &Navigator{logger: logger, current: startPath}
}

func (n *Navigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Navigator) ToLogin(ctx context.Context, reason, returnTo string) {
	dest := LoginPath + "?reason=" + url.QueryEscape(reason)
	if returnTo != "" {
		dest += "&next=" + url.QueryEscape(returnTo)
	}
	n.logger.InfoContext(ctx, "navigating to login", "reason", reason, "next", returnTo)
	n.record(dest)
}

func (n *Navigator) ToPath(ctx context.Context, path string) {
	n.logger.InfoContext(ctx, "navigating", "path", path)
	n.record(path)
}

// LastDestination returns the most recent navigation target, or empty if
// none occurred.
func (n *Navigator) LastDestination() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

func (n *Navigator) record(dest string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = dest
	n.last = dest
}
