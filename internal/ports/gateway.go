package ports

// Package ports defines interfaces (hexagonal ports) for the identity
// gateway. Implementations live in internal/adapters; orchestration in
// internal/service.

import (
	"context"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
)

// SessionStore persists the active session and, during an impersonation
// episode, the impersonation context. Clear removes both in one logical
// operation; a clear that leaves impersonation state behind is a bug class
// this port exists to prevent.
type SessionStore interface {
	Get(ctx context.Context) (domainsession.Session, error)
	Set(ctx context.Context, sess domainsession.Session) error
	Clear(ctx context.Context) error

	GetImpersonation(ctx context.Context) (domainsession.ImpersonationContext, error)
	// SetImpersonation fails with ErrImpersonationActive when a context is
	// already present. Nested impersonation is forbidden.
	SetImpersonation(ctx context.Context, ic domainsession.ImpersonationContext) error
	ClearImpersonation(ctx context.Context) error
}

// Navigator transitions the application to another screen. On a browser
// runtime this would be window.location; process runtimes record and log
// the destination instead.
type Navigator interface {
	// CurrentPath returns the path the application is currently on.
	CurrentPath() string

	// ToLogin navigates to the login screen carrying the trigger reason and
	// the pre-redirect path so login can return the user where they were.
	ToLogin(ctx context.Context, reason, returnTo string)

	// ToPath navigates to an application path, e.g. a dashboard.
	ToPath(ctx context.Context, path string)
}

// AccessPolicy decides whether a role with a granted capability set may
// exercise a capability. Policies are injected as configuration so the
// authorization table is auditable independently of the gateway.
type AccessPolicy interface {
	Allows(role domainsession.Role, granted []string, capability string) bool
}

// AuditNotifier reports an impersonation exit to the backend audit trail.
// Callers treat it as best-effort: a returned error is logged and counted
// but never blocks or rolls back session restoration.
type AuditNotifier interface {
	ImpersonationExited(ctx context.Context, rec domainsession.ExitRecord) error
}

// ErrNotFound is returned by SessionStore when no session or impersonation
// context is present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// ErrImpersonationActive is returned by SessionStore.SetImpersonation when
// an impersonation context already exists.
type impersonationActiveError struct{}

func (impersonationActiveError) Error() string { return "impersonation already active" }

var ErrImpersonationActive error = impersonationActiveError{}
