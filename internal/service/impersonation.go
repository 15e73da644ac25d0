package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/observability/statsd"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
)

// ExitReasonManual is the audit reason recorded when an operator ends an
// episode themselves, as opposed to an administrative revocation on the
// backend.
const ExitReasonManual = "manual_exit"

var (
	// ErrNoActiveSession is returned by Begin when there is no session to
	// snapshot as the operator.
	ErrNoActiveSession = errors.New("no active session")
	// ErrNestedImpersonation is returned by Begin while an episode is
	// already in progress.
	ErrNestedImpersonation = errors.New("impersonation already in progress")
	// ErrNotImpersonating is returned by Exit when no episode is in
	// progress.
	ErrNotImpersonating = errors.New("not impersonating")
	// ErrInvalidTarget is returned by Begin when the target session is
	// missing required fields.
	ErrInvalidTarget = errors.New("invalid impersonation target")
)

// ImpersonationManagerOptions groups dependencies for ImpersonationManager.
type ImpersonationManagerOptions struct {
	Store     ports.SessionStore
	Navigator ports.Navigator
	Auditor   ports.AuditNotifier
	Logger    *slog.Logger
	Metrics   statsd.Sink
	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

// ImpersonationManager runs impersonation episodes: a platform operator
// temporarily acts as a tenant user, then gets their own session back
// field-for-field. The operator snapshot lives in the session store, not
// in memory, so an episode survives process restarts the same way the
// session itself does.
type ImpersonationManager struct {
	store     ports.SessionStore
	navigator ports.Navigator
	auditor   ports.AuditNotifier
	logger    *slog.Logger
	metrics   statsd.Sink
	now       func() time.Time
}

// NewImpersonationManager constructs an ImpersonationManager.
func NewImpersonationManager(opts ImpersonationManagerOptions) *ImpersonationManager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ImpersonationManager{
		store:     opts.Store,
		navigator: opts.Navigator,
		auditor:   opts.Auditor,
		logger:    logger,
		metrics:   opts.Metrics,
		now:       now,
	}
}

// Begin starts an impersonation episode: the current session becomes the
// operator snapshot and target becomes the active session. The context is
// persisted before the active session is replaced, so a crash between the
// two writes leaves a recoverable state (operator snapshot present, own
// session still active) rather than a stranded target session.
func (m *ImpersonationManager) Begin(ctx context.Context, target domainsession.Session, reason string) error {
	if !target.Validate() {
		return ErrInvalidTarget
	}

	operator, err := m.store.Get(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrNoActiveSession
		}
		return fmt.Errorf("read operator session: %w", err)
	}

	ic := domainsession.ImpersonationContext{
		EpisodeID:       uuid.NewString(),
		Operator:        operator,
		TargetTenantID:  target.TenantID,
		TargetUserID:    target.UserID,
		TargetUserEmail: target.Email,
		StartedAt:       m.now().UTC(),
		Reason:          reason,
	}
	if err := m.store.SetImpersonation(ctx, ic); err != nil {
		if errors.Is(err, ports.ErrImpersonationActive) {
			return ErrNestedImpersonation
		}
		return fmt.Errorf("persist impersonation context: %w", err)
	}
	if err := m.store.Set(ctx, target); err != nil {
		// Roll the context back so the store does not claim an episode
		// that never activated.
		if cerr := m.store.ClearImpersonation(ctx); cerr != nil {
			m.logger.ErrorContext(ctx, "impersonation context rollback failed", "error", cerr)
		}
		return fmt.Errorf("activate target session: %w", err)
	}

	m.logger.InfoContext(ctx, "impersonation started",
		"episode_id", ic.EpisodeID,
		"operator_user_id", operator.UserID,
		"target_user_id", target.UserID,
		"target_tenant_id", target.TenantID,
	)
	if m.metrics != nil {
		m.metrics.Count(statsd.MetricImpersonationOpen, 1, map[string]string{"tenant": target.TenantID})
	}
	return nil
}

// Exit ends the episode: the operator session is restored with a single
// Set, the context is cleared, the operator is navigated to the platform
// dashboard, and only then is the backend audit trail notified. The audit
// call is best-effort: a failure is logged and counted but the operator
// is already back in their own session by the time it runs.
func (m *ImpersonationManager) Exit(ctx context.Context, notes string) error {
	ic, err := m.store.GetImpersonation(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ErrNotImpersonating
		}
		return fmt.Errorf("read impersonation context: %w", err)
	}

	if !ic.Operator.Validate() {
		// The snapshot cannot be restored. The only safe identity left is
		// none at all: drop everything and route through login.
		m.logger.ErrorContext(ctx, "impersonation operator snapshot invalid, forcing logout",
			"episode_id", ic.EpisodeID)
		if cerr := m.store.Clear(ctx); cerr != nil {
			m.logger.ErrorContext(ctx, "session clear during corrupt exit failed", "error", cerr)
		}
		m.navigator.ToLogin(ctx, RedirectReasonCorruptImpersonation, "")
		return nil
	}

	if err := m.store.Set(ctx, ic.Operator); err != nil {
		return fmt.Errorf("restore operator session: %w", err)
	}
	if err := m.store.ClearImpersonation(ctx); err != nil {
		// The operator is restored; a stale context only blocks the next
		// Begin, and surfacing the error lets the caller retry the clear.
		return fmt.Errorf("clear impersonation context: %w", err)
	}

	m.navigator.ToPath(ctx, domainsession.PlatformDashboardPath)

	m.logger.InfoContext(ctx, "impersonation ended",
		"episode_id", ic.EpisodeID,
		"operator_user_id", ic.Operator.UserID,
		"target_user_id", ic.TargetUserID,
	)
	if m.metrics != nil {
		m.metrics.Count(statsd.MetricImpersonationExit, 1, map[string]string{"tenant": ic.TargetTenantID})
	}

	m.notifyExit(ctx, ic, notes)
	return nil
}

// Impersonating reports whether an episode is in progress, along with its
// context when one is.
func (m *ImpersonationManager) Impersonating(ctx context.Context) (domainsession.ImpersonationContext, bool, error) {
	ic, err := m.store.GetImpersonation(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return domainsession.ImpersonationContext{}, false, nil
		}
		return domainsession.ImpersonationContext{}, false, fmt.Errorf("read impersonation context: %w", err)
	}
	return ic, true, nil
}

func (m *ImpersonationManager) notifyExit(ctx context.Context, ic domainsession.ImpersonationContext, notes string) {
	if m.auditor == nil {
		return
	}
	if ic.TargetTenantID == "" {
		// An episode recorded before target denormalisation has nothing to
		// address the audit call to.
		m.logger.WarnContext(ctx, "impersonation exit audit skipped, no target tenant",
			"episode_id", ic.EpisodeID)
		return
	}
	if notes == "" {
		// The begin reason is the best available note when the operator
		// supplies none.
		notes = ic.Reason
	}
	rec := domainsession.ExitRecord{
		Reason:          ExitReasonManual,
		Notes:           notes,
		TargetTenantID:  ic.TargetTenantID,
		TargetUserID:    ic.TargetUserID,
		TargetUserEmail: ic.TargetUserEmail,
		StartedAt:       ic.StartedAt.UTC().Format(time.RFC3339),
	}
	if err := m.auditor.ImpersonationExited(ctx, rec); err != nil {
		m.logger.ErrorContext(ctx, "impersonation exit audit failed",
			"episode_id", ic.EpisodeID, "error", err)
		if m.metrics != nil {
			m.metrics.Count(statsd.MetricAuditFailure, 1, nil)
		}
	}
}
