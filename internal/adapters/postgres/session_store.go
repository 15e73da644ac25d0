package postgres

// Package postgres provides a Postgres-backed session store for
// deployments where the gateway runs server-side and holds state for many
// principals (one row per device or browser profile).

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS gateway_sessions (
	principal  TEXT PRIMARY KEY,
	session    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS gateway_impersonations (
	principal  TEXT PRIMARY KEY,
	context    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// SessionStore persists gateway state in Postgres, keyed by principal.
// The impersonation table's primary key enforces at most one episode per
// principal; a second insert surfaces as ErrImpersonationActive.
type SessionStore struct {
	pool      *pgxpool.Pool
	principal string
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a Postgres-backed session store scoped to one
// principal.
func NewSessionStore(pool *pgxpool.Pool, principal string) *SessionStore {
	return &SessionStore{pool: pool, principal: principal}
}

// EnsureSchema creates the gateway tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure gateway schema: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context) (domainsession.Session, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT session FROM gateway_sessions WHERE principal = $1`, s.principal,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainsession.Session{}, ports.ErrNotFound
		}
		return domainsession.Session{}, fmt.Errorf("select session: %w", err)
	}

	var sess domainsession.Session
	if unmarshalErr := json.Unmarshal(data, &sess); unmarshalErr != nil {
		return domainsession.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}
	return sess, nil
}

func (s *SessionStore) Set(ctx context.Context, sess domainsession.Session) error {
	if !sess.Validate() {
		return errors.New("refusing to persist a partial session")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO gateway_sessions (principal, session, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (principal) DO UPDATE SET session = EXCLUDED.session, updated_at = now()`,
		s.principal, data)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	// Both rows go in one transaction so a clear can never leave
	// impersonation state behind the session it belonged to.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx,
		`DELETE FROM gateway_sessions WHERE principal = $1`, s.principal); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if _, err = tx.Exec(ctx,
		`DELETE FROM gateway_impersonations WHERE principal = $1`, s.principal); err != nil {
		return fmt.Errorf("delete impersonation: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}

func (s *SessionStore) GetImpersonation(ctx context.Context) (domainsession.ImpersonationContext, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT context FROM gateway_impersonations WHERE principal = $1`, s.principal,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainsession.ImpersonationContext{}, ports.ErrNotFound
		}
		return domainsession.ImpersonationContext{}, fmt.Errorf("select impersonation: %w", err)
	}

	var ic domainsession.ImpersonationContext
	if unmarshalErr := json.Unmarshal(data, &ic); unmarshalErr != nil {
		return domainsession.ImpersonationContext{}, fmt.Errorf("unmarshal impersonation: %w", unmarshalErr)
	}
	return ic, nil
}

func (s *SessionStore) SetImpersonation(ctx context.Context, ic domainsession.ImpersonationContext) error {
	data, err := json.Marshal(ic)
	if err != nil {
		return fmt.Errorf("marshal impersonation: %w", err)
	}

	// Plain INSERT, not an upsert: the primary key is the nested-
	// impersonation guard.
	_, err = s.pool.Exec(ctx, `
		INSERT INTO gateway_impersonations (principal, context, created_at)
		VALUES ($1, $2, now())`,
		s.principal, data)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ports.ErrImpersonationActive
		}
		return fmt.Errorf("insert impersonation: %w", err)
	}
	return nil
}

func (s *SessionStore) ClearImpersonation(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM gateway_impersonations WHERE principal = $1`, s.principal); err != nil {
		return fmt.Errorf("delete impersonation: %w", err)
	}
	return nil
}
