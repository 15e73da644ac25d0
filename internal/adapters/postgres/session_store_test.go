package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
	"github.com/ranjeet447/schoolerp-gateway/internal/testutil"
)

// newTestStore provisions the schema and returns a store scoped to a
// fresh principal so tests cannot observe each other's rows.
func newTestStore(t *testing.T) (*SessionStore, *pgxpool.Pool) {
	t.Helper()
	pool := testutil.SetupTestPool(t)
	require.NoError(t, EnsureSchema(context.Background(), pool))
	return NewSessionStore(pool, "principal-"+uuid.NewString()), pool
}

func testSession() domainsession.Session {
	return domainsession.Session{
		Token:       "tok-abc",
		UserID:      "user-1",
		Email:       "admin@greenfield.edu",
		DisplayName: "Asha Verma",
		Role:        domainsession.RoleTenantAdmin,
		TenantID:    "greenfield",
		Permissions: []string{"fees:read"},
	}
}

func TestSessionStore_SetAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess := testSession()
	require.NoError(t, store.Set(ctx, sess))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestSessionStore_SetOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, testSession()))

	updated := testSession()
	updated.Token = "tok-rotated"
	require.NoError(t, store.Set(ctx, updated))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-rotated", got.Token)
}

func TestSessionStore_GetAbsent(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background())
	assert.Equal(t, ports.ErrNotFound, err)
}

func TestSessionStore_NestedImpersonationRejected(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ic := domainsession.ImpersonationContext{
		EpisodeID: uuid.NewString(),
		Operator:  testSession(),
		StartedAt: time.Now().UTC(),
		Reason:    "support_ticket_4821",
	}
	require.NoError(t, store.SetImpersonation(ctx, ic))

	err := store.SetImpersonation(ctx, ic)
	assert.Equal(t, ports.ErrImpersonationActive, err)
}

func TestSessionStore_ClearRemovesBothRows(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, testSession()))
	require.NoError(t, store.SetImpersonation(ctx, domainsession.ImpersonationContext{
		EpisodeID: uuid.NewString(),
		Operator:  testSession(),
	}))

	require.NoError(t, store.Clear(ctx))

	_, err := store.Get(ctx)
	assert.Equal(t, ports.ErrNotFound, err)
	_, err = store.GetImpersonation(ctx)
	assert.Equal(t, ports.ErrNotFound, err)
}

func TestSessionStore_PrincipalsAreIsolated(t *testing.T) {
	store, pool := newTestStore(t)
	other := NewSessionStore(pool, "principal-"+uuid.NewString())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, testSession()))

	_, err := other.Get(ctx)
	assert.Equal(t, ports.ErrNotFound, err)
}
