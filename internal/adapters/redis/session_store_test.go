package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
	"github.com/ranjeet447/schoolerp-gateway/internal/testutil"
)

// newTestStore creates a store under a unique prefix so parallel test runs
// cannot observe each other's keys.
func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	client := testutil.SetupTestRedis(t)
	return NewSessionStoreWithPrefix(client, "gateway-test:"+uuid.NewString()+":")
}

func testSession() domainsession.Session {
	return domainsession.Session{
		Token:       "tok-abc",
		UserID:      "user-1",
		Email:       "admin@greenfield.edu",
		DisplayName: "Asha Verma",
		Role:        domainsession.RoleTenantAdmin,
		TenantID:    "greenfield",
		Permissions: []string{"fees:read", "fees:write"},
	}
}

func TestSessionStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := testSession()
	require.NoError(t, store.Set(ctx, sess))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestSessionStore_GetAbsent(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background())
	assert.Equal(t, ports.ErrNotFound, err)
}

func TestSessionStore_SetRejectsPartialSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	partial := testSession()
	partial.TenantID = ""
	require.Error(t, store.Set(ctx, partial))

	_, err := store.Get(ctx)
	assert.Equal(t, ports.ErrNotFound, err)
}

func TestSessionStore_ImpersonationRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ic := domainsession.ImpersonationContext{
		EpisodeID:       uuid.NewString(),
		Operator:        testSession(),
		TargetTenantID:  "northside",
		TargetUserID:    "user-9",
		TargetUserEmail: "teacher@northside.edu",
		StartedAt:       time.Now().UTC().Truncate(time.Second),
		Reason:          "support_ticket_4821",
	}
	require.NoError(t, store.SetImpersonation(ctx, ic))

	got, err := store.GetImpersonation(ctx)
	require.NoError(t, err)
	assert.Equal(t, ic, got)
}

func TestSessionStore_SetImpersonationTwice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ic := domainsession.ImpersonationContext{EpisodeID: uuid.NewString(), Operator: testSession()}
	require.NoError(t, store.SetImpersonation(ctx, ic))

	err := store.SetImpersonation(ctx, ic)
	assert.Equal(t, ports.ErrImpersonationActive, err)
}

func TestSessionStore_ClearRemovesEverything(t *testing.T) {
	store := newTestStore(t)
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

func TestSessionStore_ClearImpersonationKeepsSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, testSession()))
	require.NoError(t, store.SetImpersonation(ctx, domainsession.ImpersonationContext{
		EpisodeID: uuid.NewString(),
		Operator:  testSession(),
	}))

	require.NoError(t, store.ClearImpersonation(ctx))

	_, err := store.GetImpersonation(ctx)
	assert.Equal(t, ports.ErrNotFound, err)
	_, err = store.Get(ctx)
	assert.NoError(t, err)
}
