package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
)

func sampleSession() domainsession.Session {
	return domainsession.Session{
		Token:    "tok",
		UserID:   "u1",
		Email:    "a@b.c",
		Role:     domainsession.RoleTeacher,
		TenantID: "greenfield",
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, store.Set(ctx, sampleSession()))
	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSession(), got)
}

func TestSetRejectsIncompleteSession(t *testing.T) {
	store := NewSessionStore()
	sess := sampleSession()
	sess.TenantID = ""
	assert.Error(t, store.Set(context.Background(), sess))
}

func TestClearRemovesBoth(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, sampleSession()))
	require.NoError(t, store.SetImpersonation(ctx, domainsession.ImpersonationContext{
		EpisodeID: "ep-1",
		Operator:  sampleSession(),
	}))

	require.NoError(t, store.Clear(ctx))

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = store.GetImpersonation(ctx)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestNestedImpersonationRejected(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	ic := domainsession.ImpersonationContext{EpisodeID: "ep-1", Operator: sampleSession()}
	require.NoError(t, store.SetImpersonation(ctx, ic))

	err := store.SetImpersonation(ctx, domainsession.ImpersonationContext{EpisodeID: "ep-2"})
	assert.ErrorIs(t, err, ports.ErrImpersonationActive)

	// Clearing frees the slot.
	require.NoError(t, store.ClearImpersonation(ctx))
	assert.NoError(t, store.SetImpersonation(ctx, ic))
}
