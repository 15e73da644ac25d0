package oauthtoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	mocksession "github.com/ranjeet447/schoolerp-gateway/internal/mocks/session"
)

func storedSession(t *testing.T, expiresIn time.Duration) (*mocksession.MemorySessionStore, string) {
	t.Helper()
	claims := jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(expiresIn).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	store := mocksession.NewMemorySessionStore()
	require.NoError(t, store.Set(context.Background(), domainsession.Session{
		Token:    tok,
		UserID:   "user-1",
		Email:    "admin@greenfield.example",
		Role:     domainsession.RoleTenantAdmin,
		TenantID: "greenfield",
	}))
	return store, tok
}

func TestSourceReturnsBearerToken(t *testing.T) {
	store, raw := storedSession(t, time.Hour)
	src := New(context.Background(), store)

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, raw, tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Expiry, 5*time.Second)
}

func TestSourceWithoutSession(t *testing.T) {
	src := New(context.Background(), mocksession.NewMemorySessionStore())
	_, err := src.Token()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSourceRejectsExpiredToken(t *testing.T) {
	store, _ := storedSession(t, -time.Minute)
	src := New(context.Background(), store)
	_, err := src.Token()
	assert.ErrorIs(t, err, ErrNoSession)
}
