package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocksession "github.com/ranjeet447/schoolerp-gateway/internal/mocks/session"
)

func signToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(expiresIn).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

func newCaptureServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Header = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		captured.Body = b
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestDispatcher(t *testing.T, baseURL string, store *mocksession.MemorySessionStore, nav *mocksession.MockNavigator) (*Dispatcher, *RedirectGuard) {
	t.Helper()
	guard := NewRedirectGuard(RedirectGuardOptions{Store: store, Navigator: nav})
	d := NewDispatcher(DispatcherOptions{
		BaseURL:       baseURL,
		Origin:        "https://greenfield.schoolerp.example",
		DefaultTenant: "default",
		Store:         store,
		Guard:         guard,
	})
	return d, guard
}

func TestDispatcherSetsIdentityHeaders(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, `{"success":true}`)
	store := mocksession.NewMemorySessionStore()
	sess := validSession()
	sess.Token = signToken(t, time.Hour)
	require.NoError(t, store.Set(context.Background(), sess))
	nav := &mocksession.MockNavigator{Path: "/students"}

	d, guard := newTestDispatcher(t, srv.URL, store, nav)

	resp, err := d.Do(context.Background(), "/students", RequestOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "Bearer "+sess.Token, captured.Header.Get("Authorization"))
	// Persisted tenant wins over the origin host.
	assert.Equal(t, "greenfield", captured.Header.Get("X-Tenant-ID"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.NotEmpty(t, captured.Header.Get("X-Request-ID"))
	assert.False(t, guard.Tripped())
}

func TestDispatcherUnauthenticatedRequest(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, `{"success":true}`)
	store := mocksession.NewMemorySessionStore()
	nav := &mocksession.MockNavigator{Path: "/auth/login"}

	d, _ := newTestDispatcher(t, srv.URL, store, nav)

	resp, err := d.Do(context.Background(), "/public/config", RequestOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, captured.Header.Get("Authorization"))
	// Origin host still resolves the tenant without a session.
	assert.Equal(t, "greenfield.schoolerp.example", captured.Header.Get("X-Tenant-ID"))
}

func TestDispatcherRefusesExpiredTokenLocally(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	store := mocksession.NewMemorySessionStore()
	sess := validSession()
	sess.Token = signToken(t, -time.Minute)
	require.NoError(t, store.Set(context.Background(), sess))
	nav := &mocksession.MockNavigator{Path: "/students"}

	d, guard := newTestDispatcher(t, srv.URL, store, nav)

	resp, err := d.Do(context.Background(), "/students", RequestOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, hits, "expired credential must not reach the server")
	assert.True(t, guard.Tripped())

	var body struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, RedirectReasonTokenExpired, body.Code)

	calls := nav.LoginCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, RedirectReasonTokenExpired, calls[0].Reason)
}

func TestDispatcherExemptPathSkipsExpiryCheck(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, `{"success":true}`)
	store := mocksession.NewMemorySessionStore()
	sess := validSession()
	sess.Token = signToken(t, -time.Minute)
	require.NoError(t, store.Set(context.Background(), sess))
	nav := &mocksession.MockNavigator{Path: "/auth/login"}

	d, guard := newTestDispatcher(t, srv.URL, store, nav)

	resp, err := d.Do(context.Background(), "/auth/login", RequestOptions{Method: http.MethodPost})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Empty(t, captured.Header.Get("Authorization"))
	assert.False(t, guard.Tripped())
}

func TestDispatcherExemptPathOmitsAuthorization(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, `{"success":true}`)
	store := mocksession.NewMemorySessionStore()
	sess := validSession()
	sess.Token = signToken(t, time.Hour)
	require.NoError(t, store.Set(context.Background(), sess))
	nav := &mocksession.MockNavigator{Path: "/students"}

	d, _ := newTestDispatcher(t, srv.URL, store, nav)

	resp, err := d.Do(context.Background(), "/auth/login", RequestOptions{Method: http.MethodPost})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, captured.Header.Get("Authorization"))
	assert.Equal(t, "greenfield", captured.Header.Get("X-Tenant-ID"))
}

func TestDispatcherServerUnauthorizedTripsGuard(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusUnauthorized, `{"success":false}`)
	store := mocksession.NewMemorySessionStore()
	sess := validSession()
	sess.Token = signToken(t, time.Hour)
	require.NoError(t, store.Set(context.Background(), sess))
	nav := &mocksession.MockNavigator{Path: "/students"}

	d, guard := newTestDispatcher(t, srv.URL, store, nav)

	resp, err := d.Do(context.Background(), "/students", RequestOptions{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.True(t, guard.Tripped())
}

func TestDispatcherServerUnauthorizedWithoutSessionDoesNotTrip(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusUnauthorized, `{"success":false}`)
	store := mocksession.NewMemorySessionStore()
	nav := &mocksession.MockNavigator{Path: "/auth/login"}

	d, guard := newTestDispatcher(t, srv.URL, store, nav)

	resp, err := d.Do(context.Background(), "/auth/login", RequestOptions{Method: http.MethodPost})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.False(t, guard.Tripped())
}

func TestDispatcherHeaderOverrideAndDelete(t *testing.T) {
	srv, captured := newCaptureServer(t, http.StatusOK, `{"success":true}`)
	store := mocksession.NewMemorySessionStore()
	sess := validSession()
	sess.Token = signToken(t, time.Hour)
	require.NoError(t, store.Set(context.Background(), sess))
	nav := &mocksession.MockNavigator{Path: "/students"}

	d, _ := newTestDispatcher(t, srv.URL, store, nav)

	headers := make(http.Header)
	headers.Set("X-Tenant-ID", "override-tenant")
	// An empty value removes the header so multipart bodies can carry
	// their own Content-Type.
	headers.Set("Content-Type", "")

	resp, err := d.Do(context.Background(), "/uploads", RequestOptions{
		Method:  http.MethodPost,
		Headers: headers,
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "override-tenant", captured.Header.Get("X-Tenant-ID"))
	assert.Empty(t, captured.Header.Values("Content-Type"))
}

func TestDispatcherTransportErrorPropagates(t *testing.T) {
	store := mocksession.NewMemorySessionStore()
	nav := &mocksession.MockNavigator{Path: "/students"}

	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	d, guard := newTestDispatcher(t, url, store, nav)

	resp, err := d.Do(context.Background(), "/students", RequestOptions{})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.False(t, guard.Tripped())
}
