package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ranjeet447/schoolerp-gateway/internal/observability/statsd"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
	"github.com/ranjeet447/schoolerp-gateway/internal/tenant"
	"github.com/ranjeet447/schoolerp-gateway/internal/token"
)

// Doer issues a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestOptions carries per-request parameters for Dispatcher.Do.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	Body   io.Reader
	// Headers are merged after the computed base headers, so callers can
	// override them. A key whose only value is the empty string deletes
	// the header entirely — multipart uploads use this to drop the JSON
	// Content-Type and let the transport set the boundary form.
	Headers http.Header
}

// DispatcherOptions groups dependencies for Dispatcher.
type DispatcherOptions struct {
	// BaseURL is the backend origin, e.g. "https://api.schoolerp.example/v1".
	BaseURL string
	// Origin is the application origin host used for tenant resolution.
	Origin string
	// DefaultTenant is the tenant of last resort; empty means "no tenant
	// header" when nothing else resolves.
	DefaultTenant string
	// ExemptPaths are always dispatched unauthenticated and never trip
	// the redirect guard (the login path itself, pre-auth flows). Matched
	// by prefix.
	ExemptPaths []string
	Client      Doer
	Store       ports.SessionStore
	Guard       *RedirectGuard
	Logger      *slog.Logger
	Metrics     statsd.Sink
	// TokenSkew guards against a token expiring mid-flight; zero means
	// token.DefaultSkew.
	TokenSkew time.Duration
}

// Dispatcher composes tenant and credential headers onto outbound
// requests and reacts to expiry and unauthorized responses. It adds no
// retries and no timeouts of its own; transport errors propagate to the
// caller unchanged.
type Dispatcher struct {
	baseURL       string
	origin        string
	defaultTenant string
	exemptPaths   []string
	client        Doer
	store         ports.SessionStore
	guard         *RedirectGuard
	logger        *slog.Logger
	metrics       statsd.Sink
	tokenSkew     time.Duration
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	exempt := opts.ExemptPaths
	if exempt == nil {
		exempt = []string{DefaultLoginPath}
	}
	skew := opts.TokenSkew
	if skew == 0 {
		skew = token.DefaultSkew
	}
	return &Dispatcher{
		baseURL:       strings.TrimSuffix(opts.BaseURL, "/"),
		origin:        opts.Origin,
		defaultTenant: opts.DefaultTenant,
		exemptPaths:   exempt,
		client:        client,
		store:         opts.Store,
		guard:         opts.Guard,
		logger:        logger,
		metrics:       opts.Metrics,
		tokenSkew:     skew,
	}
}

// Do dispatches a request to path. Expiry and 401 handling never surface
// as errors: callers receive a 401-shaped response and uniform error
// rendering stays in one place, while the redirect has already been
// triggered.
func (d *Dispatcher) Do(ctx context.Context, path string, opts RequestOptions) (*http.Response, error) {
	sess, hasSession, err := d.currentSession(ctx)
	if err != nil {
		return nil, err
	}

	exempt := d.isExempt(path)

	// Refuse to send a request the server is already going to reject.
	if hasSession && !exempt && token.IsExpired(sess.Token, d.tokenSkew) {
		if d.metrics != nil {
			d.metrics.Count(statsd.MetricTokenExpired, 1, nil)
		}
		d.guard.Trigger(ctx, RedirectReasonTokenExpired)
		return syntheticUnauthorized(RedirectReasonTokenExpired), nil
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, opts.Body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	persisted := ""
	if hasSession {
		persisted = sess.TenantID
	}
	if tenantID := tenant.Resolve(d.origin, persisted, d.defaultTenant); tenantID != "" {
		req.Header.Set("X-Tenant-ID", tenantID)
	}
	// Exempt paths, the login endpoint first among them, are always
	// dispatched unauthenticated.
	if hasSession && !exempt {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	mergeHeaders(req.Header, opts.Headers)

	resp, err := d.client.Do(req)
	if err != nil {
		// Transport failures are the caller's concern; this layer never
		// retries.
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && hasSession && !exempt {
		if d.metrics != nil {
			d.metrics.Count(statsd.MetricUnauthorized, 1, nil)
		}
		d.guard.Trigger(ctx, RedirectReasonUnauthorized)
	}
	return resp, nil
}

// currentSession reads the active session, treating absence as an
// unauthenticated dispatch rather than an error.
func (d *Dispatcher) currentSession(ctx context.Context) (sess sessionValue, ok bool, err error) {
	s, err := d.store.Get(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return sessionValue{}, false, nil
		}
		return sessionValue{}, false, fmt.Errorf("read session: %w", err)
	}
	return sessionValue{Token: s.Token, TenantID: s.TenantID}, true, nil
}

// sessionValue is the slice of the session the dispatcher needs.
type sessionValue struct {
	Token    string
	TenantID string
}

func (d *Dispatcher) isExempt(path string) bool {
	for _, p := range d.exemptPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// mergeHeaders applies caller headers over the computed base headers.
func mergeHeaders(base, overrides http.Header) {
	for key, values := range overrides {
		if len(values) == 1 && values[0] == "" {
			base.Del(key)
			continue
		}
		base.Del(key)
		for _, v := range values {
			base.Add(key, v)
		}
	}
}

// syntheticUnauthorized builds the 401-shaped response returned when a
// request is refused locally, without a network round trip.
func syntheticUnauthorized(code string) *http.Response {
	body := fmt.Sprintf(`{"success":false,"code":%q,"message":"session expired"}`, code)
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		Status:     "401 Unauthorized",
		StatusCode: http.StatusUnauthorized,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}
