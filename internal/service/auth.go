package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/observability/statsd"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
	"github.com/ranjeet447/schoolerp-gateway/internal/token"
)

// CodeLegalAcceptanceRequired is the backend response code that pauses a
// login until outstanding legal documents are accepted.
const CodeLegalAcceptanceRequired = "legal_acceptance_required"

// ErrLoginFailed wraps backend login rejections; the message carries the
// backend's reason.
var ErrLoginFailed = errors.New("login failed")

// loginEnvelope is the backend login response shape.
type loginEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Data    struct {
		Token       string   `json:"token"`
		UserID      string   `json:"user_id"`
		Email       string   `json:"email"`
		FullName    string   `json:"full_name"`
		Role        string   `json:"role"`
		TenantID    string   `json:"tenant_id"`
		Permissions []string `json:"permissions"`
		ExpiresAt   string   `json:"expires_at"`
	} `json:"data"`
	Meta struct {
		PreauthToken string          `json:"preauth_token"`
		Requirements json.RawMessage `json:"requirements"`
	} `json:"meta"`
}

// LoginResult is the outcome of a successful (or legally paused) login.
type LoginResult struct {
	Session domainsession.Session
	// RedirectTo is the role's landing path.
	RedirectTo string

	// LegalAcceptanceRequired indicates the backend paused the login until
	// outstanding documents are accepted. No session has been written.
	LegalAcceptanceRequired bool
	PreauthToken            string
	Requirements            json.RawMessage
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Dispatcher *Dispatcher
	Store      ports.SessionStore
	Navigator  ports.Navigator
	Policy     ports.AccessPolicy
	Logger     *slog.Logger
	Metrics    statsd.Sink
	// LoginPath is the backend login endpoint; empty means DefaultLoginPath.
	LoginPath string
	// TokenSkew mirrors the dispatcher's expiry margin; zero means
	// token.DefaultSkew.
	TokenSkew time.Duration
}

// AuthService is the authentication facade: login, logout, and the
// read-side identity questions the rest of the application asks.
type AuthService struct {
	dispatcher *Dispatcher
	store      ports.SessionStore
	navigator  ports.Navigator
	policy     ports.AccessPolicy
	logger     *slog.Logger
	metrics    statsd.Sink
	loginPath  string
	tokenSkew  time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	skew := opts.TokenSkew
	if skew == 0 {
		skew = token.DefaultSkew
	}
	return &AuthService{
		dispatcher: opts.Dispatcher,
		store:      opts.Store,
		navigator:  opts.Navigator,
		policy:     opts.Policy,
		logger:     logger,
		metrics:    opts.Metrics,
		loginPath:  loginPath,
		tokenSkew:  skew,
	}
}

// Login authenticates against the backend and, on success, installs the
// session with a single atomic write. A payload missing any required
// session field fails the login outright: nothing is written, because a
// partial session would pass presence checks while failing everything
// downstream.
func (a *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("encode login request: %w", err)
	}
	resp, err := a.dispatcher.Do(ctx, a.loginPath, RequestOptions{
		Method: http.MethodPost,
		Body:   strings.NewReader(string(body)),
	})
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	var env loginEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	if env.Code == CodeLegalAcceptanceRequired {
		return &LoginResult{
			LegalAcceptanceRequired: true,
			PreauthToken:            env.Meta.PreauthToken,
			Requirements:            env.Meta.Requirements,
		}, nil
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%w: %s", ErrLoginFailed, msg)
	}

	sess := domainsession.Session{
		Token:       env.Data.Token,
		UserID:      env.Data.UserID,
		Email:       env.Data.Email,
		DisplayName: env.Data.FullName,
		Role:        domainsession.Role(env.Data.Role),
		TenantID:    env.Data.TenantID,
		Permissions: env.Data.Permissions,
	}
	if !sess.Validate() {
		return nil, fmt.Errorf("%w: incomplete session payload", ErrLoginFailed)
	}
	if err := a.store.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	a.logger.InfoContext(ctx, "login succeeded",
		"user_id", sess.UserID, "role", sess.Role, "tenant_id", sess.TenantID)
	if a.metrics != nil {
		a.metrics.Count(statsd.MetricLogin, 1, map[string]string{"role": string(sess.Role)})
	}
	return &LoginResult{
		Session:    sess,
		RedirectTo: domainsession.DashboardPath(sess.Role),
	}, nil
}

// Logout clears all session state and routes to the login screen. There
// is no server round-trip: the credential simply stops being presented.
func (a *AuthService) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	a.navigator.ToLogin(ctx, RedirectReasonLogout, "")
	return nil
}

// CurrentUser returns the active session, or ok=false when none exists.
func (a *AuthService) CurrentUser(ctx context.Context) (domainsession.Session, bool, error) {
	sess, err := a.store.Get(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return domainsession.Session{}, false, nil
		}
		return domainsession.Session{}, false, fmt.Errorf("read session: %w", err)
	}
	return sess, true, nil
}

// IsAuthenticated reports whether a session is present with an unexpired
// token. It is a pure read: an expired session is reported false but left
// in place for the dispatch path to clear via the redirect guard.
func (a *AuthService) IsAuthenticated(ctx context.Context) bool {
	sess, ok, err := a.CurrentUser(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "authentication check failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	return !token.IsExpired(sess.Token, a.tokenSkew)
}

// HasPermission reports whether the active session may exercise
// capability. No session means no permissions.
func (a *AuthService) HasPermission(ctx context.Context, capability string) bool {
	sess, ok, err := a.CurrentUser(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "permission check failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	return a.policy.Allows(sess.Role, sess.Permissions, capability)
}
