package session

// Package session contains simple hand-written test doubles for the
// gateway ports. These are lightweight and suitable for unit tests
// without codegen.

import (
	"context"
	"sync"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore  = (*MemorySessionStore)(nil)
	_ ports.Navigator     = (*MockNavigator)(nil)
	_ ports.AuditNotifier = (*MockAuditNotifier)(nil)
)

// MemorySessionStore is an in-memory session store for unit tests. It is
// safe for concurrent use so redirect-guard races can be exercised, and
// it counts Clear calls so tests can assert single-flight behaviour.
type MemorySessionStore struct {
	mu sync.Mutex

	sess     *domainsession.Session
	imp      *domainsession.ImpersonationContext
	clearCnt int

	// Error hooks. When set, the corresponding call returns the error
	// instead of touching state.
	GetErr              error
	SetErr              error
	ClearErr            error
	SetImpersonationErr error
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (m *MemorySessionStore) Get(_ context.Context) (domainsession.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domainsession.Session{}, m.GetErr
	}
	if m.sess == nil {
		return domainsession.Session{}, ports.ErrNotFound
	}
	return *m.sess, nil
}

func (m *MemorySessionStore) Set(_ context.Context, sess domainsession.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	cp := sess
	m.sess = &cp
	return nil
}

func (m *MemorySessionStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCnt++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.sess = nil
	m.imp = nil
	return nil
}

func (m *MemorySessionStore) GetImpersonation(_ context.Context) (domainsession.ImpersonationContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.imp == nil {
		return domainsession.ImpersonationContext{}, ports.ErrNotFound
	}
	return *m.imp, nil
}

func (m *MemorySessionStore) SetImpersonation(_ context.Context, ic domainsession.ImpersonationContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetImpersonationErr != nil {
		return m.SetImpersonationErr
	}
	if m.imp != nil {
		return ports.ErrImpersonationActive
	}
	cp := ic
	m.imp = &cp
	return nil
}

func (m *MemorySessionStore) ClearImpersonation(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imp = nil
	return nil
}

// ClearCalls reports how many times Clear has been invoked.
func (m *MemorySessionStore) ClearCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearCnt
}

// Session returns the stored session, or ok=false when empty.
func (m *MemorySessionStore) Session() (domainsession.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return domainsession.Session{}, false
	}
	return *m.sess, true
}

// MockNavigator records navigation calls. Function fields override the
// default recording behaviour when set.
type MockNavigator struct {
	mu sync.Mutex

	CurrentPathFunc func() string
	ToLoginFunc     func(ctx context.Context, reason, returnTo string)
	ToPathFunc      func(ctx context.Context, path string)

	// Path is returned by CurrentPath when CurrentPathFunc is nil.
	Path string

	loginCalls []LoginCall
	pathCalls  []string
}

// LoginCall records one ToLogin invocation.
type LoginCall struct {
	Reason   string
	ReturnTo string
}

func (m *MockNavigator) CurrentPath() string {
	if m.CurrentPathFunc != nil {
		return m.CurrentPathFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Path
}

func (m *MockNavigator) ToLogin(ctx context.Context, reason, returnTo string) {
	if m.ToLoginFunc != nil {
		m.ToLoginFunc(ctx, reason, returnTo)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginCalls = append(m.loginCalls, LoginCall{Reason: reason, ReturnTo: returnTo})
	m.Path = "/auth/login"
}

func (m *MockNavigator) ToPath(ctx context.Context, path string) {
	if m.ToPathFunc != nil {
		m.ToPathFunc(ctx, path)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pathCalls = append(m.pathCalls, path)
	m.Path = path
}

// LoginCalls returns the recorded ToLogin invocations.
func (m *MockNavigator) LoginCalls() []LoginCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LoginCall, len(m.loginCalls))
	copy(out, m.loginCalls)
	return out
}

// PathCalls returns the recorded ToPath destinations.
func (m *MockNavigator) PathCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.pathCalls))
	copy(out, m.pathCalls)
	return out
}

// MockAuditNotifier records exit reports for tests.
type MockAuditNotifier struct {
	mu sync.Mutex

	ImpersonationExitedFunc func(ctx context.Context, rec domainsession.ExitRecord) error

	records []domainsession.ExitRecord
}

func (m *MockAuditNotifier) ImpersonationExited(ctx context.Context, rec domainsession.ExitRecord) error {
	if m.ImpersonationExitedFunc != nil {
		return m.ImpersonationExitedFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// Records returns the recorded exit reports.
func (m *MockAuditNotifier) Records() []domainsession.ExitRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domainsession.ExitRecord, len(m.records))
	copy(out, m.records)
	return out
}
