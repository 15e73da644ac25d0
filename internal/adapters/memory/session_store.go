package memory

// Package memory provides an in-process session store. It backs
// single-instance deployments and development, where losing the session
// on restart is acceptable.

import (
	"context"
	"fmt"
	"sync"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore holds the session and impersonation context in memory.
// Safe for concurrent use.
type SessionStore struct {
	mu   sync.RWMutex
	sess *domainsession.Session
	imp  *domainsession.ImpersonationContext
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Get(context.Context) (domainsession.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return domainsession.Session{}, ports.ErrNotFound
	}
	return *s.sess, nil
}

func (s *SessionStore) Set(_ context.Context, sess domainsession.Session) error {
	if !sess.Validate() {
		return fmt.Errorf("refusing to store incomplete session")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := sess
	s.sess = &cp
	return nil
}

// Clear removes the session and any impersonation context together.
func (s *SessionStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	s.imp = nil
	return nil
}

func (s *SessionStore) GetImpersonation(context.Context) (domainsession.ImpersonationContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.imp == nil {
		return domainsession.ImpersonationContext{}, ports.ErrNotFound
	}
	return *s.imp, nil
}

func (s *SessionStore) SetImpersonation(_ context.Context, ic domainsession.ImpersonationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imp != nil {
		return ports.ErrImpersonationActive
	}
	cp := ic
	s.imp = &cp
	return nil
}

func (s *SessionStore) ClearImpersonation(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imp = nil
	return nil
}
