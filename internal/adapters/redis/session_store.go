package redis

// Package redis provides the Redis-backed session store for the gateway.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	domainsession "github.com/ranjeet447/schoolerp-gateway/internal/domain/session"
	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
)

const (
	sessionKey       = "session"
	impersonationKey = "impersonation"
)

// SessionStore persists the active session and impersonation context as
// JSON blobs under a configurable key prefix. Clear issues a single DEL
// covering both keys, which Redis applies atomically, so a clear can never
// leave impersonation state behind.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithPrefix(client, "gateway:")
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom
// key prefix, e.g. one prefix per device or browser profile.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
	}
}

func (s *SessionStore) Get(ctx context.Context) (domainsession.Session, error) {
	data, err := s.client.Get(ctx, s.prefix+sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainsession.Session{}, ports.ErrNotFound
		}
		return domainsession.Session{}, fmt.Errorf("redis get session: %w", err)
	}

	var sess domainsession.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
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
	// Sessions have no store-level TTL; expiry lives in the token and is
	// enforced by the dispatcher and the server.
	return s.client.Set(ctx, s.prefix+sessionKey, data, 0).Err()
}

func (s *SessionStore) Clear(ctx context.Context) error {
	// One DEL covering both keys; partial clears are the primary source of
	// security bugs in this subsystem.
	return s.client.Del(ctx, s.prefix+sessionKey, s.prefix+impersonationKey).Err()
}

func (s *SessionStore) GetImpersonation(ctx context.Context) (domainsession.ImpersonationContext, error) {
	data, err := s.client.Get(ctx, s.prefix+impersonationKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainsession.ImpersonationContext{}, ports.ErrNotFound
		}
		return domainsession.ImpersonationContext{}, fmt.Errorf("redis get impersonation: %w", err)
	}

	var ic domainsession.ImpersonationContext
	if unmarshalErr := json.Unmarshal([]byte(data), &ic); unmarshalErr != nil {
		return domainsession.ImpersonationContext{}, fmt.Errorf("unmarshal impersonation: %w", unmarshalErr)
	}
	return ic, nil
}

func (s *SessionStore) SetImpersonation(ctx context.Context, ic domainsession.ImpersonationContext) error {
	data, err := json.Marshal(ic)
	if err != nil {
		return fmt.Errorf("marshal impersonation: %w", err)
	}

	// SETNX so a second begin cannot silently replace an episode in
	// progress. Nested impersonation is forbidden.
	set, err := s.client.SetNX(ctx, s.prefix+impersonationKey, data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis set impersonation: %w", err)
	}
	if !set {
		return ports.ErrImpersonationActive
	}
	return nil
}

func (s *SessionStore) ClearImpersonation(ctx context.Context) error {
	return s.client.Del(ctx, s.prefix+impersonationKey).Err()
}
