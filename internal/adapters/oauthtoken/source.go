package oauthtoken

// Package oauthtoken exposes the stored session credential as an
// oauth2.TokenSource, so clients built on golang.org/x/oauth2 transports
// (cloud SDKs, generated API clients) can ride the gateway session
// without a second credential path.

import (
	"context"
	"errors"

	"golang.org/x/oauth2"

	"github.com/ranjeet447/schoolerp-gateway/internal/ports"
	"github.com/ranjeet447/schoolerp-gateway/internal/token"
)

var _ oauth2.TokenSource = (*Source)(nil)

// ErrNoSession is returned when no session is stored to draw a token from.
var ErrNoSession = errors.New("no session available")

// Source adapts a SessionStore to oauth2.TokenSource. It never refreshes:
// when the stored token is gone or expired, Token fails and the caller's
// transport surfaces the auth error like any other.
type Source struct {
	ctx   context.Context
	store ports.SessionStore
}

// New builds a Source bound to ctx, mirroring oauth2's convention of
// context-carrying sources.
func New(ctx context.Context, store ports.SessionStore) *Source {
	return &Source{ctx: ctx, store: store}
}

// Token returns the stored credential as an oauth2 bearer token with its
// expiry decoded from the token itself.
func (s *Source) Token() (*oauth2.Token, error) {
	sess, err := s.store.Get(s.ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	tok := &oauth2.Token{
		AccessToken: sess.Token,
		TokenType:   "Bearer",
	}
	if exp, ok := token.DecodeExpiry(sess.Token); ok {
		tok.Expiry = exp
	}
	if !tok.Valid() {
		return nil, ErrNoSession
	}
	return tok, nil
}
