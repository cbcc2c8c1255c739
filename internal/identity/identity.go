// Package identity resolves the principal on whose behalf an operation runs.
// Every invoice read and write is scoped to the principal's owner ID.
package identity

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// Principal is the authenticated identity making a request.
type Principal struct {
	OwnerID snowflake.ID
	Email   string
}

// Provider reports the principal of the current logical session.
type Provider interface {
	// Current returns the active principal, or false when no one is signed in.
	Current() (Principal, bool)
}

type contextKey struct{}

// WithPrincipal attaches the principal to the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext extracts the principal from the context.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// Session is a mutable Provider for a single client session. The zero value
// is a signed-out session.
type Session struct {
	mu        sync.Mutex
	principal *Principal
	token     string
}

// SignIn sets the session principal and its bearer token.
func (s *Session) SignIn(p Principal, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = &p
	s.token = token
}

// SignOut clears the session principal and token.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = nil
	s.token = ""
}

// Current implements Provider.
func (s *Session) Current() (Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return Principal{}, false
	}
	return *s.principal, true
}

// Token returns the session bearer token, empty when signed out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}
