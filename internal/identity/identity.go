// Package identity abstracts the authentication provider. The core only
// needs to know who is signed in right now; absence of an identity is a
// hard precondition failure for every cart and order mutation.
package identity

import "context"

// Identity is the signed-in user as reported by the auth provider.
type Identity struct {
	UID   string
	Email string
}

// Provider reports the current identity, if any.
type Provider interface {
	Current(ctx context.Context) (Identity, bool)
}

// Static always reports the same identity. Used for session-scoped state
// that is bound to one user at construction time, and in tests.
type Static struct {
	ID Identity
}

func (s Static) Current(context.Context) (Identity, bool) {
	if s.ID.UID == "" {
		return Identity{}, false
	}
	return s.ID, true
}

// Nobody reports no signed-in identity.
type Nobody struct{}

func (Nobody) Current(context.Context) (Identity, bool) { return Identity{}, false }

type ctxKey struct{}

// WithIdentity stamps the identity onto the context; the HTTP auth
// middleware does this after validating the caller.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext is the Provider used on request paths: the identity travels
// with the request context.
type FromContext struct{}

func (FromContext) Current(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UID == "" {
		return Identity{}, false
	}
	return id, true
}
