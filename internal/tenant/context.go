// internal/tenant/context.go
//
// Request-context plumbing for the resolved business and the caller's
// identity.  Keys are unexported struct types to avoid collisions.
//
// Usage
// -----
//	ctx = tenant.WithBusiness(ctx, rec)      // set by the middleware
//	rec, ok := tenant.FromContext(ctx)       // read anywhere downstream
//
// The record stored here is always the sanitized copy—credential fields
// are stripped before it ever touches a request context.
package tenant

import (
	"context"

	"github.com/yanizio/atrium/internal/business"
)

type businessKey struct{}
type identityKey struct{}

// WithBusiness returns a new context carrying the resolved business.
func WithBusiness(ctx context.Context, rec *business.Record) context.Context {
	return context.WithValue(ctx, businessKey{}, rec)
}

// FromContext extracts the resolved business.  ok is false for requests
// with no tenant context.
func FromContext(ctx context.Context) (*business.Record, bool) {
	rec, ok := ctx.Value(businessKey{}).(*business.Record)
	return rec, ok && rec != nil
}

// WithIdentity attaches the authenticated caller.  The auth layer owns
// session verification; this package only consumes the result.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// IdentityFromContext returns the authenticated caller, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey{}).(*Identity)
	return ident
}
