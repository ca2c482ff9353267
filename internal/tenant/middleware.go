// internal/tenant/middleware.go
//
// Chi middleware that runs the resolver for every request and attaches the
// sanitized business to the request context.  Resolution failure is not an
// error: the request continues without tenant context and downstream
// handlers decide what that means for them.
package tenant

import (
	"net/http"
	"strings"
)

// Middleware returns a resolver-bound middleware.  Mount it early, after
// authentication (so Identity is already in context) and before anything
// that calls FromContext.
func Middleware(r *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			rec := r.Resolve(ctx, PathSegments(req.URL.Path), req.Host, IdentityFromContext(ctx))
			if rec != nil {
				ctx = WithBusiness(ctx, rec)
			}

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// PathSegments splits "/acme/book" into ["acme", "book"].  Root ("/")
// yields an empty slice.
func PathSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
