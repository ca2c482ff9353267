// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net"
	"net/http"

	"github.com/yanizio/atrium/internal/tenant"
)

// ForceHTTPS wraps h.  If the request is plain HTTP, the host is not
// "localhost", and the resolver confirms the host maps to a known
// business, the wrapper issues a 308 Permanent Redirect to the HTTPS
// version of the same URL.  Otherwise it calls the next handler unchanged.
func ForceHTTPS(resolver *tenant.Resolver, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Already HTTPS or dev host → continue.
		if r.TLS != nil || isLocal(r.Host) {
			h.ServeHTTP(w, r)
			return
		}

		// Only redirect hosts that resolve to a business; an unknown host
		// keeps the normal flow (likely 404 later).
		if rec := resolver.Resolve(r.Context(), nil, r.Host, nil); rec != nil {
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func isLocal(host string) bool {
	h, _, err := net.SplitHostPort(host)
	if err != nil {
		h = host
	}
	return h == "localhost" || h == "127.0.0.1" || h == "::1"
}
