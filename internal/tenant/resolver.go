// internal/tenant/resolver.go
//
// Request → business resolution chain.
//
// Context
// -------
// Every inbound request is mapped to at most one business.  Strategies are
// tried in a fixed order and the first hit wins:
//
//  1. Authenticated identity carrying its own slug (platform admins are
//     skipped—they act on other tenants, not as one).
//  2. First URL path segment, unless it is a reserved word.
//  3. Host header as custom domain, after discarding loopback hosts, bare
//     IP literals, and the platform's own base domain; a domain miss falls
//     back to the first host label as a slug (subdomain routing).
//
// Every slug/domain probe is cache-first.  Repository NotFound results are
// cached negatively so hot unknown keys stop hitting the store; repository
// *errors* are logged, counted, and treated as a miss for that probe—the
// request pipeline always degrades to "no tenant", never aborts.  An
// unknown slug behaves exactly like no tenant context at all, so nothing
// leaks about which tenants exist.
//
// Concurrent probes for the same cold key are collapsed through a
// singleflight group; population afterwards is best-effort.
package tenant

import (
	"context"
	"errors"
	"net"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/atrium/internal/business"
	"github.com/yanizio/atrium/internal/metrics"
)

// Directory is the repository port the resolver consumes.  Implemented by
// business.Repo; redeclared here so tests can stub it and so this package
// depends on a contract, not a database.
type Directory interface {
	BySlug(ctx context.Context, slug string) (*business.Record, error)
	ByCustomDomain(ctx context.Context, domain string) (*business.Record, error)
}

// Identity describes the authenticated caller, when there is one.
type Identity struct {
	Slug          string
	PlatformAdmin bool
}

// Resolver owns the chain.  Construct once with NewResolver and share.
type Resolver struct {
	cache    *Cache
	dir      Directory
	reserved map[string]struct{}
	base     string
	sfg      singleflight.Group
}

// NewResolver wires the cache and repository port with the resolution
// policy: the reserved-slug set and the platform base domain, both taken
// from configuration.
func NewResolver(cache *Cache, dir Directory, reservedSlugs []string, baseDomain string) *Resolver {
	reserved := make(map[string]struct{}, len(reservedSlugs))
	for _, w := range reservedSlugs {
		reserved[strings.ToLower(w)] = struct{}{}
	}
	return &Resolver{
		cache:    cache,
		dir:      dir,
		reserved: reserved,
		base:     strings.ToLower(baseDomain),
	}
}

// Resolve walks the strategy chain and returns the sanitized business, or
// nil when the request carries no tenant context.
func (r *Resolver) Resolve(ctx context.Context, pathSegments []string, host string, ident *Identity) *business.Record {
	// 1. Authenticated identity.
	if ident != nil && ident.Slug != "" && !ident.PlatformAdmin {
		if rec := r.bySlug(ctx, ident.Slug); rec != nil {
			metrics.TenantResolvedTotal.WithLabelValues("auth").Inc()
			return rec
		}
	}

	// 2. Path segment.
	if cand := r.slugCandidate(pathSegments); cand != "" {
		if rec := r.bySlug(ctx, cand); rec != nil {
			metrics.TenantResolvedTotal.WithLabelValues("path").Inc()
			return rec
		}
	}

	// 3. Host header: custom domain, then subdomain-label fallback.
	if h := normalizeHost(host); r.isDomainCandidate(h) {
		if rec := r.byDomain(ctx, h); rec != nil {
			metrics.TenantResolvedTotal.WithLabelValues("domain").Inc()
			return rec
		}
		if label, ok := firstLabel(h); ok && validSlug(label) {
			if rec := r.bySlug(ctx, label); rec != nil {
				metrics.TenantResolvedTotal.WithLabelValues("subdomain").Inc()
				return rec
			}
		}
	}

	metrics.TenantResolvedTotal.WithLabelValues("none").Inc()
	return nil
}

//
// Per-strategy probes
//

// bySlug resolves one slug candidate: cache, then repository behind a
// singleflight barrier, then cache population.  Returns nil on any miss.
func (r *Resolver) bySlug(ctx context.Context, raw string) *business.Record {
	slug := strings.ToLower(raw)
	if rec, negative, ok := r.cache.Lookup(KeyspaceSlug, slug); ok {
		if negative {
			return nil
		}
		return rec
	}

	v, err, _ := r.sfg.Do("slug\x00"+slug, func() (any, error) {
		rec, err := r.dir.BySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, business.ErrNotFound) {
				r.cache.Store(KeyspaceSlug, slug, nil)
				return (*business.Record)(nil), nil
			}
			return nil, err
		}
		san := rec.Sanitized()
		r.cache.Store(KeyspaceSlug, slug, san)
		return san, nil
	})
	if err != nil {
		// Connectivity or timeout: degrade to a miss, never negative-cache.
		metrics.TenantLookupErrorsTotal.Inc()
		zap.L().Warn("slug lookup failed", zap.String("slug", slug), zap.Error(err))
		return nil
	}
	return v.(*business.Record)
}

// byDomain is the custom-domain twin of bySlug.
func (r *Resolver) byDomain(ctx context.Context, domain string) *business.Record {
	if rec, negative, ok := r.cache.Lookup(KeyspaceDomain, domain); ok {
		if negative {
			return nil
		}
		return rec
	}

	v, err, _ := r.sfg.Do("domain\x00"+domain, func() (any, error) {
		rec, err := r.dir.ByCustomDomain(ctx, domain)
		if err != nil {
			if errors.Is(err, business.ErrNotFound) {
				r.cache.Store(KeyspaceDomain, domain, nil)
				return (*business.Record)(nil), nil
			}
			return nil, err
		}
		san := rec.Sanitized()
		r.cache.Store(KeyspaceDomain, domain, san)
		return san, nil
	})
	if err != nil {
		metrics.TenantLookupErrorsTotal.Inc()
		zap.L().Warn("domain lookup failed", zap.String("domain", domain), zap.Error(err))
		return nil
	}
	return v.(*business.Record)
}

//
// Candidate extraction
//

// slugCandidate returns the first path segment when it looks like a slug
// and is not reserved, else "".
func (r *Resolver) slugCandidate(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	cand := strings.ToLower(segments[0])
	if cand == "" || !validSlug(cand) {
		return ""
	}
	if _, reserved := r.reserved[cand]; reserved {
		return ""
	}
	return cand
}

// isDomainCandidate rejects hosts that can never be a customer domain:
// empty, loopback, bare IP literals, and the platform's own base domain.
func (r *Resolver) isDomainCandidate(h string) bool {
	switch {
	case h == "", h == "localhost":
		return false
	case net.ParseIP(h) != nil:
		return false
	case h == r.base:
		return false
	}
	return true
}

//
// Host helpers
//

// normalizeHost lowercases and strips any :port suffix, including the
// bracketed IPv6 form.
func normalizeHost(host string) string {
	h := strings.ToLower(host)
	if stripped, _, err := net.SplitHostPort(h); err == nil {
		return stripped
	}
	return h
}

// firstLabel splits "client1.platform.example" into ("client1", true).
// ok is false when the host has no dot, so bare names never alias a slug.
func firstLabel(h string) (string, bool) {
	label, rest, found := strings.Cut(h, ".")
	if !found || label == "" || rest == "" {
		return "", false
	}
	return label, true
}

// validSlug accepts lower-kebab ASCII: a-z, 0-9, and interior dashes.
// Anything else (dots, encoded characters, uppercase survivors) is not a
// slug candidate.
func validSlug(s string) bool {
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}
