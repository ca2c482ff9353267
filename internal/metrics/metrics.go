// Package metrics holds Prometheus instruments that are used across the
// platform.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TenantCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tenant_cache_entries",
			Help: "Number of entries (positive and negative) currently cached.",
		})

	TenantCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_cache_hits_total",
			Help: "Cumulative number of positive tenant cache hits.",
		})

	TenantCacheNegativeHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_cache_negative_hits_total",
			Help: "Cumulative number of negative (tombstone) cache hits.",
		})

	TenantCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_cache_misses_total",
			Help: "Cumulative number of tenant cache misses, including lazy expiries.",
		})

	TenantCacheEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_cache_evict_total",
			Help: "Cumulative number of entries removed by the background sweep.",
		})

	TenantLookupErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_lookup_errors_total",
			Help: "Cumulative number of repository errors during tenant resolution.",
		})

	TenantResolvedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_resolved_total",
			Help: "Tenant resolutions by strategy (auth, path, domain, subdomain, none).",
		},
		[]string{"strategy"})

	ThemeResolvedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "theme_resolved_total",
			Help: "Effective-theme resolutions by source (active, default, legacy, fallback).",
		},
		[]string{"source"})
)

func init() {
	prometheus.MustRegister(
		TenantCacheEntries,
		TenantCacheHitsTotal,
		TenantCacheNegativeHitsTotal,
		TenantCacheMissesTotal,
		TenantCacheEvictTotal,
		TenantLookupErrorsTotal,
		TenantResolvedTotal,
		ThemeResolvedTotal,
	)
}
