// internal/config/model.go
//
// Typed configuration model for Atrium.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `ATRIUM_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* validation, so the model never stores
// Vault URIs after Load() returns—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Durations are plain seconds in YAML; accessor methods return
//     time.Duration so callers never multiply by time.Second themselves.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the control-plane DSN.  The password placeholder in the
// DSN template is filled from `Password`, which operators usually store as
// a `vault:secret/data/atrium#db_password` reference rather than plaintext.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
}

//
// Tenancy section
//

// Tenancy carries the resolution policy knobs.  TTLs and the reserved-slug
// list are policy, not logic, so they live here instead of in constants.
type Tenancy struct {
	CacheTTLSeconds      int      `koanf:"cache_ttl_seconds"      validate:"min=1"`
	SweepIntervalSeconds int      `koanf:"sweep_interval_seconds" validate:"min=1"`
	ReservedSlugs        []string `koanf:"reserved_slugs"`
	BaseDomain           string   `koanf:"base_domain" validate:"required,fqdn"`
}

// CacheTTL returns the tenant-cache entry lifetime.
func (t Tenancy) CacheTTL() time.Duration {
	return time.Duration(t.CacheTTLSeconds) * time.Second
}

// SweepInterval returns the cadence of the background cache sweep.
func (t Tenancy) SweepInterval() time.Duration {
	return time.Duration(t.SweepIntervalSeconds) * time.Second
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or ATRIUM_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // ATRIUM_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Tenancy  Tenancy  `koanf:"tenancy"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
