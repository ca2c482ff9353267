// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file — first `<root>/conf/.env`, then jail-wide fallback.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `ATRIUM_`, where `__` maps to “.”
     (e.g., `ATRIUM_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs, any
`vault:` references are resolved through the supplied SecretResolver,
defaults are filled for the tenancy policy knobs, the result is validated,
enriched with the runtime root path, and cached in an `atomic.Pointer` for
lock-free reads.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`; this
    lets `go run ./cmd/web` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

// vaultPrefix marks config values that must be resolved through the
// SecretResolver before use, e.g. `vault:secret/data/atrium#db_password`.
const vaultPrefix = "vault:"

// SecretResolver turns a `vault:` reference into its plaintext value.  The
// concrete implementation lives in internal/vault; the indirection keeps
// this package testable without a running Vault.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// DefaultReservedSlugs is installed when tenancy.reserved_slugs is absent.
// Operators own the real list; this is only a safe floor.
var DefaultReservedSlugs = []string{
	"api", "assets", "admin", "auth", "dashboard", "checkout",
	"login", "products", "services", "metrics", "static",
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves ATRIUM_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("ATRIUM_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches Config.  Pass a nil SecretResolver when no `vault:` references are
// expected; hitting one then is a hard error rather than a silent blank.
func Load(ctx context.Context, secrets SecretResolver) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: ATRIUM_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("ATRIUM_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, &cfg, secrets); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	fillDefaults(&cfg)

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"base_domain", cfg.Tenancy.BaseDomain,
		"cache_ttl_s", cfg.Tenancy.CacheTTLSeconds,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// resolveSecrets swaps `vault:` references for their plaintext values.  Only
// Database.Password carries secrets today; extend here as the surface grows.
func resolveSecrets(ctx context.Context, cfg *Config, secrets SecretResolver) error {
	if !strings.HasPrefix(cfg.Database.Password, vaultPrefix) {
		return nil
	}
	if secrets == nil {
		return errVaultRefWithoutResolver
	}
	pw, err := secrets.Resolve(ctx, strings.TrimPrefix(cfg.Database.Password, vaultPrefix))
	if err != nil {
		return err
	}
	cfg.Database.Password = pw
	return nil
}

// fillDefaults installs the policy defaults for knobs the operator left out.
func fillDefaults(cfg *Config) {
	if cfg.Tenancy.CacheTTLSeconds == 0 {
		cfg.Tenancy.CacheTTLSeconds = 300
	}
	if cfg.Tenancy.SweepIntervalSeconds == 0 {
		cfg.Tenancy.SweepIntervalSeconds = 60
	}
	if len(cfg.Tenancy.ReservedSlugs) == 0 {
		cfg.Tenancy.ReservedSlugs = append([]string(nil), DefaultReservedSlugs...)
	}
}

func Get() *Config { return current.Load() }
