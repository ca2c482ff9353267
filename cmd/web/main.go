// cmd/web/main.go
//
// Atrium – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Build the Vault client when VAULT_ADDR is set, then load config
//     (resolving any `vault:` references, e.g. the DB password).
//
//  4. Open the control-plane DB and log the active-business count.
//
//  5. Construct the tenant cache (TTL + sweep from config), the resolver
//     chain, and the theme engine.
//
//  6. Assemble the chi router: tenant middleware on every route, theme
//     management API under /api/themes, Prometheus /metrics, /healthz.
//
//  7. Serve with sane timeouts; SIGINT/SIGTERM drains in-flight requests
//     and stops the cache sweep.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/atrium/internal/business"
	"github.com/yanizio/atrium/internal/config"
	"github.com/yanizio/atrium/internal/database"
	"github.com/yanizio/atrium/internal/logger"
	"github.com/yanizio/atrium/internal/middleware"
	"github.com/yanizio/atrium/internal/tenant"
	"github.com/yanizio/atrium/internal/theme"
	"github.com/yanizio/atrium/internal/themeapi"
	"github.com/yanizio/atrium/internal/vault"
)

const serverEnvPath = "/usr/local/etc/atrium/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	log, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Config (with optional Vault-backed secrets) ─────────────────
	//
	var secrets config.SecretResolver
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(ctx)
		if err != nil {
			log.Fatalw("vault init failed", "err", err)
		}
		secrets = vc
	}

	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		log.Fatalw("config load failed", "err", err)
	}

	//
	// ── 2.  Control-plane DB ────────────────────────────────────────────
	//
	dsn := strings.ReplaceAll(cfg.Database.DSN, "{password}", cfg.Database.Password)
	db, err := database.Open(dsn)
	if err != nil {
		log.Fatalw("connect control DB failed", "err", err)
	}
	defer db.Close()

	var active int
	_ = db.Get(&active, `SELECT COUNT(*) FROM business WHERE suspended_at IS NULL`)
	log.Infow("control DB online", "active_businesses", active)

	//
	// ── 3.  Tenant resolution ───────────────────────────────────────────
	//
	cache := tenant.NewCache(cfg.Tenancy.CacheTTL(), cfg.Tenancy.SweepInterval())
	defer cache.Close()

	bizRepo := business.NewRepo(db)
	resolver := tenant.NewResolver(cache, bizRepo,
		cfg.Tenancy.ReservedSlugs, cfg.Tenancy.BaseDomain)

	//
	// ── 4.  Theme engine ────────────────────────────────────────────────
	//
	themeRepo := theme.NewRepo(db)
	themeResolver := theme.NewResolver(themeRepo, themeRepo)
	themeMutator := theme.NewMutator(themeRepo)

	//
	// ── 5.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(resolver))
		r.Mount("/api/themes", themeapi.New(themeRepo, themeMutator, themeResolver).Routes())
	})

	var handler http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(resolver, handler)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("http server failed", "err", err)
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("shutdown incomplete", "err", err)
	}
}
