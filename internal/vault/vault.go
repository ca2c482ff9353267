// internal/vault/vault.go
//
// Vault client wrapper for Atrium.
//
// Context
// -------
//   - Provides a concurrency-safe wrapper around the HashiCorp Vault Go SDK.
//   - Adds background token renewal, a KV-v2 helper, and per-key caching.
//   - Implements config.SecretResolver so the loader can swap `vault:` refs
//     for plaintext at boot.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx)                       // during boot.
//  2. pw,  err := cli.Resolve(ctx, "secret/data/atrium#db_password")
//
// Reference format: `<kv-v2 path>#<key>`.  The path is the full API path
// including the `data/` segment, matching what `vault kv get -format=json`
// shows under `request.path`.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// secretTTL bounds how long a fetched secret is reused without a re-read.
const secretTTL = 5 * time.Minute

// Client is safe for concurrent use.  Create once at startup and inject it
// where secrets are needed.  Zero value is invalid.
type Client struct {
	api *vault.Client

	cacheMu sync.RWMutex
	cache   map[string]cached // "path#key" → value + expiry
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client and starts a background token-renewal loop.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault-token).
func New(ctx context.Context) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{
		api:   apiCli,
		cache: make(map[string]cached),
	}

	go c.renewLoop(ctx)

	return c, nil
}

// Resolve fetches one key from a KV-v2 secret given a `path#key` reference.
// Results are cached for secretTTL so repeated config loads do not hammer
// the Vault server.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	path, key, ok := strings.Cut(ref, "#")
	if !ok || path == "" || key == "" {
		return "", fmt.Errorf("vault: malformed reference %q (want path#key)", ref)
	}

	c.cacheMu.RLock()
	if cv, hit := c.cache[ref]; hit && time.Now().Before(cv.exp) {
		c.cacheMu.RUnlock()
		return cv.val, nil
	}
	c.cacheMu.RUnlock()

	sec, err := c.api.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("vault read %s: %w", path, err)
	}
	if sec == nil || sec.Data == nil {
		return "", fmt.Errorf("vault: no secret at %s", path)
	}

	// KV-v2 nests the payload under "data".
	data, _ := sec.Data["data"].(map[string]any)
	if data == nil {
		data = sec.Data
	}
	val, _ := data[key].(string)
	if val == "" {
		return "", fmt.Errorf("vault: key %q absent at %s", key, path)
	}

	c.cacheMu.Lock()
	c.cache[ref] = cached{val: val, exp: time.Now().Add(secretTTL)}
	c.cacheMu.Unlock()

	return val, nil
}

// renewLoop keeps the token fresh.  Renewal failures are non-fatal; the
// next Resolve simply fails and the caller decides what to do.
func (c *Client) renewLoop(ctx context.Context) {
	tick := time.NewTicker(15 * time.Minute)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if _, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0); err != nil {
				if !errors.Is(err, context.Canceled) {
					continue
				}
				return
			}
		}
	}
}
