// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup, ensuring the binary never
// runs with partial, malformed, or missing configuration.
//
// Rules in use: `required` on the DSN, listen address, and base domain,
// `hostname_port` on the listen address, `fqdn` on the platform base
// domain, and `min=1` on the tenancy TTL knobs so a zero TTL (which would
// expire every entry instantly) cannot slip through an env override.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

// errVaultRefWithoutResolver aborts Load when a `vault:` reference is seen
// but no resolver was supplied.  A blank password is a worse failure mode.
var errVaultRefWithoutResolver = errors.New("config: vault reference present but no secret resolver configured")

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
