// internal/business/model.go
//
// Business row model.
//
// Context
// -------
// A Business is one tenant of the platform: a bookable storefront reachable
// by URL slug, by custom domain, or through its owner's authenticated
// session.  This core only ever reads the row; registration and profile
// flows own the writes.
//
// Slug and custom domain are both nullable and, when present, unique across
// the table.  A business without a slug is simply not slug-addressable;
// nothing here synthesises placeholder slugs.
//
// Notes
// -----
//   - `LegacySettings` is the pre-theme-table flat JSON payload kept on the
//     business row during the theming migration.  internal/theme reads it
//     as a last-resort source; it is never written back.
//   - Oxford commas, two spaces after periods.
package business

import (
	"database/sql"
	"time"
)

// Roles stored in the `role` column.  RoleOwner marks the account that owns
// the business; staff accounts belong to a business but do not define one.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// Record mirrors one row in the persistent `business` table.
type Record struct {
	ID             uint64          `db:"id"`
	Slug           sql.NullString  `db:"slug"`
	CustomDomain   sql.NullString  `db:"custom_domain"`
	Name           string          `db:"name"`
	Email          string          `db:"email"`
	PasswordHash   string          `db:"password_hash"`
	Role           string          `db:"role"`
	// LegacySettings must stay []byte: database/sql only scans a NULL
	// column into *[]byte, and the column is NULL for migrated tenants.
	LegacySettings []byte `db:"legacy_settings"`
	SuspendedAt    *time.Time      `db:"suspended_at"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// SlugString returns the slug or "" when the column is NULL.
func (r *Record) SlugString() string {
	if r.Slug.Valid {
		return r.Slug.String
	}
	return ""
}

// Sanitized returns a copy safe to attach to request context and hand to
// templates or API responses: credential material is stripped.
func (r *Record) Sanitized() *Record {
	cp := *r
	cp.PasswordHash = ""
	return &cp
}
