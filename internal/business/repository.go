package business

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no business matches the lookup key.
var ErrNotFound = errors.New("business not found")

const selectColumns = `
        id, slug, custom_domain, name, email, password_hash, role,
        legacy_settings, suspended_at, created_at, updated_at`

// Repo provides read access to the `business` table.  All lookups skip
// suspended rows so a disabled tenant drops out of resolution the moment
// the flag lands.
type Repo struct {
	db *sqlx.DB
}

// NewRepo wraps the control-plane pool.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// ByID fetches a single business row.
func (r *Repo) ByID(ctx context.Context, id uint64) (*Record, error) {
	const q = `
        SELECT` + selectColumns + `
        FROM   business
        WHERE  id = ?
          AND  suspended_at IS NULL
        LIMIT  1`
	return r.get(ctx, q, id)
}

// BySlug fetches the business owning the given URL slug.
func (r *Repo) BySlug(ctx context.Context, slug string) (*Record, error) {
	const q = `
        SELECT` + selectColumns + `
        FROM   business
        WHERE  slug = ?
          AND  suspended_at IS NULL
        LIMIT  1`
	return r.get(ctx, q, slug)
}

// ByCustomDomain fetches the business mapped to a fully-qualified domain.
func (r *Repo) ByCustomDomain(ctx context.Context, domain string) (*Record, error) {
	const q = `
        SELECT` + selectColumns + `
        FROM   business
        WHERE  custom_domain = ?
          AND  suspended_at IS NULL
        LIMIT  1`
	return r.get(ctx, q, domain)
}

func (r *Repo) get(ctx context.Context, query string, arg any) (*Record, error) {
	var rec Record
	if err := r.db.GetContext(ctx, &rec, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("business lookup: %w", err)
	}
	return &rec, nil
}
