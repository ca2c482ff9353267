// internal/theme/repository.go
//
// sqlx-backed Store and LegacySource over the control-plane database.
//
// Query style mirrors the business repository: explicit column lists,
// sql.ErrNoRows mapped to ErrNotFound, context on every call so lookups
// respect request deadlines.
package theme

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const themeColumns = `
        id, business_id, name, is_active, is_default, format, tokens,
        created_at, updated_at`

// Repo implements Store and LegacySource.
type Repo struct {
	db *sqlx.DB
}

// NewRepo wraps the control-plane pool.
func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

var _ Store = (*Repo)(nil)
var _ LegacySource = (*Repo)(nil)

// ByID fetches one theme row.
func (r *Repo) ByID(ctx context.Context, id uint64) (*Row, error) {
	const q = `
        SELECT` + themeColumns + `
        FROM   theme
        WHERE  id = ?
        LIMIT  1`
	var row Row
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("theme by id: %w", err)
	}
	return &row, nil
}

// ByBusiness lists every theme a business owns, newest first.
func (r *Repo) ByBusiness(ctx context.Context, businessID uint64) ([]Row, error) {
	const q = `
        SELECT` + themeColumns + `
        FROM   theme
        WHERE  business_id = ?
        ORDER  BY updated_at DESC`
	var rows []Row
	if err := r.db.SelectContext(ctx, &rows, q, businessID); err != nil {
		return nil, fmt.Errorf("themes by business: %w", err)
	}
	return rows, nil
}

// Active returns the single active theme.  Correct locking makes more
// than one impossible; if the store disagrees anyway, log loudly and
// prefer the most recently updated row rather than failing the read.
func (r *Repo) Active(ctx context.Context, businessID uint64) (*Row, error) {
	return r.byFlag(ctx, businessID, "is_active", "active")
}

// Default returns the single default theme, with the same degraded
// handling as Active.
func (r *Repo) Default(ctx context.Context, businessID uint64) (*Row, error) {
	return r.byFlag(ctx, businessID, "is_default", "default")
}

func (r *Repo) byFlag(ctx context.Context, businessID uint64, column, label string) (*Row, error) {
	q := `
        SELECT` + themeColumns + `
        FROM   theme
        WHERE  business_id = ?
          AND  ` + column + ` = TRUE
        ORDER  BY updated_at DESC`
	var rows []Row
	if err := r.db.SelectContext(ctx, &rows, q, businessID); err != nil {
		return nil, fmt.Errorf("%s theme: %w", label, err)
	}
	switch len(rows) {
	case 0:
		return nil, ErrNotFound
	case 1:
	default:
		zap.L().Error("theme invariant violated: multiple flagged rows",
			zap.String("flag", label),
			zap.Uint64("business_id", businessID),
			zap.Int("count", len(rows)))
	}
	return &rows[0], nil
}

// Insert writes a new row and reads it back so the caller sees the
// store-assigned id and timestamps.
func (r *Repo) Insert(ctx context.Context, row *Row) (*Row, error) {
	const q = `
        INSERT INTO theme
               (business_id, name, is_active, is_default, format, tokens)
        VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		row.BusinessID, row.Name, row.IsActive, row.IsDefault,
		string(row.Format), []byte(row.Tokens))
	if err != nil {
		return nil, fmt.Errorf("insert theme: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert theme id: %w", err)
	}
	return r.ByID(ctx, uint64(id))
}

// Update applies the non-nil fields of patch and returns the fresh row.
func (r *Repo) Update(ctx context.Context, id uint64, patch Patch) (*Row, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Tokens != nil {
		blob, err := json.Marshal(fillCanonical(*patch.Tokens))
		if err != nil {
			return nil, fmt.Errorf("encode tokens: %w", err)
		}
		sets = append(sets, "format = ?", "tokens = ?")
		args = append(args, string(FormatCanonical), blob)
	}
	if patch.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *patch.IsActive)
	}
	if patch.IsDefault != nil {
		sets = append(sets, "is_default = ?")
		args = append(args, *patch.IsDefault)
	}
	if len(sets) == 0 {
		return r.ByID(ctx, id)
	}

	q := "UPDATE theme SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	// Zero affected rows can mean a no-op write, so existence is confirmed
	// by the read-back rather than RowsAffected.
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("update theme: %w", err)
	}
	return r.ByID(ctx, id)
}

// Delete removes a row.  Deleting an absent id reports ErrNotFound.
func (r *Repo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM theme WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete theme: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearActive lowers is_active on every theme the business owns.
func (r *Repo) ClearActive(ctx context.Context, businessID uint64) error {
	const q = `UPDATE theme SET is_active = FALSE WHERE business_id = ? AND is_active = TRUE`
	if _, err := r.db.ExecContext(ctx, q, businessID); err != nil {
		return fmt.Errorf("clear active: %w", err)
	}
	return nil
}

// ClearDefault lowers is_default on every theme the business owns.
func (r *Repo) ClearDefault(ctx context.Context, businessID uint64) error {
	const q = `UPDATE theme SET is_default = FALSE WHERE business_id = ? AND is_default = TRUE`
	if _, err := r.db.ExecContext(ctx, q, businessID); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}
	return nil
}

// LegacySettings reads the inline flat payload from the business row.  A
// NULL or empty column is a plain miss; the payload is tagged legacy at
// this boundary by decoding straight into the Legacy shape.
func (r *Repo) LegacySettings(ctx context.Context, businessID uint64) (*Legacy, error) {
	const q = `SELECT legacy_settings FROM business WHERE id = ? LIMIT 1`
	var raw []byte
	if err := r.db.GetContext(ctx, &raw, q, businessID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("legacy settings: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	var leg Legacy
	if err := json.Unmarshal(raw, &leg); err != nil {
		return nil, fmt.Errorf("legacy settings decode: %w", err)
	}
	if leg.Empty() {
		return nil, ErrNotFound
	}
	return &leg, nil
}
