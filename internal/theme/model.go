// internal/theme/model.go
//
// Theme payload shapes and the persisted row.
//
// Context
// -------
// Two payload generations coexist.  The canonical shape nests design
// tokens (colors, typography, string-unit radius and spacing); the legacy
// shape is the flat color-field payload that predates the theme table and
// still lives inline on old business rows.  Which shape a stored blob uses
// is recorded in an explicit format tag at write time—nothing downstream
// ever sniffs fields to guess.
//
// The zero value of a field means "absent"; the converter fills absent
// fields from Defaults, which doubles as the global fallback theme served
// when a business has no theme data at all.
package theme

import (
	"encoding/json"
	"time"
)

// Format tags a stored token blob.  Assigned when the row (or the inline
// legacy payload) is deserialized, never inferred from field presence.
type Format string

const (
	FormatCanonical Format = "canonical"
	FormatLegacy    Format = "legacy"
)

//
// Canonical shape
//

// Colors is the canonical color token set.
type Colors struct {
	Primary    string `json:"primary,omitempty"`
	Secondary  string `json:"secondary,omitempty"`
	Background string `json:"background,omitempty"`
	Text       string `json:"text,omitempty"`
	Accent     string `json:"accent,omitempty"`
}

// Typography is the canonical font token set.  Sizes carry CSS units.
type Typography struct {
	FontFamily    string `json:"fontFamily,omitempty"`
	HeadingFamily string `json:"headingFamily,omitempty"`
	BaseSize      string `json:"baseSize,omitempty"`
}

// Canonical is the nested design-token payload presented to every caller.
type Canonical struct {
	Colors       Colors     `json:"colors"`
	Typography   Typography `json:"typography"`
	BorderRadius string     `json:"borderRadius,omitempty"` // "8px"
	Spacing      string     `json:"spacing,omitempty"`      // "16px"
}

//
// Legacy shape
//

// Legacy is the flat pre-migration payload: one field per token, numeric
// pixel values without units.
type Legacy struct {
	PrimaryColor    string `json:"primaryColor,omitempty"`
	SecondaryColor  string `json:"secondaryColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	AccentColor     string `json:"accentColor,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty"`
	HeadingFont     string `json:"headingFont,omitempty"`
	FontSize        int    `json:"fontSize,omitempty"`
	BorderRadius    int    `json:"borderRadius,omitempty"`
	Spacing         int    `json:"spacing,omitempty"`
}

// Empty reports whether the payload carries no data at all, which is how
// a NULL or `{}` legacy_settings column presents after unmarshalling.
func (l Legacy) Empty() bool {
	return l == Legacy{}
}

//
// Defaults / global fallback
//

// Defaults is the shared default token set.  The converter fills absent
// fields from it in both directions, and Fallback serves it verbatim when
// a business has no theme rows and no legacy settings.
var Defaults = Canonical{
	Colors: Colors{
		Primary:    "#6366f1",
		Secondary:  "#8b5cf6",
		Background: "#ffffff",
		Text:       "#111827",
		Accent:     "#f59e0b",
	},
	Typography: Typography{
		FontFamily:    "Inter, sans-serif",
		HeadingFamily: "Inter, sans-serif",
		BaseSize:      "16px",
	},
	BorderRadius: "8px",
	Spacing:      "16px",
}

// Fallback returns the global fallback theme by value so callers can never
// mutate the shared constant.
func Fallback() Canonical {
	return Defaults
}

//
// Persisted row
//

// Row mirrors one row in the `theme` table.  Tokens holds the raw blob;
// the Format column says how to decode it.
type Row struct {
	ID         uint64          `db:"id"`
	BusinessID uint64          `db:"business_id"`
	Name       string          `db:"name"`
	IsActive   bool            `db:"is_active"`
	IsDefault  bool            `db:"is_default"`
	Format     Format          `db:"format"`
	Tokens     json.RawMessage `db:"tokens"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// Canonical decodes the token blob per its format tag, converting legacy
// blobs on the way out.  Decode failures degrade to Defaults—a corrupt
// blob must not take the read path down.
func (r *Row) Canonical() Canonical {
	switch r.Format {
	case FormatLegacy:
		var leg Legacy
		if err := json.Unmarshal(r.Tokens, &leg); err != nil {
			return Fallback()
		}
		return ToCanonical(leg)
	default:
		var c Canonical
		if err := json.Unmarshal(r.Tokens, &c); err != nil {
			return Fallback()
		}
		return fillCanonical(c)
	}
}

// Patch is a partial update for one theme row.  Nil fields are untouched.
type Patch struct {
	Name      *string
	Tokens    *Canonical
	IsActive  *bool
	IsDefault *bool
}
