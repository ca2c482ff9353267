// internal/theme/errors.go
//
// Sentinel errors for the theme engine.  Read paths (resolution) never
// surface these to callers—they drive the fallback chain instead.  Write
// paths (the mutator) propagate them so the API layer can map each one to
// a structured response.
package theme

import "errors"

var (
	// ErrNotFound marks a lookup miss: no such theme row, or no row in
	// the requested state for the business.
	ErrNotFound = errors.New("theme not found")

	// ErrDefaultTheme rejects deleting a theme while it is the default.
	ErrDefaultTheme = errors.New("cannot delete default theme")
)
