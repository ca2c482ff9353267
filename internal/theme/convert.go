// internal/theme/convert.go
//
// Pure bidirectional conversion between the legacy flat payload and the
// canonical token payload.
//
// Both directions are total: they never fail, and any absent field is
// filled from the shared Defaults constant.  Because both directions fill
// from the same constant, round-tripping a fully-populated payload is
// lossless; partially-populated payloads gain defaults exactly once.
package theme

import "strconv"

// ToCanonical maps a legacy payload onto canonical tokens.  Numeric pixel
// fields gain a "px" unit; absent fields come from Defaults.
func ToCanonical(l Legacy) Canonical {
	c := Canonical{
		Colors: Colors{
			Primary:    l.PrimaryColor,
			Secondary:  l.SecondaryColor,
			Background: l.BackgroundColor,
			Text:       l.TextColor,
			Accent:     l.AccentColor,
		},
		Typography: Typography{
			FontFamily:    l.FontFamily,
			HeadingFamily: l.HeadingFont,
		},
	}
	if l.FontSize > 0 {
		c.Typography.BaseSize = px(l.FontSize)
	}
	if l.BorderRadius > 0 {
		c.BorderRadius = px(l.BorderRadius)
	}
	if l.Spacing > 0 {
		c.Spacing = px(l.Spacing)
	}
	return fillCanonical(c)
}

// ToLegacy maps canonical tokens back onto the flat shape.  String-unit
// values are re-derived numerically: the first integer substring wins,
// and 8 stands in when none is present.
func ToLegacy(c Canonical) Legacy {
	c = fillCanonical(c)
	return Legacy{
		PrimaryColor:    c.Colors.Primary,
		SecondaryColor:  c.Colors.Secondary,
		BackgroundColor: c.Colors.Background,
		TextColor:       c.Colors.Text,
		AccentColor:     c.Colors.Accent,
		FontFamily:      c.Typography.FontFamily,
		HeadingFont:     c.Typography.HeadingFamily,
		FontSize:        firstInt(c.Typography.BaseSize),
		BorderRadius:    firstInt(c.BorderRadius),
		Spacing:         firstInt(c.Spacing),
	}
}

// fillCanonical replaces every zero-valued field with its default.
func fillCanonical(c Canonical) Canonical {
	defStr := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	c.Colors.Primary = defStr(c.Colors.Primary, Defaults.Colors.Primary)
	c.Colors.Secondary = defStr(c.Colors.Secondary, Defaults.Colors.Secondary)
	c.Colors.Background = defStr(c.Colors.Background, Defaults.Colors.Background)
	c.Colors.Text = defStr(c.Colors.Text, Defaults.Colors.Text)
	c.Colors.Accent = defStr(c.Colors.Accent, Defaults.Colors.Accent)
	c.Typography.FontFamily = defStr(c.Typography.FontFamily, Defaults.Typography.FontFamily)
	c.Typography.HeadingFamily = defStr(c.Typography.HeadingFamily, Defaults.Typography.HeadingFamily)
	c.Typography.BaseSize = defStr(c.Typography.BaseSize, Defaults.Typography.BaseSize)
	c.BorderRadius = defStr(c.BorderRadius, Defaults.BorderRadius)
	c.Spacing = defStr(c.Spacing, Defaults.Spacing)
	return c
}

// px renders a numeric pixel value as a CSS unit string.
func px(n int) string {
	return strconv.Itoa(n) + "px"
}

// firstInt extracts the first run of ASCII digits from s ("8px" → 8).
// Returns 8 when s carries no digits at all.
func firstInt(s string) int {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			n, _ := strconv.Atoi(s[start:i])
			return n
		}
	}
	if start != -1 {
		n, _ := strconv.Atoi(s[start:])
		return n
	}
	return 8
}
