// internal/theme/convert_test.go

package theme

import (
	"testing"
)

func fullLegacy() Legacy {
	return Legacy{
		PrimaryColor:    "#123456",
		SecondaryColor:  "#654321",
		BackgroundColor: "#fafafa",
		TextColor:       "#0a0a0a",
		AccentColor:     "#ff8800",
		FontFamily:      "Georgia, serif",
		HeadingFont:     "Futura, sans-serif",
		FontSize:        18,
		BorderRadius:    12,
		Spacing:         24,
	}
}

func TestToCanonicalCarriesUnits(t *testing.T) {
	c := ToCanonical(fullLegacy())

	if c.BorderRadius != "12px" {
		t.Errorf("BorderRadius = %q, want 12px", c.BorderRadius)
	}
	if c.Spacing != "24px" {
		t.Errorf("Spacing = %q, want 24px", c.Spacing)
	}
	if c.Typography.BaseSize != "18px" {
		t.Errorf("BaseSize = %q, want 18px", c.Typography.BaseSize)
	}
	if c.Colors.Primary != "#123456" {
		t.Errorf("Primary = %q", c.Colors.Primary)
	}
}

func TestToCanonicalFillsMissingFromDefaults(t *testing.T) {
	c := ToCanonical(Legacy{PrimaryColor: "#123456"})

	if c.Colors.Primary != "#123456" {
		t.Errorf("present field overwritten: %q", c.Colors.Primary)
	}
	if c.Colors.Secondary != Defaults.Colors.Secondary {
		t.Errorf("Secondary = %q, want default %q", c.Colors.Secondary, Defaults.Colors.Secondary)
	}
	if c.BorderRadius != Defaults.BorderRadius {
		t.Errorf("BorderRadius = %q, want default %q", c.BorderRadius, Defaults.BorderRadius)
	}
}

func TestToLegacyRederivesNumbers(t *testing.T) {
	l := ToLegacy(Canonical{BorderRadius: "12px", Spacing: "1.5rem"})

	if l.BorderRadius != 12 {
		t.Errorf("BorderRadius = %d, want 12", l.BorderRadius)
	}
	// "1.5rem": first integer substring is 1.
	if l.Spacing != 1 {
		t.Errorf("Spacing = %d, want 1", l.Spacing)
	}
}

func TestFirstInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"8px", 8},
		{"12", 12},
		{"rem", 8},
		{"", 8},
		{"radius-16-large", 16},
	}
	for _, tc := range cases {
		if got := firstInt(tc.in); got != tc.want {
			t.Errorf("firstInt(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestRoundTripFullyPopulated(t *testing.T) {
	x := fullLegacy()

	once := ToLegacy(ToCanonical(x))
	if once != x {
		t.Fatalf("single round trip changed a populated payload:\n got %+v\nwant %+v", once, x)
	}

	twice := ToLegacy(ToCanonical(ToLegacy(ToCanonical(x))))
	if twice != once {
		t.Fatalf("round trip not stable:\n got %+v\nwant %+v", twice, once)
	}
}

func TestConversionIsPure(t *testing.T) {
	before := Defaults
	_ = ToCanonical(Legacy{})
	_ = ToLegacy(Canonical{})
	if Defaults != before {
		t.Fatal("conversion mutated the shared Defaults constant")
	}
}
