package convert

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestConvertIdentityForEveryUnit(t *testing.T) {
	values := []float64{0, 1, -40, 3.75, 1e6}
	for _, cat := range Categories() {
		units, err := Units(cat)
		if err != nil {
			t.Fatalf("Units(%s) failed: %v", cat, err)
		}
		for _, u := range units {
			for _, v := range values {
				got, err := Convert(v, u, u, cat)
				if err != nil {
					t.Fatalf("Convert(%v, %s, %s, %s) error: %v", v, u, u, cat, err)
				}
				if got != v {
					t.Fatalf("Convert(%v, %s, %s, %s) = %v, want identity", v, u, u, cat, got)
				}
			}
		}
	}
}

func TestConvertLinearRoundTrip(t *testing.T) {
	values := []float64{1, 0.25, 12345.678, -9.5}
	for _, cat := range []Category{Length, Weight, Volume} {
		units, _ := Units(cat)
		for _, a := range units {
			for _, b := range units {
				for _, v := range values {
					there, err := Convert(v, a, b, cat)
					if err != nil {
						t.Fatalf("Convert %s->%s: %v", a, b, err)
					}
					back, err := Convert(there, b, a, cat)
					if err != nil {
						t.Fatalf("Convert %s->%s: %v", b, a, err)
					}
					if rel := math.Abs(back-v) / math.Abs(v); rel > 1e-6 {
						t.Fatalf("round trip %s->%s->%s of %v gave %v (rel err %g)", a, b, a, v, back, rel)
					}
				}
			}
		}
	}
}

func TestConvertKnownValues(t *testing.T) {
	tests := []struct {
		value    float64
		from, to string
		cat      Category
		want     float64
		exact    bool
	}{
		{1, "Meter", "Foot", Length, 3.28084, false},
		{1, "Kilometer", "Meter", Length, 1000, false},
		{1, "Kilogram", "Gram", Weight, 1000, false},
		{2, "Liter", "Milliliter", Volume, 2000, false},
		{0, Celsius, Fahrenheit, Temperature, 32, true},
		{100, Celsius, Kelvin, Temperature, 373.15, true},
		{100, Celsius, Fahrenheit, Temperature, 212, true},
		{212, Fahrenheit, Celsius, Temperature, 100, false},
		{32, Fahrenheit, Kelvin, Temperature, 273.15, false},
		{273.15, Kelvin, Celsius, Temperature, 0, true},
		{273.15, Kelvin, Fahrenheit, Temperature, 32, true},
		{-40, Celsius, Fahrenheit, Temperature, -40, true},
	}
	for _, tt := range tests {
		got, err := Convert(tt.value, tt.from, tt.to, tt.cat)
		if err != nil {
			t.Fatalf("Convert(%v, %s, %s) error: %v", tt.value, tt.from, tt.to, err)
		}
		if tt.exact && got != tt.want {
			t.Fatalf("Convert(%v, %s, %s) = %v, want exactly %v", tt.value, tt.from, tt.to, got, tt.want)
		}
		if !tt.exact && math.Abs(got-tt.want) > 1e-9*math.Max(1, math.Abs(tt.want)) {
			t.Fatalf("Convert(%v, %s, %s) = %v, want ~%v", tt.value, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestConvertUnknownUnit(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		cat      Category
		wantUnit string
	}{
		{"unknown source", "Parsec", "Meter", Length, "Parsec"},
		{"unknown target", "Meter", "Parsec", Length, "Parsec"},
		{"unit from another category", "Gram", "Meter", Length, "Gram"},
		{"temperature outsider", "Rankine", Celsius, Temperature, "Rankine"},
		{"linear unit in temperature", Celsius, "Meter", Temperature, "Meter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(1, tt.from, tt.to, tt.cat)
			if !errors.Is(err, ErrUnknownUnit) {
				t.Fatalf("expected ErrUnknownUnit, got %v", err)
			}
			var lookupErr *LookupError
			if !errors.As(err, &lookupErr) {
				t.Fatalf("expected *LookupError, got %T", err)
			}
			if lookupErr.Unit != tt.wantUnit {
				t.Fatalf("LookupError.Unit = %q, want %q", lookupErr.Unit, tt.wantUnit)
			}
		})
	}
}

func TestConvertUnknownCategory(t *testing.T) {
	_, err := Convert(1, "Meter", "Foot", Category("Time"))
	if !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("expected lookup failure for unknown category, got %v", err)
	}
	if got := err.Error(); got != `unknown category "Time"` {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestConvertRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := Convert(v, "Meter", "Foot", Length); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("Convert(%v) expected ErrInvalidValue, got %v", v, err)
		}
	}
}

func TestConvertRejectsOverflowingResult(t *testing.T) {
	cases := []struct {
		value    float64
		from, to string
		category Category
	}{
		{1e308, "Kilogram", "Milligram", Weight},
		{-1e308, "Meter", "Millimeter", Length},
		{1.7e308, Celsius, Fahrenheit, Temperature},
	}
	for _, tc := range cases {
		got, err := Convert(tc.value, tc.from, tc.to, tc.category)
		if !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("Convert(%v, %s, %s) = %v, %v; expected ErrInvalidValue", tc.value, tc.from, tc.to, got, err)
		}
		if !strings.Contains(err.Error(), "out of range") {
			t.Fatalf("unexpected message %q", err.Error())
		}
	}

	// Largest finite values still convert when the result fits.
	if _, err := Convert(1e308, "Milligram", "Kilogram", Weight); err != nil {
		t.Fatalf("shrinking conversion failed: %v", err)
	}
}

func TestCatalogLookups(t *testing.T) {
	cat, err := ParseCategory(" volume ")
	if err != nil || cat != Volume {
		t.Fatalf("ParseCategory(volume) = %q, %v", cat, err)
	}
	if _, err := ParseCategory("Time"); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("ParseCategory(Time) expected lookup failure, got %v", err)
	}

	unit, err := LookupUnit(Volume, "fluid ounce")
	if err != nil || unit != "Fluid Ounce" {
		t.Fatalf("LookupUnit(fluid ounce) = %q, %v", unit, err)
	}

	owner, err := CategoryOf("kelvin")
	if err != nil || owner != Temperature {
		t.Fatalf("CategoryOf(kelvin) = %q, %v", owner, err)
	}
	if _, err := CategoryOf("Parsec"); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("CategoryOf(Parsec) expected lookup failure, got %v", err)
	}

	units, _ := Units(Length)
	if len(units) != 8 || units[0] != "Meter" || units[7] != "Mile" {
		t.Fatalf("unexpected length units: %v", units)
	}
	units[0] = "mutated"
	again, _ := Units(Length)
	if again[0] != "Meter" {
		t.Fatalf("Units must return a copy, got %v", again)
	}
}

func TestUnitsBelongToOneCategory(t *testing.T) {
	seen := map[string]Category{}
	for _, cat := range Categories() {
		units, _ := Units(cat)
		for _, u := range units {
			if prev, ok := seen[u]; ok {
				t.Fatalf("unit %s appears in both %s and %s", u, prev, cat)
			}
			seen[u] = cat
		}
	}
}

func TestReferenceText(t *testing.T) {
	for _, cat := range Categories() {
		if Describe(cat) == "" {
			t.Fatalf("missing description for %s", cat)
		}
		if len(CommonConversions(cat)) == 0 {
			t.Fatalf("missing common conversions for %s", cat)
		}
	}
}
