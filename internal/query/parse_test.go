package query

import (
	"errors"
	"testing"

	"unitconv/internal/convert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text     string
		value    float64
		from, to string
		category string
	}{
		{"1 meter to feet", 1, "Meter", "Foot", "Length"},
		{"3.5 km in miles", 3.5, "Kilometer", "Mile", "Length"},
		{"5 in to cm", 5, "Inch", "Centimeter", "Length"},
		{"5km to mi", 5, "Kilometer", "Mile", "Length"},
		{"convert 1,000 g to kg", 1000, "Gram", "Kilogram", "Weight"},
		{"2 lbs -> oz", 2, "Pound", "Ounce", "Weight"},
		{"3 fl oz to ml", 3, "Fluid Ounce", "Milliliter", "Volume"},
		{"1 Gallon into Liter", 1, "Gallon", "Liter", "Volume"},
		{"-40 c to f", -40, "Celsius", "Fahrenheit", "Temperature"},
		{"100 °C in K?", 100, "Celsius", "Kelvin", "Temperature"},
		{"98.6 degrees fahrenheit to celsius", 98.6, "Fahrenheit", "Celsius", "Temperature"},
		{".5 cups as ml", 0.5, "Cup", "Milliliter", "Volume"},
		{"1e3 m to km", 1000, "Meter", "Kilometer", "Length"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.text)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tt.text, err)
		}
		if got.Value != tt.value || got.FromUnit != tt.from || got.ToUnit != tt.to || got.Category != tt.category {
			t.Fatalf("Parse(%q) = %+v, want %v %s->%s (%s)", tt.text, got, tt.value, tt.from, tt.to, tt.category)
		}
	}
}

func TestParseUnreadable(t *testing.T) {
	for _, text := range []string{"", "meters to feet", "how tall is a giraffe", "5 meters"} {
		if _, err := Parse(text); !errors.Is(err, ErrUnparseable) {
			t.Fatalf("Parse(%q) expected ErrUnparseable, got %v", text, err)
		}
	}
}

func TestParseLookupFailures(t *testing.T) {
	tests := []string{
		"1 parsec to meters",
		"1 meter to parsecs",
		"1 kg to meters",
		"10 celsius to liters",
	}
	for _, text := range tests {
		if _, err := Parse(text); !errors.Is(err, convert.ErrUnknownUnit) {
			t.Fatalf("Parse(%q) expected ErrUnknownUnit, got %v", text, err)
		}
	}
}

func TestNormalizeUnit(t *testing.T) {
	tests := map[string]string{
		"KM":           "Kilometer",
		"Fluid  Ounce": "Fluid Ounce",
		"milligram":    "Milligram",
		"°F":           "Fahrenheit",
	}
	for in, want := range tests {
		got, ok := NormalizeUnit(in)
		if !ok || got != want {
			t.Fatalf("NormalizeUnit(%q) = %q, %v, want %q", in, got, ok, want)
		}
	}
	if _, ok := NormalizeUnit("furlong"); ok {
		t.Fatal("NormalizeUnit(furlong) should fail")
	}
}
