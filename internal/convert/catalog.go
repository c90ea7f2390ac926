package convert

import "strings"

type Category string

const (
	Length      Category = "Length"
	Weight      Category = "Weight"
	Volume      Category = "Volume"
	Temperature Category = "Temperature"
)

const (
	Celsius    = "Celsius"
	Fahrenheit = "Fahrenheit"
	Kelvin     = "Kelvin"
)

type unitFactor struct {
	Name   string
	Factor float64 // units per 1 reference quantity
}

// Factor tables are kept in display order.
var linearTables = map[Category][]unitFactor{
	Length: {
		{"Meter", 1},
		{"Kilometer", 0.001},
		{"Centimeter", 100},
		{"Millimeter", 1000},
		{"Inch", 39.3701},
		{"Foot", 3.28084},
		{"Yard", 1.09361},
		{"Mile", 0.000621371},
	},
	Weight: {
		{"Kilogram", 1},
		{"Gram", 1000},
		{"Milligram", 1000000},
		{"Pound", 2.20462},
		{"Ounce", 35.274},
	},
	Volume: {
		{"Liter", 1},
		{"Milliliter", 1000},
		{"Gallon", 0.264172},
		{"Quart", 1.05669},
		{"Cup", 4.22675},
		{"Fluid Ounce", 33.814},
	},
}

var temperatureUnits = []string{Celsius, Fahrenheit, Kelvin}

var categoryOrder = []Category{Length, Weight, Volume, Temperature}

var categoryInfo = map[Category]string{
	Length:      "Length is a measure of distance. Common units include meters, feet, and miles.",
	Weight:      "Weight measures the heaviness of an object. Common units include kilograms, grams, and pounds.",
	Volume:      "Volume measures the amount of space occupied by a substance. Common units include liters, gallons, and cups.",
	Temperature: "Temperature measures the degree of heat. Common scales include Celsius, Fahrenheit, and Kelvin.",
}

var commonConversions = map[Category][]string{
	Length: {
		"1 meter = 3.28084 feet",
		"1 kilometer = 0.621371 miles",
		"1 inch = 2.54 centimeters",
	},
	Weight: {
		"1 kilogram = 2.20462 pounds",
		"1 ounce = 28.3495 grams",
	},
	Volume: {
		"1 liter = 0.264172 gallons",
		"1 cup = 236.588 milliliters",
	},
	Temperature: {
		"0°C = 32°F, 100°C = 212°F",
		"0°C = 273.15K",
	},
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(name string) (Category, error) {
	name = strings.TrimSpace(name)
	for _, c := range categoryOrder {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
	}
	return "", &LookupError{Category: Category(name)}
}

// Units lists the unit names of a category in display order.
func Units(category Category) ([]string, error) {
	if category == Temperature {
		out := make([]string, len(temperatureUnits))
		copy(out, temperatureUnits)
		return out, nil
	}
	table, ok := linearTables[category]
	if !ok {
		return nil, &LookupError{Category: category}
	}
	out := make([]string, 0, len(table))
	for _, u := range table {
		out = append(out, u.Name)
	}
	return out, nil
}

// LookupUnit returns the canonical spelling of name within category.
func LookupUnit(category Category, name string) (string, error) {
	units, err := Units(category)
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	for _, u := range units {
		if strings.EqualFold(u, name) {
			return u, nil
		}
	}
	return "", &LookupError{Category: category, Unit: name}
}

// CategoryOf finds the single category that owns a unit name.
func CategoryOf(unit string) (Category, error) {
	for _, c := range categoryOrder {
		if canonical, err := LookupUnit(c, unit); err == nil && canonical != "" {
			return c, nil
		}
	}
	return "", &LookupError{Unit: strings.TrimSpace(unit)}
}

func Describe(category Category) string {
	return categoryInfo[category]
}

func CommonConversions(category Category) []string {
	lines := commonConversions[category]
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

func factorOf(category Category, unit string) (float64, bool) {
	for _, u := range linearTables[category] {
		if u.Name == unit {
			return u.Factor, true
		}
	}
	return 0, false
}
