package query

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"unitconv/internal/convert"
	"unitconv/internal/domain"
)

var ErrUnparseable = errors.New("could not read conversion request")

// <number> <unit> (to|in|into|as|->) <unit>, optionally prefixed by "convert".
var requestRegex = regexp.MustCompile(`(?i)^\s*(?:convert\s+)?([-+]?(?:[0-9][0-9,]*(?:\.[0-9]+)?|\.[0-9]+)(?:e[-+]?[0-9]+)?)\s*(.+?)\s+(?:to|in|into|as|->)\s+(.+?)\s*[?.!]?\s*$`)

var unitAliases = map[string]string{
	"m": "Meter", "meter": "Meter", "meters": "Meter", "metre": "Meter", "metres": "Meter",
	"km": "Kilometer", "kilometer": "Kilometer", "kilometers": "Kilometer", "kilometre": "Kilometer", "kilometres": "Kilometer",
	"cm": "Centimeter", "centimeter": "Centimeter", "centimeters": "Centimeter", "centimetre": "Centimeter", "centimetres": "Centimeter",
	"mm": "Millimeter", "millimeter": "Millimeter", "millimeters": "Millimeter", "millimetre": "Millimeter", "millimetres": "Millimeter",
	"in": "Inch", "inch": "Inch", "inches": "Inch", `"`: "Inch",
	"ft": "Foot", "foot": "Foot", "feet": "Foot", "'": "Foot",
	"yd": "Yard", "yds": "Yard", "yard": "Yard", "yards": "Yard",
	"mi": "Mile", "mile": "Mile", "miles": "Mile",

	"kg": "Kilogram", "kgs": "Kilogram", "kilo": "Kilogram", "kilos": "Kilogram", "kilogram": "Kilogram", "kilograms": "Kilogram",
	"g": "Gram", "gram": "Gram", "grams": "Gram",
	"mg": "Milligram", "milligram": "Milligram", "milligrams": "Milligram",
	"lb": "Pound", "lbs": "Pound", "pound": "Pound", "pounds": "Pound",
	"oz": "Ounce", "ounce": "Ounce", "ounces": "Ounce",

	"l": "Liter", "liter": "Liter", "liters": "Liter", "litre": "Liter", "litres": "Liter",
	"ml": "Milliliter", "milliliter": "Milliliter", "milliliters": "Milliliter", "millilitre": "Milliliter", "millilitres": "Milliliter",
	"gal": "Gallon", "gallon": "Gallon", "gallons": "Gallon",
	"qt": "Quart", "quart": "Quart", "quarts": "Quart",
	"cup": "Cup", "cups": "Cup",
	"fl oz": "Fluid Ounce", "floz": "Fluid Ounce", "fl. oz": "Fluid Ounce", "fluid ounce": "Fluid Ounce", "fluid ounces": "Fluid Ounce",

	"c": "Celsius", "°c": "Celsius", "degc": "Celsius", "celsius": "Celsius", "centigrade": "Celsius",
	"f": "Fahrenheit", "°f": "Fahrenheit", "degf": "Fahrenheit", "fahrenheit": "Fahrenheit",
	"k": "Kelvin", "kelvin": "Kelvin", "kelvins": "Kelvin",
}

// NormalizeUnit maps a user-typed unit or abbreviation to its table name.
func NormalizeUnit(raw string) (string, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	key = strings.TrimPrefix(key, "degrees ")
	key = strings.TrimPrefix(key, "degree ")
	if unit, ok := unitAliases[key]; ok {
		return unit, true
	}
	for _, cat := range convert.Categories() {
		if unit, err := convert.LookupUnit(cat, key); err == nil {
			return unit, true
		}
	}
	return "", false
}

// Parse reads a free-text request such as "3.5 km to miles". The category is
// taken from the source unit.
func Parse(text string) (domain.ConversionRequest, error) {
	match := requestRegex.FindStringSubmatch(text)
	if match == nil {
		return domain.ConversionRequest{}, fmt.Errorf("%w: expected '<value> <unit> to <unit>', got %q", ErrUnparseable, strings.TrimSpace(text))
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return domain.ConversionRequest{}, fmt.Errorf("%w: bad number %q", ErrUnparseable, match[1])
	}

	from, ok := NormalizeUnit(match[2])
	if !ok {
		return domain.ConversionRequest{}, &convert.LookupError{Unit: strings.TrimSpace(match[2])}
	}
	to, ok := NormalizeUnit(match[3])
	if !ok {
		return domain.ConversionRequest{}, &convert.LookupError{Unit: strings.TrimSpace(match[3])}
	}

	category, err := convert.CategoryOf(from)
	if err != nil {
		return domain.ConversionRequest{}, err
	}
	if _, err := convert.LookupUnit(category, to); err != nil {
		return domain.ConversionRequest{}, err
	}

	return domain.ConversionRequest{
		Value:    value,
		FromUnit: from,
		ToUnit:   to,
		Category: string(category),
	}, nil
}
