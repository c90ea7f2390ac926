package convert

import (
	"fmt"
	"math"
)

// Convert maps value from one unit to another within category.
//
// Length, Weight and Volume scale through the category's reference quantity.
// Temperature applies the affine rule for the ordered (from, to) pair.
// Unit names must use the table spelling; see LookupUnit. Both the input and
// the result must be finite.
func Convert(value float64, from, to string, category Category) (float64, error) {
	if !isFinite(value) {
		return 0, fmt.Errorf("%w: %v is not a finite number", ErrInvalidValue, value)
	}
	result, err := convertValue(value, from, to, category)
	if err != nil {
		return 0, err
	}
	if !isFinite(result) {
		return 0, fmt.Errorf("%w: result of %v %s to %s is out of range", ErrInvalidValue, value, from, to)
	}
	return result, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func convertValue(value float64, from, to string, category Category) (float64, error) {
	if category == Temperature {
		return convertTemperature(value, from, to)
	}
	if _, ok := linearTables[category]; !ok {
		return 0, &LookupError{Category: category}
	}
	fromFactor, ok := factorOf(category, from)
	if !ok {
		return 0, &LookupError{Category: category, Unit: from}
	}
	toFactor, ok := factorOf(category, to)
	if !ok {
		return 0, &LookupError{Category: category, Unit: to}
	}
	if from == to {
		return value, nil
	}
	return value * (toFactor / fromFactor), nil
}

func convertTemperature(x float64, from, to string) (float64, error) {
	for _, u := range []string{from, to} {
		if u != Celsius && u != Fahrenheit && u != Kelvin {
			return 0, &LookupError{Category: Temperature, Unit: u}
		}
	}
	switch {
	case from == to:
		return x, nil
	case from == Celsius && to == Fahrenheit:
		return x*9/5 + 32, nil
	case from == Celsius && to == Kelvin:
		return x + 273.15, nil
	case from == Fahrenheit && to == Celsius:
		return (x - 32) * 5 / 9, nil
	case from == Fahrenheit && to == Kelvin:
		return (x-32)*5/9 + 273.15, nil
	case from == Kelvin && to == Celsius:
		return x - 273.15, nil
	default: // Kelvin -> Fahrenheit
		return (x-273.15)*9/5 + 32, nil
	}
}
