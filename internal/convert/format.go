package convert

import (
	"math"
	"strconv"
)

const (
	DefaultPrecision = 4
	integerTolerance = 1e-9
)

// Format renders value for display. Values within 1e-9 of an integer print
// without a decimal point, everything else with exactly precision decimals.
func Format(value float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	rounded := math.Round(value)
	if math.Abs(value-rounded) <= integerTolerance {
		if rounded == 0 {
			rounded = 0 // drop the sign of -0
		}
		return strconv.FormatFloat(rounded, 'f', 0, 64)
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func FormatDefault(value float64) string {
	return Format(value, DefaultPrecision)
}
