// Package units provides shared constants and conversion for distance units.
package units

import "fmt"

// Unit constants
const (
	Meters     = "m"
	Kilometers = "km"
	Feet       = "ft"
	Miles      = "mi"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Meters, Kilometers, Feet, Miles}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, km, ft, mi"
}

// ConvertDistance converts a distance in world units (meters) to the target units.
// Unknown units fall back to meters.
func ConvertDistance(meters float64, targetUnits string) float64 {
	switch targetUnits {
	case Kilometers:
		return meters / 1000
	case Feet:
		return meters * 3.28084
	case Miles:
		return meters / 1609.344
	default:
		return meters
	}
}

// FormatDistance renders meters in the target units with two decimals and
// the unit suffix, e.g. "12.50m".
func FormatDistance(meters float64, targetUnits string) string {
	if !IsValid(targetUnits) {
		targetUnits = Meters
	}
	return fmt.Sprintf("%.2f%s", ConvertDistance(meters, targetUnits), targetUnits)
}
