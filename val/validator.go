// Package val holds reusable domain validators shared by the API layer.
package val

import (
	"fmt"
	"time"
)

// ValidateCoordinates checks that a WGS84 pair is inside valid bounds.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", lng)
	}
	return nil
}

// ValidateTimeOfDay checks the HH:MM form used for workday bounds.
func ValidateTimeOfDay(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	return nil
}

// ValidateDateOnly checks the YYYY-MM-DD form used for due dates and
// snooze targets.
func ValidateDateOnly(s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return nil
}

// ValidateSnoozeOffset checks the fixed snooze offsets the inbox offers.
func ValidateSnoozeOffset(s string) error {
	switch s {
	case "day", "week", "two_weeks", "month":
		return nil
	}
	return fmt.Errorf("invalid snooze offset %q", s)
}

// ValidateBufferPercent bounds the arrival buffer percentage.
func ValidateBufferPercent(p float64) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("buffer percent %v out of range [0, 100]", p)
	}
	return nil
}

// ValidateBufferFixedMinutes bounds the fixed arrival buffer.
func ValidateBufferFixedMinutes(m float64) error {
	if m < 0 || m > 120 {
		return fmt.Errorf("buffer fixed minutes %v out of range [0, 120]", m)
	}
	return nil
}
