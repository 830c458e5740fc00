package booking

import (
	"fmt"
	"time"
)

// TimeOfDay is a clock time expressed as minutes since midnight. Bookings use
// it for their start and end bounds so interval comparisons stay plain integer
// arithmetic.
type TimeOfDay int

const minutesPerDay = 24 * 60

// ParseTimeOfDay parses a wall-clock value in "15:04" form.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("booking: invalid time of day %q", value)
	}
	return TimeOfDay(parsed.Hour()*60 + parsed.Minute()), nil
}

// String renders the time of day in "15:04" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Valid reports whether the value lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= minutesPerDay
}

// ParseDate validates a calendar date in "2006-01-02" form and returns its
// canonical representation.
func ParseDate(value string) (string, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return "", fmt.Errorf("booking: invalid date %q", value)
	}
	return parsed.Format("2006-01-02"), nil
}
