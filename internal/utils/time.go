package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/suppleflow/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last representable instant of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ParseMonth parses a month string (YYYY-MM).
func ParseMonth(monthStr string) (int, time.Month, error) {
	t, err := time.Parse(constants.MonthFormat, monthStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", monthStr, err)
	}
	return t.Year(), t.Month(), nil
}

// CombineDateAndTime combines a date string (YYYY-MM-DD) and time string (HH:MM)
// into a single time.Time in the specified timezone.
func CombineDateAndTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	date, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}

	timeOfDay, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %w", err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), 0, 0,
		loc,
	), nil
}

// ResolveTakenAt builds an intake timestamp from optional date and time flags.
// Missing parts default to now in loc.
func ResolveTakenAt(dateStr, timeStr string, now time.Time, loc *time.Location) (time.Time, error) {
	now = now.In(loc)
	if dateStr == "" && timeStr == "" {
		return now, nil
	}
	if dateStr == "" {
		dateStr = now.Format(constants.DateFormat)
	}
	if timeStr == "" {
		timeStr = now.Format(constants.TimeFormat)
	}
	return CombineDateAndTime(dateStr, timeStr, loc)
}

// FormatTimestamp renders t in the persisted text format (UTC).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

// ParseTimestamp parses a persisted timestamp, accepting RFC3339 variants too.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(constants.TimestampFormat, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
