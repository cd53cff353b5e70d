package slot

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timeRegex = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	dateRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
)

func IsValidTimeFormat(hm string) bool {
	return timeRegex.MatchString(strings.TrimSpace(hm))
}

// IsOnBoundary reports whether a well-formed time sits on the interval grid.
func IsOnBoundary(hm string) bool {
	hm = strings.TrimSpace(hm)
	if !IsValidTimeFormat(hm) {
		return false
	}
	minutes, _ := strconv.Atoi(hm[3:])
	return minutes%IntervalMinutes == 0
}

// IsValidDate checks the YYYY-MM-DD shape and that the day exists
// (2024-02-30 is rejected).
func IsValidDate(date string) bool {
	date = strings.TrimSpace(date)
	if !dateRegex.MatchString(date) {
		return false
	}
	year, _ := strconv.Atoi(date[0:4])
	month, _ := strconv.Atoi(date[5:7])
	day, _ := strconv.Atoi(date[8:10])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// ValidateDate returns the trimmed date, or a date-tagged failure.
func ValidateDate(date string) (string, error) {
	d := strings.TrimSpace(date)
	if !IsValidDate(d) {
		return "", invalid(FieldDate, "Invalid date: %q. Use YYYY-MM-DD format.", date)
	}
	return d, nil
}

// Validate normalizes the raw fields, stopping at the first failure.
func Validate(date, startTime, endTime string) (Validated, error) {
	d := strings.TrimSpace(date)
	st := strings.TrimSpace(startTime)
	et := strings.TrimSpace(endTime)

	if !IsValidDate(d) {
		return Validated{}, invalid(FieldDate, "Invalid date: %q. Use YYYY-MM-DD format.", date)
	}
	if !IsValidTimeFormat(st) {
		return Validated{}, invalid(FieldStartTime, "Invalid start time: %q. Use HH:MM format.", startTime)
	}
	if !IsValidTimeFormat(et) {
		return Validated{}, invalid(FieldEndTime, "Invalid end time: %q. Use HH:MM format.", endTime)
	}
	if !IsOnBoundary(st) {
		return Validated{}, invalid(FieldStartTime, "Start time must be on %d-minute interval.", IntervalMinutes)
	}
	if !IsOnBoundary(et) {
		return Validated{}, invalid(FieldEndTime, "End time must be on %d-minute interval.", IntervalMinutes)
	}
	if TimeToIndex(et) <= TimeToIndex(st) {
		return Validated{}, invalid(FieldRange, "End time (%s) must be after start time (%s).", et, st)
	}

	return Validated{Date: d, StartTime: st, EndTime: et}, nil
}

func ValidateInput(in CreateInput) (Validated, error) {
	return Validate(in.Date, in.StartTime, in.EndTime)
}

// ValidateAvailabilityOptions applies defaults and checks the hour window.
func ValidateAvailabilityOptions(opts AvailabilityOptions) (AvailabilityOptions, error) {
	if opts.EndHour == 0 {
		opts.EndHour = 24
	}
	if opts.MinDurationIntervals <= 0 {
		opts.MinDurationIntervals = 1
	}
	if opts.StartHour < 0 || opts.StartHour > 23 {
		return opts, invalid(FieldRange, "startHour must be 0-23, got %d", opts.StartHour)
	}
	if opts.EndHour < 1 || opts.EndHour > 24 {
		return opts, invalid(FieldRange, "endHour must be 1-24, got %d", opts.EndHour)
	}
	if opts.EndHour <= opts.StartHour {
		return opts, invalid(FieldRange, "endHour must be greater than startHour")
	}
	return opts, nil
}
