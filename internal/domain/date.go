package domain

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire and display format for calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate indicates a date input could not be parsed.
var ErrInvalidDate = errors.New("invalid date")

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// CanonicalDate converts a date-like value into a calendar day at UTC
// midnight. Accepted inputs are time.Time, *time.Time, and strings in
// YYYY-MM-DD or RFC3339 form. Timestamps keep the calendar day of their own
// offset.
func CanonicalDate(input any) (time.Time, error) {
	switch v := input.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, ErrInvalidDate
		}
		return midnight(v), nil
	case *time.Time:
		if v == nil {
			return time.Time{}, ErrInvalidDate
		}
		return CanonicalDate(*v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, ErrInvalidDate
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return midnight(t), nil
			}
		}
		return time.Time{}, ErrInvalidDate
	default:
		return time.Time{}, ErrInvalidDate
	}
}

// CanonicalDateOr returns the canonical form of input, or of fallback when
// input is not a valid date. Used to seed a new entry with "today".
func CanonicalDateOr(input any, fallback time.Time) time.Time {
	if d, err := CanonicalDate(input); err == nil {
		return d
	}
	return midnight(fallback)
}

// MondayOf returns the Monday that starts the week containing date.
// Weeks start on Monday regardless of locale; Sunday belongs to the week
// that began six days earlier.
func MondayOf(date time.Time) time.Time {
	d := midnight(date)
	offset := int(d.Weekday()) - 1
	if d.Weekday() == time.Sunday {
		offset = 6
	}
	return d.AddDate(0, 0, -offset)
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
