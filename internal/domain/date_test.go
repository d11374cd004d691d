package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMondayOf_AllWeekdays(t *testing.T) {
	// 2024-06-10 is a Monday.
	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		got := MondayOf(d)
		assert.Equal(t, time.Monday, got.Weekday(), "input %s", d.Weekday())
		assert.Equal(t, monday, got, "input %s", d.Weekday())
		assert.Equal(t, got, MondayOf(got), "idempotent for %s", d.Weekday())
	}
}

func TestMondayOf_SundayBelongsToPreviousWeek(t *testing.T) {
	sunday := time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-10", FormatDate(MondayOf(sunday)))
}

func TestMondayOf_CrossesMonthAndYear(t *testing.T) {
	assert.Equal(t, "2024-12-30", FormatDate(MondayOf(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))))
	assert.Equal(t, "2024-05-27", FormatDate(MondayOf(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))))
}

func TestMondayOf_DropsTimeOfDay(t *testing.T) {
	late := time.Date(2024, 6, 12, 23, 59, 0, 0, time.UTC)
	got := MondayOf(late)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestCanonicalDate(t *testing.T) {
	want := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	ts := time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		input any
	}{
		{"date string", "2024-06-12"},
		{"padded string", "  2024-06-12 "},
		{"rfc3339", "2024-06-12T15:30:00Z"},
		{"rfc3339 millis", "2024-06-12T00:00:00.000Z"},
		{"time value", ts},
		{"time pointer", &ts},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CanonicalDate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestCanonicalDate_Invalid(t *testing.T) {
	var nilTime *time.Time
	for _, input := range []any{"", "yesterday", "2024-13-40", 42, nil, time.Time{}, nilTime} {
		_, err := CanonicalDate(input)
		assert.ErrorIs(t, err, ErrInvalidDate, "input %v", input)
	}
}

func TestCanonicalDateOr_FallsBackToToday(t *testing.T) {
	today := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-15", FormatDate(CanonicalDateOr("not a date", today)))
	assert.Equal(t, "2024-06-12", FormatDate(CanonicalDateOr("2024-06-12", today)))
}

func TestFormatDate_Zero(t *testing.T) {
	assert.Equal(t, "", FormatDate(time.Time{}))
}
