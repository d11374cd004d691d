package repository

import (
	"database/sql"
	"time"
)

// Timestamps are stored as RFC3339 text in UTC.
const timeLayout = time.RFC3339

// parseStoredTime returns nil for NULL, empty or malformed values.
func parseStoredTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// storedTime maps nil to SQL NULL.
func storedTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func nowStamp() string {
	return time.Now().UTC().Format(timeLayout)
}
