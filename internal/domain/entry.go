package domain

import (
	"strconv"
	"time"
)

// DefaultEntryType is shown for entries the server did not classify.
const DefaultEntryType = "Hourly Work"

// TimeEntry is a block of hours logged against a project on a given day.
type TimeEntry struct {
	ID                 string
	ProjectID          string
	ProjectName        string
	Activity           Activity
	PrivateDescription string
	DateOfWork         time.Time
	HoursOfWork        float64
	WeekStart          *time.Time
	OwnerID            string
	ApprovalStatus     ApprovalStatus
	EntryType          string
}

// IsPersisted reports whether the backend has created a record for the entry.
func (e *TimeEntry) IsPersisted() bool {
	return e.ID != ""
}

// WithWeekStart returns a copy of e with WeekStart derived from DateOfWork.
func (e TimeEntry) WithWeekStart() TimeEntry {
	ws := MondayOf(e.DateOfWork)
	e.WeekStart = &ws
	return e
}

// DisplayEntryType returns the entry type or DefaultEntryType.
func (e *TimeEntry) DisplayEntryType() string {
	return CoalesceStr(e.EntryType, DefaultEntryType)
}

// Candidate returns the form representation of e, used to seed an edit form.
func (e *TimeEntry) Candidate() EntryCandidate {
	c := EntryCandidate{
		ID:                 e.ID,
		ProjectID:          e.ProjectID,
		Activity:           string(e.Activity),
		PrivateDescription: e.PrivateDescription,
		DateOfWork:         FormatDate(e.DateOfWork),
		HoursOfWork:        "0",
	}
	if e.HoursOfWork != 0 {
		c.HoursOfWork = strconv.FormatFloat(e.HoursOfWork, 'f', -1, 64)
	}
	return c
}

// EntryCandidate holds entry fields exactly as typed into the entry form.
// Values stay as strings so they can be validated on every keystroke.
type EntryCandidate struct {
	ID                 string
	ProjectID          string
	Activity           string
	PrivateDescription string
	DateOfWork         string
	HoursOfWork        string
}

// ToEntry converts a candidate that passed ValidateEntry into a TimeEntry.
// Fields that fail to parse are left at their zero value.
func (c EntryCandidate) ToEntry() TimeEntry {
	e := TimeEntry{
		ID:                 c.ID,
		ProjectID:          c.ProjectID,
		Activity:           Activity(c.Activity),
		PrivateDescription: c.PrivateDescription,
	}
	if d, err := CanonicalDate(c.DateOfWork); err == nil {
		e.DateOfWork = d
	}
	if h, ok := parseHours(c.HoursOfWork); ok {
		e.HoursOfWork = h
	}
	return e
}
