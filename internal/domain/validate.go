package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Field names a form field that can carry a validation error.
type Field string

const (
	FieldProject     Field = "projectId"
	FieldActivity    Field = "activity"
	FieldDateOfWork  Field = "dateOfWork"
	FieldHoursOfWork Field = "hoursOfWork"
)

const (
	ReasonProjectRequired  = "Project is required"
	ReasonActivityRequired = "Activity is required"
	ReasonDateRequired     = "Date of work is required"
	ReasonHoursPositive    = "Hours of work must be greater than 0"
)

// ValidationResult is the outcome of ValidateEntry.
type ValidationResult struct {
	OK          bool
	FieldErrors map[Field]string
}

// Err returns a *ValidationError for a failing result, or nil.
func (r ValidationResult) Err() error {
	if r.OK {
		return nil
	}
	return &ValidationError{Fields: r.FieldErrors}
}

// ValidationError reports every invalid field of a candidate entry.
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[Field(k)])
	}
	return "invalid entry: " + strings.Join(parts, "; ")
}

// ValidateEntry checks every rule independently and collects all violations.
// It has no side effects.
func ValidateEntry(c EntryCandidate) ValidationResult {
	errs := make(map[Field]string)

	if strings.TrimSpace(c.ProjectID) == "" {
		errs[FieldProject] = ReasonProjectRequired
	}
	if msg := ValidateActivity(c.Activity); msg != "" {
		errs[FieldActivity] = msg
	}
	if msg := ValidateDateOfWork(c.DateOfWork); msg != "" {
		errs[FieldDateOfWork] = msg
	}
	if msg := ValidateHoursOfWork(c.HoursOfWork); msg != "" {
		errs[FieldHoursOfWork] = msg
	}

	if len(errs) == 0 {
		return ValidationResult{OK: true}
	}
	return ValidationResult{FieldErrors: errs}
}

// ValidateActivity returns the field reason for an invalid activity, or "".
func ValidateActivity(s string) string {
	if !ValidActivity(strings.TrimSpace(s)) {
		return ReasonActivityRequired
	}
	return ""
}

// ValidateDateOfWork returns the field reason for an invalid date, or "".
func ValidateDateOfWork(s string) string {
	if _, err := CanonicalDate(s); err != nil {
		return ReasonDateRequired
	}
	return ""
}

// ValidateHoursOfWork returns the field reason for invalid hours, or "".
func ValidateHoursOfWork(s string) string {
	if _, ok := parseHours(s); !ok {
		return ReasonHoursPositive
	}
	return ""
}

func parseHours(s string) (float64, bool) {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return 0, false
	}
	return h, true
}
