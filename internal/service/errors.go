package service

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/timesheet/internal/domain"
)

var (
	// ErrNoStagedEntry means submit was requested before anything was saved.
	ErrNoStagedEntry = errors.New("no staged entry")

	// ErrStagedHoursInvalid means the staged entry carries no positive hours.
	ErrStagedHoursInvalid = errors.New("staged entry hours must be greater than 0")

	// ErrActionInFlight means the same action is already awaiting a response.
	ErrActionInFlight = errors.New("action already in flight")

	// ErrAlreadySubmitted means the entry has left the form's control: it was
	// submitted from this form or was already submitted when the form opened.
	ErrAlreadySubmitted = errors.New("entry already submitted")

	// ErrFormClosed means the form was torn down or reset while the call was
	// outstanding. The response was discarded.
	ErrFormClosed = errors.New("form closed")
)

const (
	NoticeNotSaved     = "You have not saved timesheet yet"
	NoticeHoursInvalid = "Hours must be greater than 0"
	NoticeSubmitted    = "This entry has already been submitted for approval"
)

// PersistenceError wraps a failed call to the timesheet server.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Notice returns the user-facing message for err. Informational conditions
// get their fixed wording; anything else falls back to err.Error().
func Notice(err error) string {
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoStagedEntry):
		return NoticeNotSaved
	case errors.Is(err, ErrStagedHoursInvalid):
		return NoticeHoursInvalid
	case errors.Is(err, ErrAlreadySubmitted):
		return NoticeSubmitted
	case errors.As(err, &verr):
		return verr.Error()
	}
	return err.Error()
}

// IsInformational reports whether err is a notice rather than a failure.
func IsInformational(err error) bool {
	var verr *domain.ValidationError
	return errors.Is(err, ErrNoStagedEntry) ||
		errors.Is(err, ErrStagedHoursInvalid) ||
		errors.Is(err, ErrActionInFlight) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.As(err, &verr)
}
