package service

import "github.com/alexanderramin/timesheet/internal/domain"

// AutoCloseInput carries what the hosting surface knows when a save succeeds.
type AutoCloseInput struct {
	EditMode         bool
	Role             domain.Role
	Embedded         bool
	PreventAutoClose bool
}

// ShouldAutoCloseOnSave reports whether the entry form should close itself
// after a successful save. Only a plain contributor creating a new entry from
// a standalone form gets the close; everyone else stays to submit or keep
// editing.
func ShouldAutoCloseOnSave(in AutoCloseInput) bool {
	return !in.EditMode &&
		in.Role == domain.RoleGeneral &&
		!in.Embedded &&
		!in.PreventAutoClose
}
