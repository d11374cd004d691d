package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// timesheetHuhTheme returns a huh theme using the Gruvbox palette.
func timesheetHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// reasonValidator adapts a domain field check, which returns the failure
// reason or "", to a huh validator.
func reasonValidator(check func(string) string) func(string) error {
	return func(s string) error {
		if reason := check(s); reason != "" {
			return errors.New(reason)
		}
		return nil
	}
}

func validateProjectID(s string) error {
	if s == "" {
		return errors.New(domain.ReasonProjectRequired)
	}
	return nil
}

func projectOptions(projects []domain.Project) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(projects))
	for _, p := range projects {
		label := p.DisplayName()
		if p.ClientName != "" {
			label = fmt.Sprintf("%s (%s)", label, p.ClientName)
		}
		options = append(options, huh.NewOption(label, p.ID))
	}
	return options
}

func activityOptions() []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(domain.Activities))
	for _, a := range domain.Activities {
		options = append(options, huh.NewOption(string(a), string(a)))
	}
	return options
}

// entryForm builds the time-entry form over draft. Each field re-runs the
// same checks as the lifecycle's validation so errors show as you type.
func entryForm(title string, draft *domain.EntryCandidate, projects []domain.Project) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Project").
				Options(projectOptions(projects)...).
				Value(&draft.ProjectID).
				Validate(validateProjectID),
			huh.NewSelect[string]().
				Title("Activity").
				Options(activityOptions()...).
				Value(&draft.Activity).
				Validate(reasonValidator(domain.ValidateActivity)),
			huh.NewInput().
				Title("Date of work").
				Placeholder(domain.DateLayout).
				Value(&draft.DateOfWork).
				Validate(reasonValidator(domain.ValidateDateOfWork)),
			huh.NewInput().
				Title("Hours").
				Placeholder("e.g. 1.5").
				Value(&draft.HoursOfWork).
				Validate(reasonValidator(domain.ValidateHoursOfWork)),
			huh.NewText().
				Title("Private description").
				Value(&draft.PrivateDescription),
		).Title(title),
	).WithTheme(timesheetHuhTheme()).WithShowHelp(false)
}

// confirmForm asks a yes/no question.
func confirmForm(title, affirmative, negative string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative(negative).
				Value(result),
		),
	).WithTheme(timesheetHuhTheme()).WithShowHelp(false)
}

// missingFields reports whether the draft lacks anything the form would ask for.
func missingFields(d domain.EntryCandidate) bool {
	return d.ProjectID == "" || d.Activity == "" || d.DateOfWork == "" || d.HoursOfWork == ""
}
