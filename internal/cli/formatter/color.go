package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ApprovalColor returns the style for an approval badge label.
func ApprovalColor(label string) lipgloss.Style {
	switch label {
	case "Approved":
		return StyleGreen
	case "Rejected":
		return StyleRed
	case "Submitted", "Pending":
		return StyleYellow
	case "Not Submitted":
		return StyleDim
	default:
		return StyleFg
	}
}

// Badge renders an approval label as "● Label" in its color.
func Badge(label string) string {
	return ApprovalColor(label).Render("● " + label)
}

// RoleLabel returns a human-readable role name.
func RoleLabel(r domain.Role) string {
	switch r {
	case domain.RoleAdmin:
		return StyleRed.Render("Admin")
	case domain.RoleDirector:
		return StylePurple.Render("Director")
	case domain.RoleOperationalDirector:
		return StylePurple.Render("Operational Director")
	case domain.RoleProjectManager:
		return StyleBlue.Render("Project Manager")
	case domain.RoleGeneral:
		return StyleFg.Render("Contributor")
	default:
		return StyleDim.Render(string(r))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// Notice renders an informational line.
func Notice(text string) string {
	return StyleYellow.Render("! ") + StyleFg.Render(text)
}

// Success renders a confirmation line.
func Success(text string) string {
	return StyleGreen.Render("✓ ") + StyleFg.Render(text)
}
