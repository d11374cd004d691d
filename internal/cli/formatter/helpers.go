package formatter

import (
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// HumanDate renders a calendar day relative to now: "Today", "Yesterday",
// or "Mon Jan 2, 2006".
func HumanDate(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today"
	}
	y3, m3, d3 := now.AddDate(0, 0, -1).Date()
	if y2 == y3 && m2 == m3 && d2 == d3 {
		return "Yesterday"
	}
	return t.Format("Mon Jan 2, 2006")
}

// FormatHours renders hours without trailing zeros: 2.5 → "2.5h", 3 → "3h".
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + "h"
}

// TruncID shortens long identifiers such as UUIDs to their first 8 characters.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Truncate shortens s to max visible characters with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 4 {
		return s
	}
	return string(r[:max-3]) + "..."
}

// ProjectStatusPill returns a colored indicator for a project status.
func ProjectStatusPill(status domain.ProjectStatus) string {
	switch status {
	case domain.ProjectActive:
		return StyleGreen.Render("● active")
	case domain.ProjectPending:
		return StyleYellow.Render("● pending")
	case domain.ProjectOnHold:
		return StyleBlue.Render("● on hold")
	case domain.ProjectCompleted:
		return StyleDim.Render("● completed")
	case domain.ProjectRejected:
		return StyleRed.Render("● rejected")
	default:
		return StyleDim.Render("● " + string(status))
	}
}
