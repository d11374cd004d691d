package formatter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTable_RightAlignAndFooter(t *testing.T) {
	out := Table{
		Headers:    []string{"PROJECT", "HOURS"},
		Rows:       [][]string{{"Harbor", "2.5h"}, {"Atlas", "12h"}},
		Footer:     []string{"Total", "14.5h"},
		RightAlign: []int{1},
	}.Render()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 6)
	assert.Equal(t, lipgloss.Width(lines[2]), lipgloss.Width(lines[3]))
	assert.True(t, strings.HasSuffix(lines[2], " 2.5h"))
	assert.Contains(t, lines[5], "14.5h")
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, RenderTable(nil, nil))
	out := RenderTable([]string{"A"}, nil)
	assert.Contains(t, out, "A")
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "2.5h", FormatHours(2.5))
	assert.Equal(t, "3h", FormatHours(3))
	assert.Equal(t, "0.25h", FormatHours(0.25))
}

func TestHumanDate(t *testing.T) {
	now := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "Today", HumanDate(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Yesterday", HumanDate(time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Mon Jun 10, 2024", HumanDate(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "—", HumanDate(time.Time{}, now))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
}

func TestBadge(t *testing.T) {
	assert.Contains(t, Badge("Approved"), "Approved")
	assert.Contains(t, Badge("Not Submitted"), "● Not Submitted")
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	stop := StartSpinner(&buf, "saving")
	stop()
	stop()
	assert.Contains(t, buf.String(), "\r\033[K")
}
