package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() TimesheetData {
	day := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	return TimesheetData{
		User: domain.UserSummary{ID: "u1", Name: "Dana"},
		Entries: []domain.TimeEntry{
			testutil.NewTestEntry(testutil.WithEntryID("a"), testutil.WithDate(day), testutil.WithHours(2.5),
				testutil.WithProject("P1", "Harbor Lease"), testutil.WithApproval(domain.ApprovalApproved)),
			testutil.NewTestEntry(testutil.WithEntryID("b"), testutil.WithDate(day.AddDate(0, 0, 4)), testutil.WithHours(1),
				testutil.WithProject("P2", ""), testutil.WithApproval(""), testutil.WithDescription("call, follow-up")),
		},
		GeneratedAt: day,
	}
}

func TestTimesheetPDF_WritesDocument(t *testing.T) {
	data, err := TimesheetPDF(sampleData())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	path := filepath.Join(t.TempDir(), "timesheet.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestTimesheetPDF_NoEntries(t *testing.T) {
	data, err := TimesheetPDF(TimesheetData{User: domain.UserSummary{ID: "u9"}, GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestTimesheetCSV(t *testing.T) {
	data, err := TimesheetCSV(sampleData())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "hours", rows[0][5])

	assert.Equal(t, []string{"a", "2024-06-12", "Harbor Lease", "Meeting", "2024-06-10", "2.50", "Approved", "Hourly Work", ""}, rows[1])
	assert.Equal(t, "P2", rows[2][2], "project id shown when the name is unknown")
	assert.Equal(t, "Not Submitted", rows[2][6])
	assert.Equal(t, "2024-06-10", rows[2][4], "Sunday stays in the week that began on Monday")
	assert.Equal(t, "call, follow-up", rows[2][8])
}
