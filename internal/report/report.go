// Package report renders a user's timesheet for export.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/service"
	"github.com/jung-kurt/gofpdf/v2"
)

// TimesheetData is everything rendered into one exported timesheet.
type TimesheetData struct {
	User        domain.UserSummary
	Entries     []domain.TimeEntry
	GeneratedAt time.Time
}

func (d TimesheetData) owner() string {
	return domain.CoalesceStr(d.User.Name, d.User.ID)
}

// TimesheetPDF renders the entries as an A4 landscape table followed by
// per-status totals.
func TimesheetPDF(data TimesheetData) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, "Timesheet - "+data.owner(), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, fmt.Sprintf("Generated: %s", data.GeneratedAt.Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	widths := []float64{28, 70, 35, 28, 18, 38, 60}
	headers := []string{"Date", "Project", "Activity", "Week Of", "Hours", "Status", "Entry Type"}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, h, "1", ln, "C", true, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	if len(data.Entries) == 0 {
		pdf.CellFormat(277, 7, "No timesheet entries", "1", 1, "C", false, 0, "")
	}
	for _, e := range data.Entries {
		row := entryRow(e)
		for i, cell := range row {
			ln, align := 0, "L"
			if i == len(row)-1 {
				ln = 1
			}
			if i == 4 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, cell, "1", ln, align, false, 0, "")
		}
	}
	pdf.Ln(5)

	summary := service.Summarize(data.Entries)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(277, 8, "Summary", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, st := range summary.ByStatus {
		pdf.CellFormat(138, 7, st.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(139, 7, fmt.Sprintf("%s h (%d entries)", formatHours(st.Hours), st.Entries), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(138, 8, "Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(139, 8, fmt.Sprintf("%s h (%d entries)", formatHours(summary.TotalHours), summary.Entries), "1", 1, "R", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering timesheet pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// TimesheetCSV renders the entries as CSV with a header row.
func TimesheetCSV(data TimesheetData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "date", "project", "activity", "week_start", "hours", "status", "entry_type", "description"}); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, e := range data.Entries {
		row := entryRow(e)
		record := []string{e.ID, row[0], row[1], row[2], row[3], row[4], row[5], row[6], e.PrivateDescription}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// entryRow is the display form of an entry in column order:
// date, project, activity, week of, hours, status, entry type.
func entryRow(e domain.TimeEntry) []string {
	project := domain.CoalesceStr(e.ProjectName, e.ProjectID)
	weekOf := domain.FormatDate(domain.MondayOf(e.DateOfWork))
	if e.WeekStart != nil {
		weekOf = domain.FormatDate(*e.WeekStart)
	}
	if e.DateOfWork.IsZero() && e.WeekStart == nil {
		weekOf = ""
	}
	return []string{
		domain.FormatDate(e.DateOfWork),
		project,
		string(e.Activity),
		weekOf,
		formatHours(e.HoursOfWork),
		service.StatusBadge(e.ApprovalStatus),
		e.DisplayEntryType(),
	}
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}
