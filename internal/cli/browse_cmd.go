package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/identity"
	"github.com/alexanderramin/timesheet/internal/report"
	"github.com/alexanderramin/timesheet/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse users' timesheets (interactive when run in a terminal)",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.requireIdentity()
			if err != nil {
				return err
			}
			if !app.Interactive {
				return errors.New("the interactive browser needs a terminal; use 'browse users' or 'browse entries USER_ID'")
			}
			browser := service.NewTimesheetBrowser(app.Client, app.observer())
			model := newBrowserModel(browser, id, app.now)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(cmd.OutOrStdout())).Run()
			return err
		},
	}

	cmd.AddCommand(
		newBrowseUsersCmd(app),
		newBrowseEntriesCmd(app),
	)

	return cmd
}

func newBrowseUsersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users who have logged time",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if _, err := app.requireIdentity(); err != nil {
				return err
			}
			browser := service.NewTimesheetBrowser(app.Client, app.observer())

			var users []domain.UserSummary
			if err := app.busy(out, "Loading users...", func() error {
				var err error
				users, err = browser.ListEligibleUsers(context.Background())
				return err
			}); err != nil {
				return err
			}

			if len(users) == 0 {
				fmt.Fprintln(out, "No users have logged time yet.")
				return nil
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.ID, domain.CoalesceStr(u.Name, formatter.Dim("(unnamed)"))})
			}
			fmt.Fprintln(out, formatter.RenderBox("Users", formatter.RenderTable([]string{"ID", "NAME"}, rows)))
			return nil
		},
	}
}

func newBrowseEntriesCmd(app *App) *cobra.Command {
	var pdfPath, csvPath string

	cmd := &cobra.Command{
		Use:   "entries USER_ID",
		Short: "List a user's time entries across all projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()
			id, err := app.requireIdentity()
			if err != nil {
				return err
			}
			userID := args[0]
			browser := service.NewTimesheetBrowser(app.Client, app.observer())

			var entries []domain.TimeEntry
			if err := app.busy(out, "Loading entries...", func() error {
				var err error
				entries, err = browser.ListEntriesFor(ctx, userID)
				return err
			}); err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintf(out, "No time entries for %s.\n", userID)
			} else {
				fmt.Fprintln(out, formatter.RenderBox("Timesheet: "+userID, renderEntries(entries, id, userID, app.now())))
			}

			if pdfPath == "" && csvPath == "" {
				return nil
			}
			data := report.TimesheetData{
				User:        lookupUser(ctx, browser, userID),
				Entries:     entries,
				GeneratedAt: app.now(),
			}
			if pdfPath != "" {
				if err := writeExport(pdfPath, data, report.TimesheetPDF); err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.Success("Wrote "+pdfPath))
			}
			if csvPath != "" {
				if err := writeExport(csvPath, data, report.TimesheetCSV); err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.Success("Wrote "+csvPath))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Also export the timesheet as PDF to this file")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Also export the timesheet as CSV to this file")

	return cmd
}

func writeExport(path string, data report.TimesheetData, render func(report.TimesheetData) ([]byte, error)) error {
	body, err := render(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// lookupUser finds the display name for userID, falling back to the bare id.
func lookupUser(ctx context.Context, browser *service.TimesheetBrowser, userID string) domain.UserSummary {
	users, err := browser.ListEligibleUsers(ctx)
	if err == nil {
		for _, u := range users {
			if u.ID == userID {
				return u
			}
		}
	}
	return domain.UserSummary{ID: userID}
}

// renderEntries lays out a user's entries with per-status totals. Owner-only
// actions are listed only where the viewer may use them.
func renderEntries(entries []domain.TimeEntry, viewer *identity.Identity, listedUserID string, now time.Time) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		owner := domain.CoalesceStr(e.OwnerID, listedUserID)
		actions := formatter.Dim("—")
		if viewer != nil && domain.CanViewOwnerControls(viewer.Role, owner, viewer.UserID) {
			actions = "edit · submit"
		}
		rows = append(rows, []string{
			e.ID,
			formatter.HumanDate(e.DateOfWork, now),
			domain.CoalesceStr(e.ProjectName, e.ProjectID),
			string(e.Activity),
			formatter.FormatHours(e.HoursOfWork),
			formatter.Badge(service.StatusBadge(e.ApprovalStatus)),
			e.DisplayEntryType(),
			actions,
		})
	}

	summary := service.Summarize(entries)
	table := formatter.Table{
		Headers:    []string{"ID", "DATE", "PROJECT", "ACTIVITY", "HOURS", "STATUS", "TYPE", "ACTIONS"},
		Rows:       rows,
		Footer:     []string{"", "", "", "Total", formatter.FormatHours(summary.TotalHours)},
		RightAlign: []int{4},
	}

	var b strings.Builder
	b.WriteString(table.Render())
	b.WriteString("\n")
	for _, st := range summary.ByStatus {
		fmt.Fprintf(&b, "%s  %s (%d)\n", formatter.Badge(st.Label), formatter.FormatHours(st.Hours), st.Entries)
	}
	return strings.TrimRight(b.String(), "\n")
}
