package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/identity"
	"github.com/alexanderramin/timesheet/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newEntryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Create, edit and submit time entries",
	}

	cmd.AddCommand(
		newEntryNewCmd(app),
		newEntryEditCmd(app),
		newEntrySubmitCmd(app),
	)

	return cmd
}

// entryFlags are the field overrides shared by "entry new" and "entry edit".
type entryFlags struct {
	project     string
	activity    string
	date        string
	hours       string
	description string
}

var entryFlagNames = []string{"project", "activity", "date", "hours", "description"}

func (f *entryFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.project, "project", "", "Project ID")
	fs.StringVar(&f.activity, "activity", "", "Activity (Consulting, Documentation, Meeting, Other)")
	fs.StringVar(&f.date, "date", "", "Date of work (YYYY-MM-DD)")
	fs.StringVar(&f.hours, "hours", "", "Hours of work")
	fs.StringVar(&f.description, "description", "", "Private description")
}

// apply copies every flag the user set onto the draft.
func (f *entryFlags) apply(fs *pflag.FlagSet, d *domain.EntryCandidate) {
	changed := fs.Changed
	if changed("project") {
		d.ProjectID = f.project
	}
	if changed("activity") {
		d.Activity = f.activity
	}
	if changed("date") {
		d.DateOfWork = f.date
	}
	if changed("hours") {
		d.HoursOfWork = f.hours
	}
	if changed("description") {
		d.PrivateDescription = f.description
	}
}

func (f *entryFlags) any(fs *pflag.FlagSet) bool {
	for _, name := range entryFlagNames {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

// entrySession is one open entry form: its lifecycle plus the catalog the
// project list was drawn from.
type entrySession struct {
	app       *App
	out       io.Writer
	id        *identity.Identity
	catalog   *service.ProjectCatalog
	lifecycle *service.EntryLifecycle
	refreshed []bool
}

func openEntrySession(ctx context.Context, app *App, out io.Writer) (*entrySession, error) {
	id, err := app.requireIdentity()
	if err != nil {
		return nil, err
	}
	catalog := service.NewProjectCatalog(app.Client)
	if err := app.busy(out, "Loading projects...", func() error {
		return catalog.Load(ctx, id)
	}); err != nil {
		return nil, err
	}
	return &entrySession{
		app:     app,
		out:     out,
		id:      id,
		catalog: catalog,
		lifecycle: service.NewEntryLifecycle(app.Client, catalog,
			service.WithUseCaseObserver(app.observer()),
			service.WithSubmitLink(app.Config.SubmitLink),
		),
	}, nil
}

func (s *entrySession) formContext(embedded, preventAutoClose bool) service.FormContext {
	return service.FormContext{
		Identity:         s.id,
		Embedded:         embedded,
		PreventAutoClose: preventAutoClose,
		Refresh:          func(tab bool) { s.refreshed = append(s.refreshed, tab) },
		Clock:            s.app.now,
	}
}

// checkProject enforces that a chosen project still accepts time.
func (s *entrySession) checkProject(projectID string) error {
	if projectID == "" {
		return nil
	}
	p, ok := s.catalog.Resolve(projectID)
	if !ok {
		return fmt.Errorf("project %q is not available to you; run 'timesheet projects' to list choices", projectID)
	}
	if p.IsTerminal() {
		return fmt.Errorf("project %q is %s and no longer accepts time", p.DisplayName(), p.Status)
	}
	return nil
}

// stage saves the draft. Notices are printed and reported as handled; only
// failures come back as errors.
func (s *entrySession) stage(ctx context.Context) (service.StageResult, bool, error) {
	var res service.StageResult
	err := s.app.busy(s.out, "Saving entry...", func() error {
		var err error
		res, err = s.lifecycle.Stage(ctx)
		return err
	})
	if err != nil {
		if service.IsInformational(err) {
			printValidation(s.out, err)
			return res, false, nil
		}
		return res, false, err
	}

	e := res.Entries[0]
	fmt.Fprintln(s.out, formatter.Success(fmt.Sprintf("Saved entry %s: %s %s on %s (%s)",
		e.ID,
		formatter.FormatHours(e.HoursOfWork),
		e.Activity,
		domain.FormatDate(e.DateOfWork),
		projectLabel(s.catalog, e),
	)))
	return res, true, nil
}

// submit sends the staged entry. Notices are printed and reported as handled.
func (s *entrySession) submit(ctx context.Context) (bool, error) {
	var res service.SubmitResult
	err := s.app.busy(s.out, "Submitting...", func() error {
		var err error
		res, err = s.lifecycle.Submit(ctx)
		return err
	})
	if err != nil {
		if service.IsInformational(err) {
			fmt.Fprintln(s.out, formatter.Notice(service.Notice(err)))
			return false, nil
		}
		return false, err
	}
	fmt.Fprintln(s.out, formatter.Success(fmt.Sprintf("Submitted entry %s for the week of %s",
		res.Entry.ID, domain.FormatDate(*res.Entry.WeekStart))))
	if n := len(s.refreshed); n > 0 && s.refreshed[n-1] {
		fmt.Fprintln(s.out, formatter.Dim(fmt.Sprintf("Track approval with: timesheet browse entries %s", domain.CoalesceStr(res.Entry.OwnerID, s.id.UserID))))
	}
	return true, nil
}

// offerSubmit submits when asked to, or asks when interactive.
func (s *entrySession) offerSubmit(ctx context.Context, submitNow bool, entryID string) error {
	if !submitNow && s.app.Interactive {
		if err := confirmForm("Submit this entry for approval now?", "Submit", "Later", &submitNow).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				submitNow = false
			} else {
				return err
			}
		}
	}
	if !submitNow {
		fmt.Fprintln(s.out, formatter.Dim(fmt.Sprintf("Submit later with: timesheet entry submit %s", entryID)))
		return nil
	}
	_, err := s.submit(ctx)
	return err
}

func (s *entrySession) runForm(title string) error {
	draft := s.lifecycle.Draft()
	if err := entryForm(title, &draft, s.catalog.Selectable()).Run(); err != nil {
		return err
	}
	s.lifecycle.SetDraft(draft)
	return nil
}

func newEntryNewCmd(app *App) *cobra.Command {
	var flags entryFlags
	var submitNow, embedded, noClose bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Log a new time entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			s, err := openEntrySession(ctx, app, out)
			if err != nil {
				return err
			}
			lc := s.lifecycle
			lc.ResetDraft(s.formContext(embedded, noClose), flags.date)
			defer lc.Teardown()

			draft := lc.Draft()
			flags.apply(cmd.Flags(), &draft)
			lc.SetDraft(draft)

			if app.Interactive && missingFields(draft) {
				if err := s.runForm("New time entry"); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(out, "Cancelled.")
						return nil
					}
					return err
				}
			}
			if err := s.checkProject(lc.Draft().ProjectID); err != nil {
				return err
			}

			res, ok, err := s.stage(ctx)
			if err != nil || !ok {
				return err
			}
			if res.Close {
				fmt.Fprintln(out, formatter.Dim("Entry saved. Your manager will see it once you submit it."))
				if submitNow {
					_, err := s.submit(ctx)
					return err
				}
				fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("Submit later with: timesheet entry submit %s", res.Entries[0].ID)))
				return nil
			}
			return s.offerSubmit(ctx, submitNow, res.Entries[0].ID)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&submitNow, "submit", false, "Submit for approval right after saving")
	cmd.Flags().BoolVar(&embedded, "embedded", false, "Keep the form open after saving, as when opened from a list")
	cmd.Flags().BoolVar(&noClose, "no-close", false, "Never close the form automatically after saving")

	return cmd
}

func newEntryEditCmd(app *App) *cobra.Command {
	var flags entryFlags
	var userID string
	var submitNow bool

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a saved time entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			s, err := openEntrySession(ctx, app, out)
			if err != nil {
				return err
			}
			record, err := findOwnedEntry(ctx, app, s.id, userID, args[0])
			if err != nil {
				return err
			}

			lc := s.lifecycle
			lc.ResetFromRecord(s.formContext(false, false), record)
			defer lc.Teardown()

			draft := lc.Draft()
			flags.apply(cmd.Flags(), &draft)
			lc.SetDraft(draft)

			if app.Interactive && !flags.any(cmd.Flags()) {
				if err := s.runForm("Edit time entry"); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(out, "Cancelled.")
						return nil
					}
					return err
				}
			}
			if cmd.Flags().Changed("project") || app.Interactive {
				if err := s.checkProject(lc.Draft().ProjectID); err != nil {
					return err
				}
			}

			res, ok, err := s.stage(ctx)
			if err != nil || !ok {
				return err
			}
			return s.offerSubmit(ctx, submitNow, res.Entries[0].ID)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&userID, "user", "", "Owner of the entry (defaults to you)")
	cmd.Flags().BoolVar(&submitNow, "submit", false, "Submit for approval right after saving")

	return cmd
}

func newEntrySubmitCmd(app *App) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "submit ID",
		Short: "Submit a saved time entry for approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			s, err := openEntrySession(ctx, app, out)
			if err != nil {
				return err
			}
			record, err := findOwnedEntry(ctx, app, s.id, userID, args[0])
			if err != nil {
				return err
			}

			lc := s.lifecycle
			lc.ResetFromRecord(s.formContext(false, false), record)
			defer lc.Teardown()

			_, err = s.submit(ctx)
			return err
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Owner of the entry (defaults to you)")

	return cmd
}

// findOwnedEntry fetches ownerID's entries and returns entryID, provided the
// signed-in user may act on it.
func findOwnedEntry(ctx context.Context, app *App, id *identity.Identity, ownerID, entryID string) (domain.TimeEntry, error) {
	if ownerID == "" {
		ownerID = id.UserID
	}
	browser := service.NewTimesheetBrowser(app.Client, app.observer())
	entries, err := browser.ListEntriesFor(ctx, ownerID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	for _, e := range entries {
		if e.ID != entryID {
			continue
		}
		owner := domain.CoalesceStr(e.OwnerID, ownerID)
		if !domain.CanViewOwnerControls(id.Role, owner, id.UserID) {
			return domain.TimeEntry{}, fmt.Errorf("entry %s belongs to another user", entryID)
		}
		e.OwnerID = owner
		return e, nil
	}
	return domain.TimeEntry{}, fmt.Errorf("entry %s not found", entryID)
}

func printValidation(w io.Writer, err error) {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		fmt.Fprintln(w, formatter.Notice(service.Notice(err)))
		return
	}
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintln(w, formatter.Notice(fmt.Sprintf("%s: %s", f, verr.Fields[domain.Field(f)])))
	}
}

func projectLabel(catalog *service.ProjectCatalog, e domain.TimeEntry) string {
	if e.ProjectName != "" {
		return e.ProjectName
	}
	if p, ok := catalog.Resolve(e.ProjectID); ok {
		return p.DisplayName()
	}
	return e.ProjectID
}
