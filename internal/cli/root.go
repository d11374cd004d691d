package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/timesheet/internal/api"
	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/identity"
	"github.com/alexanderramin/timesheet/internal/repository"
	"github.com/alexanderramin/timesheet/internal/service"
	"github.com/spf13/cobra"
)

// App holds the collaborators shared by all CLI commands.
type App struct {
	Config     api.Config
	Client     api.Client
	Identities repository.IdentityRepo
	Observer   service.UseCaseObserver

	// Identity is the signed-in user, nil when nobody is signed in.
	Identity *identity.Identity

	// Interactive enables huh forms, confirmations, spinners and the
	// bubbletea browser.
	Interactive bool

	Now func() time.Time
}

// BearerToken implements api.TokenSource so the client always sends the
// credential of whoever is currently signed in.
func (a *App) BearerToken() string {
	if a.Identity == nil || !a.Identity.Valid(a.now()) {
		return ""
	}
	return a.Identity.Token
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) observer() service.UseCaseObserver {
	if a.Observer != nil {
		return a.Observer
	}
	return service.NoopUseCaseObserver{}
}

// LoadIdentity restores the stored identity. A missing identity is not an error.
func (a *App) LoadIdentity(ctx context.Context) error {
	id, err := a.Identities.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		a.Identity = nil
		return nil
	}
	if err != nil {
		return err
	}
	a.Identity = id
	return nil
}

var errNotSignedIn = errors.New("not signed in: run 'timesheet login --token <TOKEN>'")

// requireIdentity returns the signed-in identity, refusing before any server
// call when there is none or it has expired.
func (a *App) requireIdentity() (*identity.Identity, error) {
	if a.Identity == nil || a.Identity.Token == "" {
		return nil, errNotSignedIn
	}
	if !a.Identity.Valid(a.now()) {
		return nil, fmt.Errorf("session expired: %w", errNotSignedIn)
	}
	return a.Identity, nil
}

// busy runs fn with a spinner on w when the session is interactive.
func (a *App) busy(w io.Writer, message string, fn func() error) error {
	if a.Interactive {
		stop := formatter.StartSpinner(w, message)
		defer stop()
	}
	return fn()
}

// NewRootCmd creates the top-level "timesheet" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "timesheet",
		Short:         "Log, stage and submit timesheet entries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newEntryCmd(app),
		newProjectsCmd(app),
		newBrowseCmd(app),
	)

	return root
}
