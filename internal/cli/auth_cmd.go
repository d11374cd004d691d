package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/identity"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var token, name string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a bearer token issued by the timesheet server",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identity.FromToken(strings.TrimSpace(token))
			if err != nil {
				return err
			}
			if name != "" {
				id.Name = name
			}
			if !id.Valid(app.now()) {
				return fmt.Errorf("token expired at %s", id.ExpiresAt.Format("2006-01-02 15:04"))
			}
			if err := app.Identities.Save(context.Background(), id); err != nil {
				return err
			}
			app.Identity = id

			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Signed in as %s (%s)", displayName(id), formatter.RoleLabel(id.Role))))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token (JWT)")
	cmd.Flags().StringVar(&name, "name", "", "Display name override")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Identities.Clear(context.Background()); err != nil {
				return err
			}
			app.Identity = nil
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			id := app.Identity
			if id == nil {
				fmt.Fprintln(out, "Not signed in.")
				return nil
			}

			rows := [][]string{
				{"User", displayName(id)},
				{"User ID", id.UserID},
				{"Role", formatter.RoleLabel(id.Role)},
				{"Server", app.Config.BaseURL},
			}
			if id.ExpiresAt != nil {
				expiry := id.ExpiresAt.Local().Format("2006-01-02 15:04")
				if !id.Valid(app.now()) {
					expiry = formatter.StyleRed.Render(expiry + " (expired)")
				}
				rows = append(rows, []string{"Expires", expiry})
			}
			fmt.Fprintln(out, formatter.RenderBox("Identity", formatter.RenderTable([]string{"FIELD", "VALUE"}, rows)))
			return nil
		},
	}
}

func displayName(id *identity.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	return id.UserID
}
