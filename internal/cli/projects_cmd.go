package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/service"
	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects you can log time against",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			id, err := app.requireIdentity()
			if err != nil {
				return err
			}
			catalog := service.NewProjectCatalog(app.Client)
			if err := app.busy(out, "Loading projects...", func() error {
				return catalog.Load(ctx, id)
			}); err != nil {
				return err
			}

			projects := catalog.Selectable()
			title := "Projects"
			if all {
				projects = catalog.All()
				title = "All visible projects"
			}
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects available.")
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{
					p.ID,
					p.DisplayName(),
					formatter.Dim(p.ClientName),
					formatter.ProjectStatusPill(p.Status),
				})
			}
			fmt.Fprintln(out, formatter.RenderBox(title, formatter.RenderTable([]string{"ID", "PROJECT", "CLIENT", "STATUS"}, rows)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include completed and rejected projects")

	return cmd
}
