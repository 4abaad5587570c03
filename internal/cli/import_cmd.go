package cli

import (
	"fmt"

	"github.com/alexanderramin/kurva/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a project with phases, work items and assignments from YAML or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Import.ImportProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %s %s\n", formatter.Bold(res.Project.DisplayID()), res.Project.Name)
			fmt.Fprintln(out, formatter.Dim(fmt.Sprintf(
				"%d phases, %d work nodes, %d assignments, %d weekly records",
				res.PhaseCount, res.NodeCount, res.AssignmentCount, res.WeekCount)))
			return nil
		},
	}
}
