package cli

import (
	"fmt"

	"github.com/alexanderramin/kurva/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newProgressCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:     "progress",
		Aliases: []string{"kurva-s"},
		Short:   "Show planned progress per phase and the cumulative S-curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, projectRef)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd, app, p.ID)
			if err != nil {
				return err
			}
			report := app.Schedule.Progress(ws)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPhaseProgress(ws, report))
			return nil
		},
	}

	addProjectFlag(cmd, &projectRef)
	return cmd
}

func newGanttCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Show each work item's planned span across the schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, projectRef)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd, app, p.ID)
			if err != nil {
				return err
			}
			report := app.Schedule.Progress(ws)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatGantt(ws, report.Bars))
			return nil
		},
	}

	addProjectFlag(cmd, &projectRef)
	return cmd
}

func newWeeklyCmd(app *App) *cobra.Command {
	var (
		projectRef string
		itemRef    string
	)

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Show the stored weekly breakdown of a work item",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}
			nodes, err := app.Nodes.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			node, err := resolveNode(nodes, itemRef)
			if err != nil {
				return err
			}
			if !node.IsLeaf() {
				return fmt.Errorf("%s is a %s; only pekerjaan items carry a schedule", node.Name, node.Kind)
			}
			ws, err := openWorkspace(cmd, app, p.ID)
			if err != nil {
				return err
			}
			records, err := app.Schedule.Weekly(ctx, node.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header(node.Name))
			fmt.Fprintln(out, formatter.FormatWeekly(records, ws))
			return nil
		},
	}

	addProjectFlag(cmd, &projectRef)
	cmd.Flags().StringVar(&itemRef, "item", "", "Work item ID, ID prefix or name")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}
