package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/kurva/internal/cli/formatter"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/spf13/cobra"
)

func newPhaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "phase",
		Aliases: []string{"tahap"},
		Short:   "Manage schedule phases (tahapan)",
	}
	cmd.AddCommand(
		newPhaseGenerateCmd(app),
		newPhaseAddCmd(app),
		newPhaseListCmd(app),
		newPhaseRemoveCmd(app),
	)
	return cmd
}

func newPhaseGenerateCmd(app *App) *cobra.Command {
	var (
		projectRef string
		scale      domain.TimeScale
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Replace auto-generated phases with a daily, weekly or monthly series",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, projectRef)
			if err != nil {
				return err
			}
			phases, err := app.Phases.Generate(cmd.Context(), p.ID, scale)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d %s phase(s) for %s\n",
				len(phases), formatter.ScaleBadge(scale), p.DisplayID())
			all, err := app.Phases.List(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatPhaseList(all))
			return nil
		},
	}

	addProjectFlag(cmd, &projectRef)
	cmd.Flags().Var(newScaleValue(domain.ScaleWeekly, &scale, false), "scale", "daily, weekly or monthly")
	return cmd
}

func newPhaseAddCmd(app *App) *cobra.Command {
	var (
		projectRef string
		name       string
		start      time.Time
		end        time.Time
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a manual phase after the existing ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, projectRef)
			if err != nil {
				return err
			}
			ph := &domain.Phase{
				ProjectID: p.ID,
				Name:      strings.TrimSpace(name),
				StartDate: optionalDate(cmd, "start", start),
				EndDate:   optionalDate(cmd, "end", end),
			}
			if err := app.Phases.Add(cmd.Context(), ph); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added phase %d %s\n", ph.Urutan, formatter.Bold(ph.Name))
			if !ph.HasStart() {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Phase has no start date and will not appear as a schedule column."))
			}
			return nil
		},
	}

	addProjectFlag(cmd, &projectRef)
	cmd.Flags().StringVar(&name, "name", "", "Phase name (default \"Tahap n\")")
	cmd.Flags().Var(&dateValue{target: &start}, "start", "Start date (YYYY-MM-DD)")
	cmd.Flags().Var(&dateValue{target: &end}, "end", "End date (YYYY-MM-DD)")
	return cmd
}

func newPhaseListCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a project's phases in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, projectRef)
			if err != nil {
				return err
			}
			phases, err := app.Phases.List(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPhaseList(phases))
			return nil
		},
	}

	addProjectFlag(cmd, &projectRef)
	return cmd
}

func newPhaseRemoveCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:     "remove <phase>",
		Aliases: []string{"rm"},
		Short:   "Delete a phase by number or ID prefix",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, projectRef)
			if err != nil {
				return err
			}
			phases, err := app.Phases.List(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			ph, err := resolvePhase(derefPhases(phases), args[0])
			if err != nil {
				return err
			}
			if err := app.Phases.Delete(cmd.Context(), ph.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted phase %d %s\n", ph.Urutan, ph.Name)
			return nil
		},
	}

	addProjectFlag(cmd, &projectRef)
	return cmd
}

func derefPhases(phases []*domain.Phase) []domain.Phase {
	out := make([]domain.Phase, len(phases))
	for i, p := range phases {
		out[i] = *p
	}
	return out
}
