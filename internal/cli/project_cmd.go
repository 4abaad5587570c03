package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/kurva/internal/cli/formatter"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"proyek"},
		Short:   "Manage projects",
	}
	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectArchiveCmd(app),
		newProjectRemoveCmd(app),
	)
	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var (
		shortID string
		name    string
		start   time.Time
		end     time.Time
		weekEnd time.Weekday
		scale   domain.TimeScale
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &domain.Project{
				ShortID:      strings.ToUpper(strings.TrimSpace(shortID)),
				Name:         strings.TrimSpace(name),
				StartDate:    start,
				EndDate:      optionalDate(cmd, "end", end),
				WeekEndDay:   weekEnd,
				DefaultScale: scale,
			}
			if p.Name == "" {
				return fmt.Errorf("project name is required (use --name)")
			}
			if err := app.Projects.Create(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s %s\n",
				formatter.Bold(p.DisplayID()), p.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&shortID, "id", "", "Short ID, e.g. GDG01")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().Var(&dateValue{target: &start}, "start", "Start date (YYYY-MM-DD)")
	cmd.Flags().Var(&dateValue{target: &end}, "end", "End date (YYYY-MM-DD)")
	cmd.Flags().Var(newWeekdayValue(app.WeekEndDay, &weekEnd), "week-end", "Last day of each project week")
	cmd.Flags().Var(newScaleValue(scaleOrWeekly(app.DefaultScale), &scale, true), "scale", "Default time scale")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")
	return cmd
}

func newProjectArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <project>",
		Short: "Archive a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.Archive(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s\n", p.DisplayID())
			return nil
		},
	}
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "remove <project>",
		Aliases: []string{"rm"},
		Short:   "Delete an archived project and its schedule",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if err := app.Projects.Delete(cmd.Context(), p.ID, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", p.DisplayID())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Delete even if the project is still active")
	return cmd
}

func scaleOrWeekly(s domain.TimeScale) domain.TimeScale {
	if s == "" {
		return domain.ScaleWeekly
	}
	return s
}
