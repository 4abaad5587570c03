package cli

import (
	"time"

	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects service.ProjectService
	Phases   service.PhaseService
	Nodes    service.NodeService
	Schedule service.ScheduleService
	Import   service.ImportService

	// Defaults applied to new projects.
	WeekEndDay   time.Weekday
	DefaultScale domain.TimeScale

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "kurva" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "kurva",
		Short:         "Construction schedule and S-curve planner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newPhaseCmd(app),
		newItemCmd(app),
		newAssignCmd(app),
		newProgressCmd(app),
		newGanttCmd(app),
		newWeeklyCmd(app),
		newImportCmd(app),
	)

	return root
}
