package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/kurva/internal/cli"
	"github.com/alexanderramin/kurva/internal/config"
	"github.com/alexanderramin/kurva/internal/db"
	"github.com/alexanderramin/kurva/internal/repository"
	"github.com/alexanderramin/kurva/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Environment, then KURVA_ENV_FILE or .env in the working directory.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.Logger(os.Stderr)

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	repos := service.ScheduleRepos{
		Projects:    repository.NewSQLiteProjectRepo(database),
		Phases:      repository.NewSQLitePhaseRepo(database),
		Nodes:       repository.NewSQLiteWorkNodeRepo(database),
		Assignments: repository.NewSQLiteAssignmentRepo(database),
		Progress:    repository.NewSQLiteProgressRepo(database),
	}

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewLogUseCaseObserver(logger))
	}

	app := &cli.App{
		Projects:     service.NewProjectService(repos.Projects),
		Phases:       service.NewPhaseService(repos.Projects, repos.Phases, uow, observers...),
		Nodes:        service.NewNodeService(repos.Nodes),
		Schedule:     service.NewScheduleService(repos, uow, logger, cfg.LoadConcurrency, observers...),
		Import:       service.NewImportService(uow, observers...),
		WeekEndDay:   cfg.WeekEndDay,
		DefaultScale: cfg.DefaultScale,
	}

	// Detect interactive terminal for the proportion form and load spinner.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
