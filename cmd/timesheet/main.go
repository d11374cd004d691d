package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/timesheet/internal/api"
	"github.com/alexanderramin/timesheet/internal/cli"
	"github.com/alexanderramin/timesheet/internal/db"
	"github.com/alexanderramin/timesheet/internal/identity"
	"github.com/alexanderramin/timesheet/internal/repository"
	"github.com/alexanderramin/timesheet/internal/service"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	// A .env in the working directory is optional.
	_ = godotenv.Load()

	cfg := api.LoadConfig()

	// Determine DB path: env var or default ~/.timesheet/timesheet.db
	dbPath := os.Getenv("TIMESHEET_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".timesheet", "timesheet.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	app := &cli.App{
		Config:      cfg,
		Identities:  repository.NewSQLiteIdentityRepo(database),
		Interactive: isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd()),
		Now:         time.Now,
	}
	if err := app.LoadIdentity(context.Background()); err != nil {
		return fmt.Errorf("loading identity: %w", err)
	}
	if tok := os.Getenv("TIMESHEET_TOKEN"); tok != "" {
		id, err := identity.FromToken(tok)
		if err != nil {
			return fmt.Errorf("TIMESHEET_TOKEN: %w", err)
		}
		app.Identity = id
	}

	calls := api.MultiObserver{}
	useCases := service.MultiUseCaseObserver{}
	if cfg.LogCalls {
		calls = append(calls, api.NewLogObserver(os.Stderr))
		useCases = append(useCases, service.NewLogUseCaseObserver(os.Stderr))
	}
	if cfg.MetricsFile != "" {
		reg := prometheus.NewRegistry()
		callMetrics, merr := api.NewMetricsObserver(reg)
		if merr != nil {
			return fmt.Errorf("registering metrics: %w", merr)
		}
		useCaseMetrics, merr := service.NewMetricsUseCaseObserver(reg)
		if merr != nil {
			return fmt.Errorf("registering metrics: %w", merr)
		}
		calls = append(calls, callMetrics)
		useCases = append(useCases, useCaseMetrics)
		defer func() {
			if werr := api.WriteMetricsFile(cfg.MetricsFile, reg); werr != nil && err == nil {
				err = fmt.Errorf("writing metrics: %w", werr)
			}
		}()
	}
	app.Observer = useCases
	app.Client = api.NewHTTPClient(cfg, app, calls)

	return cli.NewRootCmd(app).Execute()
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
