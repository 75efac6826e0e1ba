package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"weekly-meals/internal/app"
	"weekly-meals/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func run(ctx context.Context, command string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.NewLogger(cfg.Log)

	application, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	switch command {
	case "generate":
		if err := application.OpenStoreIfExists(); err != nil {
			return err
		}
		report, err := application.Generate(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Generated %d week file(s) (%d replaced), skipped %d.\n",
			len(report.Written), len(report.Replaced), len(report.Skipped))

	case "validate":
		if err := application.OpenStoreIfExists(); err != nil {
			return err
		}
		report, _, err := application.Validate(ctx)
		if err != nil {
			return err
		}
		if report.HasErrors() {
			return fmt.Errorf("%w: %d of %d files", app.ErrInvalidRecords,
				len(report.Rejected), len(report.Rejected)+len(report.Accepted))
		}
		fmt.Printf("All %d week file(s) are valid.\n", len(report.Accepted))

	case "build":
		buildCmd := flag.NewFlagSet("build", flag.ExitOnError)
		source := buildCmd.String("source", cfg.Build.Source, "Where weeks are read from: content or store")
		buildCmd.Parse(args)

		if err := config.ValidateSource(*source); err != nil {
			return err
		}
		// Store builds read an existing database; content builds only log runs to it.
		open := application.OpenStoreIfExists
		if *source == config.SourceStore {
			open = func() error { return application.OpenStore(true) }
		}
		if err := open(); err != nil {
			return err
		}
		res, err := application.Build(ctx, *source)
		if err != nil {
			return err
		}
		fmt.Printf("Built %d page(s) and copied %d asset(s) into %s.\n", res.Pages, res.Assets, cfg.Paths.DistDir)

	case "import":
		if err := application.OpenStore(false); err != nil {
			return err
		}
		report, err := application.Import(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d week(s): %d meal(s) added, %d kept, %d grocery item(s).\n",
			report.Weeks, report.MealsAdded, report.MealsKept, report.GroceryItems)
		if report.Rejected > 0 {
			return fmt.Errorf("%w: %d file(s) not imported", app.ErrInvalidRecords, report.Rejected)
		}

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", cfg.Metrics.RetentionDays, "Keep records for the last N days")
		cleanupCmd.Parse(args)

		if err := application.OpenStore(false); err != nil {
			return err
		}
		affected, err := application.CleanupMetrics(ctx, *days)
		if err != nil {
			return err
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		return errUsage
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate                     Convert weeks/*.txt into content/*.json")
	fmt.Println("  validate                     Check every content file against the week schema")
	fmt.Println("  build [--source S]           Render the site from content or store")
	fmt.Println("  import                       Load valid content files into the SQLite store")
	fmt.Println("  metrics-cleanup [--days N]   Remove old run metric records")
}
