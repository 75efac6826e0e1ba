package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"weekly-meals/internal/app"
	"weekly-meals/internal/config"
	"weekly-meals/internal/planner"
)

func main() {
	root, sess := newRootCmd()
	err := root.ExecuteContext(context.Background())
	// PersistentPostRunE is skipped when a command fails.
	sess.close()
	if err != nil {
		os.Exit(1)
	}
}

// session holds the app opened by the running command.
type session struct {
	app *app.App
}

func (s *session) close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	return err
}

// newRootCmd builds the command tree. The store is opened once before any
// subcommand runs and released through the returned session.
func newRootCmd() (*cobra.Command, *session) {
	s := &session{}

	root := &cobra.Command{
		Use:          "meals",
		Short:        "Query and update the meal store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			app.NewLogger(cfg.Log)

			a, err := app.NewApp(cfg)
			if err != nil {
				return err
			}
			if err := a.OpenStore(true); err != nil {
				return err
			}
			a.SetOutput(cmd.OutOrStdout())
			s.app = a
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return s.close()
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "recipes",
			Short: "List all recipes with usage counts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return s.app.Recipes(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "recipe <id>",
			Short: "Show recipe details",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.app.Recipe(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "meals [weeks]",
			Short: "Show recent meals (default: 2 weeks)",
			Args:  cobra.RangeArgs(0, 1),
			RunE: func(cmd *cobra.Command, args []string) error {
				weeks, err := optionalInt(args, 2)
				if err != nil {
					return err
				}
				return s.app.Meals(cmd.Context(), weeks)
			},
		},
		&cobra.Command{
			Use:   "week <YYYY-MM-DD>",
			Short: "Show meals for a specific week",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.app.Week(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "add-meal <date> <recipe-id-or-name>",
			Short: "Add a meal to the calendar",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.app.AddMeal(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "search <term>",
			Short: "Search recipes by name or ingredient",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.app.Search(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "unused [weeks]",
			Short: "Recipes not used in N weeks (default: 4)",
			Args:  cobra.RangeArgs(0, 1),
			RunE: func(cmd *cobra.Command, args []string) error {
				weeks, err := optionalInt(args, 4)
				if err != nil {
					return err
				}
				return s.app.Unused(cmd.Context(), weeks)
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show store statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return s.app.Stats(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "defer <date>",
			Short: "Mark a meal as deferred",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.app.SetStatus(cmd.Context(), args[0], planner.StatusDeferred)
			},
		},
		&cobra.Command{
			Use:   "made <date>",
			Short: "Mark a meal as made",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return s.app.SetStatus(cmd.Context(), args[0], planner.StatusMade)
			},
		},
		&cobra.Command{
			Use:   "deferred",
			Short: "List all deferred meals",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return s.app.Deferred(cmd.Context())
			},
		},
	)

	return root, s
}

func optionalInt(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("expected a positive number of weeks, got %q", args[0])
	}
	return n, nil
}
