package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"weekly-meals/internal/config"
	"weekly-meals/internal/database"
	"weekly-meals/internal/metrics"
	"weekly-meals/internal/planner"
	"weekly-meals/internal/recipe"
	"weekly-meals/internal/shopping"
	"weekly-meals/internal/storage"
)

var (
	// ErrEmptyStore aborts a store-sourced build that finds no meals.
	ErrEmptyStore = errors.New("meal store has no meals")
	// ErrInvalidRecords is returned once a batch finished with rejected records.
	ErrInvalidRecords = errors.New("some week records failed validation")
	// ErrStoreClosed guards store operations before OpenStore.
	ErrStoreClosed = errors.New("meal store is not open")
)

// App holds the application's dependencies.
type App struct {
	cfg       *config.Config
	weekStore *storage.WeekStore
	out       io.Writer
	now       func() time.Time

	// Set by OpenStore.
	db           *database.DB
	recipeRepo   *recipe.Repository
	mealRepo     *planner.MealRepository
	groceryRepo  *shopping.Repository
	metricsStore *metrics.Store
}

// NewApp creates an App over the configured content directory. The SQLite
// store is opened separately with OpenStore.
func NewApp(cfg *config.Config) (*App, error) {
	weekStore, err := storage.NewWeekStore(cfg.Paths.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open content store: %w", err)
	}
	return &App{
		cfg:       cfg,
		weekStore: weekStore,
		out:       os.Stdout,
		now:       time.Now,
	}, nil
}

// SetOutput redirects CLI output, stdout by default.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// OpenStore opens the SQLite store. With mustExist a missing database file
// fails with database.ErrStoreMissing instead of being created.
func (a *App) OpenStore(mustExist bool) error {
	if a.db != nil {
		return nil
	}

	open := database.NewDB
	if mustExist {
		open = database.OpenExisting
	}
	db, err := open(a.cfg.Paths.DBPath)
	if err != nil {
		return err
	}

	a.db = db
	a.recipeRepo = recipe.NewRepository(db.SQL)
	a.mealRepo = planner.NewMealRepository(db.SQL)
	a.groceryRepo = shopping.NewRepository(db.SQL)
	a.metricsStore = metrics.NewStore(db.SQL)
	return nil
}

// OpenStoreIfExists opens the store only when the database file is already
// there. Commands that merely record run metrics use it so they never create
// an empty store.
func (a *App) OpenStoreIfExists() error {
	err := a.OpenStore(true)
	if errors.Is(err, database.ErrStoreMissing) {
		slog.Debug("meal store not found, run metrics are not recorded", "path", a.cfg.Paths.DBPath)
		return nil
	}
	return err
}

// Close releases the store handle. It is safe to call more than once.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *App) requireStore() error {
	if a.db == nil {
		return ErrStoreClosed
	}
	return nil
}

// recordRun stores a run metric when the store is open. Failures only warn.
func (a *App) recordRun(ctx context.Context, command string, accepted, rejected int, started time.Time) {
	if a.metricsStore == nil {
		return
	}
	err := a.metricsStore.Record(ctx, metrics.RunMetric{
		Command:  command,
		Accepted: accepted,
		Rejected: rejected,
		Duration: time.Since(started),
	})
	if err != nil {
		slog.Warn("failed to record run metric", "command", command, "error", err)
	}
}

// CleanupMetrics deletes run metrics older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	if err := a.requireStore(); err != nil {
		return 0, err
	}
	if days <= 0 {
		days = a.cfg.Metrics.RetentionDays
	}
	n, err := a.metricsStore.Cleanup(ctx, days)
	if err != nil {
		return 0, err
	}
	slog.Info("cleaned up run metrics", "deleted", n, "older_than_days", days)
	return n, nil
}
