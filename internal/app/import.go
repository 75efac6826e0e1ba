package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"weekly-meals/internal/dateutil"
	"weekly-meals/internal/recipe"
	"weekly-meals/internal/week"
)

// ImportReport counts what Import wrote to the store.
type ImportReport struct {
	Weeks        int
	Recipes      int
	MealsAdded   int
	MealsKept    int
	MealsSkipped int
	GroceryItems int
	Rejected     int
}

// Import persists every valid content record into the SQLite store. Each
// week is written in its own transaction. Rejected files are left out and
// counted; they do not stop the import.
func (a *App) Import(ctx context.Context) (ImportReport, error) {
	started := time.Now()
	var report ImportReport

	if err := a.requireStore(); err != nil {
		return report, err
	}

	validation, records, err := a.Validate(ctx)
	if err != nil {
		return report, err
	}
	report.Rejected = len(validation.Rejected)

	// Oldest week first, so later weeks win recipe upserts.
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		err := a.db.WithTx(ctx, func(tx *sql.Tx) error {
			return a.importWeek(ctx, tx, rec, &report)
		})
		if err != nil {
			return report, fmt.Errorf("failed to import week %s: %w", rec.StartDate, err)
		}
		report.Weeks++
		slog.Info("imported week", "start", rec.StartDate, "meals", len(rec.Meals))
	}

	slog.Info("import complete",
		"weeks", report.Weeks,
		"meals_added", report.MealsAdded,
		"meals_kept", report.MealsKept,
		"grocery_items", report.GroceryItems,
		"rejected", report.Rejected,
	)
	a.recordRun(ctx, "import", report.Weeks, report.Rejected, started)
	return report, nil
}

func (a *App) importWeek(ctx context.Context, tx *sql.Tx, rec week.Record, report *ImportReport) error {
	recipes := a.recipeRepo.WithTx(tx)
	meals := a.mealRepo.WithTx(tx)
	groceries := a.groceryRepo.WithTx(tx)

	for _, m := range rec.Meals {
		offset, ok := dateutil.DayOffset(m.Day)
		if !ok || strings.TrimSpace(m.Meal) == "" {
			slog.Debug("skipping meal row", "start", rec.StartDate, "day", m.Day, "meal", m.Meal)
			report.MealsSkipped++
			continue
		}
		date, err := dateutil.AddDays(rec.StartDate, offset)
		if err != nil {
			return err
		}

		id, err := recipes.Upsert(ctx, recipe.FromWeek(m, detailFor(rec.Recipes, m.Day)))
		if err != nil {
			return err
		}
		report.Recipes++

		added, err := meals.AddIfAbsent(ctx, id, date)
		if err != nil {
			return err
		}
		if added {
			report.MealsAdded++
		} else {
			report.MealsKept++
		}
	}

	n, err := groceries.ReplaceWeek(ctx, rec.StartDate, rec.GroceryList)
	if err != nil {
		return err
	}
	report.GroceryItems += n
	return nil
}

func detailFor(details []week.RecipeDetail, day string) *week.RecipeDetail {
	for i := range details {
		if strings.EqualFold(details[i].Day, day) {
			return &details[i]
		}
	}
	return nil
}
