package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"weekly-meals/internal/aggregate"
	"weekly-meals/internal/config"
	"weekly-meals/internal/dateutil"
	"weekly-meals/internal/recipe"
	"weekly-meals/internal/site"
)

// Build renders the static site from source, either the content directory
// or the SQLite store. Content builds validate every file first and refuse
// to render when any file was rejected.
func (a *App) Build(ctx context.Context, source string) (site.Result, error) {
	started := time.Now()

	if source == "" {
		source = a.cfg.Build.Source
	}
	if err := config.ValidateSource(source); err != nil {
		return site.Result{}, err
	}

	var views []aggregate.WeekView
	var err error
	switch source {
	case config.SourceStore:
		views, err = a.storeViews(ctx)
	default:
		views, err = a.contentViews(ctx)
	}
	if err != nil {
		return site.Result{}, err
	}

	r, err := site.NewRenderer(a.cfg.Paths.TemplatesDir, a.cfg.Paths.AssetsDir, a.cfg.Paths.DistDir)
	if err != nil {
		return site.Result{}, err
	}
	res, err := r.Render(views)
	if err != nil {
		return site.Result{}, err
	}

	slog.Info("site built", "source", source, "weeks", len(views), "pages", res.Pages, "assets", res.Assets)
	a.recordRun(ctx, "build", len(views), 0, started)
	return res, nil
}

func (a *App) contentViews(ctx context.Context) ([]aggregate.WeekView, error) {
	report, records, err := a.Validate(ctx)
	if err != nil {
		return nil, err
	}
	if report.HasErrors() {
		return nil, fmt.Errorf("%w: %d rejected", ErrInvalidRecords, len(report.Rejected))
	}
	return aggregate.FromRecords(records), nil
}

func (a *App) storeViews(ctx context.Context) ([]aggregate.WeekView, error) {
	if err := a.requireStore(); err != nil {
		return nil, err
	}

	meals, err := a.mealRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, ErrEmptyStore
	}

	recipes := map[int64]*recipe.Recipe{}
	rows := make([]aggregate.MealRow, 0, len(meals))
	for _, m := range meals {
		rec, ok := recipes[m.RecipeID]
		if !ok {
			rec, err = a.recipeRepo.Get(ctx, m.RecipeID)
			if err != nil {
				return nil, err
			}
			recipes[m.RecipeID] = rec
		}

		row := aggregate.MealRow{
			Date:     m.Date,
			RecipeID: m.RecipeID,
			Name:     m.RecipeName,
			Style:    m.Style,
			Status:   string(m.Status),
		}
		if rec != nil {
			day, err := dateutil.DayName(m.Date)
			if err != nil {
				return nil, err
			}
			detail := rec.Detail(day)
			row.Recipe = &detail
		}
		rows = append(rows, row)
	}

	items, err := a.groceryRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	groceries := make([]aggregate.GroceryRow, 0, len(items))
	for _, it := range items {
		groceries = append(groceries, aggregate.GroceryRow{
			WeekStart: it.WeekStart,
			Category:  it.Category,
			Item:      it.Item,
			Days:      it.Days,
		})
	}

	return aggregate.Aggregate(rows, groceries)
}
