package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"weekly-meals/internal/aggregate"
	"weekly-meals/internal/dateutil"
	"weekly-meals/internal/metrics"
	"weekly-meals/internal/planner"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	statusStyles = map[planner.MealStatus]lipgloss.Style{
		planner.StatusPlanned:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5DA9E9")),
		planner.StatusMade:     lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
		planner.StatusDeferred: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB300")),
	}
)

const recentRuns = 5

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) heading(text string) {
	a.printf("\n%s\n\n", headingStyle.Render(text))
}

func statusLabel(s planner.MealStatus, width int) string {
	label := fmt.Sprintf("%-*s", width, string(s))
	if st, ok := statusStyles[s]; ok {
		return st.Render(label)
	}
	return label
}

// Recipes lists every recipe with how often it was scheduled.
func (a *App) Recipes(ctx context.Context) error {
	if err := a.requireStore(); err != nil {
		return err
	}
	recipes, err := a.recipeRepo.ListWithUsage(ctx)
	if err != nil {
		return err
	}

	a.heading("Recipes:")
	for _, r := range recipes {
		used := mutedStyle.Render("(never used)")
		if r.TimesUsed > 0 {
			used = fmt.Sprintf("(used %dx, last: %s)", r.TimesUsed, r.LastUsed)
		}
		a.printf("  %2d. %s %s\n", r.ID, r.Name, used)
	}
	a.printf("\nTotal: %d recipes\n", len(recipes))
	return nil
}

// Recipe prints one recipe by id and the dates it was scheduled on.
func (a *App) Recipe(ctx context.Context, idArg string) error {
	if err := a.requireStore(); err != nil {
		return err
	}

	id, err := strconv.ParseInt(strings.TrimSpace(idArg), 10, 64)
	if err != nil {
		a.printf("Recipe not found\n")
		return nil
	}
	r, err := a.recipeRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		a.printf("Recipe not found\n")
		return nil
	}

	a.printf("\n%s\n", headingStyle.Render(r.Name))
	a.printf("Style: %s\n", orNA(r.Style))

	a.printf("\nIngredients:\n")
	for _, ing := range r.Ingredients {
		a.printf("  - %s\n", ing)
	}
	if !r.HasProcedure() {
		a.printf("\nInstructions: N/A\n")
	}
	if r.Instructions != "" {
		a.printf("\nInstructions: %s\n", r.Instructions)
	}
	if len(r.PrepSteps) > 0 {
		a.printf("\nPrep Steps:\n")
		for i, step := range r.PrepSteps {
			a.printf("  %d. %s\n", i+1, step)
		}
	}
	if len(r.Tips) > 0 {
		a.printf("\nTips:\n")
		for _, tip := range r.Tips {
			a.printf("  - %s\n", tip)
		}
	}

	dates, err := a.mealRepo.DatesForRecipe(ctx, r.ID)
	if err != nil {
		return err
	}
	if len(dates) > 0 {
		a.printf("\nUsed on: %s\n", strings.Join(dates, ", "))
	}
	return nil
}

// Meals prints the latest weeks*7 meals grouped by week, newest week first.
func (a *App) Meals(ctx context.Context, weeks int) error {
	if err := a.requireStore(); err != nil {
		return err
	}
	if weeks <= 0 {
		weeks = 2
	}

	meals, err := a.mealRepo.ListRecent(ctx, uint64(weeks*7))
	if err != nil {
		return err
	}
	rows := make([]aggregate.MealRow, 0, len(meals))
	for _, m := range meals {
		rows = append(rows, aggregate.MealRow{
			Date:     m.Date,
			RecipeID: m.RecipeID,
			Name:     m.RecipeName,
			Style:    m.Style,
			Status:   string(m.Status),
		})
	}
	views, err := aggregate.Aggregate(rows, nil)
	if err != nil {
		return err
	}

	a.printf("\n%s\n", headingStyle.Render("Recent meals:"))
	for _, v := range views {
		a.printf("\nWeek of %s:\n", v.StartDate)
		for _, m := range v.Meals {
			a.printf("  %-9s %s  %s  %s\n", m.Day, m.Date, statusLabel(planner.MealStatus(m.Status), 8), m.Name)
		}
	}
	return nil
}

// Week prints the Monday-to-Sunday week containing date.
func (a *App) Week(ctx context.Context, date string) error {
	if err := a.requireStore(); err != nil {
		return err
	}
	start, err := dateutil.WeekStart(date)
	if err != nil {
		return err
	}
	end, err := dateutil.EndDate(start)
	if err != nil {
		return err
	}

	meals, err := a.mealRepo.ListRange(ctx, start, end)
	if err != nil {
		return err
	}
	if len(meals) == 0 {
		a.printf("No meals found for week of %s\n", start)
		return nil
	}

	a.heading(fmt.Sprintf("Week of %s:", start))
	for _, m := range meals {
		day, err := dateutil.DayName(m.Date)
		if err != nil {
			return err
		}
		var status string
		if m.Status != planner.StatusPlanned {
			status = " " + statusStyles[m.Status].Render("["+string(m.Status)+"]")
		}
		a.printf("  %-9s %s%s\n", day, m.RecipeName, status)
	}
	return nil
}

// AddMeal schedules a recipe, by id or name, on date.
func (a *App) AddMeal(ctx context.Context, date, recipeRef string) error {
	if err := a.requireStore(); err != nil {
		return err
	}
	if _, err := dateutil.ParseDate(date); err != nil {
		return err
	}

	r, err := a.recipeRepo.Resolve(ctx, recipeRef)
	if err != nil {
		return err
	}
	if r == nil {
		a.printf("Recipe not found\n")
		return nil
	}

	if _, err := a.mealRepo.Add(ctx, r.ID, date); err != nil {
		if errors.Is(err, planner.ErrMealExists) {
			a.printf("A meal already exists for %s\n", date)
			return nil
		}
		return err
	}
	a.printf("Added: %s - %s\n", date, r.Name)
	return nil
}

// Search lists recipes whose name or ingredients contain term.
func (a *App) Search(ctx context.Context, term string) error {
	if err := a.requireStore(); err != nil {
		return err
	}
	recipes, err := a.recipeRepo.Search(ctx, term)
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		a.printf("No recipes found\n")
		return nil
	}

	a.heading(fmt.Sprintf("Found %d recipe(s):", len(recipes)))
	for _, r := range recipes {
		a.printf("  %2d. %s (%s)\n", r.ID, r.Name, orNA(r.Style))
	}
	return nil
}

// Unused lists recipes not made or planned in the last weeks weeks.
func (a *App) Unused(ctx context.Context, weeks int) error {
	if err := a.requireStore(); err != nil {
		return err
	}
	if weeks <= 0 {
		weeks = 4
	}

	cutoff := dateutil.Format(a.now().AddDate(0, 0, -weeks*7))
	recipes, err := a.recipeRepo.Unused(ctx, cutoff)
	if err != nil {
		return err
	}

	a.heading(fmt.Sprintf("Recipes not used in the last %d weeks:", weeks))
	for _, r := range recipes {
		lastUsed := "never used"
		if r.LastUsed != "" {
			lastUsed = "last used: " + r.LastUsed
		}
		a.printf("  %2d. %s (%s)\n", r.ID, r.Name, lastUsed)
	}
	return nil
}

// Stats prints store counters, the most used recipes, data sizes and the
// latest batch runs.
func (a *App) Stats(ctx context.Context) error {
	if err := a.requireStore(); err != nil {
		return err
	}

	recipeCount, err := a.recipeRepo.Count(ctx)
	if err != nil {
		return err
	}
	groceryCount, err := a.groceryRepo.Count(ctx)
	if err != nil {
		return err
	}
	st, err := a.mealRepo.Stats(ctx)
	if err != nil {
		return err
	}

	a.heading("Database Statistics:")
	a.printf("  Recipes: %s\n", humanize.Comma(int64(recipeCount)))
	a.printf("  Meals: %s\n", humanize.Comma(int64(st.Meals)))
	a.printf("  Weeks: %s\n", humanize.Comma(int64(st.Weeks)))
	a.printf("  Grocery items: %s\n", humanize.Comma(int64(groceryCount)))
	for _, s := range planner.Statuses {
		a.printf("  %s: %d\n", statusStyles[s].Render(titleCase(string(s))), st.ByStatus[s])
	}

	top, err := a.recipeRepo.MostUsed(ctx, 5)
	if err != nil {
		return err
	}
	a.printf("\nMost used recipes:\n")
	for _, r := range top {
		a.printf("  %dx %s\n", r.TimesUsed, r.Name)
	}

	health := metrics.GetSysHealth(a.cfg.Paths.ContentDir, a.cfg.Paths.DBPath)
	a.printf("\nData: %s in %d files, memory %s\n", health.DiskSize(), health.DataFiles, health.Memory())

	runs, err := a.metricsStore.Recent(ctx, recentRuns)
	if err != nil {
		return err
	}
	if len(runs) > 0 {
		a.printf("\nRecent runs:\n")
		for _, r := range runs {
			a.printf("  %-16s %-10s accepted %d, rejected %d %s\n",
				r.Command,
				humanize.Time(r.Timestamp),
				r.Accepted,
				r.Rejected,
				mutedStyle.Render("("+r.Duration.String()+")"),
			)
		}
	}
	return nil
}

// SetStatus marks the meal on date with status.
func (a *App) SetStatus(ctx context.Context, date string, status planner.MealStatus) error {
	if err := a.requireStore(); err != nil {
		return err
	}
	if _, err := dateutil.ParseDate(date); err != nil {
		return err
	}

	meal, err := a.mealRepo.SetStatus(ctx, date, status)
	if err != nil {
		return err
	}
	if meal == nil {
		a.printf("No meal found for %s\n", date)
		return nil
	}
	a.printf("Marked as %s: %s - %s\n", status, meal.Date, meal.RecipeName)
	return nil
}

// Deferred lists deferred meals in date order.
func (a *App) Deferred(ctx context.Context) error {
	if err := a.requireStore(); err != nil {
		return err
	}
	meals, err := a.mealRepo.ListByStatus(ctx, planner.StatusDeferred)
	if err != nil {
		return err
	}
	if len(meals) == 0 {
		a.printf("\nNo deferred meals.\n")
		return nil
	}

	a.heading("Deferred meals:")
	for _, m := range meals {
		day, err := dateutil.DayName(m.Date)
		if err != nil {
			return err
		}
		a.printf("  %s (%s) - %s\n", m.Date, day, m.RecipeName)
	}
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
