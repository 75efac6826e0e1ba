package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"weekly-meals/internal/database"
)

var mealColumns = []string{"m.id", "m.recipe_id", "m.date", "m.status", "r.name", "r.style"}

// MealRepository is a database-backed repository for scheduled meals.
type MealRepository struct {
	q database.Querier
}

// NewMealRepository creates a new MealRepository.
func NewMealRepository(q database.Querier) *MealRepository {
	return &MealRepository{q: q}
}

// WithTx returns a repository bound to tx.
func (r *MealRepository) WithTx(tx *sql.Tx) *MealRepository {
	return &MealRepository{q: tx}
}

func selectMeals() sq.SelectBuilder {
	return sq.Select(mealColumns...).
		From("meals m").
		Join("recipes r ON r.id = m.recipe_id")
}

// Add schedules recipeID on date as planned. A date that already has a meal
// yields ErrMealExists.
func (r *MealRepository) Add(ctx context.Context, recipeID int64, date string) (int64, error) {
	query, args, err := sq.Insert("meals").
		Columns("recipe_id", "date").
		Values(recipeID, date).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build meal insert: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrMealExists, date)
		}
		return 0, fmt.Errorf("failed to insert meal: %w", err)
	}
	return res.LastInsertId()
}

// AddIfAbsent schedules recipeID on date unless the date is taken, leaving
// the existing meal and its status untouched. It reports whether a row was
// inserted.
func (r *MealRepository) AddIfAbsent(ctx context.Context, recipeID int64, date string) (bool, error) {
	query, args, err := sq.Insert("meals").
		Columns("recipe_id", "date").
		Values(recipeID, date).
		Suffix("ON CONFLICT(date) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build meal insert: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert meal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// GetByDate retrieves the meal scheduled on date.
func (r *MealRepository) GetByDate(ctx context.Context, date string) (*Meal, error) {
	meals, err := r.list(ctx, selectMeals().Where(sq.Eq{"m.date": date}).Limit(1))
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, nil // No meal on that date
	}
	return &meals[0], nil
}

// SetStatus changes the status of the meal on date and returns the updated
// meal, or nil when the date has no meal.
func (r *MealRepository) SetStatus(ctx context.Context, date string, status MealStatus) (*Meal, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	meal, err := r.GetByDate(ctx, date)
	if err != nil || meal == nil {
		return nil, err
	}

	query, args, err := sq.Update("meals").
		Set("status", string(status)).
		Where(sq.Eq{"id": meal.ID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build status update: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update meal status: %w", err)
	}

	meal.Status = status
	return meal, nil
}

// ListRecent returns the latest limit meals, newest first.
func (r *MealRepository) ListRecent(ctx context.Context, limit uint64) ([]Meal, error) {
	return r.list(ctx, selectMeals().OrderBy("m.date DESC").Limit(limit))
}

// ListRange returns meals with from <= date <= to in date order.
func (r *MealRepository) ListRange(ctx context.Context, from, to string) ([]Meal, error) {
	return r.list(ctx, selectMeals().
		Where(sq.GtOrEq{"m.date": from}).
		Where(sq.LtOrEq{"m.date": to}).
		OrderBy("m.date"))
}

// ListAll returns every meal in date order.
func (r *MealRepository) ListAll(ctx context.Context) ([]Meal, error) {
	return r.list(ctx, selectMeals().OrderBy("m.date"))
}

// ListByStatus returns meals with status in date order.
func (r *MealRepository) ListByStatus(ctx context.Context, status MealStatus) ([]Meal, error) {
	return r.list(ctx, selectMeals().Where(sq.Eq{"m.status": string(status)}).OrderBy("m.date"))
}

// DatesForRecipe returns the dates recipeID was scheduled, newest first.
func (r *MealRepository) DatesForRecipe(ctx context.Context, recipeID int64) ([]string, error) {
	query, args, err := sq.Select("date").
		From("meals").
		Where(sq.Eq{"recipe_id": recipeID}).
		OrderBy("date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build dates query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan meal date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Stats holds the meal counters shown by the stats command.
type Stats struct {
	Meals    int
	Weeks    int
	ByStatus map[MealStatus]int
}

// Stats counts meals, distinct Monday-based weeks and meals per status.
func (r *MealRepository) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByStatus: map[MealStatus]int{}}

	query, args, err := sq.Select(
		"COUNT(*)",
		"COUNT(DISTINCT date(date, 'weekday 0', '-6 days'))",
	).From("meals").ToSql()
	if err != nil {
		return st, fmt.Errorf("failed to build stats query: %w", err)
	}
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&st.Meals, &st.Weeks); err != nil {
		return st, fmt.Errorf("failed to count meals: %w", err)
	}

	query, args, err = sq.Select("status", "COUNT(*)").From("meals").GroupBy("status").ToSql()
	if err != nil {
		return st, fmt.Errorf("failed to build status query: %w", err)
	}
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return st, fmt.Errorf("failed to count meals by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return st, fmt.Errorf("failed to scan status count: %w", err)
		}
		st.ByStatus[MealStatus(status)] = n
	}
	return st, rows.Err()
}

func (r *MealRepository) list(ctx context.Context, b sq.SelectBuilder) ([]Meal, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build meal query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	var meals []Meal
	for rows.Next() {
		var m Meal
		var status string
		if err := rows.Scan(&m.ID, &m.RecipeID, &m.Date, &status, &m.RecipeName, &m.Style); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		if m.Status, err = ParseStatus(status); err != nil {
			return nil, fmt.Errorf("meal on %s: %w", m.Date, err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
