package shopping

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"weekly-meals/internal/database"
	"weekly-meals/internal/week"
)

// Repository handles persistence of grocery items.
type Repository struct {
	q database.Querier
}

// NewRepository creates a new grocery item repository.
func NewRepository(q database.Querier) *Repository {
	return &Repository{q: q}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{q: tx}
}

// ReplaceWeek deletes the stored grocery items of weekStart and inserts list
// in its category order. It returns the number of items written.
func (r *Repository) ReplaceWeek(ctx context.Context, weekStart string, list week.GroceryList) (int, error) {
	if err := r.DeleteWeek(ctx, weekStart); err != nil {
		return 0, err
	}

	insert := sq.Insert("grocery_items").Columns("week_start", "category", "item", "days", "position")
	n := 0
	for _, c := range list {
		for _, it := range c.Items {
			insert = insert.Values(weekStart, c.Category, it.Item, it.Days, n)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build grocery insert: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("failed to insert grocery items: %w", err)
	}
	return n, nil
}

// DeleteWeek removes all grocery items of weekStart.
func (r *Repository) DeleteWeek(ctx context.Context, weekStart string) error {
	query, args, err := sq.Delete("grocery_items").Where(sq.Eq{"week_start": weekStart}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build grocery delete: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete grocery items for week %s: %w", weekStart, err)
	}
	return nil
}

// ListAll returns every stored item ordered by week and position.
func (r *Repository) ListAll(ctx context.Context) ([]Item, error) {
	query, args, err := sq.Select("id", "week_start", "category", "item", "days", "position").
		From("grocery_items").
		OrderBy("week_start", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grocery query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list grocery items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.WeekStart, &it.Category, &it.Item, &it.Days, &it.Position); err != nil {
			return nil, fmt.Errorf("failed to scan grocery item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Count returns the number of stored grocery items.
func (r *Repository) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("grocery_items").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count grocery items: %w", err)
	}
	return n, nil
}
