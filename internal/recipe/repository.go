package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"

	"weekly-meals/internal/database"
)

const table = "recipes"

var columns = []string{"r.id", "r.name", "r.style", "r.ingredients", "r.instructions", "r.prep_steps", "r.tips"}

// Repository is a database-backed repository for recipes.
type Repository struct {
	q database.Querier
}

// NewRepository creates a new Repository.
func NewRepository(q database.Querier) *Repository {
	return &Repository{q: q}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *sql.Tx) *Repository {
	return &Repository{q: tx}
}

// Upsert inserts a recipe or refreshes the stored one with the same name,
// returning its id. An update never clears a stored procedure with an empty
// one.
func (r *Repository) Upsert(ctx context.Context, rec Recipe) (int64, error) {
	ingredients, prepSteps, tips, err := encodeLists(rec)
	if err != nil {
		return 0, err
	}

	query, args, err := sq.Insert(table).
		Columns("name", "style", "ingredients", "instructions", "prep_steps", "tips").
		Values(rec.Name, rec.Style, ingredients, rec.Instructions, prepSteps, tips).
		Suffix(`ON CONFLICT(name) DO UPDATE SET
			style = CASE WHEN excluded.style != '' THEN excluded.style ELSE recipes.style END,
			ingredients = CASE WHEN excluded.ingredients != '[]' THEN excluded.ingredients ELSE recipes.ingredients END,
			instructions = CASE WHEN excluded.instructions != '' OR excluded.prep_steps != '[]' THEN excluded.instructions ELSE recipes.instructions END,
			prep_steps = CASE WHEN excluded.instructions != '' OR excluded.prep_steps != '[]' THEN excluded.prep_steps ELSE recipes.prep_steps END,
			tips = CASE WHEN excluded.tips != '[]' THEN excluded.tips ELSE recipes.tips END
		RETURNING id`).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build recipe upsert: %w", err)
	}

	var id int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert recipe %q: %w", rec.Name, err)
	}
	return id, nil
}

// Get retrieves a recipe by its ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Recipe, error) {
	return r.getOne(ctx, sq.Eq{"r.id": id})
}

// GetByName retrieves a recipe by exact name, ignoring case.
func (r *Repository) GetByName(ctx context.Context, name string) (*Recipe, error) {
	return r.getOne(ctx, sq.Expr("r.name = ? COLLATE NOCASE", name))
}

// Resolve finds a recipe from a CLI argument: an all-digit argument is an
// id, anything else an exact name and then the first partial name match.
func (r *Repository) Resolve(ctx context.Context, idOrName string) (*Recipe, error) {
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		return r.Get(ctx, id)
	}

	rec, err := r.GetByName(ctx, idOrName)
	if err != nil || rec != nil {
		return rec, err
	}
	return r.getOne(ctx, sq.Like{"r.name": "%" + idOrName + "%"})
}

func (r *Repository) getOne(ctx context.Context, where sq.Sqlizer) (*Recipe, error) {
	query, args, err := sq.Select(columns...).
		From(table + " r").
		Where(where).
		OrderBy("r.name").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recipe query: %w", err)
	}

	rec, err := scanRecipe(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Recipe not found
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return rec, nil
}

// Search returns recipes whose name or ingredients contain term.
func (r *Repository) Search(ctx context.Context, term string) ([]Recipe, error) {
	pattern := "%" + term + "%"
	query, args, err := sq.Select(columns...).
		From(table + " r").
		Where(sq.Or{sq.Like{"r.name": pattern}, sq.Like{"r.ingredients": pattern}}).
		OrderBy("r.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recipe search: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, *rec)
	}
	return recipes, rows.Err()
}

// ListWithUsage returns every recipe by name with its meal count and last
// meal date.
func (r *Repository) ListWithUsage(ctx context.Context) ([]Usage, error) {
	return r.usage(ctx, usageQuery(false).OrderBy("r.name"))
}

// Unused returns recipes with no meal on or after cutoff, least recently
// used first. Deferred meals do not count as use.
func (r *Repository) Unused(ctx context.Context, cutoff string) ([]Usage, error) {
	q := usageQuery(true).
		Having("last_used < ?", cutoff).
		OrderBy("last_used", "r.name")
	return r.usage(ctx, q)
}

// MostUsed returns the top recipes by non-deferred meal count.
func (r *Repository) MostUsed(ctx context.Context, limit uint64) ([]Usage, error) {
	q := usageQuery(true).
		Having("times_used > 0").
		OrderBy("times_used DESC", "r.name").
		Limit(limit)
	return r.usage(ctx, q)
}

func usageQuery(skipDeferred bool) sq.SelectBuilder {
	join := "meals m ON r.id = m.recipe_id"
	if skipDeferred {
		join += " AND m.status != 'deferred'"
	}
	// A never-used recipe reports last_used as '', which sorts before any date.
	cols := append(append([]string{}, columns...), "COUNT(m.id) AS times_used", "COALESCE(MAX(m.date), '') AS last_used")
	return sq.Select(cols...).
		From(table + " r").
		LeftJoin(join).
		GroupBy("r.id")
}

func (r *Repository) usage(ctx context.Context, b sq.SelectBuilder) ([]Usage, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build usage query: %w", err)
	}
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe usage: %w", err)
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		var ingredients, prepSteps, tips string
		if err := rows.Scan(&u.ID, &u.Name, &u.Style, &ingredients, &u.Instructions, &prepSteps, &tips, &u.TimesUsed, &u.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan recipe usage: %w", err)
		}
		if err := decodeLists(&u.Recipe, ingredients, prepSteps, tips); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the number of recipes in the database.
func (r *Repository) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var count int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s scanner) (*Recipe, error) {
	var rec Recipe
	var ingredients, prepSteps, tips string
	if err := s.Scan(&rec.ID, &rec.Name, &rec.Style, &ingredients, &rec.Instructions, &prepSteps, &tips); err != nil {
		return nil, err
	}
	if err := decodeLists(&rec, ingredients, prepSteps, tips); err != nil {
		return nil, err
	}
	return &rec, nil
}

func encodeLists(rec Recipe) (ingredients, prepSteps, tips string, err error) {
	enc := func(v []string) (string, error) {
		if v == nil {
			v = []string{}
		}
		b, err := json.Marshal(v)
		return string(b), err
	}
	if ingredients, err = enc(rec.Ingredients); err != nil {
		return "", "", "", fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	if prepSteps, err = enc(rec.PrepSteps); err != nil {
		return "", "", "", fmt.Errorf("failed to marshal prep steps: %w", err)
	}
	if tips, err = enc(rec.Tips); err != nil {
		return "", "", "", fmt.Errorf("failed to marshal tips: %w", err)
	}
	return ingredients, prepSteps, tips, nil
}

func decodeLists(rec *Recipe, ingredients, prepSteps, tips string) error {
	if err := json.Unmarshal([]byte(ingredients), &rec.Ingredients); err != nil {
		return fmt.Errorf("failed to unmarshal ingredients of recipe %d: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(prepSteps), &rec.PrepSteps); err != nil {
		return fmt.Errorf("failed to unmarshal prep steps of recipe %d: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(tips), &rec.Tips); err != nil {
		return fmt.Errorf("failed to unmarshal tips of recipe %d: %w", rec.ID, err)
	}
	if len(rec.PrepSteps) == 0 {
		rec.PrepSteps = nil
	}
	if len(rec.Tips) == 0 {
		rec.Tips = nil
	}
	return nil
}
