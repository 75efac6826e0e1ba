package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"weekly-meals/internal/schema"
	"weekly-meals/internal/storage"
	"weekly-meals/internal/week"
)

// GenerateReport counts the week files converted by Generate.
type GenerateReport struct {
	Written  []string
	Replaced []string // subset of Written that overwrote an existing file
	Skipped  []string
}

// Generate parses every <YYYY-MM-DD>.txt file in the weeks directory into a
// content JSON file, and refreshes the schema document next to them. Files
// whose name is not a Monday date are skipped with a warning.
func (a *App) Generate(ctx context.Context) (GenerateReport, error) {
	started := time.Now()
	var report GenerateReport

	entries, err := os.ReadDir(a.cfg.Paths.WeeksDir)
	if err != nil {
		return report, fmt.Errorf("failed to list weeks directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		rec, err := week.ParseFile(filepath.Join(a.cfg.Paths.WeeksDir, name))
		if err != nil {
			slog.Warn("skipping week file", "file", name, "error", err)
			report.Skipped = append(report.Skipped, name)
			continue
		}
		out := rec.StartDate + ".json"
		replaced := a.weekStore.Exists(rec.StartDate)
		if err := a.weekStore.Save(rec); err != nil {
			return report, fmt.Errorf("failed to save %s: %w", name, err)
		}
		slog.Info("generated week", "file", name, "start", rec.StartDate, "replaced", replaced,
			"meals", len(rec.Meals), "recipes", len(rec.Recipes), "grocery_categories", len(rec.GroceryList))
		report.Written = append(report.Written, out)
		if replaced {
			report.Replaced = append(report.Replaced, out)
		}
	}

	data, err := json.MarshalIndent(schema.WeekShape.JSONSchema(), "", "  ")
	if err != nil {
		return report, fmt.Errorf("failed to marshal week schema: %w", err)
	}
	if err := a.weekStore.WriteFile(storage.SchemaFile, append(data, '\n')); err != nil {
		return report, err
	}

	a.recordRun(ctx, "generate", len(report.Written), len(report.Skipped), started)
	return report, nil
}
