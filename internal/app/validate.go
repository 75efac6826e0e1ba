package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"weekly-meals/internal/schema"
	"weekly-meals/internal/week"
)

// Rejection names a content file that failed validation and why.
type Rejection struct {
	File   string
	Errors []schema.FieldError
}

// Report is the outcome of validating the content directory.
type Report struct {
	Accepted []string
	Rejected []Rejection
}

// HasErrors reports whether any file was rejected.
func (r Report) HasErrors() bool {
	return len(r.Rejected) > 0
}

// Validate checks every content file against the week shape. One bad file
// never stops the batch: it is logged, listed in the report and left out of
// the returned records. Records come back newest first.
func (a *App) Validate(ctx context.Context) (Report, []week.Record, error) {
	started := time.Now()
	var report Report

	names, err := a.weekStore.List()
	if err != nil {
		return report, nil, err
	}

	var records []week.Record
	// Newest first, so the batch log reads in site order.
	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]

		data, err := a.weekStore.ReadRaw(name)
		if err != nil {
			return report, nil, err
		}

		res, err := schema.ValidateWeek(data)
		if err != nil {
			res = schema.Result{Errors: []schema.FieldError{{Message: err.Error()}}}
		}

		var rec week.Record
		if res.Valid {
			if err := json.Unmarshal(data, &rec); err != nil {
				res = schema.Result{Errors: []schema.FieldError{{Message: err.Error()}}}
			}
		}

		if !res.Valid {
			slog.Error("validation failed", "file", name, "errors", errorStrings(res.Errors))
			report.Rejected = append(report.Rejected, Rejection{File: name, Errors: res.Errors})
			continue
		}

		slog.Info("validated", "file", name)
		report.Accepted = append(report.Accepted, name)
		records = append(records, rec)
	}

	slog.Info("validation complete", "accepted", len(report.Accepted), "rejected", len(report.Rejected))
	a.recordRun(ctx, "validate", len(report.Accepted), len(report.Rejected), started)
	return report, records, nil
}

func errorStrings(errs []schema.FieldError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.String()
	}
	return out
}
