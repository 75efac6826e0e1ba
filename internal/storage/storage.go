package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"weekly-meals/internal/week"
)

// SchemaFile is kept in the content directory next to the week files and is
// never listed as a week.
const SchemaFile = "week.schema.json"

// WeekStore provides a file-based storage for week records, one
// <startDate>.json file per week.
type WeekStore struct {
	basePath string
}

// NewWeekStore creates a new WeekStore and ensures the base directory exists.
func NewWeekStore(basePath string) (*WeekStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &WeekStore{basePath: basePath}, nil
}

// Dir returns the directory backing the store.
func (s *WeekStore) Dir() string {
	return s.basePath
}

func (s *WeekStore) getPath(startDate string) string {
	return filepath.Join(s.basePath, startDate+".json")
}

// Save writes the record as indented JSON, replacing any previous version of
// the same week in one rename.
func (s *WeekStore) Save(rec week.Record) error {
	if rec.StartDate == "" {
		return fmt.Errorf("cannot save week record without a start date")
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal week record: %w", err)
	}
	return s.WriteFile(filepath.Base(s.getPath(rec.StartDate)), append(data, '\n'))
}

// WriteFile atomically writes name inside the store directory.
func (s *WeekStore) WriteFile(name string, data []byte) error {
	target := filepath.Join(s.basePath, name)

	tmp, err := os.CreateTemp(s.basePath, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions on %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// Exists checks if a week file exists for startDate.
func (s *WeekStore) Exists(startDate string) bool {
	_, err := os.Stat(s.getPath(startDate))
	return !os.IsNotExist(err)
}

// List returns the week file names in ascending order.
func (s *WeekStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list content directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == SchemaFile || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadRaw returns the bytes of a listed file, for validation before decoding.
func (s *WeekStore) ReadRaw(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
