package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-meals/internal/database"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, sess := newRootCmd()
	t.Cleanup(func() { sess.close() })

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func withStore(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "meals.db")
	db, err := database.NewDB(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("MEALS_DB_PATH", dbPath)
	t.Setenv("MEALS_CONTENT_DIR", filepath.Join(dir, "content"))
	t.Chdir(dir)
}

func TestArity(t *testing.T) {
	withStore(t)

	for _, args := range [][]string{
		{"recipe"},
		{"week", "2024-06-03", "extra"},
		{"add-meal", "2024-06-03"},
		{"meals", "1", "2"},
		{"stats", "now"},
	} {
		_, err := execute(t, args...)
		assert.Error(t, err, "args %v", args)
	}
}

func TestMissingStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("MEALS_DB_PATH", filepath.Join(dir, "missing.db"))
	t.Setenv("MEALS_CONTENT_DIR", filepath.Join(dir, "content"))
	t.Chdir(dir)

	_, err := execute(t, "stats")
	require.ErrorIs(t, err, database.ErrStoreMissing)
}

func TestCommands(t *testing.T) {
	withStore(t)

	out, err := execute(t, "recipes")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 0 recipes")

	out, err = execute(t, "deferred")
	require.NoError(t, err)
	assert.Contains(t, out, "No deferred meals.")

	out, err = execute(t, "made", "2024-06-03")
	require.NoError(t, err)
	assert.Contains(t, out, "No meal found for 2024-06-03")

	_, err = execute(t, "unused", "soon")
	require.Error(t, err)
}
