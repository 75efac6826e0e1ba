package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-meals/internal/database"
)

func TestStore_RecordAndCleanup(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "meals.db"))
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db.SQL)

	old := RunMetric{Command: "build", Accepted: 3, Timestamp: time.Now().UTC().AddDate(0, 0, -40)}
	fresh := RunMetric{Command: "validate", Accepted: 2, Rejected: 1, Duration: 1500 * time.Millisecond}
	require.NoError(t, store.Record(ctx, old))
	require.NoError(t, store.Record(ctx, fresh))

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "validate", recent[0].Command)
	assert.Equal(t, 1, recent[0].Rejected)
	assert.Equal(t, 1500*time.Millisecond, recent[0].Duration)
	assert.False(t, recent[0].Timestamp.IsZero())

	deleted, err := store.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	recent, err = store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "validate", recent[0].Command)
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), make([]byte, 1000), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.json"), make([]byte, 500), 0644))

	h := GetSysHealth(dir, filepath.Join(dir, "missing"))
	assert.Equal(t, uint64(1500), h.DataDiskSize)
	assert.Equal(t, 2, h.DataFiles)
	assert.Equal(t, "1.5 kB", h.DiskSize())
	assert.NotEmpty(t, h.Memory())
}
