package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-meals/internal/config"
)

func weekPage(t *testing.T, a *App, start string) *goquery.Document {
	t.Helper()
	f, err := os.Open(filepath.Join(a.cfg.Paths.DistDir, "week", start, "index.html"))
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func TestBuild_Content(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)
	_, err := a.Generate(ctx)
	require.NoError(t, err)

	res, err := a.Build(ctx, config.SourceContent)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)

	doc := weekPage(t, a, fixtureWeek)
	assert.Equal(t, "Jun 3–9, 2024", strings.TrimSpace(doc.Find("h1").Text()))
	assert.Equal(t, 4, doc.Find("table.meals tbody tr").Length())
	assert.Equal(t, 3, doc.Find("article.recipe").Length())
	assert.Equal(t, 2, doc.Find(".grocery-category").Length())
}

func TestBuild_ContentWithRejectedFile(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)
	_, err := a.Generate(ctx)
	require.NoError(t, err)
	require.NoError(t, a.weekStore.WriteFile("2024-06-10.json", []byte(`{"startDate":"2024-06-10"}`)))

	_, err = a.Build(ctx, config.SourceContent)
	require.ErrorIs(t, err, ErrInvalidRecords)

	_, statErr := os.Stat(filepath.Join(a.cfg.Paths.DistDir, "index.html"))
	assert.True(t, os.IsNotExist(statErr), "nothing is rendered when a file is rejected")
}

func TestBuild_Store(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		a, _ := newTestApp(t)
		require.NoError(t, a.OpenStore(false))
		_, err := a.Build(ctx, config.SourceStore)
		require.ErrorIs(t, err, ErrEmptyStore)
	})

	t.Run("Imported", func(t *testing.T) {
		a := importedApp(t)
		pork, err := a.recipeRepo.GetByName(ctx, "Pulled Pork")
		require.NoError(t, err)
		require.NotNil(t, pork)
		_, err = a.mealRepo.Add(ctx, pork.ID, "2024-06-10")
		require.NoError(t, err)

		res, err := a.Build(ctx, config.SourceStore)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Pages)

		doc := weekPage(t, a, fixtureWeek)
		assert.Equal(t, 4, doc.Find("table.meals tbody tr").Length())
		assert.Equal(t, 4, doc.Find("article.recipe").Length())
		assert.Equal(t, 6, doc.Find(".copy-btn").Length())

		next := weekPage(t, a, "2024-06-10")
		assert.Equal(t, 1, next.Find("article.recipe").Length())
		assert.Zero(t, next.Find(".grocery-category").Length())
	})

	t.Run("UnknownSource", func(t *testing.T) {
		a, _ := newTestApp(t)
		_, err := a.Build(ctx, "ftp")
		require.Error(t, err)
	})
}
