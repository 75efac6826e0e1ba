package app

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-meals/internal/planner"
)

func cliApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	a := importedApp(t)
	var out bytes.Buffer
	a.SetOutput(&out)
	return a, &out
}

func TestCLI_Recipes(t *testing.T) {
	ctx := context.Background()
	a, out := cliApp(t)

	require.NoError(t, a.Recipes(ctx))
	assert.Contains(t, out.String(), "Chicken Tacos (used 1x, last: 2024-06-03)")
	assert.Contains(t, out.String(), "Total: 4 recipes")

	t.Run("Recipe", func(t *testing.T) {
		stirFry, err := a.recipeRepo.GetByName(ctx, "Beef Stir Fry")
		require.NoError(t, err)

		out.Reset()
		require.NoError(t, a.Recipe(ctx, "  "+strconv.FormatInt(stirFry.ID, 10)))
		assert.Contains(t, out.String(), "Style: Asian")
		assert.Contains(t, out.String(), "  - 2 cups broccoli")
		assert.Contains(t, out.String(), "Instructions: Toss with sauce and serve over rice")
		assert.Contains(t, out.String(), "Used on: 2024-06-04")
	})

	t.Run("RecipeWithoutProcedure", func(t *testing.T) {
		leftovers, err := a.recipeRepo.GetByName(ctx, "Leftovers")
		require.NoError(t, err)

		out.Reset()
		require.NoError(t, a.Recipe(ctx, strconv.FormatInt(leftovers.ID, 10)))
		assert.Contains(t, out.String(), "Style: N/A")
		assert.Contains(t, out.String(), "Instructions: N/A")
	})

	t.Run("RecipeNotFound", func(t *testing.T) {
		for _, arg := range []string{"999", "tacos"} {
			out.Reset()
			require.NoError(t, a.Recipe(ctx, arg))
			assert.Equal(t, "Recipe not found\n", out.String())
		}
	})

	t.Run("Search", func(t *testing.T) {
		out.Reset()
		require.NoError(t, a.Search(ctx, "broccoli"))
		assert.Contains(t, out.String(), "Found 1 recipe(s):")
		assert.Contains(t, out.String(), "Beef Stir Fry (Asian)")

		out.Reset()
		require.NoError(t, a.Search(ctx, "tofu"))
		assert.Equal(t, "No recipes found\n", out.String())
	})
}

func TestCLI_AddMeal(t *testing.T) {
	ctx := context.Background()
	a, out := cliApp(t)

	require.NoError(t, a.AddMeal(ctx, "2024-06-07", "pulled"))
	assert.Equal(t, "Added: 2024-06-07 - Pulled Pork\n", out.String())

	out.Reset()
	require.NoError(t, a.AddMeal(ctx, "2024-06-03", "Pulled Pork"))
	assert.Equal(t, "A meal already exists for 2024-06-03\n", out.String())

	out.Reset()
	require.NoError(t, a.AddMeal(ctx, "2024-06-08", "Lasagna"))
	assert.Equal(t, "Recipe not found\n", out.String())

	require.Error(t, a.AddMeal(ctx, "June 8", "Pulled Pork"))
}

func TestCLI_StatusChanges(t *testing.T) {
	ctx := context.Background()
	a, out := cliApp(t)

	require.NoError(t, a.Deferred(ctx))
	assert.Equal(t, "\nNo deferred meals.\n", out.String())

	out.Reset()
	require.NoError(t, a.SetStatus(ctx, "2024-06-04", planner.StatusDeferred))
	assert.Equal(t, "Marked as deferred: 2024-06-04 - Beef Stir Fry\n", out.String())

	out.Reset()
	require.NoError(t, a.SetStatus(ctx, "2024-06-03", planner.StatusMade))
	assert.Equal(t, "Marked as made: 2024-06-03 - Chicken Tacos\n", out.String())

	out.Reset()
	require.NoError(t, a.SetStatus(ctx, "2024-06-20", planner.StatusMade))
	assert.Equal(t, "No meal found for 2024-06-20\n", out.String())

	out.Reset()
	require.NoError(t, a.Deferred(ctx))
	assert.Contains(t, out.String(), "2024-06-04 (Tuesday) - Beef Stir Fry")

	out.Reset()
	require.NoError(t, a.Week(ctx, fixtureWeek))
	assert.Contains(t, out.String(), "Week of 2024-06-03:")
	assert.Contains(t, out.String(), "Beef Stir Fry")
	assert.Contains(t, out.String(), "[deferred]")
	assert.Contains(t, out.String(), "[made]")

	t.Run("UnusedSkipsDeferred", func(t *testing.T) {
		out.Reset()
		require.NoError(t, a.Unused(ctx, 4))
		assert.Contains(t, out.String(), "Recipes not used in the last 4 weeks:")
		assert.Contains(t, out.String(), "Beef Stir Fry (never used)")
		assert.NotContains(t, out.String(), "Chicken Tacos")
	})
}

func TestCLI_MealsAndWeek(t *testing.T) {
	ctx := context.Background()
	a, out := cliApp(t)

	require.NoError(t, a.Meals(ctx, 0))
	assert.Contains(t, out.String(), "Week of 2024-06-03:")
	assert.Contains(t, out.String(), "Wednesday 2024-06-05")
	assert.Contains(t, out.String(), "Pulled Pork")

	out.Reset()
	require.NoError(t, a.Week(ctx, "2024-06-10"))
	assert.Equal(t, "No meals found for week of 2024-06-10\n", out.String())

	t.Run("MidWeekDate", func(t *testing.T) {
		out.Reset()
		require.NoError(t, a.Week(ctx, "2024-06-05"))
		assert.Contains(t, out.String(), "Week of 2024-06-03:")
		assert.Contains(t, out.String(), "Chicken Tacos")
		assert.Contains(t, out.String(), "Pulled Pork")
	})

	require.Error(t, a.Week(ctx, "next week"))
}

func TestCLI_Stats(t *testing.T) {
	ctx := context.Background()
	a, out := cliApp(t)

	require.NoError(t, a.Stats(ctx))
	s := out.String()
	assert.Contains(t, s, "Recipes: 4")
	assert.Contains(t, s, "Meals: 4")
	assert.Contains(t, s, "Weeks: 1")
	assert.Contains(t, s, "Grocery items: 6")
	assert.Contains(t, s, "Most used recipes:")
	assert.Contains(t, s, "1x Beef Stir Fry")
	assert.Contains(t, s, "Recent runs:")
	assert.Contains(t, s, "import")
}
