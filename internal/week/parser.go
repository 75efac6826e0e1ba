package week

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"weekly-meals/internal/dateutil"
)

const (
	borderGlyph   = "│"
	ruleGlyph     = "─"
	sectionRule   = "---"
	listPrefix    = "- "
	recipesHeader = "Recipes"
	groceryHeader = "Grocery List"
)

var (
	recipeHeaderRe = regexp.MustCompile(`^(\w+day)\s+—\s+(.+)`)
	instructionRe  = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(cook|sear|sauté|saute|serve|place|slow cooker|shred|stir|grill|roast|marinate|brown|melt|toss)(?:[^\p{L}\p{N}_]|$)`)
	groceryDaysRe  = regexp.MustCompile(`^(.+?)\s+—\s+(.+)$`)
)

// Sub-list labels whose lines stay ingredients even when they mention a
// cooking verb ("Toppings: ... serve with lime").
var ingredientLabels = []string{"Toppings:", "Sauce:", "Marinade:", "Slaw:"}

// Parse converts a plain-text week file into a Record without dates; the
// caller attaches them with SetStartDate. Lines that fit no pattern are
// dropped and missing sections come back empty, so Parse never fails.
func Parse(text string) Record {
	lines := splitLines(text)

	recipesAt := indexWithPrefix(lines, recipesHeader)
	groceryAt := indexWithPrefix(lines, groceryHeader)

	return Record{
		Meals:       parseMeals(lines[:tableEnd(len(lines), recipesAt, groceryAt)]),
		Recipes:     parseRecipes(recipeSection(lines, recipesAt, groceryAt)),
		GroceryList: parseGroceries(grocerySection(lines, groceryAt)),
	}
}

// ParseFile parses a week file named <YYYY-MM-DD>.txt and attaches the dates
// taken from its name. The key must be a Monday.
func ParseFile(path string) (Record, error) {
	start, err := StartDateFromName(path)
	if err != nil {
		return Record{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read week file: %w", err)
	}

	rec := Parse(string(data))
	if err := rec.SetStartDate(start); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// StartDateFromName extracts the Monday week key from a file name such as
// "weeks/2024-06-03.txt".
func StartDateFromName(path string) (string, error) {
	base := filepath.Base(path)
	key := strings.TrimSuffix(base, filepath.Ext(base))

	t, err := dateutil.ParseDate(key)
	if err != nil {
		return "", fmt.Errorf("week file %s: %w", base, err)
	}
	if day := t.Weekday().String(); day != "Monday" {
		return "", fmt.Errorf("week file %s: start date falls on %s, want Monday", base, day)
	}
	return key, nil
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func indexWithPrefix(lines []string, prefix string) int {
	for i, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return i
		}
	}
	return -1
}

// tableEnd bounds the meal table to the lines above the first section header.
func tableEnd(n int, headers ...int) int {
	end := n
	for _, h := range headers {
		if h >= 0 && h < end {
			end = h
		}
	}
	return end
}

func recipeSection(lines []string, recipesAt, groceryAt int) []string {
	if recipesAt < 0 {
		return nil
	}
	end := len(lines)
	if groceryAt >= 0 {
		end = groceryAt
	}
	if end <= recipesAt+1 {
		return nil
	}
	return lines[recipesAt+1 : end]
}

func grocerySection(lines []string, groceryAt int) []string {
	if groceryAt < 0 {
		return nil
	}
	return lines[groceryAt+1:]
}

func parseMeals(lines []string) []MealEntry {
	meals := []MealEntry{}
	for _, line := range lines {
		if !strings.HasPrefix(line, borderGlyph) || isHeaderRow(line) {
			continue
		}
		cols := splitRow(line)
		if len(cols) < 3 || cols[0] == "" || strings.Contains(cols[0], ruleGlyph) {
			continue
		}
		meals = append(meals, MealEntry{Day: cols[0], Meal: cols[1], Style: cols[2]})
	}
	return meals
}

func isHeaderRow(line string) bool {
	return strings.Contains(line, "Day") && strings.Contains(line, "Meal") && strings.Contains(line, "Style")
}

// splitRow drops the leading border and one trailing border, then splits
// the remaining cells.
func splitRow(line string) []string {
	row := strings.TrimPrefix(line, borderGlyph)
	row = strings.TrimRight(row, " \t")
	row = strings.TrimSuffix(row, borderGlyph)

	cols := strings.Split(row, borderGlyph)
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols
}

func parseRecipes(lines []string) []RecipeDetail {
	recipes := []RecipeDetail{}
	var current *RecipeDetail

	commit := func() {
		if current != nil {
			recipes = append(recipes, *current)
			current = nil
		}
	}

	for _, line := range lines {
		if line == sectionRule || strings.TrimSpace(line) == "" {
			commit()
			continue
		}

		if m := recipeHeaderRe.FindStringSubmatch(line); m != nil {
			commit()
			current = &RecipeDetail{
				Day:         m[1],
				Name:        strings.TrimSpace(m[2]),
				Ingredients: []string{},
			}
			continue
		}

		if current == nil || !strings.HasPrefix(line, listPrefix) {
			continue
		}

		item := strings.TrimSpace(strings.TrimPrefix(line, listPrefix))
		if isInstruction(item) {
			// Last match wins; earlier instruction lines are replaced.
			current.Instructions = item
		} else {
			current.Ingredients = append(current.Ingredients, item)
		}
	}
	commit()

	return recipes
}

// isInstruction reports whether a recipe list line reads as a cooking step
// rather than an ingredient.
func isInstruction(item string) bool {
	if !instructionRe.MatchString(item) {
		return false
	}
	if item != "" && item[0] >= '0' && item[0] <= '9' {
		return false
	}
	for _, label := range ingredientLabels {
		if strings.Contains(item, label) {
			return false
		}
	}
	return true
}

func parseGroceries(lines []string) GroceryList {
	list := GroceryList{}
	current := -1

	for _, line := range lines {
		if strings.TrimSpace(line) == "" || line == sectionRule {
			continue
		}

		if !strings.HasPrefix(line, listPrefix) {
			list, current = list.merge(strings.TrimSpace(line), nil)
			continue
		}
		if current < 0 {
			continue
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, listPrefix))
		item := GroceryItem{Item: content}
		if m := groceryDaysRe.FindStringSubmatch(content); m != nil {
			item = GroceryItem{Item: strings.TrimSpace(m[1]), Days: strings.TrimSpace(m[2])}
		}
		list[current].Items = append(list[current].Items, item)
	}

	return list
}
