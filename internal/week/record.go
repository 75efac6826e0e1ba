// Package week holds the normalized weekly meal-plan record and the parser
// that builds it from the plain-text week files.
package week

import (
	"bytes"
	"encoding/json"
	"fmt"

	"weekly-meals/internal/dateutil"
)

// MealEntry is one row of the week's meal table.
type MealEntry struct {
	Day   string `json:"day"`
	Meal  string `json:"meal"`
	Style string `json:"style"`
}

// RecipeDetail is one recipe block of the Recipes section. A recipe carries
// either a single Instructions line or PrepSteps, not both.
type RecipeDetail struct {
	Day          string   `json:"day"`
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	PrepSteps    []string `json:"prepSteps,omitempty"`
	Tips         []string `json:"tips,omitempty"`
}

// GroceryItem is one line of a grocery category. Days is a free-text note
// about which days need the item and may be empty.
type GroceryItem struct {
	Item string `json:"item"`
	Days string `json:"days"`
}

// GroceryCategory groups grocery items under a heading.
type GroceryCategory struct {
	Category string        `json:"category"`
	Items    []GroceryItem `json:"items"`
}

// GroceryList is an ordered category list. It serializes as a JSON object
// keyed by category name, keeping document order in both directions.
type GroceryList []GroceryCategory

// Record is one calendar week of meal planning.
type Record struct {
	StartDate   string         `json:"startDate"`
	EndDate     string         `json:"endDate"`
	Meals       []MealEntry    `json:"meals"`
	Recipes     []RecipeDetail `json:"recipes"`
	GroceryList GroceryList    `json:"groceryList"`
}

// SetStartDate attaches the week key and derives EndDate from it.
func (r *Record) SetStartDate(start string) error {
	end, err := dateutil.EndDate(start)
	if err != nil {
		return err
	}
	r.StartDate = start
	r.EndDate = end
	return nil
}

// Index returns the position of category in the list, or -1.
func (g GroceryList) Index(category string) int {
	for i, c := range g {
		if c.Category == category {
			return i
		}
	}
	return -1
}

// Items returns the items of category, or nil when it is absent.
func (g GroceryList) Items(category string) []GroceryItem {
	if i := g.Index(category); i >= 0 {
		return g[i].Items
	}
	return nil
}

// merge appends items to category, creating it at the end when new.
func (g GroceryList) merge(category string, items []GroceryItem) (GroceryList, int) {
	i := g.Index(category)
	if i < 0 {
		g = append(g, GroceryCategory{Category: category, Items: []GroceryItem{}})
		i = len(g) - 1
	}
	g[i].Items = append(g[i].Items, items...)
	return g, i
}

// MarshalJSON writes the list as an object in category order.
func (g GroceryList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Category)
		if err != nil {
			return nil, err
		}
		items := c.Items
		if items == nil {
			items = []GroceryItem{}
		}
		val, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a category object keeping key order. Repeated keys
// merge into the first occurrence.
func (g *GroceryList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*g = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("grocery list must be a JSON object")
	}

	list := GroceryList{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		category, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected grocery list key %v", tok)
		}
		var items []GroceryItem
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("grocery category %q: %w", category, err)
		}
		list, _ = list.merge(category, items)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*g = list
	return nil
}
