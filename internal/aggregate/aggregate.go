// Package aggregate projects stored meals and content records into the
// per-week views consumed by the site renderer and the CLI.
package aggregate

import (
	"fmt"
	"sort"

	"weekly-meals/internal/dateutil"
	"weekly-meals/internal/week"
)

// MealRow is a scheduled meal joined with its recipe, as read from the store.
type MealRow struct {
	Date     string
	RecipeID int64
	Name     string
	Style    string
	Status   string
	// Recipe is attached to the week view when set.
	Recipe *week.RecipeDetail
}

// GroceryRow is one stored grocery line of a week.
type GroceryRow struct {
	WeekStart string
	Category  string
	Item      string
	Days      string
}

type MealView struct {
	Date   string
	Day    string
	Name   string
	Style  string
	Status string
}

// WeekView is one renderable week. Never persisted.
type WeekView struct {
	StartDate         string
	EndDate           string
	DateRange         string
	Meals             []MealView
	Recipes           []week.RecipeDetail
	GroceryCategories []week.GroceryCategory
}

// Aggregate groups meals into Monday-based weeks, newest week first with
// meals in date order inside each week. Grocery rows join the week they
// belong to with categories in first-seen order.
func Aggregate(meals []MealRow, groceries []GroceryRow) ([]WeekView, error) {
	byWeek := map[string]*WeekView{}

	get := func(start string) (*WeekView, error) {
		if v, ok := byWeek[start]; ok {
			return v, nil
		}
		v, err := newView(start)
		if err != nil {
			return nil, err
		}
		byWeek[start] = v
		return v, nil
	}

	sorted := make([]MealRow, len(meals))
	copy(sorted, meals)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	seenRecipes := map[string]map[int64]bool{}
	for _, m := range sorted {
		start, err := dateutil.WeekStart(m.Date)
		if err != nil {
			return nil, fmt.Errorf("meal on %q: %w", m.Date, err)
		}
		day, _ := dateutil.DayName(m.Date)

		v, err := get(start)
		if err != nil {
			return nil, err
		}
		v.Meals = append(v.Meals, MealView{
			Date:   m.Date,
			Day:    day,
			Name:   m.Name,
			Style:  m.Style,
			Status: m.Status,
		})

		if m.Recipe == nil {
			continue
		}
		if seenRecipes[start] == nil {
			seenRecipes[start] = map[int64]bool{}
		}
		if m.RecipeID != 0 && seenRecipes[start][m.RecipeID] {
			continue
		}
		seenRecipes[start][m.RecipeID] = true
		v.Recipes = append(v.Recipes, *m.Recipe)
	}

	for _, g := range groceries {
		start, err := dateutil.WeekStart(g.WeekStart)
		if err != nil {
			return nil, fmt.Errorf("grocery item %q: %w", g.Item, err)
		}
		v, err := get(start)
		if err != nil {
			return nil, err
		}
		list := week.GroceryList(v.GroceryCategories)
		i := list.Index(g.Category)
		if i < 0 {
			list = append(list, week.GroceryCategory{Category: g.Category, Items: []week.GroceryItem{}})
			i = len(list) - 1
		}
		list[i].Items = append(list[i].Items, week.GroceryItem{Item: g.Item, Days: g.Days})
		v.GroceryCategories = list
	}

	views := make([]WeekView, 0, len(byWeek))
	for _, v := range byWeek {
		views = append(views, *v)
	}
	sortNewestFirst(views)
	return views, nil
}

// FromRecords builds views from content records. Meals keep table order and
// get a calendar date from their day name; unknown day names have no date.
func FromRecords(records []week.Record) []WeekView {
	views := make([]WeekView, 0, len(records))
	for _, r := range records {
		v := WeekView{
			StartDate:         r.StartDate,
			EndDate:           r.EndDate,
			DateRange:         dateRange(r.StartDate, r.EndDate),
			Meals:             make([]MealView, 0, len(r.Meals)),
			Recipes:           r.Recipes,
			GroceryCategories: r.GroceryList,
		}
		for _, m := range r.Meals {
			mv := MealView{Day: m.Day, Name: m.Meal, Style: m.Style}
			if off, ok := dateutil.DayOffset(m.Day); ok {
				mv.Date, _ = dateutil.AddDays(r.StartDate, off)
			}
			v.Meals = append(v.Meals, mv)
		}
		views = append(views, v)
	}
	sortNewestFirst(views)
	return views
}

func newView(start string) (*WeekView, error) {
	end, err := dateutil.EndDate(start)
	if err != nil {
		return nil, err
	}
	return &WeekView{
		StartDate: start,
		EndDate:   end,
		DateRange: dateRange(start, end),
	}, nil
}

func dateRange(start, end string) string {
	s, err := dateutil.FormatDateRange(start, end)
	if err != nil {
		return start + " – " + end
	}
	return s
}

func sortNewestFirst(views []WeekView) {
	sort.SliceStable(views, func(i, j int) bool { return views[i].StartDate > views[j].StartDate })
}
