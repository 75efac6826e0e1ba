package recipe

import "weekly-meals/internal/week"

// Recipe is a stored recipe. Name is its identity across weeks.
type Recipe struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Style        string   `json:"style"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	PrepSteps    []string `json:"prepSteps,omitempty"`
	Tips         []string `json:"tips,omitempty"`
}

// Usage pairs a recipe with how often and how recently it was scheduled.
type Usage struct {
	Recipe
	TimesUsed int
	// LastUsed is the latest meal date, empty when never used.
	LastUsed string
}

// FromWeek builds the stored form of a scheduled meal, taking the procedure
// from detail when the week has one for it.
func FromWeek(meal week.MealEntry, detail *week.RecipeDetail) Recipe {
	r := Recipe{
		Name:        meal.Meal,
		Style:       meal.Style,
		Ingredients: []string{},
	}
	if detail != nil {
		r.Ingredients = append(r.Ingredients, detail.Ingredients...)
		r.Instructions = detail.Instructions
		r.PrepSteps = detail.PrepSteps
		r.Tips = detail.Tips
	}
	return r
}

// Detail renders the recipe as the week record's recipe block for day.
func (r Recipe) Detail(day string) week.RecipeDetail {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return week.RecipeDetail{
		Day:          day,
		Name:         r.Name,
		Ingredients:  ingredients,
		Instructions: r.Instructions,
		PrepSteps:    r.PrepSteps,
		Tips:         r.Tips,
	}
}

// HasProcedure reports whether the recipe carries instructions or steps.
func (r Recipe) HasProcedure() bool {
	return r.Instructions != "" || len(r.PrepSteps) > 0
}
