package planner

import (
	"errors"
	"fmt"
)

// MealStatus represents the lifecycle state of a scheduled meal.
type MealStatus string

const (
	StatusPlanned  MealStatus = "planned"
	StatusMade     MealStatus = "made"
	StatusDeferred MealStatus = "deferred"
)

// Statuses lists every status in display order.
var Statuses = []MealStatus{StatusPlanned, StatusMade, StatusDeferred}

// ErrMealExists is returned when a date already has a meal.
var ErrMealExists = errors.New("meal already exists for date")

// ParseStatus validates a status string.
func ParseStatus(s string) (MealStatus, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown meal status %q", s)
}

// Meal is one scheduled dinner joined with its recipe's name and style.
type Meal struct {
	ID         int64      `json:"id"`
	RecipeID   int64      `json:"recipe_id"`
	Date       string     `json:"date"`
	Status     MealStatus `json:"status"`
	RecipeName string     `json:"recipe_name"`
	Style      string     `json:"style"`
}
