package models

import (
	"github.com/google/uuid"
)

const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnack     = "snack"
)

// MealTypes lists meal types in the order a day is displayed.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

// MealPlanEntry assigns a recipe to a (date, meal type) slot.
type MealPlanEntry struct {
	Base
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_meal_plan_user_date" json:"user_id"`
	Date     Date      `gorm:"type:date;not null;index:idx_meal_plan_user_date" json:"date"`
	MealType string    `gorm:"size:10;not null" json:"meal_type"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;index" json:"recipe_id"`
	Servings *int      `json:"servings,omitempty"`
	Notes    string    `gorm:"type:text" json:"notes"`
	Recipe   *Recipe   `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
}

// TableName returns the table name for the MealPlanEntry model
func (MealPlanEntry) TableName() string {
	return "meal_plan_entries"
}

// MealOrder returns the display rank of a meal type.
func MealOrder(mealType string) int {
	for i, m := range MealTypes {
		if m == mealType {
			return i
		}
	}
	return len(MealTypes)
}
