// Package models holds the gorm-mapped domain records.
package models

// All returns every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserPreferences{},
		&Recipe{},
		&RecipeLibrary{},
		&LibraryRecipe{},
		&Share{},
		&MealPlanEntry{},
		&ShoppingList{},
		&ShoppingItem{},
		&Feedback{},
	}
}
