package models

import (
	"time"

	"github.com/google/uuid"
)

// RecipeLibrary is a named collection of recipes owned by one user.
type RecipeLibrary struct {
	Base
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsPublic    bool      `gorm:"not null" json:"is_public"`
	RecipeCount int64     `gorm:"-" json:"recipe_count"`
	Recipes     []Recipe  `gorm:"-" json:"recipes,omitempty"`
}

// TableName returns the table name for the RecipeLibrary model
func (RecipeLibrary) TableName() string {
	return "recipe_libraries"
}

// LibraryRecipe is the membership row between a library and a recipe.
// Removing a membership never touches the recipe itself.
type LibraryRecipe struct {
	LibraryID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RecipeID  uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time
}

// TableName returns the table name for the LibraryRecipe model
func (LibraryRecipe) TableName() string {
	return "library_recipes"
}
