package testhelpers

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// CreateUser inserts a user with default preferences.
func CreateUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	suffix := strings.ReplaceAll(uuid.NewString()[:8], "-", "")
	user := &models.User{
		Email:        strings.ToLower(gofakeit.FirstName()) + "." + suffix + "@example.com",
		Username:     "user_" + suffix,
		Name:         gofakeit.Name(),
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	prefs := models.DefaultPreferences(user.ID)
	if err := db.Create(prefs).Error; err != nil {
		t.Fatalf("failed to create preferences: %v", err)
	}
	user.Preferences = prefs
	return user
}

// CreateAdmin inserts a user with the admin role.
func CreateAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateUser(t, db)
	if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote user: %v", err)
	}
	user.Role = models.RoleAdmin
	return user
}

// RecipeOption customises a fixture recipe before it is saved.
type RecipeOption func(*models.Recipe)

// WithIngredients replaces the fixture's ingredients.
func WithIngredients(ings ...models.Ingredient) RecipeOption {
	return func(r *models.Recipe) { r.Ingredients = ings }
}

// WithTitle sets the fixture's title.
func WithTitle(title string) RecipeOption {
	return func(r *models.Recipe) { r.Title = title }
}

// WithDescription sets the fixture's description.
func WithDescription(d string) RecipeOption {
	return func(r *models.Recipe) { r.Description = d }
}

// WithServings sets the fixture's servings.
func WithServings(n int) RecipeOption {
	return func(r *models.Recipe) { r.Servings = n }
}

// CreateRecipe inserts a recipe owned by owner.
func CreateRecipe(t *testing.T, db *gorm.DB, owner uuid.UUID, opts ...RecipeOption) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		OwnerID:     owner,
		Title:       gofakeit.Dessert(),
		Description: gofakeit.Sentence(8),
		Ingredients: []models.Ingredient{
			{Name: "flour", Quantity: 200, Unit: "g"},
			{Name: "egg", Quantity: 2},
		},
		Instructions: []models.Instruction{
			{StepNumber: 1, Text: "Mix everything."},
			{StepNumber: 2, Text: "Bake for 20 minutes."},
			{StepNumber: 3, Text: "Cool and serve."},
		},
		PrepTime:   15,
		CookTime:   20,
		Servings:   4,
		Cuisine:    "french",
		Difficulty: models.DifficultyEasy,
		Tags:       models.JSONBStringArray{"baking"},
	}
	for _, opt := range opts {
		opt(recipe)
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	return recipe
}

// CreateLibrary inserts a library owned by owner.
func CreateLibrary(t *testing.T, db *gorm.DB, owner uuid.UUID, public bool) *models.RecipeLibrary {
	t.Helper()

	lib := &models.RecipeLibrary{
		OwnerID:  owner,
		Name:     gofakeit.BeerName(),
		IsPublic: public,
	}
	if err := db.Create(lib).Error; err != nil {
		t.Fatalf("failed to create library: %v", err)
	}
	return lib
}

// AddToLibrary links a recipe into a library.
func AddToLibrary(t *testing.T, db *gorm.DB, libraryID, recipeID uuid.UUID) {
	t.Helper()

	if err := db.Create(&models.LibraryRecipe{LibraryID: libraryID, RecipeID: recipeID}).Error; err != nil {
		t.Fatalf("failed to add recipe to library: %v", err)
	}
}

// CreateMealPlanEntry schedules a recipe for a date and meal.
func CreateMealPlanEntry(t *testing.T, db *gorm.DB, user uuid.UUID, recipe uuid.UUID, date models.Date, meal string) *models.MealPlanEntry {
	t.Helper()

	entry := &models.MealPlanEntry{
		UserID:   user,
		Date:     date,
		MealType: meal,
		RecipeID: recipe,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create meal plan entry: %v", err)
	}
	return entry
}
