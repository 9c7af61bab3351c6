package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// SeedFile is the layout of seed.yaml
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	Email    string               `yaml:"email"`
	Username string               `yaml:"username"`
	Password string               `yaml:"password"`
	Name     string               `yaml:"name"`
	Admin    bool                 `yaml:"admin"`
	Recipes  []types.RecipeRequest `yaml:"recipes"`
}

// Parse decodes a seed file, rejecting unknown keys
func Parse(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f SeedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, u := range f.Users {
		if u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("user %d: email and password are required", i)
		}
	}
	return &f, nil
}

type seeder struct {
	db      *gorm.DB
	auth    service.IAuthService
	recipes service.IRecipeService
	log     *zap.Logger
	faker   *gofakeit.Faker
}

// Apply registers each user (or logs in if the email is taken) and creates
// their recipes, followed by fakeRecipes generated recipes per user.
func (s *seeder) Apply(ctx context.Context, f *SeedFile, fakeRecipes int) error {
	for _, u := range f.Users {
		user, err := s.ensureUser(ctx, u)
		if err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}

		for i := range u.Recipes {
			if _, err := s.recipes.CreateRecipe(ctx, user.ID, &u.Recipes[i]); err != nil {
				return fmt.Errorf("recipe %q: %w", u.Recipes[i].Title, err)
			}
		}
		for i := 0; i < fakeRecipes; i++ {
			req := s.fakeRecipe()
			if _, err := s.recipes.CreateRecipe(ctx, user.ID, req); err != nil {
				return fmt.Errorf("generated recipe %q: %w", req.Title, err)
			}
		}
		s.log.Info("seeded user",
			zap.String("email", user.Email),
			zap.Int("recipes", len(u.Recipes)+fakeRecipes),
		)
	}
	return nil
}

func (s *seeder) ensureUser(ctx context.Context, u SeedUser) (*models.User, error) {
	user, _, err := s.auth.Register(ctx, &types.RegisterRequest{
		Email:    u.Email,
		Username: u.Username,
		Password: u.Password,
		Name:     u.Name,
	})
	if errors.Is(err, service.ErrEmailTaken) {
		user, _, err = s.auth.Login(ctx, u.Email, u.Password)
	}
	if err != nil {
		return nil, err
	}

	if u.Admin && user.Role != models.RoleAdmin {
		if err := s.db.WithContext(ctx).Model(user).Update("role", models.RoleAdmin).Error; err != nil {
			return nil, fmt.Errorf("failed to promote to admin: %w", err)
		}
	}
	return user, nil
}

var (
	fakeUnits       = []string{"g", "ml", "cup", "tbsp", "tsp", ""}
	fakeDifficulty  = []string{"easy", "medium", "hard"}
	fakeCuisines    = []string{"Italian", "Mexican", "Thai", "Indian", "French", "Japanese"}
	fakeDietaryTags = []string{"vegetarian", "vegan", "gluten-free", "dairy-free"}
)

func (s *seeder) fakeRecipe() *types.RecipeRequest {
	f := s.faker
	req := &types.RecipeRequest{
		Title:       f.Dinner(),
		Description: f.Sentence(12),
		PrepTime:    f.Number(5, 45),
		CookTime:    f.Number(0, 120),
		Servings:    f.Number(1, 8),
		Cuisine:     f.RandomString(fakeCuisines),
		Difficulty:  f.RandomString(fakeDifficulty),
	}
	if f.Bool() {
		req.DietaryTags = []string{f.RandomString(fakeDietaryTags)}
	}
	for i, n := 0, f.Number(3, 8); i < n; i++ {
		req.Ingredients = append(req.Ingredients, types.IngredientInput{
			Name:     f.Vegetable(),
			Quantity: float64(f.Number(1, 500)),
			Unit:     f.RandomString(fakeUnits),
		})
	}
	for i, n := 0, f.Number(2, 6); i < n; i++ {
		req.Instructions = append(req.Instructions, types.InstructionInput{Text: f.Sentence(10)})
	}
	return req
}
