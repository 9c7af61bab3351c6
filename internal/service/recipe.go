package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipebox/backend/internal/metrics"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/search"
	"github.com/pageza/recipebox/backend/internal/types"
)

const (
	DefaultSimilarLimit = 5
	MaxSimilarLimit     = 20
)

// RecipeService handles recipe CRUD, filtering and similarity search
type RecipeService struct {
	db      *gorm.DB
	users   *UserService
	metrics *metrics.Metrics
}

var _ IRecipeService = (*RecipeService)(nil)

func NewRecipeService(db *gorm.DB, m *metrics.Metrics) *RecipeService {
	return &RecipeService{db: db, users: NewUserService(db), metrics: m}
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// CreateRecipe stores a new recipe owned by ownerID. Servings default to the
// owner's preference when omitted.
func (s *RecipeService) CreateRecipe(ctx context.Context, ownerID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	recipe := &models.Recipe{OwnerID: ownerID}
	applyRecipeRequest(recipe, req)

	if recipe.Servings == 0 {
		prefs, err := s.users.GetPreferences(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		recipe.Servings = prefs.DefaultServings
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	s.metrics.RecipeCreated()
	return recipe, nil
}

// applyRecipeRequest copies the editable fields of req onto recipe. Image
// fields are kept unless the request names a different image URL.
func applyRecipeRequest(recipe *models.Recipe, req *types.RecipeRequest) {
	recipe.Title = strings.TrimSpace(req.Title)
	recipe.Description = req.Description
	recipe.PrepTime = req.PrepTime
	recipe.CookTime = req.CookTime
	if req.Servings > 0 || recipe.Servings == 0 {
		recipe.Servings = req.Servings
	}
	recipe.Cuisine = strings.ToLower(strings.TrimSpace(req.Cuisine))
	recipe.Difficulty = req.Difficulty
	recipe.DietaryTags = normalizeTags(req.DietaryTags)
	recipe.Tags = normalizeTags(req.Tags)
	recipe.SourceURL = req.SourceURL
	recipe.Notes = req.Notes

	ingredients := make(datatypes.JSONSlice[models.Ingredient], 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		ingredients = append(ingredients, models.Ingredient{
			Name:     strings.TrimSpace(in.Name),
			Quantity: in.Quantity,
			Unit:     strings.TrimSpace(in.Unit),
			Notes:    in.Notes,
			Category: strings.ToLower(strings.TrimSpace(in.Category)),
		})
	}
	recipe.Ingredients = ingredients

	instructions := make(datatypes.JSONSlice[models.Instruction], 0, len(req.Instructions))
	for _, in := range req.Instructions {
		instructions = append(instructions, models.Instruction{
			Text:            strings.TrimSpace(in.Text),
			DurationMinutes: in.DurationMinutes,
		})
	}
	recipe.Instructions = instructions
	recipe.Renumber()

	if req.ImageURL != "" && req.ImageURL != recipe.ImageURL {
		recipe.ImageURL = req.ImageURL
		recipe.ImageKey = ""
	}
}

func normalizeTags(tags []string) models.JSONBStringArray {
	out := models.JSONBStringArray{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// visibleScope limits a recipe query to rows userID may read: their own,
// or members of any public library.
func (s *RecipeService) visibleScope(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"recipes.owner_id = ? OR EXISTS (SELECT 1 FROM library_recipes lr JOIN recipe_libraries l ON l.id = lr.library_id WHERE lr.recipe_id = recipes.id AND l.is_public = ?)",
			userID, true,
		)
	}
}

// GetRecipe returns the recipe if userID may see it. Hidden recipes are
// reported as not found.
func (s *RecipeService) GetRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Scopes(s.visibleScope(userID)).
		First(&recipe, "recipes.id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

// ownedRecipe loads a recipe for mutation. A visible recipe owned by someone
// else is forbidden, an invisible one is not found.
func (s *RecipeService) ownedRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.OwnerID != userID {
		return nil, ErrForbidden
	}
	return recipe, nil
}

// ListRecipes returns the caller's recipes, newest first. With LibraryID
// set it lists that library's members instead, provided the library is the
// caller's or public.
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID, q *types.RecipeListQuery) ([]models.Recipe, types.Pagination, error) {
	page := q.PageQuery.Normalize()
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if q.LibraryID != "" {
		libraryID, err := uuid.Parse(q.LibraryID)
		if err != nil {
			return nil, types.Pagination{}, NewValidationError("library_id", "must be a valid UUID")
		}
		var lib models.RecipeLibrary
		err = s.db.WithContext(ctx).
			Where("id = ? AND (owner_id = ? OR is_public = ?)", libraryID, userID, true).
			First(&lib).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, types.Pagination{}, ErrNotFound
			}
			return nil, types.Pagination{}, fmt.Errorf("failed to load library: %w", err)
		}
		query = query.Where("recipes.id IN (?)",
			s.db.Model(&models.LibraryRecipe{}).Select("recipe_id").Where("library_id = ?", libraryID))
	} else {
		query = query.Where("recipes.owner_id = ?", userID)
	}

	query = s.applyFilters(query, q)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, types.Pagination{}, fmt.Errorf("failed to count recipes: %w", err)
	}

	recipes := []models.Recipe{}
	err := query.Order("recipes.created_at DESC").Order("recipes.id DESC").
		Limit(page.PageSize).Offset(page.Offset()).
		Find(&recipes).Error
	if err != nil {
		return nil, types.Pagination{}, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, types.NewPagination(page, total), nil
}

func (s *RecipeService) applyFilters(query *gorm.DB, q *types.RecipeListQuery) *gorm.DB {
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("(LOWER(recipes.title) LIKE ? OR LOWER(recipes.description) LIKE ?)", like, like)
	}
	if c := strings.TrimSpace(q.Cuisine); c != "" {
		query = query.Where("recipes.cuisine = ?", strings.ToLower(c))
	}
	if q.Difficulty != "" {
		query = query.Where("recipes.difficulty = ?", q.Difficulty)
	}
	if tag := strings.TrimSpace(q.Tag); tag != "" {
		query = query.Where(s.jsonContains("recipes.tags"), jsonMember(tag))
	}
	for _, d := range strings.Split(q.Dietary, ",") {
		if d = strings.TrimSpace(d); d != "" {
			query = query.Where(s.jsonContains("recipes.dietary_tags"), jsonMember(d))
		}
	}
	if q.MaxTotalTime > 0 {
		query = query.Where("recipes.prep_time + recipes.cook_time <= ?", q.MaxTotalTime)
	}
	return query
}

// jsonContains matches a quoted member inside a JSON string array column.
func (s *RecipeService) jsonContains(column string) string {
	if isPostgres(s.db) {
		return column + "::text LIKE ?"
	}
	return column + " LIKE ?"
}

func jsonMember(v string) string {
	return `%"` + strings.ToLower(v) + `"%`
}

// UpdateRecipe replaces the editable fields of an owned recipe
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	return s.saveRecipe(ctx, recipe, req)
}

func (s *RecipeService) saveRecipe(ctx context.Context, recipe *models.Recipe, req *types.RecipeRequest) (*models.Recipe, error) {
	applyRecipeRequest(recipe, req)
	if recipe.Servings == 0 {
		prefs, err := s.users.GetPreferences(ctx, recipe.OwnerID)
		if err != nil {
			return nil, err
		}
		recipe.Servings = prefs.DefaultServings
	}
	if err := s.db.WithContext(ctx).Save(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return recipe, nil
}

// SetImage records an uploaded image on an owned recipe and returns the
// previous object key so the caller can remove it.
func (s *RecipeService) SetImage(ctx context.Context, userID, recipeID uuid.UUID, url, key string) (*models.Recipe, string, error) {
	recipe, err := s.ownedRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, "", err
	}
	oldKey := recipe.ImageKey
	err = s.db.WithContext(ctx).Model(recipe).
		Updates(map[string]interface{}{"image_url": url, "image_key": key}).Error
	if err != nil {
		return nil, "", fmt.Errorf("failed to set recipe image: %w", err)
	}
	recipe.ImageURL, recipe.ImageKey = url, key
	return recipe, oldKey, nil
}

// ImageKey returns the stored object key of a recipe's uploaded image
func (s *RecipeService) ImageKey(ctx context.Context, recipeID uuid.UUID) (string, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id", "image_key").First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load recipe: %w", err)
	}
	if recipe.ImageKey == "" {
		return "", ErrNotFound
	}
	return recipe.ImageKey, nil
}

// DeleteRecipe removes an owned recipe together with its library
// memberships, shares and meal-plan entries. The deleted recipe is returned
// so its image can be cleaned up.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.ownedRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.LibraryRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_type = ? AND resource_id = ?", models.ShareResourceRecipe, recipe.ID).
			Delete(&models.Share{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.MealPlanEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete recipe: %w", err)
	}
	return recipe, nil
}

// SimilarRecipes returns the caller's recipes closest to recipeID by
// embedding cosine distance.
func (s *RecipeService) SimilarRecipes(ctx context.Context, userID, recipeID uuid.UUID, limit int) ([]models.Recipe, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	if limit > MaxSimilarLimit {
		limit = MaxSimilarLimit
	}

	target, err := s.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	recipes := []models.Recipe{}
	query := s.db.WithContext(ctx).Where("owner_id = ? AND id <> ?", userID, target.ID)

	if isPostgres(s.db) {
		err := query.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{target.Embedding}},
		}).Limit(limit).Find(&recipes).Error
		if err != nil {
			return nil, fmt.Errorf("failed to search similar recipes: %w", err)
		}
		return recipes, nil
	}

	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar recipes: %w", err)
	}
	sort.SliceStable(recipes, func(i, j int) bool {
		return search.Cosine(target.Embedding, recipes[i].Embedding) > search.Cosine(target.Embedding, recipes[j].Embedding)
	})
	if len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes, nil
}
