package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

// MealPlanService schedules recipes onto dates and meals
type MealPlanService struct {
	db      *gorm.DB
	recipes *RecipeService
	now     func() time.Time
}

var _ IMealPlanService = (*MealPlanService)(nil)

func NewMealPlanService(db *gorm.DB, recipes *RecipeService) *MealPlanService {
	return &MealPlanService{db: db, recipes: recipes, now: time.Now}
}

// WithClock replaces the time source
func (s *MealPlanService) WithClock(now func() time.Time) *MealPlanService {
	s.now = now
	return s
}

// WeekStart returns the Monday of the week containing t
func WeekStart(t time.Time) models.Date {
	offset := (int(t.Weekday()) + 6) % 7
	return models.NewDate(t.AddDate(0, 0, -offset))
}

// ListEntries returns entries between start and end inclusive, ordered by
// date then meal. Missing bounds default to the current Monday..Sunday.
func (s *MealPlanService) ListEntries(ctx context.Context, userID uuid.UUID, q *types.MealPlanRangeQuery) ([]models.MealPlanEntry, error) {
	start := WeekStart(s.now())
	if q.Start != "" {
		start = models.Date(q.Start)
	}
	end := start.AddDays(6)
	if q.End != "" {
		end = models.Date(q.End)
	}
	if end < start {
		return nil, NewValidationError("end", "must not be before start")
	}
	return s.entriesBetween(ctx, userID, start, end)
}

func (s *MealPlanService) entriesBetween(ctx context.Context, userID uuid.UUID, start, end models.Date) ([]models.MealPlanEntry, error) {
	entries := []models.MealPlanEntry{}
	err := s.db.WithContext(ctx).Preload("Recipe").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plan: %w", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return models.MealOrder(entries[i].MealType) < models.MealOrder(entries[j].MealType)
	})
	return entries, nil
}

// CreateEntry schedules a recipe the caller can see
func (s *MealPlanService) CreateEntry(ctx context.Context, userID uuid.UUID, req *types.MealPlanRequest) (*models.MealPlanEntry, error) {
	entry := &models.MealPlanEntry{UserID: userID}
	if err := s.applyRequest(ctx, userID, entry, req); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit("Recipe").Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create meal plan entry: %w", err)
	}
	return entry, nil
}

func (s *MealPlanService) applyRequest(ctx context.Context, userID uuid.UUID, entry *models.MealPlanEntry, req *types.MealPlanRequest) error {
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return NewValidationError("date", "must be a date formatted YYYY-MM-DD")
	}
	recipeID, err := uuid.Parse(req.RecipeID)
	if err != nil {
		return NewValidationError("recipe_id", "must be a valid UUID")
	}
	recipe, err := s.recipes.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewValidationError("recipe_id", "recipe not found")
		}
		return err
	}

	entry.Date = date
	entry.MealType = req.MealType
	entry.RecipeID = recipe.ID
	entry.Servings = req.Servings
	entry.Notes = req.Notes
	entry.Recipe = recipe
	return nil
}

func (s *MealPlanService) ownedEntry(ctx context.Context, userID, entryID uuid.UUID) (*models.MealPlanEntry, error) {
	var entry models.MealPlanEntry
	err := s.db.WithContext(ctx).First(&entry, "id = ? AND user_id = ?", entryID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load meal plan entry: %w", err)
	}
	return &entry, nil
}

func (s *MealPlanService) UpdateEntry(ctx context.Context, userID, entryID uuid.UUID, req *types.MealPlanRequest) (*models.MealPlanEntry, error) {
	entry, err := s.ownedEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.applyRequest(ctx, userID, entry, req); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit("Recipe").Save(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to update meal plan entry: %w", err)
	}
	return entry, nil
}

func (s *MealPlanService) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	entry, err := s.ownedEntry(ctx, userID, entryID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(entry).Error; err != nil {
		return fmt.Errorf("failed to delete meal plan entry: %w", err)
	}
	return nil
}

// Tonight returns today's dinner, or nil when none is planned
func (s *MealPlanService) Tonight(ctx context.Context, userID uuid.UUID) (*models.MealPlanEntry, error) {
	var entry models.MealPlanEntry
	err := s.db.WithContext(ctx).Preload("Recipe").
		Where("user_id = ? AND date = ? AND meal_type = ?", userID, models.NewDate(s.now()), models.MealDinner).
		Order("created_at ASC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load tonight's dinner: %w", err)
	}
	return &entry, nil
}
