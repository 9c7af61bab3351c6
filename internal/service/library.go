package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

// LibraryService manages recipe libraries and their membership
type LibraryService struct {
	db      *gorm.DB
	recipes *RecipeService
}

var _ ILibraryService = (*LibraryService)(nil)

func NewLibraryService(db *gorm.DB, recipes *RecipeService) *LibraryService {
	return &LibraryService{db: db, recipes: recipes}
}

// ListLibraries returns the caller's libraries with member counts
func (s *LibraryService) ListLibraries(ctx context.Context, userID uuid.UUID, q types.PageQuery) ([]models.RecipeLibrary, types.Pagination, error) {
	page := q.Normalize()
	query := s.db.WithContext(ctx).Model(&models.RecipeLibrary{}).Where("owner_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, types.Pagination{}, fmt.Errorf("failed to count libraries: %w", err)
	}

	libraries := []models.RecipeLibrary{}
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(page.PageSize).Offset(page.Offset()).
		Find(&libraries).Error
	if err != nil {
		return nil, types.Pagination{}, fmt.Errorf("failed to list libraries: %w", err)
	}
	if err := s.fillCounts(ctx, libraries); err != nil {
		return nil, types.Pagination{}, err
	}
	return libraries, types.NewPagination(page, total), nil
}

func (s *LibraryService) fillCounts(ctx context.Context, libraries []models.RecipeLibrary) error {
	if len(libraries) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(libraries))
	for i, l := range libraries {
		ids[i] = l.ID
	}

	var rows []struct {
		LibraryID uuid.UUID
		Count     int64
	}
	err := s.db.WithContext(ctx).Model(&models.LibraryRecipe{}).
		Select("library_id, COUNT(*) AS count").
		Where("library_id IN ?", ids).
		Group("library_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to count library recipes: %w", err)
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.LibraryID] = r.Count
	}
	for i := range libraries {
		libraries[i].RecipeCount = counts[libraries[i].ID]
	}
	return nil
}

func (s *LibraryService) CreateLibrary(ctx context.Context, userID uuid.UUID, req *types.LibraryRequest) (*models.RecipeLibrary, error) {
	lib := &models.RecipeLibrary{
		OwnerID:     userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if err := s.db.WithContext(ctx).Create(lib).Error; err != nil {
		return nil, fmt.Errorf("failed to create library: %w", err)
	}
	return lib, nil
}

// GetLibrary returns a library the caller owns, or any public library,
// with its member recipes.
func (s *LibraryService) GetLibrary(ctx context.Context, userID, libraryID uuid.UUID) (*models.RecipeLibrary, error) {
	var lib models.RecipeLibrary
	err := s.db.WithContext(ctx).
		Where("id = ? AND (owner_id = ? OR is_public = ?)", libraryID, userID, true).
		First(&lib).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	if err := s.loadMembers(ctx, &lib); err != nil {
		return nil, err
	}
	return &lib, nil
}

// loadMembers fills Recipes in the order they were added
func (s *LibraryService) loadMembers(ctx context.Context, lib *models.RecipeLibrary) error {
	recipes := []models.Recipe{}
	err := s.db.WithContext(ctx).
		Joins("JOIN library_recipes lr ON lr.recipe_id = recipes.id").
		Where("lr.library_id = ?", lib.ID).
		Order("lr.created_at ASC").
		Find(&recipes).Error
	if err != nil {
		return fmt.Errorf("failed to load library recipes: %w", err)
	}
	lib.Recipes = recipes
	lib.RecipeCount = int64(len(recipes))
	return nil
}

func (s *LibraryService) ownedLibrary(ctx context.Context, userID, libraryID uuid.UUID) (*models.RecipeLibrary, error) {
	var lib models.RecipeLibrary
	if err := s.db.WithContext(ctx).First(&lib, "id = ?", libraryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	if lib.OwnerID != userID {
		if lib.IsPublic {
			return nil, ErrForbidden
		}
		return nil, ErrNotFound
	}
	return &lib, nil
}

func (s *LibraryService) UpdateLibrary(ctx context.Context, userID, libraryID uuid.UUID, req *types.LibraryRequest) (*models.RecipeLibrary, error) {
	lib, err := s.ownedLibrary(ctx, userID, libraryID)
	if err != nil {
		return nil, err
	}
	lib.Name = strings.TrimSpace(req.Name)
	lib.Description = req.Description
	lib.IsPublic = req.IsPublic
	if err := s.db.WithContext(ctx).Save(lib).Error; err != nil {
		return nil, fmt.Errorf("failed to update library: %w", err)
	}
	if err := s.loadMembers(ctx, lib); err != nil {
		return nil, err
	}
	return lib, nil
}

// DeleteLibrary removes the library, its memberships and its shares. The
// member recipes themselves are left alone.
func (s *LibraryService) DeleteLibrary(ctx context.Context, userID, libraryID uuid.UUID) error {
	lib, err := s.ownedLibrary(ctx, userID, libraryID)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("library_id = ?", lib.ID).Delete(&models.LibraryRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_type = ? AND resource_id = ?", models.ShareResourceLibrary, lib.ID).
			Delete(&models.Share{}).Error; err != nil {
			return err
		}
		return tx.Delete(lib).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete library: %w", err)
	}
	return nil
}

// AddRecipe links a visible recipe into an owned library. Adding twice is
// a no-op.
func (s *LibraryService) AddRecipe(ctx context.Context, userID, libraryID, recipeID uuid.UUID) error {
	lib, err := s.ownedLibrary(ctx, userID, libraryID)
	if err != nil {
		return err
	}
	if _, err := s.recipes.GetRecipe(ctx, userID, recipeID); err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.LibraryRecipe{LibraryID: lib.ID, RecipeID: recipeID}).Error
	if err != nil {
		return fmt.Errorf("failed to add recipe to library: %w", err)
	}
	return nil
}

// RemoveRecipe drops the membership only
func (s *LibraryService) RemoveRecipe(ctx context.Context, userID, libraryID, recipeID uuid.UUID) error {
	lib, err := s.ownedLibrary(ctx, userID, libraryID)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("library_id = ? AND recipe_id = ?", lib.ID, recipeID).
		Delete(&models.LibraryRecipe{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove recipe from library: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
