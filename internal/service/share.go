package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

const shareTokenBytes = 32

// ShareService issues and resolves share links for recipes and libraries
type ShareService struct {
	db        *gorm.DB
	recipes   *RecipeService
	libraries *LibraryService
	now       func() time.Time
}

var _ IShareService = (*ShareService)(nil)

func NewShareService(db *gorm.DB, recipes *RecipeService, libraries *LibraryService) *ShareService {
	return &ShareService{db: db, recipes: recipes, libraries: libraries, now: time.Now}
}

// WithClock replaces the time source
func (s *ShareService) WithClock(now func() time.Time) *ShareService {
	s.now = now
	return s
}

func newShareToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CreateShare issues a token for a resource the caller owns
func (s *ShareService) CreateShare(ctx context.Context, userID uuid.UUID, req *types.CreateShareRequest) (*models.Share, error) {
	resourceID, err := uuid.Parse(req.ResourceID)
	if err != nil {
		return nil, NewValidationError("resource_id", "must be a valid UUID")
	}

	switch req.ResourceType {
	case models.ShareResourceRecipe:
		if _, err := s.recipes.ownedRecipe(ctx, userID, resourceID); err != nil {
			return nil, err
		}
	case models.ShareResourceLibrary:
		if _, err := s.libraries.ownedLibrary(ctx, userID, resourceID); err != nil {
			return nil, err
		}
	default:
		return nil, NewValidationError("resource_type", "must be one of: recipe, library")
	}

	permission := req.Permission
	if permission == "" {
		permission = models.PermissionView
	}

	token, err := newShareToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate share token: %w", err)
	}

	share := &models.Share{
		Token:        token,
		OwnerID:      userID,
		ResourceType: req.ResourceType,
		ResourceID:   resourceID,
		Permission:   permission,
	}
	if req.ExpiresInHours != nil {
		exp := s.now().Add(time.Duration(*req.ExpiresInHours) * time.Hour)
		share.ExpiresAt = &exp
	}

	if err := s.db.WithContext(ctx).Create(share).Error; err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}
	return share, nil
}

// ListMyShares returns every share the caller created, newest first
func (s *ShareService) ListMyShares(ctx context.Context, userID uuid.UUID) ([]models.Share, error) {
	shares := []models.Share{}
	err := s.db.WithContext(ctx).Where("owner_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&shares).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return shares, nil
}

// RevokeShare marks the share revoked. Revoking twice keeps the first time.
func (s *ShareService) RevokeShare(ctx context.Context, userID, shareID uuid.UUID) error {
	var share models.Share
	if err := s.db.WithContext(ctx).First(&share, "id = ?", shareID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load share: %w", err)
	}
	if share.OwnerID != userID {
		return ErrNotFound
	}
	if share.Revoked() {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&share).Update("revoked_at", s.now()).Error; err != nil {
		return fmt.Errorf("failed to revoke share: %w", err)
	}
	return nil
}

// resolve finds a live share of resourceType by token
func (s *ShareService) resolve(ctx context.Context, token, resourceType string) (*models.Share, error) {
	var share models.Share
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load share: %w", err)
	}
	if share.ResourceType != resourceType {
		return nil, ErrNotFound
	}
	if share.Revoked() || share.Expired(s.now()) {
		return nil, ErrShareGone
	}
	return &share, nil
}

// RecipeByToken returns the shared recipe and the share granting it
func (s *ShareService) RecipeByToken(ctx context.Context, token string) (*models.Recipe, *models.Share, error) {
	share, err := s.resolve(ctx, token, models.ShareResourceRecipe)
	if err != nil {
		return nil, nil, err
	}
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", share.ResourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, share, nil
}

// UpdateRecipeByToken applies req through an edit share
func (s *ShareService) UpdateRecipeByToken(ctx context.Context, token string, req *types.RecipeRequest) (*models.Recipe, error) {
	recipe, share, err := s.RecipeByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !share.CanEdit() {
		return nil, ErrForbidden
	}
	return s.recipes.saveRecipe(ctx, recipe, req)
}

// LibraryByToken returns the shared library with its recipes
func (s *ShareService) LibraryByToken(ctx context.Context, token string) (*models.RecipeLibrary, *models.Share, error) {
	share, err := s.resolve(ctx, token, models.ShareResourceLibrary)
	if err != nil {
		return nil, nil, err
	}
	var lib models.RecipeLibrary
	if err := s.db.WithContext(ctx).First(&lib, "id = ?", share.ResourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to load library: %w", err)
	}
	if err := s.libraries.loadMembers(ctx, &lib); err != nil {
		return nil, nil, err
	}
	return &lib, share, nil
}
