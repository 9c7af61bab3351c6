package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/storage"
)

const (
	MaxImageSize      = 5 << 20
	defaultPresignTTL = 15 * time.Minute
)

// ImageService stores recipe photos in object storage
type ImageService struct {
	store      storage.ObjectStore
	recipes    *RecipeService
	presignTTL time.Duration
	logger     *zap.Logger
}

var _ IImageService = (*ImageService)(nil)

// NewImageService creates an ImageService. A nil store disables uploads.
func NewImageService(store storage.ObjectStore, recipes *RecipeService, presignTTL time.Duration, logger *zap.Logger) *ImageService {
	if presignTTL <= 0 {
		presignTTL = defaultPresignTTL
	}
	return &ImageService{store: store, recipes: recipes, presignTTL: presignTTL, logger: logger}
}

// Enabled reports whether an object store is configured
func (s *ImageService) Enabled() bool {
	return s.store != nil
}

// RecipeImagePath is the stable URL stored on a recipe; it redirects to a
// fresh presigned URL on each request.
func RecipeImagePath(recipeID uuid.UUID) string {
	return fmt.Sprintf("/api/v1/recipes/%s/image", recipeID)
}

// UploadRecipeImage stores the image and points the recipe at it. The
// previous upload, if any, is removed.
func (s *ImageService) UploadRecipeImage(ctx context.Context, userID, recipeID uuid.UUID, r io.Reader, size int64, contentType, filename string) (*models.Recipe, error) {
	if s.store == nil {
		return nil, ErrUnavailable
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, NewValidationError("image", "must be an image")
	}
	if size <= 0 || size > MaxImageSize {
		return nil, NewValidationError("image", "must be at most 5 MB")
	}
	if _, err := s.recipes.ownedRecipe(ctx, userID, recipeID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 6 {
		ext = ""
	}
	key := fmt.Sprintf("recipes/%s/%s%s", recipeID, uuid.NewString(), ext)
	if err := s.store.Put(ctx, key, r, size, contentType); err != nil {
		s.logger.Error("failed to upload recipe image", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	recipe, oldKey, err := s.recipes.SetImage(ctx, userID, recipeID, RecipeImagePath(recipeID), key)
	if err != nil {
		s.DeleteObject(ctx, key)
		return nil, err
	}
	if oldKey != "" && oldKey != key {
		s.DeleteObject(ctx, oldKey)
	}
	return recipe, nil
}

// PresignedURL returns a short-lived URL for the recipe's uploaded image
func (s *ImageService) PresignedURL(ctx context.Context, recipeID uuid.UUID) (string, error) {
	if s.store == nil {
		return "", ErrUnavailable
	}
	key, err := s.recipes.ImageKey(ctx, recipeID)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, key, s.presignTTL)
	if err != nil {
		s.logger.Error("failed to presign recipe image", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to presign image: %w", err)
	}
	return u, nil
}

// DeleteObject removes an object, logging failures
func (s *ImageService) DeleteObject(ctx context.Context, key string) {
	if s.store == nil || key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete recipe image", zap.String("key", key), zap.Error(err))
	}
}
