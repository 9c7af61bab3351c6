package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/storage"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

func TestImageService_Upload(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db)
	other := testhelpers.CreateUser(t, db)
	recipe := testhelpers.CreateRecipe(t, db, user.ID)
	store := storage.NewMemoryStore("http://objects.test/recipes")
	recipes := service.NewRecipeService(db, nil)
	svc := service.NewImageService(store, recipes, time.Minute, zap.NewNop())
	ctx := context.Background()

	png := []byte("\x89PNG fake image")
	updated, err := svc.UploadRecipeImage(ctx, user.ID, recipe.ID, bytes.NewReader(png), int64(len(png)), "image/png", "Dinner.PNG")
	require.NoError(t, err)
	assert.Equal(t, service.RecipeImagePath(recipe.ID), updated.ImageURL)

	key, err := recipes.ImageKey(ctx, recipe.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "recipes/"+recipe.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	obj, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)

	url, err := svc.PresignedURL(ctx, recipe.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://objects.test/recipes/"))

	t.Run("replacing removes the old object", func(t *testing.T) {
		_, err := svc.UploadRecipeImage(ctx, user.ID, recipe.ID, bytes.NewReader(png), int64(len(png)), "image/jpeg", "b.jpg")
		require.NoError(t, err)
		_, ok := store.Get(key)
		assert.False(t, ok)
	})

	t.Run("rejects bad uploads", func(t *testing.T) {
		var verr *service.ValidationError
		_, err := svc.UploadRecipeImage(ctx, user.ID, recipe.ID, strings.NewReader("text"), 4, "text/plain", "a.txt")
		assert.ErrorAs(t, err, &verr)

		_, err = svc.UploadRecipeImage(ctx, user.ID, recipe.ID, strings.NewReader("x"), service.MaxImageSize+1, "image/png", "a.png")
		assert.ErrorAs(t, err, &verr)

		_, err = svc.UploadRecipeImage(ctx, other.ID, recipe.ID, bytes.NewReader(png), int64(len(png)), "image/png", "a.png")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestImageService_Disabled(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db)
	recipe := testhelpers.CreateRecipe(t, db, user.ID)
	svc := service.NewImageService(nil, service.NewRecipeService(db, nil), 0, zap.NewNop())

	assert.False(t, svc.Enabled())
	_, err := svc.UploadRecipeImage(context.Background(), user.ID, recipe.ID, strings.NewReader("x"), 1, "image/png", "a.png")
	assert.ErrorIs(t, err, service.ErrUnavailable)
	_, err = svc.PresignedURL(context.Background(), recipe.ID)
	assert.ErrorIs(t, err, service.ErrUnavailable)
}

func TestImageService_NoImage(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db)
	recipe := testhelpers.CreateRecipe(t, db, user.ID)
	svc := service.NewImageService(storage.NewMemoryStore("http://objects.test"), service.NewRecipeService(db, nil), 0, zap.NewNop())

	_, err := svc.PresignedURL(context.Background(), recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
