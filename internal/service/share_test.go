package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
)

type shareFixture struct {
	svc     *service.ShareService
	recipes *service.RecipeService
	owner   *models.User
	other   *models.User
	recipe  *models.Recipe
	library *models.RecipeLibrary
	now     time.Time
}

func setupShares(t *testing.T) *shareFixture {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	f := &shareFixture{
		owner: testhelpers.CreateUser(t, db),
		other: testhelpers.CreateUser(t, db),
		now:   time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC),
	}
	f.recipes = service.NewRecipeService(db, nil)
	libraries := service.NewLibraryService(db, f.recipes)
	f.svc = service.NewShareService(db, f.recipes, libraries).WithClock(func() time.Time { return f.now })

	f.recipe = testhelpers.CreateRecipe(t, db, f.owner.ID)
	f.library = testhelpers.CreateLibrary(t, db, f.owner.ID, false)
	testhelpers.AddToLibrary(t, db, f.library.ID, f.recipe.ID)
	return f
}

func (f *shareFixture) share(t *testing.T, req types.CreateShareRequest) *models.Share {
	t.Helper()
	share, err := f.svc.CreateShare(context.Background(), f.owner.ID, &req)
	require.NoError(t, err)
	return share
}

func TestShareService_Create(t *testing.T) {
	f := setupShares(t)
	ctx := context.Background()

	share := f.share(t, types.CreateShareRequest{
		ResourceType: models.ShareResourceRecipe,
		ResourceID:   f.recipe.ID.String(),
	})
	assert.Equal(t, models.PermissionView, share.Permission)
	assert.Nil(t, share.ExpiresAt)
	assert.Len(t, share.Token, 43)

	other := f.share(t, types.CreateShareRequest{
		ResourceType: models.ShareResourceRecipe,
		ResourceID:   f.recipe.ID.String(),
	})
	assert.NotEqual(t, share.Token, other.Token)

	shares, err := f.svc.ListMyShares(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, shares, 2)

	t.Run("only the owner can share", func(t *testing.T) {
		_, err := f.svc.CreateShare(ctx, f.other.ID, &types.CreateShareRequest{
			ResourceType: models.ShareResourceRecipe,
			ResourceID:   f.recipe.ID.String(),
		})
		assert.ErrorIs(t, err, service.ErrNotFound)

		_, err = f.svc.CreateShare(ctx, f.other.ID, &types.CreateShareRequest{
			ResourceType: models.ShareResourceLibrary,
			ResourceID:   f.library.ID.String(),
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestShareService_Resolve(t *testing.T) {
	f := setupShares(t)
	ctx := context.Background()

	recipeShare := f.share(t, types.CreateShareRequest{
		ResourceType: models.ShareResourceRecipe,
		ResourceID:   f.recipe.ID.String(),
	})
	libraryShare := f.share(t, types.CreateShareRequest{
		ResourceType: models.ShareResourceLibrary,
		ResourceID:   f.library.ID.String(),
	})

	recipe, share, err := f.svc.RecipeByToken(ctx, recipeShare.Token)
	require.NoError(t, err)
	assert.Equal(t, f.recipe.ID, recipe.ID)
	assert.Equal(t, recipeShare.ID, share.ID)

	lib, _, err := f.svc.LibraryByToken(ctx, libraryShare.Token)
	require.NoError(t, err)
	require.Len(t, lib.Recipes, 1)
	assert.Equal(t, f.recipe.ID, lib.Recipes[0].ID)

	_, _, err = f.svc.RecipeByToken(ctx, libraryShare.Token)
	assert.ErrorIs(t, err, service.ErrNotFound, "token of another resource type")
	_, _, err = f.svc.RecipeByToken(ctx, "nope")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestShareService_RevokeAndExpiry(t *testing.T) {
	f := setupShares(t)
	ctx := context.Background()

	hours := 2
	expiring := f.share(t, types.CreateShareRequest{
		ResourceType:   models.ShareResourceRecipe,
		ResourceID:     f.recipe.ID.String(),
		ExpiresInHours: &hours,
	})
	require.NotNil(t, expiring.ExpiresAt)
	assert.Equal(t, f.now.Add(2*time.Hour), *expiring.ExpiresAt)

	_, _, err := f.svc.RecipeByToken(ctx, expiring.Token)
	require.NoError(t, err)

	f.now = f.now.Add(3 * time.Hour)
	_, _, err = f.svc.RecipeByToken(ctx, expiring.Token)
	assert.ErrorIs(t, err, service.ErrShareGone)

	revoked := f.share(t, types.CreateShareRequest{
		ResourceType: models.ShareResourceRecipe,
		ResourceID:   f.recipe.ID.String(),
	})
	assert.ErrorIs(t, f.svc.RevokeShare(ctx, f.other.ID, revoked.ID), service.ErrNotFound)
	require.NoError(t, f.svc.RevokeShare(ctx, f.owner.ID, revoked.ID))
	require.NoError(t, f.svc.RevokeShare(ctx, f.owner.ID, revoked.ID), "revoking twice is fine")
	assert.ErrorIs(t, f.svc.RevokeShare(ctx, f.owner.ID, uuid.New()), service.ErrNotFound)

	_, _, err = f.svc.RecipeByToken(ctx, revoked.Token)
	assert.ErrorIs(t, err, service.ErrShareGone)
}

func TestShareService_EditThroughToken(t *testing.T) {
	f := setupShares(t)
	ctx := context.Background()

	viewOnly := f.share(t, types.CreateShareRequest{
		ResourceType: models.ShareResourceRecipe,
		ResourceID:   f.recipe.ID.String(),
	})
	editable := f.share(t, types.CreateShareRequest{
		ResourceType: models.ShareResourceRecipe,
		ResourceID:   f.recipe.ID.String(),
		Permission:   models.PermissionEdit,
	})

	_, err := f.svc.UpdateRecipeByToken(ctx, viewOnly.Token, recipeRequest("Edited"))
	assert.ErrorIs(t, err, service.ErrForbidden)

	updated, err := f.svc.UpdateRecipeByToken(ctx, editable.Token, recipeRequest("Edited"))
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)
	assert.Equal(t, f.owner.ID, updated.OwnerID, "ownership never changes")

	stored, err := f.recipes.GetRecipe(ctx, f.owner.ID, f.recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", stored.Title)
}
