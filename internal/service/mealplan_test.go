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

func TestWeekStart(t *testing.T) {
	tests := []struct {
		day  string
		want models.Date
	}{
		{"2025-03-03", "2025-03-03"}, // monday
		{"2025-03-05", "2025-03-03"},
		{"2025-03-09", "2025-03-03"}, // sunday
		{"2025-03-10", "2025-03-10"},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			assert.Equal(t, tt.want, service.WeekStart(models.Date(tt.day).Time()))
		})
	}
}

func TestMealPlanService_Entries(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db)
	recipes := service.NewRecipeService(db, nil)
	wednesday := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	svc := service.NewMealPlanService(db, recipes).WithClock(func() time.Time { return wednesday })
	ctx := context.Background()

	recipe := testhelpers.CreateRecipe(t, db, user.ID)

	dinner, err := svc.CreateEntry(ctx, user.ID, &types.MealPlanRequest{
		Date: "2025-03-04", MealType: models.MealDinner, RecipeID: recipe.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, dinner.Recipe)

	_, err = svc.CreateEntry(ctx, user.ID, &types.MealPlanRequest{
		Date: "2025-03-04", MealType: models.MealBreakfast, RecipeID: recipe.ID.String(),
	})
	require.NoError(t, err)
	_, err = svc.CreateEntry(ctx, user.ID, &types.MealPlanRequest{
		Date: "2025-03-11", MealType: models.MealLunch, RecipeID: recipe.ID.String(),
	})
	require.NoError(t, err)

	t.Run("defaults to the current week", func(t *testing.T) {
		entries, err := svc.ListEntries(ctx, user.ID, &types.MealPlanRangeQuery{})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, models.MealBreakfast, entries[0].MealType)
		assert.Equal(t, models.MealDinner, entries[1].MealType)
		assert.NotNil(t, entries[0].Recipe)
	})

	t.Run("explicit range is inclusive", func(t *testing.T) {
		entries, err := svc.ListEntries(ctx, user.ID, &types.MealPlanRangeQuery{Start: "2025-03-04", End: "2025-03-11"})
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := svc.ListEntries(ctx, user.ID, &types.MealPlanRangeQuery{Start: "2025-03-10", End: "2025-03-01"})
		var verr *service.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("update and delete", func(t *testing.T) {
		servings := 6
		updated, err := svc.UpdateEntry(ctx, user.ID, dinner.ID, &types.MealPlanRequest{
			Date: "2025-03-05", MealType: models.MealDinner, RecipeID: recipe.ID.String(), Servings: &servings,
		})
		require.NoError(t, err)
		assert.Equal(t, models.Date("2025-03-05"), updated.Date)
		require.NotNil(t, updated.Servings)
		assert.Equal(t, 6, *updated.Servings)

		tonight, err := svc.Tonight(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, tonight)
		assert.Equal(t, dinner.ID, tonight.ID)

		require.NoError(t, svc.DeleteEntry(ctx, user.ID, dinner.ID))
		assert.ErrorIs(t, svc.DeleteEntry(ctx, user.ID, dinner.ID), service.ErrNotFound)

		tonight, err = svc.Tonight(ctx, user.ID)
		require.NoError(t, err)
		assert.Nil(t, tonight)
	})
}

func TestMealPlanService_RecipeMustBeVisible(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db)
	other := testhelpers.CreateUser(t, db)
	svc := service.NewMealPlanService(db, service.NewRecipeService(db, nil))
	ctx := context.Background()

	hidden := testhelpers.CreateRecipe(t, db, other.ID)

	for _, id := range []uuid.UUID{hidden.ID, uuid.New()} {
		_, err := svc.CreateEntry(ctx, user.ID, &types.MealPlanRequest{
			Date: "2025-03-04", MealType: models.MealLunch, RecipeID: id.String(),
		})
		var verr *service.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "recipe_id")
	}

	entry := testhelpers.CreateMealPlanEntry(t, db, other.ID, hidden.ID, "2025-03-04", models.MealLunch)
	assert.ErrorIs(t, svc.DeleteEntry(ctx, user.ID, entry.ID), service.ErrNotFound)
}
