package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
)

func TestUserService_GetUser(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db)
	svc := service.NewUserService(db)

	got, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	require.NotNil(t, got.Preferences)
	assert.Equal(t, models.SkillBeginner, got.Preferences.SkillLevel)

	_, err = svc.GetUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUserService_UpdatePreferences(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user := testhelpers.CreateUser(t, db)
	svc := service.NewUserService(db)
	ctx := context.Background()

	restrictions := []string{" Vegan", "vegan", "Gluten-Free"}
	prefs, err := svc.UpdatePreferences(ctx, user.ID, &types.UpdatePreferencesRequest{
		DietaryRestrictions: &restrictions,
	})
	require.NoError(t, err)
	assert.Equal(t, models.JSONBStringArray{"vegan", "gluten-free"}, prefs.DietaryRestrictions)
	assert.Equal(t, models.DefaultServings, prefs.DefaultServings, "untouched fields keep their value")

	servings := 2
	skill := models.SkillAdvanced
	_, err = svc.UpdatePreferences(ctx, user.ID, &types.UpdatePreferencesRequest{
		DefaultServings: &servings,
		SkillLevel:      &skill,
	})
	require.NoError(t, err)

	stored, err := svc.GetPreferences(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.DefaultServings)
	assert.Equal(t, models.SkillAdvanced, stored.SkillLevel)
	assert.Equal(t, models.JSONBStringArray{"vegan", "gluten-free"}, stored.DietaryRestrictions)
}

func TestUserService_PreferencesDefaultWhenMissing(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := service.NewUserService(db)

	prefs, err := svc.GetPreferences(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultServings, prefs.DefaultServings)
	assert.Empty(t, prefs.DietaryRestrictions)
}
