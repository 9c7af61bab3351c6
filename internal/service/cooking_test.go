package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
)

func TestCookingService_Flow(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	client, mr := testhelpers.SetupRedis(t)
	user := testhelpers.CreateUser(t, db)
	recipe := testhelpers.CreateRecipe(t, db, user.ID)
	svc := service.NewCookingService(client, service.NewRecipeService(db, nil))
	ctx := context.Background()

	apply := func(action string, step int) (*service.CookingProgress, error) {
		return svc.Apply(ctx, user.ID, recipe.ID, &types.CookingActionRequest{Action: action, Step: step})
	}

	p, err := svc.GetProgress(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, service.CookingClosed, p.Status)
	assert.Equal(t, 3, p.TotalSteps)

	_, err = apply(service.CookingNext, 0)
	assert.ErrorIs(t, err, service.ErrConflict, "next before open")

	p, err = apply(service.CookingOpen, 0)
	require.NoError(t, err)
	assert.Equal(t, service.CookingActive, p.Status)
	assert.Equal(t, 1, p.CurrentStep)

	p, err = apply(service.CookingPrevious, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentStep, "previous stops at the first step")

	p, err = apply(service.CookingNext, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentStep)

	_, err = apply(service.CookingJump, 7)
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)

	p, err = apply(service.CookingClose, 0)
	require.NoError(t, err)
	assert.Equal(t, service.CookingClosed, p.Status)
	assert.Equal(t, 2, p.ResumeStep)
	assert.InDelta(t, service.CookingTTL.Seconds(), mr.TTL("cooking:"+user.ID.String()+":"+recipe.ID.String()).Seconds(), 1)

	p, err = apply(service.CookingOpen, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CurrentStep, "reopening resumes")

	p, err = apply(service.CookingJump, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, p.CurrentStep)

	p, err = apply(service.CookingNext, 0)
	require.NoError(t, err)
	assert.Equal(t, service.CookingCompleted, p.Status)
	assert.Zero(t, p.ResumeStep)

	p, err = apply(service.CookingOpen, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentStep, "a finished recipe starts over")
}

func TestCookingService_StepActionsNeedActiveSession(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	client, _ := testhelpers.SetupRedis(t)
	user := testhelpers.CreateUser(t, db)
	recipe := testhelpers.CreateRecipe(t, db, user.ID)
	svc := service.NewCookingService(client, service.NewRecipeService(db, nil))
	ctx := context.Background()

	apply := func(action string, step int) (*service.CookingProgress, error) {
		return svc.Apply(ctx, user.ID, recipe.ID, &types.CookingActionRequest{Action: action, Step: step})
	}
	stepActions := []string{service.CookingNext, service.CookingPrevious, service.CookingJump, service.CookingFinish}

	for _, action := range stepActions {
		_, err := apply(action, 1)
		var serr *service.CookingStateError
		require.ErrorAs(t, err, &serr, "%s while closed", action)
		assert.Equal(t, service.CookingClosed, serr.Status)
		assert.ErrorIs(t, err, service.ErrConflict)
	}

	_, err := apply(service.CookingOpen, 0)
	require.NoError(t, err)
	p, err := apply(service.CookingFinish, 0)
	require.NoError(t, err)
	require.Equal(t, service.CookingCompleted, p.Status)

	for _, action := range stepActions {
		_, err := apply(action, 1)
		var serr *service.CookingStateError
		require.ErrorAs(t, err, &serr, "%s after finishing", action)
		assert.Equal(t, service.CookingCompleted, serr.Status)
	}

	p, err = svc.GetProgress(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, service.CookingCompleted, p.Status, "rejected actions leave the state alone")
}

func TestCookingService_ProgressIsPerUser(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	client, _ := testhelpers.SetupRedis(t)
	owner := testhelpers.CreateUser(t, db)
	other := testhelpers.CreateUser(t, db)
	recipe := testhelpers.CreateRecipe(t, db, owner.ID)
	lib := testhelpers.CreateLibrary(t, db, owner.ID, true)
	testhelpers.AddToLibrary(t, db, lib.ID, recipe.ID)
	svc := service.NewCookingService(client, service.NewRecipeService(db, nil))
	ctx := context.Background()

	_, err := svc.Apply(ctx, owner.ID, recipe.ID, &types.CookingActionRequest{Action: service.CookingOpen})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, owner.ID, recipe.ID, &types.CookingActionRequest{Action: service.CookingNext})
	require.NoError(t, err)

	p, err := svc.GetProgress(ctx, other.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, service.CookingClosed, p.Status)
	assert.Zero(t, p.CurrentStep)
}

func TestCookingService_EditedRecipeClampsProgress(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	client, _ := testhelpers.SetupRedis(t)
	user := testhelpers.CreateUser(t, db)
	recipe := testhelpers.CreateRecipe(t, db, user.ID)
	fixed := time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)
	svc := service.NewCookingService(client, service.NewRecipeService(db, nil)).
		WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	_, err := svc.Apply(ctx, user.ID, recipe.ID, &types.CookingActionRequest{Action: service.CookingOpen})
	require.NoError(t, err)
	p, err := svc.Apply(ctx, user.ID, recipe.ID, &types.CookingActionRequest{Action: service.CookingJump, Step: 3})
	require.NoError(t, err)
	assert.True(t, fixed.Equal(p.UpdatedAt))

	recipe.Instructions = recipe.Instructions[:1]
	require.NoError(t, db.Save(recipe).Error)

	p, err = svc.GetProgress(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.TotalSteps)
	assert.Equal(t, 1, p.CurrentStep)
}

func TestCookingService_RecipeWithoutSteps(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	client, _ := testhelpers.SetupRedis(t)
	user := testhelpers.CreateUser(t, db)
	recipe := testhelpers.CreateRecipe(t, db, user.ID)
	require.NoError(t, db.Model(recipe).Update("instructions", "[]").Error)
	svc := service.NewCookingService(client, service.NewRecipeService(db, nil))

	_, err := svc.Apply(context.Background(), user.ID, recipe.ID, &types.CookingActionRequest{Action: service.CookingOpen})
	var verr *service.ValidationError
	assert.ErrorAs(t, err, &verr)
}
