package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
)

func TestShareHandler_RecipeShare(t *testing.T) {
	a := newTestAPI(t)
	user, token := a.login(t)
	recipe := testhelpers.CreateRecipe(t, a.db, user.ID, testhelpers.WithTitle("Grandma's Pie"))

	w := PerformRequest(a.router, http.MethodPost, "/api/v1/shares", map[string]interface{}{
		"resource_type": "recipe",
		"resource_id":   recipe.ID.String(),
		"permission":    "view",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var share models.Share
	decode(t, w, &share)
	require.NotEmpty(t, share.Token)
	tokenPath := "/api/v1/shares/token/" + share.Token + "/recipe"

	w = PerformRequest(a.router, http.MethodGet, tokenPath, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var shared types.SharedRecipeResponse
	decode(t, w, &shared)
	assert.Equal(t, "Grandma's Pie", shared.Recipe.Title)
	assert.Equal(t, models.PermissionView, shared.Permission)

	w = PerformRequest(a.router, http.MethodPut, tokenPath, recipeBody("Vandalised"), "")
	assert.Equal(t, http.StatusForbidden, w.Code, "view-only shares cannot edit")

	w = PerformRequest(a.router, http.MethodGet, "/api/v1/shares/token/"+share.Token+"/library", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code, "wrong resource type")

	w = PerformRequest(a.router, http.MethodGet, "/api/v1/shares/my-shares", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Shares []models.Share `json:"shares"`
	}
	decode(t, w, &mine)
	require.Len(t, mine.Shares, 1)

	w = PerformRequest(a.router, http.MethodDelete, "/api/v1/shares/"+share.ID.String(), nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = PerformRequest(a.router, http.MethodGet, tokenPath, nil, "")
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, CodeGone, decodeError(t, w).Code)
}

func TestShareHandler_EditShare(t *testing.T) {
	a := newTestAPI(t)
	user, token := a.login(t)
	recipe := testhelpers.CreateRecipe(t, a.db, user.ID)

	w := PerformRequest(a.router, http.MethodPost, "/api/v1/shares", map[string]interface{}{
		"resource_type": "recipe",
		"resource_id":   recipe.ID.String(),
		"permission":    "edit",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var share models.Share
	decode(t, w, &share)

	w = PerformRequest(a.router, http.MethodPut, "/api/v1/shares/token/"+share.Token+"/recipe", recipeBody("Improved"), "")
	require.Equal(t, http.StatusOK, w.Code)
	var updated map[string]interface{}
	decode(t, w, &updated)
	assert.Equal(t, "Improved", updated["title"])
	assert.Equal(t, user.ID.String(), updated["owner_id"], "ownership does not change")
}

func TestShareHandler_OnlyOwnerCanShare(t *testing.T) {
	a := newTestAPI(t)
	owner := testhelpers.CreateUser(t, a.db)
	_, otherToken := a.login(t)
	lib := testhelpers.CreateLibrary(t, a.db, owner.ID, true)

	w := PerformRequest(a.router, http.MethodPost, "/api/v1/shares", map[string]interface{}{
		"resource_type": "library",
		"resource_id":   lib.ID.String(),
	}, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = PerformRequest(a.router, http.MethodPost, "/api/v1/shares", map[string]interface{}{
		"resource_type": "menu",
		"resource_id":   lib.ID.String(),
	}, otherToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
