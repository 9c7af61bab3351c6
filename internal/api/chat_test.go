package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
)

const chatProposal = `{"reply":"Here is a quick one.","proposal":{"title":"Garlic Noodles","ingredients":[{"name":"noodles","quantity":200,"unit":"g"}],"instructions":[{"text":"Boil the noodles."}],"prep_time":5,"cook_time":10}}`

func TestChatHandler_Proposal(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.login(t)
	a.llm.On("Complete", mock.Anything, mock.Anything, true).Return(chatProposal, nil)

	w := PerformRequest(a.router, http.MethodPost, "/api/v1/chat", map[string]interface{}{
		"message":   "something with noodles",
		"page_type": "recipe_create",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.ChatResponse
	decode(t, w, &resp)
	assert.Equal(t, types.ChatTypeProposal, resp.Type)
	require.NotNil(t, resp.Proposal)
	assert.Equal(t, "Garlic Noodles", resp.Proposal.Title)

	var count int64
	require.NoError(t, a.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "proposals are never saved")
}

func TestChatHandler_Context(t *testing.T) {
	t.Run("partial form is accepted and reaches the prompt", func(t *testing.T) {
		a := newTestAPI(t)
		_, token := a.login(t)
		a.llm.On("Complete", mock.Anything, mock.Anything, true).Return(`{"reply":"Add some onions."}`, nil)

		w := PerformRequest(a.router, http.MethodPost, "/api/v1/chat", map[string]interface{}{
			"message":   "help me finish this",
			"page_type": "recipe_create",
			"form": map[string]interface{}{
				"title":       "Draft Curry",
				"ingredients": []map[string]interface{}{{"name": ""}},
			},
		}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp types.ChatResponse
		decode(t, w, &resp)
		assert.Equal(t, types.ChatTypeMessage, resp.Type)
		assert.Contains(t, a.llm.Messages(0)[0].Content, "Draft Curry")
	})

	t.Run("oversized form is rejected", func(t *testing.T) {
		a := newTestAPI(t)
		_, token := a.login(t)

		w := PerformRequest(a.router, http.MethodPost, "/api/v1/chat", map[string]interface{}{
			"message":   "hi",
			"page_type": "recipe_create",
			"form":      map[string]interface{}{"prep_time": -5},
		}, token)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		a.llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("recipe of another user is not found", func(t *testing.T) {
		a := newTestAPI(t)
		owner, _ := a.login(t)
		_, token := a.login(t)
		recipe := testhelpers.CreateRecipe(t, a.db, owner.ID)

		w := PerformRequest(a.router, http.MethodPost, "/api/v1/chat", map[string]interface{}{
			"message":   "make it spicier",
			"page_type": "recipe_detail",
			"recipe_id": recipe.ID.String(),
		}, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
		a.llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("own recipe reaches the prompt", func(t *testing.T) {
		a := newTestAPI(t)
		user, token := a.login(t)
		recipe := testhelpers.CreateRecipe(t, a.db, user.ID, testhelpers.WithTitle("Sunday Roast"))
		a.llm.On("Complete", mock.Anything, mock.Anything, true).Return(`{"reply":"Try rosemary."}`, nil)

		w := PerformRequest(a.router, http.MethodPost, "/api/v1/chat", map[string]interface{}{
			"message":   "what herbs?",
			"page_type": "recipe_detail",
			"recipe_id": recipe.ID.String(),
		}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, a.llm.Messages(0)[0].Content, "Sunday Roast")
	})
}

func TestChatHandler_Errors(t *testing.T) {
	body := map[string]interface{}{"message": "hi", "page_type": "general"}

	t.Run("upstream failure", func(t *testing.T) {
		a := newTestAPI(t)
		_, token := a.login(t)
		a.llm.On("Complete", mock.Anything, mock.Anything, true).Return("", errors.New("connection reset"))

		w := PerformRequest(a.router, http.MethodPost, "/api/v1/chat", body, token)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, CodeUpstream, decodeError(t, w).Code)
	})

	t.Run("disabled", func(t *testing.T) {
		a := newTestAPI(t, withoutLLM())
		_, token := a.login(t)

		w := PerformRequest(a.router, http.MethodPost, "/api/v1/chat", body, token)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, service.ErrLLMDisabled.Error(), decodeError(t, w).Error)
	})

	t.Run("bad page type", func(t *testing.T) {
		a := newTestAPI(t)
		_, token := a.login(t)

		w := PerformRequest(a.router, http.MethodPost, "/api/v1/chat", map[string]interface{}{
			"message": "hi", "page_type": "settings",
		}, token)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeError(t, w).Fields, "page_type")
		a.llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})
}
