package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/internal/models"
)

func TestFeedbackHandler(t *testing.T) {
	a := newTestAPI(t)
	user, userToken := a.login(t)
	_, adminToken := a.loginAdmin(t)

	body := map[string]interface{}{
		"type":        "bug",
		"title":       "Timer stops",
		"description": "The cooking timer stops when the screen locks.",
	}

	w := PerformRequest(a.router, http.MethodPost, "/api/v1/feedback", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var anonymous models.Feedback
	decode(t, w, &anonymous)
	assert.Nil(t, anonymous.UserID)
	assert.Equal(t, "medium", anonymous.Priority)

	w = PerformRequest(a.router, http.MethodPost, "/api/v1/feedback", body, userToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var attributed models.Feedback
	decode(t, w, &attributed)
	require.NotNil(t, attributed.UserID)
	assert.Equal(t, user.ID, *attributed.UserID)

	t.Run("listing needs admin", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, PerformRequest(a.router, http.MethodGet, "/api/v1/feedback", nil, "").Code)
		assert.Equal(t, http.StatusForbidden, PerformRequest(a.router, http.MethodGet, "/api/v1/feedback", nil, userToken).Code)

		w := PerformRequest(a.router, http.MethodGet, "/api/v1/feedback?type=bug&limit=1", nil, adminToken)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Feedback []models.Feedback `json:"feedback"`
		}
		decode(t, w, &resp)
		assert.Len(t, resp.Feedback, 1)

		w = PerformRequest(a.router, http.MethodGet, "/api/v1/feedback?limit=lots", nil, adminToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("admin updates status", func(t *testing.T) {
		path := "/api/v1/feedback/" + anonymous.ID.String()
		w := PerformRequest(a.router, http.MethodPatch, path, map[string]string{
			"status": "resolved", "admin_notes": "Fixed in 1.2",
		}, adminToken)
		require.Equal(t, http.StatusOK, w.Code)
		var updated models.Feedback
		decode(t, w, &updated)
		assert.Equal(t, "resolved", updated.Status)
		assert.Equal(t, "Fixed in 1.2", updated.AdminNotes)

		w = PerformRequest(a.router, http.MethodPatch, path, map[string]string{"status": "ignored"}, adminToken)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
