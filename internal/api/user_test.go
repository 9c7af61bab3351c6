package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
	"github.com/pageza/recipebox/backend/internal/types"
)

func TestUserHandler_RegisterAndLogin(t *testing.T) {
	a := newTestAPI(t)

	w := PerformRequest(a.router, http.MethodPost, "/api/v1/users/register", map[string]string{
		"email":    "Cook@Example.com",
		"username": "home_cook",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reg types.AuthResponse
	decode(t, w, &reg)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "cook@example.com", reg.User.Email)
	require.NotNil(t, reg.User.Preferences)
	assert.Equal(t, 4, reg.User.Preferences.DefaultServings)

	t.Run("duplicate email", func(t *testing.T) {
		w := PerformRequest(a.router, http.MethodPost, "/api/v1/users/register", map[string]string{
			"email":    "cook@example.com",
			"username": "other_cook",
			"password": "secret123",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decodeError(t, w).Fields, "email")
	})

	t.Run("weak password", func(t *testing.T) {
		w := PerformRequest(a.router, http.MethodPost, "/api/v1/users/register", map[string]string{
			"email":    "new@example.com",
			"username": "new_cook",
			"password": "onlyletters",
		}, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, CodeValidation, resp.Code)
		assert.Equal(t, "must contain at least one letter and one digit", resp.Fields["password"])
	})

	t.Run("login", func(t *testing.T) {
		w := PerformRequest(a.router, http.MethodPost, "/api/v1/users/login", map[string]string{
			"email": "cook@example.com", "password": "secret123",
		}, "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp types.AuthResponse
		decode(t, w, &resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		wrong := PerformRequest(a.router, http.MethodPost, "/api/v1/users/login", map[string]string{
			"email": "cook@example.com", "password": "nope12345",
		}, "")
		unknown := PerformRequest(a.router, http.MethodPost, "/api/v1/users/login", map[string]string{
			"email": "nobody@example.com", "password": "nope12345",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("malformed json", func(t *testing.T) {
		w := PerformRequest(a.router, http.MethodPost, "/api/v1/users/login", `{"email":`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeBadRequest, decodeError(t, w).Code)
	})
}

func TestUserHandler_Logout(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.login(t)

	assert.Equal(t, http.StatusOK, PerformRequest(a.router, http.MethodGet, "/api/v1/users/me", nil, token).Code)
	assert.Equal(t, http.StatusNoContent, PerformRequest(a.router, http.MethodPost, "/api/v1/users/logout", nil, token).Code)

	w := PerformRequest(a.router, http.MethodGet, "/api/v1/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_Preferences(t *testing.T) {
	a := newTestAPI(t)
	user, token := a.login(t)

	w := PerformRequest(a.router, http.MethodGet, "/api/v1/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]interface{}
	decode(t, w, &me)
	assert.Equal(t, user.Username, me["username"])
	assert.NotContains(t, me, "password_hash")
	assert.Contains(t, me, "preferences")

	w = PerformRequest(a.router, http.MethodPatch, "/api/v1/users/me/preferences", map[string]interface{}{
		"skill_level": "advanced",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)
	var prefs map[string]interface{}
	decode(t, w, &prefs)
	assert.Equal(t, "advanced", prefs["skill_level"])
	assert.EqualValues(t, 4, prefs["default_servings"], "untouched fields keep their values")

	w = PerformRequest(a.router, http.MethodPut, "/api/v1/users/me/preferences", map[string]interface{}{
		"default_servings": 0,
		"skill_level":      "chef",
	}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decodeError(t, w).Fields
	assert.Contains(t, fields, "skill_level")
	assert.Contains(t, fields, "default_servings")
}

func TestUserHandler_Unauthenticated(t *testing.T) {
	a := newTestAPI(t)

	w := PerformRequest(a.router, http.MethodGet, "/api/v1/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = PerformRequest(a.router, http.MethodGet, "/api/v1/users/me", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_LoginRateLimit(t *testing.T) {
	a := newTestAPI(t, withRateLimit(config.RateLimitConfig{Window: time.Minute, AuthLimit: 2}))
	user := testhelpers.CreateUser(t, a.db)
	body := map[string]string{"email": user.Email, "password": testhelpers.TestPassword}

	for i := 0; i < 2; i++ {
		w := PerformRequest(a.router, http.MethodPost, "/api/v1/users/login", body, "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := PerformRequest(a.router, http.MethodPost, "/api/v1/users/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
