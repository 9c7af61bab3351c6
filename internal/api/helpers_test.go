package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/mocks"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/storage"
	"github.com/pageza/recipebox/backend/internal/testhelpers"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

type testAPI struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
	llm    *mocks.MockLLMClient
	store  *storage.MemoryStore
}

type testOptions struct {
	noRedis   bool
	noStorage bool
	noLLM     bool
	rateLimit config.RateLimitConfig
}

type testOption func(*testOptions)

func withoutRedis() testOption   { return func(o *testOptions) { o.noRedis = true } }
func withoutStorage() testOption { return func(o *testOptions) { o.noStorage = true } }
func withoutLLM() testOption     { return func(o *testOptions) { o.noLLM = true } }

func withRateLimit(rl config.RateLimitConfig) testOption {
	return func(o *testOptions) { o.rateLimit = rl }
}

// newTestAPI wires real services over sqlite and miniredis behind the
// same routes the server registers.
func newTestAPI(t *testing.T, opts ...testOption) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var o testOptions
	for _, opt := range opts {
		opt(&o)
	}

	db := testhelpers.SetupTestDB(t)
	logger := zap.NewNop()

	var redisClient *redis.Client
	var revoker service.TokenRevoker = service.NewMemoryTokenRevoker()
	if !o.noRedis {
		redisClient, _ = testhelpers.SetupRedis(t)
		revoker = service.NewRedisTokenRevoker(redisClient)
	}

	auth := service.NewAuthService(db, testSecret, time.Hour, revoker)
	users := service.NewUserService(db)
	recipes := service.NewRecipeService(db, nil)
	libraries := service.NewLibraryService(db, recipes)

	a := &testAPI{db: db, auth: auth}

	var llm service.LLMClient
	var consolidator service.Consolidator
	if !o.noLLM {
		a.llm = &mocks.MockLLMClient{}
		llm = a.llm
		consolidator = service.NewLLMConsolidator(a.llm)
	}

	var store storage.ObjectStore
	if !o.noStorage {
		a.store = storage.NewMemoryStore("http://objects.test")
		store = a.store
	}

	services := Services{
		Auth:      auth,
		Users:     users,
		Recipes:   recipes,
		Libraries: libraries,
		Shares:    service.NewShareService(db, recipes, libraries),
		MealPlans: service.NewMealPlanService(db, recipes),
		Shopping:  service.NewShoppingService(db, consolidator, logger, nil),
		Chat:      service.NewChatService(llm, recipes, users, logger, nil),
		Images:    service.NewImageService(store, recipes, time.Minute, logger),
		Feedback:  service.NewFeedbackService(db, nil, logger),
	}
	if redisClient != nil {
		services.Cooking = service.NewCookingService(redisClient, recipes)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	require.NoError(t, RegisterRoutes(router, Dependencies{
		DB:        db,
		Redis:     redisClient,
		Logger:    logger,
		RateLimit: o.rateLimit,
		Services:  services,
	}))
	a.router = router
	return a
}

// login returns a fixture user and a valid token for them
func (a *testAPI) login(t *testing.T) (*models.User, string) {
	t.Helper()
	user := testhelpers.CreateUser(t, a.db)
	token, err := a.auth.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func (a *testAPI) loginAdmin(t *testing.T) (*models.User, string) {
	t.Helper()
	user := testhelpers.CreateAdmin(t, a.db)
	token, err := a.auth.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

// PerformRequest sends a JSON request through the router. An empty token
// sends no Authorization header.
func PerformRequest(router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, bytes.NewBufferString(b))
		req.Header.Set("Content-Type", "application/json")
	default:
		jsonBody, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	decode(t, w, &resp)
	return resp
}

func recipeBody(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":       title,
		"description": "Weeknight dinner",
		"ingredients": []map[string]interface{}{
			{"name": "chicken thighs", "quantity": 4},
			{"name": "lemon", "quantity": 1},
		},
		"instructions": []map[string]interface{}{
			{"text": "Season the chicken."},
			{"text": "Roast for 40 minutes."},
		},
		"prep_time":  20,
		"cook_time":  40,
		"servings":   4,
		"difficulty": "easy",
	}
}
