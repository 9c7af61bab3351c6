// Package api holds the gin handlers for /api/v1.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/validation"
)

// Services are the domain services behind the handlers. Cooking may be nil
// when redis is not configured.
type Services struct {
	Auth      service.IAuthService
	Users     service.IUserService
	Recipes   service.IRecipeService
	Libraries service.ILibraryService
	Shares    service.IShareService
	MealPlans service.IMealPlanService
	Shopping  service.IShoppingService
	Chat      service.IChatService
	Cooking   service.ICookingService
	Images    service.IImageService
	Feedback  service.IFeedbackService
}

// Dependencies is everything RegisterRoutes wires together
type Dependencies struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Logger    *zap.Logger
	RateLimit config.RateLimitConfig
	Services  Services
}

// RegisterRoutes registers the health check and every /api/v1 route
func RegisterRoutes(router *gin.Engine, d Dependencies) error {
	if err := validation.RegisterGin(); err != nil {
		return err
	}

	limiter := func(prefix string, limit int) *middleware.RateLimiter {
		return middleware.NewRateLimiter(d.Redis, middleware.RateLimitConfig{
			Window:    d.RateLimit.Window,
			Limit:     limit,
			KeyPrefix: prefix,
		}, d.Logger)
	}
	authLimiter := limiter("rate_limit:auth", d.RateLimit.AuthLimit)
	createLimiter := limiter("rate_limit:recipe_create", d.RateLimit.RecipeCreateLimit)
	chatLimiter := limiter("rate_limit:chat", d.RateLimit.ChatLimit)

	health := NewHealthHandler(d.DB, d.Redis)
	router.GET("/health", health.Check)

	v1 := router.Group("/api/v1")
	v1.GET("/health", health.Check)

	s := d.Services
	NewUserHandler(s.Auth, s.Users, authLimiter).RegisterRoutes(v1)
	NewRecipeHandler(s.Auth, s.Recipes, s.Images, createLimiter).RegisterRoutes(v1)
	NewCookingHandler(s.Auth, s.Cooking).RegisterRoutes(v1)
	NewLibraryHandler(s.Auth, s.Libraries).RegisterRoutes(v1)
	NewShareHandler(s.Auth, s.Shares).RegisterRoutes(v1)
	NewMealPlanHandler(s.Auth, s.MealPlans).RegisterRoutes(v1)
	NewShoppingHandler(s.Auth, s.Shopping).RegisterRoutes(v1)
	NewChatHandler(s.Auth, s.Chat, chatLimiter).RegisterRoutes(v1)
	NewFeedbackHandler(s.Auth, s.Feedback).RegisterRoutes(v1)
	return nil
}
