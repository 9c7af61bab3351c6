package main

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/metrics"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/storage"
)

// buildServices wires the domain services. Optional collaborators are left
// as nil interfaces when their backing infrastructure is absent.
func buildServices(cfg *config.Config, log *zap.Logger, m *metrics.Metrics, db *gorm.DB, redisClient *redis.Client, store storage.ObjectStore) api.Services {
	var revoker service.TokenRevoker = service.NewMemoryTokenRevoker()
	if redisClient != nil {
		revoker = service.NewRedisTokenRevoker(redisClient)
	}

	var llm service.LLMClient
	var consolidator service.Consolidator
	if client := service.NewLLMService(cfg.LLM, log, m); client != nil {
		llm = client
		consolidator = service.NewLLMConsolidator(client)
	} else {
		log.Warn("llm disabled: chat returns 503 and shopping lists skip AI consolidation")
	}

	var email service.IEmailService
	if emailService := service.NewEmailService(cfg.Email, log); emailService.Configured() {
		email = emailService
	}

	auth := service.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.TTL, revoker)
	users := service.NewUserService(db)
	recipes := service.NewRecipeService(db, m)
	libraries := service.NewLibraryService(db, recipes)

	s := api.Services{
		Auth:      auth,
		Users:     users,
		Recipes:   recipes,
		Libraries: libraries,
		Shares:    service.NewShareService(db, recipes, libraries),
		MealPlans: service.NewMealPlanService(db, recipes),
		Shopping:  service.NewShoppingService(db, consolidator, log, m),
		Chat:      service.NewChatService(llm, recipes, users, log, m),
		Images:    service.NewImageService(store, recipes, cfg.Storage.PresignTTL, log),
		Feedback:  service.NewFeedbackService(db, email, log),
	}
	if redisClient != nil {
		s.Cooking = service.NewCookingService(redisClient, recipes)
	}
	return s
}
