package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/database"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Check reports database and redis reachability. Only the database decides
// the status code; redis is optional.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	dbState := "up"
	if err := database.HealthCheck(ctx, h.db); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
		dbState = "down"
	}

	redisState := "disabled"
	if h.redis != nil {
		redisState = "up"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			redisState = "down"
		}
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": dbState,
		"redis":    redisState,
	})
}
