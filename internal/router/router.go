// Package router assembles the gin engine: global middleware, the API
// routes and the metrics endpoint.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/metrics"
	"github.com/pageza/recipebox/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, m *metrics.Metrics, deps api.Dependencies) (*gin.Engine, error) {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(deps.Logger),
		middleware.RequestLogger(deps.Logger),
		middleware.CORS(cfg.Server.CORSOrigins),
		middleware.Metrics(m),
	)

	if err := api.RegisterRoutes(router, deps); err != nil {
		return nil, err
	}

	if cfg.Metrics.Enabled && m != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	return router, nil
}
