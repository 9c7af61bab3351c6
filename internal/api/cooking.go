package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// CookingHandler serves cooking-mode progress. cookingService is nil
// without redis and every route answers 503.
type CookingHandler struct {
	authService    service.IAuthService
	cookingService service.ICookingService
}

func NewCookingHandler(authService service.IAuthService, cookingService service.ICookingService) *CookingHandler {
	return &CookingHandler{authService: authService, cookingService: cookingService}
}

func (h *CookingHandler) RegisterRoutes(router *gin.RouterGroup) {
	cooking := router.Group("/recipes/:id/cooking", middleware.AuthMiddleware(h.authService))
	{
		cooking.GET("", h.GetProgress)
		cooking.POST("", h.Apply)
	}
}

func (h *CookingHandler) GetProgress(c *gin.Context) {
	if h.cookingService == nil {
		respondError(c, service.ErrUnavailable)
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	progress, err := h.cookingService.GetProgress(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// Apply performs one cooking-mode action and returns the new state
func (h *CookingHandler) Apply(c *gin.Context) {
	if h.cookingService == nil {
		respondError(c, service.ErrUnavailable)
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.CookingActionRequest
	if !bindJSON(c, &req) {
		return
	}

	progress, err := h.cookingService.Apply(c.Request.Context(), userID, recipeID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
