package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

type MealPlanHandler struct {
	authService     service.IAuthService
	mealPlanService service.IMealPlanService
}

func NewMealPlanHandler(authService service.IAuthService, mealPlanService service.IMealPlanService) *MealPlanHandler {
	return &MealPlanHandler{authService: authService, mealPlanService: mealPlanService}
}

func (h *MealPlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	plans := router.Group("/meal-plans", middleware.AuthMiddleware(h.authService))
	{
		plans.GET("", h.ListEntries)
		plans.POST("", h.CreateEntry)
		plans.GET("/tonight", h.Tonight)
		plans.PUT("/:id", h.UpdateEntry)
		plans.DELETE("/:id", h.DeleteEntry)
	}
}

// ListEntries returns the entries in [start, end], the current week by default
func (h *MealPlanHandler) ListEntries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q types.MealPlanRangeQuery
	if !bindQuery(c, &q) {
		return
	}

	entries, err := h.mealPlanService.ListEntries(c.Request.Context(), userID, &q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *MealPlanHandler) CreateEntry(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.MealPlanRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.mealPlanService.CreateEntry(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *MealPlanHandler) UpdateEntry(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.MealPlanRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.mealPlanService.UpdateEntry(c.Request.Context(), userID, entryID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *MealPlanHandler) DeleteEntry(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.mealPlanService.DeleteEntry(c.Request.Context(), userID, entryID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MealPlanHandler) Tonight(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	entry, err := h.mealPlanService.Tonight(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.TonightResponse{Entry: entry})
}
