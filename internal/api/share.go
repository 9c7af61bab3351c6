package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

type ShareHandler struct {
	authService  service.IAuthService
	shareService service.IShareService
}

func NewShareHandler(authService service.IAuthService, shareService service.IShareService) *ShareHandler {
	return &ShareHandler{authService: authService, shareService: shareService}
}

func (h *ShareHandler) RegisterRoutes(router *gin.RouterGroup) {
	shares := router.Group("/shares")

	// anyone holding the token
	shares.GET("/token/:token/recipe", h.GetSharedRecipe)
	shares.PUT("/token/:token/recipe", h.UpdateSharedRecipe)
	shares.GET("/token/:token/library", h.GetSharedLibrary)

	protected := shares.Group("", middleware.AuthMiddleware(h.authService))
	{
		protected.POST("", h.CreateShare)
		protected.GET("/my-shares", h.ListMyShares)
		protected.DELETE("/:id", h.RevokeShare)
	}
}

func (h *ShareHandler) CreateShare(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.CreateShareRequest
	if !bindJSON(c, &req) {
		return
	}

	share, err := h.shareService.CreateShare(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, share)
}

func (h *ShareHandler) ListMyShares(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	shares, err := h.shareService.ListMyShares(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shares": shares})
}

func (h *ShareHandler) RevokeShare(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	shareID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.shareService.RevokeShare(c.Request.Context(), userID, shareID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShareHandler) GetSharedRecipe(c *gin.Context) {
	recipe, share, err := h.shareService.RecipeByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SharedRecipeResponse{
		Recipe:     recipe,
		Permission: share.Permission,
		ExpiresAt:  share.ExpiresAt,
	})
}

// UpdateSharedRecipe edits through an edit-permission share
func (h *ShareHandler) UpdateSharedRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.shareService.UpdateRecipeByToken(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *ShareHandler) GetSharedLibrary(c *gin.Context) {
	library, share, err := h.shareService.LibraryByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SharedLibraryResponse{
		Library:    library,
		Permission: share.Permission,
		ExpiresAt:  share.ExpiresAt,
	})
}
