package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

type LibraryHandler struct {
	authService    service.IAuthService
	libraryService service.ILibraryService
}

func NewLibraryHandler(authService service.IAuthService, libraryService service.ILibraryService) *LibraryHandler {
	return &LibraryHandler{authService: authService, libraryService: libraryService}
}

func (h *LibraryHandler) RegisterRoutes(router *gin.RouterGroup) {
	libraries := router.Group("/libraries", middleware.AuthMiddleware(h.authService))
	{
		libraries.GET("", h.ListLibraries)
		libraries.POST("", h.CreateLibrary)
		libraries.GET("/:id", h.GetLibrary)
		libraries.PUT("/:id", h.UpdateLibrary)
		libraries.DELETE("/:id", h.DeleteLibrary)
		libraries.POST("/:id/recipes/:recipe_id", h.AddRecipe)
		libraries.DELETE("/:id/recipes/:recipe_id", h.RemoveRecipe)
	}
}

func (h *LibraryHandler) ListLibraries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q types.PageQuery
	if !bindQuery(c, &q) {
		return
	}

	libraries, page, err := h.libraryService.ListLibraries(c.Request.Context(), userID, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.LibraryListResponse{Libraries: libraries, Pagination: page})
}

func (h *LibraryHandler) CreateLibrary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.LibraryRequest
	if !bindJSON(c, &req) {
		return
	}

	library, err := h.libraryService.CreateLibrary(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, library)
}

func (h *LibraryHandler) GetLibrary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	libraryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	library, err := h.libraryService.GetLibrary(c.Request.Context(), userID, libraryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, library)
}

func (h *LibraryHandler) UpdateLibrary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	libraryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.LibraryRequest
	if !bindJSON(c, &req) {
		return
	}

	library, err := h.libraryService.UpdateLibrary(c.Request.Context(), userID, libraryID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, library)
}

// DeleteLibrary removes the library but never its recipes
func (h *LibraryHandler) DeleteLibrary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	libraryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.libraryService.DeleteLibrary(c.Request.Context(), userID, libraryID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) AddRecipe(c *gin.Context) {
	h.membership(c, h.libraryService.AddRecipe)
}

func (h *LibraryHandler) RemoveRecipe(c *gin.Context) {
	h.membership(c, h.libraryService.RemoveRecipe)
}

type membershipFunc func(ctx context.Context, userID, libraryID, recipeID uuid.UUID) error

func (h *LibraryHandler) membership(c *gin.Context, fn membershipFunc) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	libraryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "recipe_id")
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), userID, libraryID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
