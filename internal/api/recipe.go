package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

type RecipeHandler struct {
	authService   service.IAuthService
	recipeService service.IRecipeService
	imageService  service.IImageService
	createLimiter *middleware.RateLimiter
}

func NewRecipeHandler(authService service.IAuthService, recipeService service.IRecipeService, imageService service.IImageService, createLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		authService:   authService,
		recipeService: recipeService,
		imageService:  imageService,
		createLimiter: createLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	// image_url points here, so it has to work from an <img> tag
	router.GET("/recipes/:id/image", h.GetImage)

	recipes := router.Group("/recipes", middleware.AuthMiddleware(h.authService))
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.createLimiter.Middleware(middleware.ByUser), h.CreateRecipe)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/image", h.UploadImage)
		recipes.GET("/:id/similar", h.SimilarRecipes)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var q types.RecipeListQuery
	if !bindQuery(c, &q) {
		return
	}

	recipes, page, err := h.recipeService.ListRecipes(c.Request.Context(), userID, &q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.RecipeListResponse{Recipes: recipes, Pagination: page})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// UpdateRecipe replaces the editable fields. Only the owner may do this.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, recipeID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.imageService.DeleteObject(c.Request.Context(), recipe.ImageKey)
	c.Status(http.StatusNoContent)
}

// UploadImage stores the multipart "image" field as the recipe photo
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !h.imageService.Enabled() {
		respondError(c, service.ErrUnavailable)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxImageSize+(1<<20))
	fh, err := c.FormFile("image")
	if err != nil {
		respondError(c, service.NewValidationError("image", "is required and must be at most 5 MB"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	recipe, err := h.imageService.UploadRecipeImage(c.Request.Context(), userID, recipeID, f, fh.Size, fh.Header.Get("Content-Type"), fh.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// GetImage redirects to a short-lived URL for the stored photo
func (h *RecipeHandler) GetImage(c *gin.Context) {
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	url, err := h.imageService.PresignedURL(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, url)
}

func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			abort(c, http.StatusBadRequest, CodeBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	recipes, err := h.recipeService.SimilarRecipes(c.Request.Context(), userID, recipeID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}
