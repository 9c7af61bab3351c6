package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// UserHandler serves registration, login and the current user's account
type UserHandler struct {
	authService service.IAuthService
	userService service.IUserService
	limiter     *middleware.RateLimiter
}

func NewUserHandler(authService service.IAuthService, userService service.IUserService, limiter *middleware.RateLimiter) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
		limiter:     limiter,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("/register", h.limiter.Middleware(middleware.ByIP), h.Register)
		users.POST("/login", h.limiter.Middleware(middleware.ByIP), h.Login)
	}

	protected := users.Group("", middleware.AuthMiddleware(h.authService))
	{
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.Me)
		protected.GET("/me/preferences", h.GetPreferences)
		protected.PATCH("/me/preferences", h.UpdatePreferences)
		protected.PUT("/me/preferences", h.UpdatePreferences)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.AuthResponse{Token: token, User: user})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AuthResponse{Token: token, User: user})
}

// Logout revokes the presented token
func (h *UserHandler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		abort(c, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the user together with their preferences
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetPreferences(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	prefs, err := h.userService.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences changes only the fields present in the body
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.UpdatePreferencesRequest
	if !bindJSON(c, &req) {
		return
	}
	prefs, err := h.userService.UpdatePreferences(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
