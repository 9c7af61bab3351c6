package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

// ChatHandler serves the recipe assistant. Replies may carry a recipe
// proposal, which is never saved here.
type ChatHandler struct {
	authService service.IAuthService
	chatService service.IChatService
	limiter     *middleware.RateLimiter
}

func NewChatHandler(authService service.IAuthService, chatService service.IChatService, limiter *middleware.RateLimiter) *ChatHandler {
	return &ChatHandler{authService: authService, chatService: chatService, limiter: limiter}
}

func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/chat",
		middleware.AuthMiddleware(h.authService),
		h.limiter.Middleware(middleware.ByUser),
		h.Chat)
}

func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.ChatRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.chatService.Reply(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
