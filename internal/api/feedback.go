package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/types"
)

type FeedbackHandler struct {
	authService     service.IAuthService
	feedbackService service.IFeedbackService
}

func NewFeedbackHandler(authService service.IAuthService, feedbackService service.IFeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		authService:     authService,
		feedbackService: feedbackService,
	}
}

func (h *FeedbackHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/feedback", middleware.OptionalAuth(h.authService), h.CreateFeedback)

	admin := router.Group("/feedback", middleware.AuthMiddleware(h.authService), middleware.RequireAdmin())
	{
		admin.GET("", h.ListFeedback)
		admin.GET("/:id", h.GetFeedback)
		admin.PATCH("/:id", h.UpdateStatus)
	}
}

// CreateFeedback stores a submission. Anonymous feedback is allowed.
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	var req types.CreateFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.UserAgent == "" {
		req.UserAgent = c.Request.UserAgent()
	}

	var userID *uuid.UUID
	if id, ok := middleware.UserID(c); ok {
		userID = &id
	}

	feedback, err := h.feedbackService.CreateFeedback(c.Request.Context(), &req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

// ListFeedback lists feedback newest first (admin only)
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	filters := &models.FeedbackFilters{
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	if limitParam := c.Query("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 1 {
			abort(c, http.StatusBadRequest, CodeBadRequest, "invalid limit")
			return
		}
		filters.Limit = limit
	}
	if offsetParam := c.Query("offset"); offsetParam != "" {
		offset, err := strconv.Atoi(offsetParam)
		if err != nil || offset < 0 {
			abort(c, http.StatusBadRequest, CodeBadRequest, "invalid offset")
			return
		}
		filters.Offset = offset
	}

	feedback, err := h.feedbackService.ListFeedback(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	feedbackID, ok := pathID(c, "id")
	if !ok {
		return
	}

	feedback, err := h.feedbackService.GetFeedback(c.Request.Context(), feedbackID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

// UpdateStatus sets the triage status and notes (admin only)
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	feedbackID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req types.UpdateFeedbackStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	feedback, err := h.feedbackService.UpdateFeedbackStatus(c.Request.Context(), feedbackID, req.Status, req.AdminNotes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}
