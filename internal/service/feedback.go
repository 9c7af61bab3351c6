package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

const defaultFeedbackLimit = 50

type FeedbackService struct {
	db           *gorm.DB
	emailService IEmailService
	logger       *zap.Logger
}

var _ IFeedbackService = (*FeedbackService)(nil)

func NewFeedbackService(db *gorm.DB, emailService IEmailService, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		db:           db,
		emailService: emailService,
		logger:       logger,
	}
}

func (s *FeedbackService) CreateFeedback(ctx context.Context, req *types.CreateFeedbackRequest, userID *uuid.UUID) (*models.Feedback, error) {
	feedback := &models.Feedback{
		UserID:      userID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		UserAgent:   req.UserAgent,
		URL:         req.URL,
		Status:      "open",
	}
	if feedback.Priority == "" {
		feedback.Priority = "medium"
	}

	if err := s.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	var user *models.User
	if userID != nil {
		var u models.User
		if err := s.db.WithContext(ctx).First(&u, "id = ?", *userID).Error; err != nil {
			s.logger.Warn("could not load user for feedback notification", zap.Error(err))
		} else {
			user = &u
		}
	}

	if s.emailService != nil {
		notify := *feedback
		go func() {
			if err := s.emailService.SendFeedbackNotification(&notify, user); err != nil {
				s.logger.Error("failed to send feedback notification",
					zap.String("feedback_id", notify.ID.String()), zap.Error(err))
			}
		}()
	}

	return feedback, nil
}

func (s *FeedbackService) GetFeedback(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := s.db.WithContext(ctx).Preload("User").First(&feedback, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return &feedback, nil
}

func (s *FeedbackService) ListFeedback(ctx context.Context, filters *models.FeedbackFilters) ([]models.Feedback, error) {
	query := s.db.WithContext(ctx).Preload("User")

	limit := defaultFeedbackLimit
	if filters != nil {
		if filters.Type != "" {
			query = query.Where("type = ?", filters.Type)
		}
		if filters.Status != "" {
			query = query.Where("status = ?", filters.Status)
		}
		if filters.Priority != "" {
			query = query.Where("priority = ?", filters.Priority)
		}
		if filters.Limit > 0 && filters.Limit <= 200 {
			limit = filters.Limit
		}
		if filters.Offset > 0 {
			query = query.Offset(filters.Offset)
		}
	}

	feedback := []models.Feedback{}
	if err := query.Order("created_at DESC").Limit(limit).Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return feedback, nil
}

func (s *FeedbackService) UpdateFeedbackStatus(ctx context.Context, id uuid.UUID, status string, adminNotes string) (*models.Feedback, error) {
	updates := map[string]interface{}{
		"status": status,
	}
	if adminNotes != "" {
		updates["admin_notes"] = adminNotes
	}

	result := s.db.WithContext(ctx).Model(&models.Feedback{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update feedback status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetFeedback(ctx, id)
}
