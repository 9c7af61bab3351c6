package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

// UserService handles the current user's account and preferences
type UserService struct {
	db *gorm.DB
}

var _ IUserService = (*UserService)(nil)

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUser returns the user with preferences loaded
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Preferences").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.Preferences == nil {
		user.Preferences = models.DefaultPreferences(user.ID)
	}
	return &user, nil
}

// GetPreferences returns the stored preferences, or the defaults when the
// row is missing.
func (s *UserService) GetPreferences(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	err := s.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultPreferences(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return &prefs, nil
}

// UpdatePreferences applies only the fields present in req
func (s *UserService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *types.UpdatePreferencesRequest) (*models.UserPreferences, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DietaryRestrictions != nil {
		restrictions := models.JSONBStringArray{}
		seen := map[string]bool{}
		for _, r := range *req.DietaryRestrictions {
			r = strings.ToLower(strings.TrimSpace(r))
			if r == "" || seen[r] {
				continue
			}
			seen[r] = true
			restrictions = append(restrictions, r)
		}
		prefs.DietaryRestrictions = restrictions
	}
	if req.SkillLevel != nil {
		prefs.SkillLevel = *req.SkillLevel
	}
	if req.DefaultServings != nil {
		prefs.DefaultServings = *req.DefaultServings
	}

	if err := s.db.WithContext(ctx).Save(prefs).Error; err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return prefs, nil
}
