package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipebox/backend/internal/types"
)

const (
	CookingClosed    = "closed"
	CookingActive    = "active"
	CookingCompleted = "completed"

	CookingOpen     = "open"
	CookingNext     = "next"
	CookingPrevious = "previous"
	CookingJump     = "jump"
	CookingFinish   = "finish"
	CookingClose    = "close"

	// CookingTTL bounds how long an idle session is remembered
	CookingTTL = 12 * time.Hour
)

// CookingProgress is one user's position in one recipe. ResumeStep is the
// step an "open" returns to; zero means start from the beginning.
type CookingProgress struct {
	RecipeID    uuid.UUID `json:"recipe_id"`
	Status      string    `json:"status"`
	CurrentStep int       `json:"current_step"`
	TotalSteps  int       `json:"total_steps"`
	ResumeStep  int       `json:"resume_step"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CookingService keeps cooking-mode progress in redis
type CookingService struct {
	client  *redis.Client
	recipes *RecipeService
	ttl     time.Duration
	now     func() time.Time
}

var _ ICookingService = (*CookingService)(nil)

func NewCookingService(client *redis.Client, recipes *RecipeService) *CookingService {
	return &CookingService{client: client, recipes: recipes, ttl: CookingTTL, now: time.Now}
}

// WithClock replaces the time source
func (s *CookingService) WithClock(now func() time.Time) *CookingService {
	s.now = now
	return s
}

func cookingKey(userID, recipeID uuid.UUID) string {
	return fmt.Sprintf("cooking:%s:%s", userID, recipeID)
}

// GetProgress returns the saved progress, or a closed state when none exists
func (s *CookingService) GetProgress(ctx context.Context, userID, recipeID uuid.UUID) (*CookingProgress, error) {
	recipe, err := s.recipes.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID, recipe.ID, len(recipe.Instructions))
}

func (s *CookingService) load(ctx context.Context, userID, recipeID uuid.UUID, total int) (*CookingProgress, error) {
	p := &CookingProgress{RecipeID: recipeID, Status: CookingClosed, TotalSteps: total}

	data, err := s.client.Get(ctx, cookingKey(userID, recipeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cooking progress: %w", err)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to decode cooking progress: %w", err)
	}

	// the recipe may have been edited since
	p.TotalSteps = total
	p.CurrentStep = clampStep(p.CurrentStep, total)
	p.ResumeStep = clampStep(p.ResumeStep, total)
	if p.Status == CookingActive && p.CurrentStep == 0 {
		p.Status = CookingClosed
	}
	return p, nil
}

func clampStep(step, total int) int {
	if step > total {
		return total
	}
	if step < 0 {
		return 0
	}
	return step
}

func (s *CookingService) save(ctx context.Context, userID uuid.UUID, p *CookingProgress) error {
	p.UpdatedAt = s.now()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode cooking progress: %w", err)
	}
	if err := s.client.Set(ctx, cookingKey(userID, p.RecipeID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cooking progress: %w", err)
	}
	return nil
}

// Apply performs a cooking-mode action and stores the result
func (s *CookingService) Apply(ctx context.Context, userID, recipeID uuid.UUID, req *types.CookingActionRequest) (*CookingProgress, error) {
	recipe, err := s.recipes.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	p, err := s.load(ctx, userID, recipe.ID, len(recipe.Instructions))
	if err != nil {
		return nil, err
	}
	if err := transition(p, req.Action, req.Step); err != nil {
		return nil, err
	}
	if err := s.save(ctx, userID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// transition applies action to p in place
func transition(p *CookingProgress, action string, step int) error {
	if action != CookingOpen && action != CookingClose && p.Status != CookingActive {
		return &CookingStateError{Action: action, Status: p.Status}
	}

	switch action {
	case CookingOpen:
		if p.TotalSteps == 0 {
			return NewValidationError("instructions", "recipe has no steps to cook")
		}
		if p.Status != CookingActive {
			p.CurrentStep = p.ResumeStep
			if p.CurrentStep < 1 {
				p.CurrentStep = 1
			}
		}
		p.Status = CookingActive
	case CookingNext:
		if p.CurrentStep >= p.TotalSteps {
			p.Status = CookingCompleted
			p.CurrentStep = p.TotalSteps
			p.ResumeStep = 0
			return nil
		}
		p.CurrentStep++
	case CookingPrevious:
		if p.CurrentStep > 1 {
			p.CurrentStep--
		}
	case CookingJump:
		if step < 1 || step > p.TotalSteps {
			return NewValidationError("step", fmt.Sprintf("must be between 1 and %d", p.TotalSteps))
		}
		p.CurrentStep = step
	case CookingFinish:
		p.Status = CookingCompleted
		p.ResumeStep = 0
		return nil
	case CookingClose:
		if p.Status == CookingActive {
			p.ResumeStep = p.CurrentStep
		}
		p.Status = CookingClosed
		p.CurrentStep = 0
		return nil
	default:
		return NewValidationError("action", "unknown action")
	}

	p.ResumeStep = p.CurrentStep
	return nil
}
