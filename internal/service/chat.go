package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/backend/internal/metrics"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
	"github.com/pageza/recipebox/backend/internal/validation"
)

// MaxChatHistory is how many prior messages are forwarded to the model
const MaxChatHistory = 20

const chatSystemPrompt = `You are a friendly cooking assistant inside a recipe app.
Answer cooking questions briefly. When the user asks you to create or change a recipe, include a full recipe proposal.
Always respond with a single JSON object: {"reply": "text shown to the user", "proposal": null}
or {"reply": "...", "proposal": {"title": "", "description": "", "ingredients": [{"name": "", "quantity": 0, "unit": "", "notes": ""}],
"instructions": [{"text": ""}], "prep_time": 0, "cook_time": 0, "servings": 0, "cuisine": "", "difficulty": "easy|medium|hard",
"dietary_tags": [], "tags": []}}.
Times are whole minutes. Quantities are numbers. Respect the user's dietary restrictions.`

// ChatService answers assistant messages. It keeps no history and never
// writes recipes; proposals are returned for the client to apply.
type ChatService struct {
	llm     LLMClient
	recipes *RecipeService
	users   *UserService
	logger  *zap.Logger
	metrics *metrics.Metrics
}

var _ IChatService = (*ChatService)(nil)

// NewChatService creates a ChatService. A nil llm disables chat.
func NewChatService(llm LLMClient, recipes *RecipeService, users *UserService, logger *zap.Logger, m *metrics.Metrics) *ChatService {
	return &ChatService{llm: llm, recipes: recipes, users: users, logger: logger, metrics: m}
}

type chatReply struct {
	Reply    string          `json:"reply"`
	Proposal json.RawMessage `json:"proposal"`
}

// Reply sends the conversation to the model and interprets its answer
func (s *ChatService) Reply(ctx context.Context, userID uuid.UUID, req *types.ChatRequest) (*types.ChatResponse, error) {
	if s.llm == nil {
		return nil, ErrLLMDisabled
	}

	prefs, err := s.users.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	var recipe *models.Recipe
	if req.RecipeID != "" {
		id, err := uuid.Parse(req.RecipeID)
		if err != nil {
			return nil, NewValidationError("recipe_id", "must be a valid UUID")
		}
		if recipe, err = s.recipes.GetRecipe(ctx, userID, id); err != nil {
			return nil, err
		}
	}

	messages := []Message{{Role: "system", Content: buildChatContext(req, prefs, recipe)}}
	history := req.History
	if len(history) > MaxChatHistory {
		history = history[len(history)-MaxChatHistory:]
	}
	for _, m := range history {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, Message{Role: "user", Content: req.Message})

	raw, err := s.llm.Complete(ctx, messages, true)
	if err != nil {
		if errors.Is(err, ErrLLMUpstream) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrLLMUpstream, err)
	}

	resp := interpretReply(raw)
	s.logger.Debug("assistant replied", zap.String("user_id", userID.String()), zap.String("type", resp.Type))
	s.metrics.ChatReply(resp.Type)
	return resp, nil
}

// interpretReply turns model output into a response. Output that is not
// the expected JSON becomes a plain message; a proposal that fails recipe
// validation is dropped.
func interpretReply(raw string) *types.ChatResponse {
	var reply chatReply
	if err := decodeJSONReply(raw, &reply); err != nil {
		return &types.ChatResponse{Type: types.ChatTypeMessage, Message: StripCodeFence(raw)}
	}
	message := strings.TrimSpace(reply.Reply)

	proposal := decodeProposal(reply.Proposal)
	if proposal == nil {
		if message == "" {
			message = StripCodeFence(raw)
		}
		return &types.ChatResponse{Type: types.ChatTypeMessage, Message: message}
	}
	if message == "" {
		message = "Here is a recipe suggestion."
	}
	return &types.ChatResponse{Type: types.ChatTypeProposal, Message: message, Proposal: proposal}
}

func decodeProposal(raw json.RawMessage) *types.RecipeRequest {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var p types.RecipeRequest
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	for i := range p.Instructions {
		p.Instructions[i].StepNumber = i + 1
	}
	if p.Difficulty != "" {
		p.Difficulty = strings.ToLower(p.Difficulty)
		if p.Difficulty != models.DifficultyEasy && p.Difficulty != models.DifficultyMedium && p.Difficulty != models.DifficultyHard {
			p.Difficulty = ""
		}
	}
	if err := validation.Struct(&p); err != nil {
		return nil
	}
	return &p
}

func buildChatContext(req *types.ChatRequest, prefs *models.UserPreferences, recipe *models.Recipe) string {
	var b strings.Builder
	b.WriteString(chatSystemPrompt)
	b.WriteString("\n\nUser preferences:")
	if len(prefs.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "\n- dietary restrictions: %s", strings.Join(prefs.DietaryRestrictions, ", "))
	}
	fmt.Fprintf(&b, "\n- skill level: %s\n- default servings: %d", prefs.SkillLevel, prefs.DefaultServings)

	fmt.Fprintf(&b, "\n\nThe user is on the %s page.", strings.ReplaceAll(req.PageType, "_", " "))
	if recipe != nil {
		if data, err := json.Marshal(recipeContext(recipe)); err == nil {
			fmt.Fprintf(&b, "\nCurrent recipe:\n%s", data)
		}
	}
	if req.Form != nil {
		if data, err := json.Marshal(req.Form); err == nil {
			fmt.Fprintf(&b, "\nCurrent form values (unsaved):\n%s", data)
		}
	}
	return b.String()
}

// recipeContext is the subset of a recipe the model needs
func recipeContext(r *models.Recipe) map[string]interface{} {
	return map[string]interface{}{
		"title":        r.Title,
		"description":  r.Description,
		"ingredients":  r.Ingredients,
		"instructions": r.Instructions,
		"prep_time":    r.PrepTime,
		"cook_time":    r.CookTime,
		"servings":     r.Servings,
		"cuisine":      r.Cuisine,
		"difficulty":   r.Difficulty,
		"dietary_tags": r.DietaryTags,
		"tags":         r.Tags,
	}
}
