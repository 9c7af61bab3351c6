package types

import (
	"time"

	"github.com/pageza/recipebox/backend/internal/models"
)

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type RecipeListResponse struct {
	Recipes []models.Recipe `json:"recipes"`
	Pagination
}

type LibraryListResponse struct {
	Libraries []models.RecipeLibrary `json:"libraries"`
	Pagination
}

type ShoppingListListResponse struct {
	ShoppingLists []ShoppingListResponse `json:"shopping_lists"`
	Pagination
}

// ShoppingListResponse adds the category-grouped view to a list.
type ShoppingListResponse struct {
	*models.ShoppingList
	Categories []models.CategoryGroup `json:"categories"`
}

// NewShoppingListResponse sorts the list's items and groups them.
func NewShoppingListResponse(l *models.ShoppingList) ShoppingListResponse {
	groups := l.Grouped()
	return ShoppingListResponse{ShoppingList: l, Categories: groups}
}

// SharedRecipeResponse is what a share link resolves to.
type SharedRecipeResponse struct {
	Recipe     *models.Recipe `json:"recipe"`
	Permission string         `json:"permission"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
}

type SharedLibraryResponse struct {
	Library    *models.RecipeLibrary `json:"library"`
	Permission string                `json:"permission"`
	ExpiresAt  *time.Time            `json:"expires_at,omitempty"`
}

// TonightResponse wraps today's dinner; Entry is null when none is planned.
type TonightResponse struct {
	Entry *models.MealPlanEntry `json:"entry"`
}

const (
	ChatTypeMessage  = "message"
	ChatTypeProposal = "proposal"
)

// ChatResponse is either a plain message or a message with a proposal.
type ChatResponse struct {
	Type     string         `json:"type"`
	Message  string         `json:"message"`
	Proposal *RecipeRequest `json:"proposal,omitempty"`
}
