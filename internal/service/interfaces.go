package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for the current user's account
type IUserService interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetPreferences(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, req *types.UpdatePreferencesRequest) (*models.UserPreferences, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, ownerID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error)
	GetRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	ListRecipes(ctx context.Context, userID uuid.UUID, q *types.RecipeListQuery) ([]models.Recipe, types.Pagination, error)
	UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)
	SimilarRecipes(ctx context.Context, userID, recipeID uuid.UUID, limit int) ([]models.Recipe, error)
}

// ILibraryService defines the interface for recipe libraries
type ILibraryService interface {
	ListLibraries(ctx context.Context, userID uuid.UUID, q types.PageQuery) ([]models.RecipeLibrary, types.Pagination, error)
	CreateLibrary(ctx context.Context, userID uuid.UUID, req *types.LibraryRequest) (*models.RecipeLibrary, error)
	GetLibrary(ctx context.Context, userID, libraryID uuid.UUID) (*models.RecipeLibrary, error)
	UpdateLibrary(ctx context.Context, userID, libraryID uuid.UUID, req *types.LibraryRequest) (*models.RecipeLibrary, error)
	DeleteLibrary(ctx context.Context, userID, libraryID uuid.UUID) error
	AddRecipe(ctx context.Context, userID, libraryID, recipeID uuid.UUID) error
	RemoveRecipe(ctx context.Context, userID, libraryID, recipeID uuid.UUID) error
}

// IShareService defines the interface for share links
type IShareService interface {
	CreateShare(ctx context.Context, userID uuid.UUID, req *types.CreateShareRequest) (*models.Share, error)
	ListMyShares(ctx context.Context, userID uuid.UUID) ([]models.Share, error)
	RevokeShare(ctx context.Context, userID, shareID uuid.UUID) error
	RecipeByToken(ctx context.Context, token string) (*models.Recipe, *models.Share, error)
	UpdateRecipeByToken(ctx context.Context, token string, req *types.RecipeRequest) (*models.Recipe, error)
	LibraryByToken(ctx context.Context, token string) (*models.RecipeLibrary, *models.Share, error)
}

// IMealPlanService defines the interface for meal planning
type IMealPlanService interface {
	ListEntries(ctx context.Context, userID uuid.UUID, q *types.MealPlanRangeQuery) ([]models.MealPlanEntry, error)
	CreateEntry(ctx context.Context, userID uuid.UUID, req *types.MealPlanRequest) (*models.MealPlanEntry, error)
	UpdateEntry(ctx context.Context, userID, entryID uuid.UUID, req *types.MealPlanRequest) (*models.MealPlanEntry, error)
	DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error
	Tonight(ctx context.Context, userID uuid.UUID) (*models.MealPlanEntry, error)
}

// IShoppingService defines the interface for shopping lists
type IShoppingService interface {
	ListLists(ctx context.Context, userID uuid.UUID, q types.PageQuery) ([]models.ShoppingList, types.Pagination, error)
	GetList(ctx context.Context, userID, listID uuid.UUID) (*models.ShoppingList, error)
	CreateList(ctx context.Context, userID uuid.UUID, req *types.ShoppingListRequest) (*models.ShoppingList, error)
	RenameList(ctx context.Context, userID, listID uuid.UUID, name string) (*models.ShoppingList, error)
	DeleteList(ctx context.Context, userID, listID uuid.UUID) error
	AddItem(ctx context.Context, userID, listID uuid.UUID, in *types.ShoppingItemInput) (*models.ShoppingItem, error)
	UpdateItem(ctx context.Context, userID, listID, itemID uuid.UUID, req *types.UpdateShoppingItemRequest) (*models.ShoppingList, error)
	DeleteItem(ctx context.Context, userID, listID, itemID uuid.UUID) error
	GenerateList(ctx context.Context, userID uuid.UUID, req *types.GenerateShoppingListRequest) (*models.ShoppingList, error)
}

// IChatService defines the interface for the assistant
type IChatService interface {
	Reply(ctx context.Context, userID uuid.UUID, req *types.ChatRequest) (*types.ChatResponse, error)
}

// ICookingService defines the interface for cooking-mode progress
type ICookingService interface {
	GetProgress(ctx context.Context, userID, recipeID uuid.UUID) (*CookingProgress, error)
	Apply(ctx context.Context, userID, recipeID uuid.UUID, req *types.CookingActionRequest) (*CookingProgress, error)
}

// IImageService defines the interface for recipe images
type IImageService interface {
	Enabled() bool
	UploadRecipeImage(ctx context.Context, userID, recipeID uuid.UUID, r io.Reader, size int64, contentType, filename string) (*models.Recipe, error)
	PresignedURL(ctx context.Context, recipeID uuid.UUID) (string, error)
	DeleteObject(ctx context.Context, key string)
}

// IFeedbackService defines the interface for feedback operations
type IFeedbackService interface {
	CreateFeedback(ctx context.Context, req *types.CreateFeedbackRequest, userID *uuid.UUID) (*models.Feedback, error)
	GetFeedback(ctx context.Context, id uuid.UUID) (*models.Feedback, error)
	ListFeedback(ctx context.Context, filters *models.FeedbackFilters) ([]models.Feedback, error)
	UpdateFeedbackStatus(ctx context.Context, id uuid.UUID, status string, adminNotes string) (*models.Feedback, error)
}

// IEmailService defines the interface for email operations
type IEmailService interface {
	SendFeedbackNotification(feedback *models.Feedback, user *models.User) error
	SendEmail(to, subject, body string) error
}
