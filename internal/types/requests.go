package types

// RegisterRequest is the body of POST /users/register
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,min=8,max=72,password"`
	Name     string `json:"name" binding:"max=100"`
}

// LoginRequest is the body of POST /users/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdatePreferencesRequest changes only the fields that are present
type UpdatePreferencesRequest struct {
	DietaryRestrictions *[]string `json:"dietary_restrictions" binding:"omitempty,max=20,dive,min=1,max=50"`
	SkillLevel          *string   `json:"skill_level" binding:"omitempty,skill"`
	DefaultServings     *int      `json:"default_servings" binding:"omitempty,min=1,max=50"`
}

type IngredientInput struct {
	Name     string  `json:"name" yaml:"name" binding:"required,max=200"`
	Quantity float64 `json:"quantity" yaml:"quantity" binding:"gte=0"`
	Unit     string  `json:"unit" yaml:"unit" binding:"max=30"`
	Notes    string  `json:"notes" yaml:"notes" binding:"max=200"`
	Category string  `json:"category" yaml:"category" binding:"max=50"`
}

// InstructionInput is one step. Step numbers are assigned from order.
type InstructionInput struct {
	StepNumber      int    `json:"step_number,omitempty" yaml:"step_number"`
	Text            string `json:"text" yaml:"text" binding:"required,max=2000"`
	DurationMinutes *int   `json:"duration_minutes,omitempty" yaml:"duration_minutes" binding:"omitempty,gte=0,lte=1440"`
}

// RecipeRequest is the create/update body for a recipe. Chat proposals use
// the same shape so a client can submit an applied proposal unchanged.
type RecipeRequest struct {
	Title        string             `json:"title" yaml:"title" binding:"required,max=200"`
	Description  string             `json:"description" yaml:"description" binding:"max=5000"`
	Ingredients  []IngredientInput  `json:"ingredients" yaml:"ingredients" binding:"required,min=1,max=100,dive"`
	Instructions []InstructionInput `json:"instructions" yaml:"instructions" binding:"required,min=1,max=100,dive"`
	PrepTime     int                `json:"prep_time" yaml:"prep_time" binding:"gte=0,lte=10000"`
	CookTime     int                `json:"cook_time" yaml:"cook_time" binding:"gte=0,lte=10000"`
	Servings     int                `json:"servings" yaml:"servings" binding:"gte=0,lte=100"`
	Cuisine      string             `json:"cuisine" yaml:"cuisine" binding:"max=50"`
	Difficulty   string             `json:"difficulty" yaml:"difficulty" binding:"omitempty,difficulty"`
	DietaryTags  []string           `json:"dietary_tags" yaml:"dietary_tags" binding:"max=20,dive,max=50"`
	Tags         []string           `json:"tags" yaml:"tags" binding:"max=20,dive,max=50"`
	ImageURL     string             `json:"image_url,omitempty" yaml:"image_url" binding:"omitempty,max=1024"`
	SourceURL    string             `json:"source_url,omitempty" yaml:"source_url" binding:"omitempty,url,max=1024"`
	Notes        string             `json:"notes,omitempty" yaml:"notes" binding:"max=5000"`
}

// RecipeListQuery holds the filters accepted by GET /recipes
type RecipeListQuery struct {
	PageQuery
	Search       string `form:"search" binding:"max=200"`
	Cuisine      string `form:"cuisine" binding:"max=50"`
	Difficulty   string `form:"difficulty" binding:"omitempty,difficulty"`
	Tag          string `form:"tag" binding:"max=50"`
	Dietary      string `form:"dietary" binding:"max=200"`
	MaxTotalTime int    `form:"max_total_time" binding:"omitempty,min=1"`
	LibraryID    string `form:"library_id" binding:"omitempty,uuid"`
}

type LibraryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=2000"`
	IsPublic    bool   `json:"is_public"`
}

type CreateShareRequest struct {
	ResourceType   string `json:"resource_type" binding:"required,oneof=recipe library"`
	ResourceID     string `json:"resource_id" binding:"required,uuid"`
	Permission     string `json:"permission" binding:"omitempty,permission"`
	ExpiresInHours *int   `json:"expires_in_hours" binding:"omitempty,min=1,max=8760"`
}

type MealPlanRequest struct {
	Date     string `json:"date" binding:"required,isodate"`
	MealType string `json:"meal_type" binding:"required,mealtype"`
	RecipeID string `json:"recipe_id" binding:"required,uuid"`
	Servings *int   `json:"servings" binding:"omitempty,min=1,max=100"`
	Notes    string `json:"notes" binding:"max=1000"`
}

// MealPlanRangeQuery bounds GET /meal-plans. Both ends are inclusive.
type MealPlanRangeQuery struct {
	Start string `form:"start" binding:"omitempty,isodate"`
	End   string `form:"end" binding:"omitempty,isodate"`
}

type ShoppingItemInput struct {
	Name     string  `json:"name" binding:"required,max=200"`
	Quantity float64 `json:"quantity" binding:"gte=0"`
	Unit     string  `json:"unit" binding:"max=30"`
	Category string  `json:"category" binding:"max=50"`
}

type ShoppingListRequest struct {
	Name      string              `json:"name" binding:"required,max=100"`
	WeekStart string              `json:"week_start" binding:"omitempty,isodate"`
	Items     []ShoppingItemInput `json:"items" binding:"max=500,dive"`
}

type RenameShoppingListRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// UpdateShoppingItemRequest changes only the fields that are present
type UpdateShoppingItemRequest struct {
	Checked  *bool    `json:"checked"`
	Name     *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Quantity *float64 `json:"quantity" binding:"omitempty,gte=0"`
	Unit     *string  `json:"unit" binding:"omitempty,max=30"`
	Category *string  `json:"category" binding:"omitempty,max=50"`
}

type GenerateShoppingListRequest struct {
	WeekStart string `json:"week_start" binding:"required,isodate"`
	Replace   bool   `json:"replace"`
	UseAI     bool   `json:"use_ai"`
	Name      string `json:"name" binding:"max=100"`
}

type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required,max=8000"`
}

// ChatRequest carries the whole conversation; the server keeps no history.
type ChatRequest struct {
	Message  string         `json:"message" binding:"required,max=4000"`
	PageType string         `json:"page_type" binding:"required,oneof=recipe_create recipe_edit recipe_detail general"`
	RecipeID string         `json:"recipe_id" binding:"omitempty,uuid"`
	History  []ChatMessage  `json:"history" binding:"max=50,dive"`
	Form     *ChatFormInput `json:"form"`
}

// ChatFormInput is the unsaved recipe form sent along with a chat message.
// Any field may be empty; only sizes are bounded. Slice elements are not
// validated so half-typed rows are accepted.
type ChatFormInput struct {
	Title        string             `json:"title,omitempty" binding:"max=200"`
	Description  string             `json:"description,omitempty" binding:"max=5000"`
	Ingredients  []IngredientInput  `json:"ingredients,omitempty" binding:"max=100"`
	Instructions []InstructionInput `json:"instructions,omitempty" binding:"max=100"`
	PrepTime     int                `json:"prep_time,omitempty" binding:"gte=0,lte=10000"`
	CookTime     int                `json:"cook_time,omitempty" binding:"gte=0,lte=10000"`
	Servings     int                `json:"servings,omitempty" binding:"gte=0,lte=100"`
	Cuisine      string             `json:"cuisine,omitempty" binding:"max=50"`
	Difficulty   string             `json:"difficulty,omitempty" binding:"max=20"`
	DietaryTags  []string           `json:"dietary_tags,omitempty" binding:"max=20"`
	Tags         []string           `json:"tags,omitempty" binding:"max=20"`
	Notes        string             `json:"notes,omitempty" binding:"max=5000"`
}

type CookingActionRequest struct {
	Action string `json:"action" binding:"required,oneof=open next previous jump finish close"`
	Step   int    `json:"step"`
}

// Feedback API types
type CreateFeedbackRequest struct {
	Type        string `json:"type" binding:"required,oneof=bug feature general"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=2000"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	UserAgent   string `json:"user_agent" binding:"max=512"`
	URL         string `json:"url" binding:"max=1024"`
}

type UpdateFeedbackStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=open in_progress resolved closed"`
	AdminNotes string `json:"admin_notes" binding:"max=5000"`
}
