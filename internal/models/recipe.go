package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/search"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	Notes    string  `json:"notes,omitempty"`
	Category string  `json:"category,omitempty"`
}

// Instruction is one step. DurationMinutes is informational only.
type Instruction struct {
	StepNumber      int    `json:"step_number"`
	Text            string `json:"text"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
}

type Recipe struct {
	Base
	OwnerID      uuid.UUID                        `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title        string                           `gorm:"size:200;not null" json:"title"`
	Description  string                           `gorm:"type:text" json:"description"`
	Ingredients  datatypes.JSONSlice[Ingredient]  `json:"ingredients"`
	Instructions datatypes.JSONSlice[Instruction] `json:"instructions"`
	PrepTime     int                              `gorm:"not null" json:"prep_time"`
	CookTime     int                              `gorm:"not null" json:"cook_time"`
	Servings     int                              `gorm:"not null" json:"servings"`
	Cuisine      string                           `gorm:"size:50;index" json:"cuisine"`
	Difficulty   string                           `gorm:"size:10" json:"difficulty"`
	DietaryTags  JSONBStringArray                 `gorm:"type:jsonb" json:"dietary_tags"`
	Tags         JSONBStringArray                 `gorm:"type:jsonb" json:"tags"`
	ImageURL     string                           `gorm:"size:1024" json:"image_url"`
	ImageKey     string                           `gorm:"size:255" json:"-"`
	SourceURL    string                           `gorm:"size:1024" json:"source_url"`
	Notes        string                           `gorm:"type:text" json:"notes"`
	Embedding    pgvector.Vector                  `gorm:"type:vector(64)" json:"-"`
}

// TotalTime is preparation plus cooking time in minutes.
func (r Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// MarshalJSON adds the computed total_time to every recipe payload.
func (r Recipe) MarshalJSON() ([]byte, error) {
	type alias Recipe
	return json.Marshal(struct {
		alias
		TotalTime int `json:"total_time"`
	}{alias(r), r.TotalTime()})
}

// SearchText is the text the embedding is computed from.
func (r *Recipe) SearchText() string {
	parts := []string{r.Title, r.Description, r.Cuisine}
	for _, ing := range r.Ingredients {
		parts = append(parts, ing.Name)
	}
	parts = append(parts, r.Tags...)
	parts = append(parts, r.DietaryTags...)
	return strings.Join(parts, " ")
}

// BeforeSave keeps the embedding in step with the recipe content.
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	r.Embedding = search.Embed(r.SearchText())
	if r.Tags == nil {
		r.Tags = JSONBStringArray{}
	}
	if r.DietaryTags == nil {
		r.DietaryTags = JSONBStringArray{}
	}
	if r.Ingredients == nil {
		r.Ingredients = datatypes.JSONSlice[Ingredient]{}
	}
	if r.Instructions == nil {
		r.Instructions = datatypes.JSONSlice[Instruction]{}
	}
	return nil
}

// Renumber assigns step numbers 1..N in slice order.
func (r *Recipe) Renumber() {
	for i := range r.Instructions {
		r.Instructions[i].StepNumber = i + 1
	}
}
