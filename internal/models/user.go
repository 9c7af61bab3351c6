package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

const DefaultServings = 4

type User struct {
	Base
	Email        string           `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username     string           `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Name         string           `gorm:"size:100" json:"name"`
	PasswordHash string           `gorm:"not null" json:"-"`
	Role         string           `gorm:"size:20;not null;default:'user'" json:"role"`
	Preferences  *UserPreferences `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"preferences,omitempty"`
}

// IsAdmin reports whether the user may manage feedback.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserPreferences is a one-to-one record updated field by field.
type UserPreferences struct {
	UserID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"-"`
	DietaryRestrictions JSONBStringArray `gorm:"type:jsonb;not null" json:"dietary_restrictions"`
	SkillLevel          string           `gorm:"size:20;not null" json:"skill_level"`
	DefaultServings     int              `gorm:"not null" json:"default_servings"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// TableName returns the table name for the UserPreferences model
func (UserPreferences) TableName() string {
	return "user_preferences"
}

// DefaultPreferences returns the preferences a new account starts with.
func DefaultPreferences(userID uuid.UUID) *UserPreferences {
	return &UserPreferences{
		UserID:              userID,
		DietaryRestrictions: JSONBStringArray{},
		SkillLevel:          SkillBeginner,
		DefaultServings:     DefaultServings,
	}
}
