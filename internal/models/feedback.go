package models

import (
	"github.com/google/uuid"
)

type Feedback struct {
	Base
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type        string     `gorm:"size:20;not null" json:"type"` // bug, feature, general
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Priority    string     `gorm:"size:20;not null" json:"priority"` // low, medium, high, critical
	Status      string     `gorm:"size:20;not null" json:"status"`   // open, in_progress, resolved, closed
	UserAgent   string     `gorm:"size:512" json:"user_agent"`
	URL         string     `gorm:"size:1024" json:"url"`
	AdminNotes  string     `gorm:"type:text" json:"admin_notes"`
}

// TableName returns the table name for the Feedback model
func (Feedback) TableName() string {
	return "feedback"
}

// FeedbackFilters represents filters for listing feedback
type FeedbackFilters struct {
	Type     string `json:"type,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
