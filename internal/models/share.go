package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ShareResourceRecipe  = "recipe"
	ShareResourceLibrary = "library"

	PermissionView = "view"
	PermissionEdit = "edit"
)

// Share grants token holders access to a recipe or library without an account.
type Share struct {
	Base
	Token        string     `gorm:"size:64;uniqueIndex;not null" json:"token"`
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	ResourceType string     `gorm:"size:10;not null;index:idx_shares_resource" json:"resource_type"`
	ResourceID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_shares_resource" json:"resource_id"`
	Permission   string     `gorm:"size:10;not null" json:"permission"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

// Revoked reports whether the owner has withdrawn the share.
func (s *Share) Revoked() bool {
	return s.RevokedAt != nil
}

// Expired reports whether the share's expiry has passed at now.
func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// CanEdit reports whether the share allows modifying the resource.
func (s *Share) CanEdit() bool {
	return s.Permission == PermissionEdit
}
