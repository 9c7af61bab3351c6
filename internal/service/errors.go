package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrShareGone          = errors.New("share has been revoked or has expired")
	ErrLLMDisabled        = errors.New("assistant is not configured")
	ErrLLMUpstream        = errors.New("assistant request failed")
	ErrUnavailable        = errors.New("service unavailable")
)

// ValidationError reports domain rule failures by field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ShoppingListExistsError is returned when a generated list already covers
// the requested week and the caller did not ask to replace it.
type ShoppingListExistsError struct {
	ListID uuid.UUID
}

func (e *ShoppingListExistsError) Error() string {
	return fmt.Sprintf("a shopping list already exists for this week (%s)", e.ListID)
}

// Is lets errors.Is(err, ErrConflict) match.
func (e *ShoppingListExistsError) Is(target error) bool {
	return target == ErrConflict
}

// CookingStateError is returned when an action does not apply to the
// current cooking state.
type CookingStateError struct {
	Action string
	Status string
}

func (e *CookingStateError) Error() string {
	return fmt.Sprintf("cannot %s while cooking mode is %s", e.Action, e.Status)
}

// Is lets errors.Is(err, ErrConflict) match.
func (e *CookingStateError) Is(target error) bool {
	return target == ErrConflict
}
