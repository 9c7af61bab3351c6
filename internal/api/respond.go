package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/pageza/recipebox/backend/internal/validation"
)

// Error codes returned in the "code" field
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidation         = "VALIDATION_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeShoppingListExists = "SHOPPING_LIST_EXISTS"
	CodeGone               = "GONE"
	CodeUpstream           = "UPSTREAM_ERROR"
	CodeUnavailable        = "UNAVAILABLE"
	CodeInternal           = "INTERNAL"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error          string            `json:"error"`
	Code           string            `json:"code"`
	Fields         map[string]string `json:"fields,omitempty"`
	ExistingListID *uuid.UUID        `json:"existing_list_id,omitempty"`
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg, Code: code})
}

// respondError maps a service error onto a status code and JSON body.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var exists *service.ShoppingListExistsError

	switch {
	case errors.As(err, &exists):
		id := exists.ListID
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{
			Error:          err.Error(),
			Code:           CodeShoppingListExists,
			ExistingListID: &id,
		})
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation failed",
			Code:   CodeValidation,
			Fields: verr.Fields,
		})
	case errors.Is(err, service.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{
			Error:  err.Error(),
			Code:   CodeConflict,
			Fields: map[string]string{"email": "is already registered"},
		})
	case errors.Is(err, service.ErrUsernameTaken):
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{
			Error:  err.Error(),
			Code:   CodeConflict,
			Fields: map[string]string{"username": "is already taken"},
		})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		abort(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		abort(c, http.StatusForbidden, CodeForbidden, "you do not have permission to do that")
	case errors.Is(err, service.ErrNotFound):
		abort(c, http.StatusNotFound, CodeNotFound, "resource not found")
	case errors.Is(err, service.ErrConflict):
		abort(c, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, service.ErrShareGone):
		abort(c, http.StatusGone, CodeGone, err.Error())
	case errors.Is(err, service.ErrLLMUpstream):
		abort(c, http.StatusBadGateway, CodeUpstream, err.Error())
	case errors.Is(err, service.ErrLLMDisabled), errors.Is(err, service.ErrUnavailable):
		abort(c, http.StatusServiceUnavailable, CodeUnavailable, err.Error())
	default:
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

// bindJSON decodes the body into req. Malformed JSON is a 400, failed
// binding rules are a 422.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	if fields := validation.FieldErrors(err); fields != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation failed",
			Code:   CodeValidation,
			Fields: fields,
		})
		return
	}
	abort(c, http.StatusBadRequest, CodeBadRequest, "invalid request")
}

// pathID parses a uuid path parameter
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		abort(c, http.StatusBadRequest, CodeBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user id. Routes using it sit
// behind AuthMiddleware.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		abort(c, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
	}
	return id, ok
}
