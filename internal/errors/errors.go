package errors

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeForbiddenCreation = "FORBIDDEN_CREATION"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Error kinds. Service errors wrap exactly one of these so the boundary
// (HTTP handlers or the bot engine) can decide what the caller sees.
var (
	ErrKindValidation        = stderrors.New("validation failed")
	ErrKindForbidden         = stderrors.New("forbidden")
	ErrKindForbiddenCreation = stderrors.New("forbidden creation")
	ErrKindNotFound          = stderrors.New("not found")
	ErrKindConflict          = stderrors.New("conflict")
	ErrKindUnavailable       = stderrors.New("unavailable")
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// RespondWithServiceError maps an error returned by the service layer to a
// response. Errors of unknown kind are treated as transient store failures and
// never leak their message.
func RespondWithServiceError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, ErrKindValidation):
		BadRequestWithDetails(c, "Validation failed", []string{Message(err, ErrKindValidation)})
	case stderrors.Is(err, ErrKindForbiddenCreation):
		RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbiddenCreation, Message(err, ErrKindForbiddenCreation)))
	case stderrors.Is(err, ErrKindForbidden):
		Forbidden(c, Message(err, ErrKindForbidden))
	case stderrors.Is(err, ErrKindNotFound):
		NotFound(c, Message(err, ErrKindNotFound))
	case stderrors.Is(err, ErrKindConflict):
		Conflict(c, Message(err, ErrKindConflict))
	case stderrors.Is(err, ErrKindUnavailable):
		ServiceUnavailable(c, Message(err, ErrKindUnavailable))
	default:
		_ = c.Error(err)
		InternalError(c, "")
	}
}

// Message returns the error text without the leading kind, so
// "not found: board not found" becomes "board not found".
func Message(err, kind error) string {
	return strings.TrimPrefix(err.Error(), kind.Error()+": ")
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}
