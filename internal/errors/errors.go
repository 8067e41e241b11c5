package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/workbridg/workbridg-web/internal/backend"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeSessionExpired = "SESSION_EXPIRED"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeInvalidFormat = "INVALID_FORMAT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeBadGateway         = "BAD_GATEWAY"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// LoginPath is where clients are sent once their session is gone.
const LoginPath = "/login"

// APIError represents a standardized API error response
type APIError struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
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

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  message,
		Redirect: LoginPath,
	})
}

// SessionExpired sends a 401 response telling the client to log in again
func SessionExpired(c *gin.Context) {
	RespondWithError(c, http.StatusUnauthorized, &APIError{
		Code:     ErrCodeSessionExpired,
		Message:  "Your session has expired, please log in again",
		Redirect: LoginPath,
	})
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

// InvalidFormat sends a 400 response for a body that could not be decoded
func InvalidFormat(c *gin.Context, message string) {
	if message == "" {
		message = "Malformed request body"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidFormat, message))
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

// BadGateway sends a 502 response
func BadGateway(c *gin.Context, message string) {
	if message == "" {
		message = "The Workbridg service returned an error"
	}
	RespondWithError(c, http.StatusBadGateway, NewAPIError(ErrCodeBadGateway, message))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}

// RespondBackendError translates a failed backend call. It reports whether
// err was a backend error; other errors are left to the caller.
func RespondBackendError(c *gin.Context, err error) bool {
	if errors.Is(err, backend.ErrSessionExpired) {
		SessionExpired(c)
		return true
	}
	if errors.Is(err, backend.ErrUnavailable) {
		ServiceUnavailable(c, "The Workbridg service is unreachable")
		return true
	}

	var be *backend.Error
	if !errors.As(err, &be) {
		return false
	}
	switch {
	case be.Status == http.StatusNotFound:
		NotFound(c, be.Message)
	case be.Status == http.StatusBadRequest || be.Status == http.StatusUnprocessableEntity:
		BadRequest(c, be.Message)
	case be.Status == http.StatusForbidden:
		Forbidden(c, be.Message)
	case be.Status == http.StatusConflict:
		Conflict(c, be.Message)
	case be.Status == http.StatusUnauthorized:
		Unauthorized(c, be.Message)
	default:
		BadGateway(c, "")
	}
	return true
}
