package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/darkodi/url-alias/internal/alias"
	"github.com/darkodi/url-alias/internal/repository"
)

// AppError represents an application error with HTTP context
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

// ErrorResponse is the JSON response format for errors
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// WriteJSON writes the error as JSON response
func (e *AppError) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: e})
}

// ============================================================
// ERROR CONSTRUCTORS
// ============================================================

// Validation Errors (400)
func BadRequest(message string) *AppError {
	return &AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func InvalidPath(details string) *AppError {
	return &AppError{
		Code:       "INVALID_PATH",
		Message:    "The provided alias path is invalid",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

func InvalidJSON(details string) *AppError {
	return &AppError{
		Code:       "INVALID_JSON",
		Message:    "Invalid JSON in request body",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

func MissingField(field string) *AppError {
	return &AppError{
		Code:       "MISSING_FIELD",
		Message:    fmt.Sprintf("Required field '%s' is missing", field),
		StatusCode: http.StatusBadRequest,
	}
}

func ValidationFailed(details string) *AppError {
	return &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

func DuplicatePath(details string) *AppError {
	return &AppError{
		Code:       "DUPLICATE_PATH",
		Message:    "An alias with this path already exists",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

func InvalidResource(details string) *AppError {
	return &AppError{
		Code:       "INVALID_RESOURCE",
		Message:    "The resource must have the form identifier:value",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

func InvalidArgument(details string) *AppError {
	return &AppError{
		Code:       "INVALID_ARGUMENT",
		Message:    "Invalid argument",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

// Not Found Errors (404)
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func AliasNotFound(path string) *AppError {
	return &AppError{
		Code:       "ALIAS_NOT_FOUND",
		Message:    fmt.Sprintf("No alias for '%s'", path),
		StatusCode: http.StatusNotFound,
	}
}

// Conflict Errors (409)
func Conflict(message string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func Unresolvable(details string) *AppError {
	return &AppError{
		Code:       "UNRESOLVABLE",
		Message:    "The alias path could not be built",
		Details:    details,
		StatusCode: http.StatusConflict,
	}
}

// Rate Limit Error (429)
func RateLimitExceeded() *AppError {
	return &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please try again later",
		StatusCode: http.StatusTooManyRequests,
	}
}

// Server Errors (500)
func Internal(details string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An internal server error occurred",
		Details:    details,
		StatusCode: http.StatusInternalServerError,
	}
}

func DatabaseError() *AppError {
	return &AppError{
		Code:       "DATABASE_ERROR",
		Message:    "A database error occurred",
		StatusCode: http.StatusInternalServerError,
	}
}

// Not Implemented (501)
func NotImplemented(details string) *AppError {
	return &AppError{
		Code:       "NOT_IMPLEMENTED",
		Message:    "This operation is not implemented",
		Details:    details,
		StatusCode: http.StatusNotImplemented,
	}
}

// ============================================================
// MAPPING
// ============================================================

// FromError maps an error from the service layer to an AppError.
// Driver failures are not echoed to the client.
func FromError(err error) *AppError {
	var appErr *AppError
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &appErr):
		return appErr
	case alias.ErrNotFound.Has(err):
		return AliasNotFound(err.Error())
	case repository.ErrNotFound.Has(err):
		return NotFound(err.Error())
	case alias.ErrDuplicatePath.Has(err):
		return DuplicatePath(err.Error())
	case alias.ErrInvalidResource.Has(err):
		return InvalidResource(err.Error())
	case alias.ErrInvalidArgument.Has(err), repository.ErrInvalidMove.Has(err):
		return InvalidArgument(err.Error())
	case alias.ErrResolution.Has(err):
		return Unresolvable(err.Error())
	case alias.ErrUnsupported.Has(err):
		return NotImplemented(err.Error())
	case repository.Error.Has(err):
		return DatabaseError()
	default:
		return Internal("")
	}
}
