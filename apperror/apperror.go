// Package apperror defines a centralized system for application-specific errors.
// Every handler shapes its failures through this package, so clients always receive
// the same JSON structure and internal details never leak into a response.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of an application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the database
	DatabaseError
	// ConfigError represents an error related to application configuration
	ConfigError
	// AuthError represents a missing, malformed or expired bearer token
	AuthError
	// InvalidCredentialsError represents a failed username/password check
	InvalidCredentialsError
	// NotFoundError represents a resource not found error
	NotFoundError
	// ValidationError represents an input validation error
	ValidationError
	// BadRequestError represents a generic bad request
	BadRequestError
	// CarLimitError represents an owner that would hold more cars than allowed
	CarLimitError
	// InternalError represents a generic internal server error
	InternalError
	// MigrationError represents an error during database migrations
	MigrationError
	// ConflictError represents a conflict, e.g., resource already exists
	ConflictError
)

// internalMessage is the only message ever shown for server-side failures.
const internalMessage = "Internal server error"

// FieldError describes one failing field of a request payload.
type FieldError struct {
	Field   string `json:"field" example:"password"`
	Message string `json:"message" example:"must contain at least one uppercase letter"`
}

// AppError is a custom error type for the application.
// Err keeps the underlying cause for logs; Fields carries per-field validation failures.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Fields  []FieldError
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type
func (e *AppError) StatusCode() int {
	switch e.Type {
	case AuthError:
		return http.StatusUnauthorized
	case InvalidCredentialsError:
		// Kept at 409 for compatibility with existing clients of /auth/login.
		return http.StatusConflict
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError, CarLimitError:
		return http.StatusBadRequest
	case ConflictError:
		return http.StatusConflict
	case DatabaseError, ConfigError, InternalError, MigrationError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsInternal reports whether the error is a server-side failure whose details must stay private.
func (e *AppError) IsInternal() bool {
	return e.StatusCode() >= http.StatusInternalServerError
}

// NewAppError creates a new AppError.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, message, underlyingError)
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, message, underlyingError)
}

// NewAuthError creates a new AuthError (missing or invalid token)
func NewAuthError(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, message, underlyingError)
}

// NewInvalidCredentialsError creates a new InvalidCredentialsError
func NewInvalidCredentialsError(message string) *AppError {
	return NewAppError(InvalidCredentialsError, message, nil)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

// NewValidationError creates a new ValidationError listing every failing field.
func NewValidationError(fields []FieldError) *AppError {
	return &AppError{
		Type:    ValidationError,
		Message: "Validation error",
		Fields:  fields,
	}
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewCarLimitError creates a new CarLimitError
func NewCarLimitError(message string, underlyingError error) *AppError {
	return NewAppError(CarLimitError, message, underlyingError)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

// NewMigrationError creates a new MigrationError
func NewMigrationError(message string, underlyingError error) *AppError {
	return NewAppError(MigrationError, message, underlyingError)
}

// NewConflictError creates a new ConflictError
func NewConflictError(message string, underlyingError error) *AppError {
	return NewAppError(ConflictError, message, underlyingError)
}

// ErrorResponse represents the error payload returned to API clients.
type ErrorResponse struct {
	Msg    string       `json:"msg" example:"Validation error"`
	Errors []FieldError `json:"errors,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API responses.
// Internal errors are reduced to a generic message.
func (e *AppError) ToResponse() ErrorResponse {
	if e.IsInternal() {
		return ErrorResponse{Msg: internalMessage}
	}
	return ErrorResponse{Msg: e.Message, Errors: e.Fields}
}

// FromError converts any error to an *AppError. Errors that are not AppErrors
// anywhere in their chain become InternalErrors.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(internalMessage, err)
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	return isType(err, NotFoundError)
}

// IsAuthError checks if an error is an AuthError
func IsAuthError(err error) bool {
	return isType(err, AuthError)
}

// IsValidationError checks if an error is a Validation error
func IsValidationError(err error) bool {
	return isType(err, ValidationError)
}

// IsConflictError checks if an error is a Conflict error
func IsConflictError(err error) bool {
	return isType(err, ConflictError)
}

// IsCarLimitError checks if an error is a CarLimit error
func IsCarLimitError(err error) bool {
	return isType(err, CarLimitError)
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}
