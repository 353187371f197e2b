package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrCalculationNotFound is returned when a calculation does not exist or
	// belongs to a different user. The two cases are intentionally
	// indistinguishable.
	ErrCalculationNotFound = errors.New("calculation not found")
	// ErrEmailExists is returned when the email is already registered.
	ErrEmailExists = errors.New("email already exists")
	// ErrUsernameExists is returned when the username is already taken.
	ErrUsernameExists = errors.New("username already exists")
	// ErrInvalidCredentials is returned when the identifier or password is
	// incorrect. The message never reveals which.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid,
	// expired, or revoked.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrInactiveUser is returned when the authenticated account is deactivated.
	ErrInactiveUser = errors.New("inactive user")
	// ErrForbidden is returned on cross-user access to a self-only endpoint.
	ErrForbidden = errors.New("forbidden")
	// ErrWeakPassword is returned when a password fails the strength policy.
	ErrWeakPassword = errors.New("password must be at least 8 characters and contain uppercase, lowercase, digit, and special characters")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrWrongPassword is returned when the current password check fails on a
	// password change.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrDivisionByZero is returned when any divisor in a division is zero.
	ErrDivisionByZero = errors.New("cannot divide by zero")
	// ErrTooFewInputs is returned when a calculation has fewer than two inputs.
	ErrTooFewInputs = errors.New("inputs must contain at least two numbers")
	// ErrUnknownCalculationType is returned for an unrecognized calculation type.
	ErrUnknownCalculationType = errors.New("unknown calculation type")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch err {
	case ErrUserNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case ErrCalculationNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "CALCULATION_NOT_FOUND")
	case ErrEmailExists, ErrUsernameExists:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ALREADY_EXISTS")
	case ErrInvalidCredentials:
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case ErrInvalidRefreshToken:
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case ErrInactiveUser:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INACTIVE_USER")
	case ErrForbidden:
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case ErrWeakPassword, ErrPasswordMismatch:
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "VALIDATION_ERROR")
	case ErrWrongPassword:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_PASSWORD")
	case ErrDivisionByZero, ErrTooFewInputs, ErrUnknownCalculationType:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CALCULATION")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
