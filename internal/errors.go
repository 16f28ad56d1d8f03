package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInvalidToken ErrorType = "INVALID_TOKEN"
	ErrorTypeProvisioning ErrorType = "PROVISIONING_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeWeakPassword     ErrorCode = "WEAK_PASSWORD"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"

	ErrCodeOrganizationExists ErrorCode = "ORGANIZATION_EXISTS"
	ErrCodeUserExists         ErrorCode = "USER_EXISTS"
	ErrCodeAccountExists      ErrorCode = "ACCOUNT_EXISTS"
	ErrCodeInvitationPending  ErrorCode = "INVITATION_PENDING"

	ErrCodeInvalidInvitation   ErrorCode = "INVALID_INVITATION"
	ErrCodeInvitationExpired   ErrorCode = "INVITATION_EXPIRED"
	ErrCodeInvitationNotFound  ErrorCode = "INVITATION_NOT_FOUND"
	ErrCodeInvitationNotActive ErrorCode = "INVITATION_NOT_PENDING"

	ErrCodeProvisioningFailed ErrorCode = "PROVISIONING_FAILED"

	ErrCodeOrganizationNotFound ErrorCode = "ORGANIZATION_NOT_FOUND"
	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeUnknownSetting       ErrorCode = "UNKNOWN_SETTING"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInsufficientRole   ErrorCode = "INSUFFICIENT_ROLE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {

			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same code, so shared
// sentinels and freshly built errors compare equal under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Type == e.Type
}

// WithCause returns a copy of e carrying cause. Sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInvalidTokenError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidToken,
		Code:       ErrCodeInvalidInvitation,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewExpiredTokenError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidToken,
		Code:       ErrCodeInvitationExpired,
		Message:    message,
		StatusCode: http.StatusGone,
	}
}

// NewProvisioningError reports a failed call to an external collaborator
// after validation passed.
func NewProvisioningError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProvisioning,
		Code:       ErrCodeProvisioningFailed,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrOrganizationExists = NewConflictError("organization with a similar name already exists", ErrCodeOrganizationExists)
	ErrUserExists         = NewConflictError("user with this email already exists", ErrCodeUserExists)
	ErrAccountExists      = NewConflictError("an account with this email already exists", ErrCodeAccountExists)
	ErrInvitationPending  = NewConflictError("a pending invitation already exists for this email", ErrCodeInvitationPending)

	ErrInvalidInvitation  = NewInvalidTokenError("invitation is invalid or has already been used")
	ErrInvitationExpired  = NewExpiredTokenError("invitation has expired")
	ErrInvitationNotFound = NewNotFoundError("invitation not found", ErrCodeInvitationNotFound)
	ErrInvitationInactive = NewValidationError("invitation is no longer pending", ErrCodeInvitationNotActive)

	ErrOrganizationNotFound = NewNotFoundError("organization not found", ErrCodeOrganizationNotFound)
	ErrUserNotFound         = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrUnknownSetting       = NewNotFoundError("unknown settings category", ErrCodeUnknownSetting)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrInsufficientRole   = NewForbiddenError("insufficient role for this operation", ErrCodeInsufficientRole)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
