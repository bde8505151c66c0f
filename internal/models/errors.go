package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried by AppError. Everything except CodeInternal is an
// expected business outcome and its Message is safe to show to users.
const (
	CodeNotFound              = "NOT_FOUND"
	CodeNotAuthorized         = "NOT_AUTHORIZED"
	CodeAlreadyExists         = "ALREADY_EXISTS"
	CodeAlreadyFriends        = "ALREADY_FRIENDS"
	CodeRequestExists         = "REQUEST_EXISTS"
	CodeRecipientNotAccepting = "RECIPIENT_NOT_ACCEPTING"
	CodeInvalidAmount         = "INVALID_AMOUNT"
	CodePrivacyDenied         = "PRIVACY_DENIED"
	CodeValidation            = "VALIDATION_ERROR"
	CodeInternal              = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return newError(CodeNotFound, fmt.Sprintf("%s with ID %v not found", resource, id))
}

func NewNotAuthorizedError(message string) *AppError {
	return newError(CodeNotAuthorized, message)
}

func NewAlreadyExistsError(message string) *AppError {
	return newError(CodeAlreadyExists, message)
}

func NewAlreadyFriendsError() *AppError {
	return newError(CodeAlreadyFriends, "You are already friends with this user")
}

func NewRequestExistsError() *AppError {
	return newError(CodeRequestExists, "A friend request is already pending between you and this user")
}

func NewRecipientNotAcceptingError(message string) *AppError {
	return newError(CodeRecipientNotAccepting, message)
}

func NewInvalidAmountError(amount int) *AppError {
	return newError(CodeInvalidAmount, fmt.Sprintf("XP amount must be positive, got %d", amount))
}

func NewPrivacyDeniedError(message string) *AppError {
	return newError(CodePrivacyDenied, message)
}

func NewValidationError(message string) *AppError {
	return newError(CodeValidation, message)
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ErrorCode returns the code of err, CodeInternal for foreign errors and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// PublicMessage returns text that is safe to render. Storage errors never leak.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != CodeInternal {
		return appErr.Message
	}
	return "Something went wrong, please try again later"
}

// StatusFor maps an error onto an HTTP status code.
func StatusFor(err error) int {
	switch ErrorCode(err) {
	case "":
		return http.StatusOK
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNotAuthorized, CodePrivacyDenied, CodeRecipientNotAccepting:
		return http.StatusForbidden
	case CodeAlreadyExists, CodeAlreadyFriends, CodeRequestExists:
		return http.StatusConflict
	case CodeInvalidAmount, CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Result is the reply shape the presentation layer consumes for actions.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(message string, data interface{}) Result {
	return Result{Success: true, Message: message, Data: data}
}

func Fail(err error) Result {
	return Result{Success: false, Message: PublicMessage(err), Code: ErrorCode(err)}
}
