package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError. Handlers map these to HTTP statuses.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorItem is a single entry in an error response body.
type ErrorItem struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

// ErrorResponse is the JSON body for all non-500 failures.
type ErrorResponse struct {
	Errors []ErrorItem `json:"errors"`
}

// AppError is the application error type returned by services.
type AppError struct {
	Code    string
	Message string
	Fields  []ErrorItem
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

// NewValidationError reports invalid input for one or more fields. Validation
// always happens before any mutation.
func NewValidationError(items ...ErrorItem) *AppError {
	msg := "Validation failed"
	if len(items) > 0 {
		msg = items[0].Msg
	}
	return &AppError{
		Code:    CodeValidation,
		Message: msg,
		Fields:  items,
	}
}

// NewConflictError reports a business-rule violation (duplicate like,
// already-registered email). Surfaced as 400 like the validation class.
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// NewUnauthorizedError reports an action attempted by the wrong actor.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

// NewNotFoundError reports a missing document or malformed identifier.
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
	}
}

// NewInternalError wraps an unexpected fault.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Server Error",
		Err:     err,
	}
}

// RespondWithError writes the standardized error body. Non-500 responses are
// JSON message lists; unhandled faults are a plain-text body.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	if status >= fiber.StatusInternalServerError {
		return c.Status(status).SendString("Server Error")
	}

	var response ErrorResponse
	if appErr, ok := err.(*AppError); ok {
		if len(appErr.Fields) > 0 {
			response.Errors = appErr.Fields
		} else {
			response.Errors = []ErrorItem{{Msg: appErr.Message}}
		}
	} else {
		response.Errors = []ErrorItem{{Msg: err.Error()}}
	}

	return c.Status(status).JSON(response)
}

// StatusForError maps an AppError code to its HTTP status. Unknown error
// types map to 500.
func StatusForError(err error) int {
	appErr, ok := err.(*AppError)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeValidation, CodeConflict:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
