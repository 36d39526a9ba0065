package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the application.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeDuplicateClaim   = "DUPLICATE_CLAIM"
	CodeAlreadyProcessed = "ALREADY_PROCESSED"
	CodeStorage          = "STORAGE_ERROR"
)

// ErrorResponse is the uniform failure envelope returned by the API.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

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

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewDuplicateClaimError is returned when a claimant already has a pending
// claim on the same item.
func NewDuplicateClaimError() *AppError {
	return &AppError{
		Code:    CodeDuplicateClaim,
		Message: "You already have a pending claim for this item",
	}
}

// NewAlreadyProcessedError is returned when approve/decline targets a claim
// that is no longer pending.
func NewAlreadyProcessedError() *AppError {
	return &AppError{
		Code:    CodeAlreadyProcessed,
		Message: "This claim has already been processed",
	}
}

func NewStorageError(err error) *AppError {
	return &AppError{
		Code:    CodeStorage,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusForError maps an error to the HTTP status it should be served with.
// Unknown errors are treated as storage failures.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeValidation, CodeDuplicateClaim, CodeAlreadyProcessed:
		return fiber.StatusBadRequest
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes the standardized error envelope with the status
// derived from the error code.
func RespondWithError(c *fiber.Ctx, err error) error {
	return RespondWithStatusError(c, StatusForError(err), err)
}

// RespondWithStatusError writes the standardized error envelope with an
// explicit status.
func RespondWithStatusError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Success: false,
			Message: appErr.Message,
			Code:    appErr.Code,
		}
		// Internal causes are not exposed to clients.
		if appErr.Err != nil && appErr.Code != CodeStorage {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Success: false,
			Message: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
