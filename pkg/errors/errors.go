package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the base interface for all application errors
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// NotFoundError represents a resource that was not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *NotFoundError) Code() string {
	return "NOT_FOUND"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents invalid input
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *ValidationError) Code() string {
	return "VALIDATION_ERROR"
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ValidationErrors aggregates every validation failure of a single operation
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return e.Errors[0].Error()
	}
	parts := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		if ve.Field != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", ve.Field, ve.Message))
		} else {
			parts = append(parts, ve.Message)
		}
	}
	return fmt.Sprintf("validation failed (%d errors): %s", len(e.Errors), strings.Join(parts, "; "))
}

func (e *ValidationErrors) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *ValidationErrors) Code() string {
	return "VALIDATION_ERROR"
}

// Add appends a field failure
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, NewValidationError(field, message))
}

// Append merges err into the list. ValidationError and ValidationErrors are
// flattened; any other error is returned unchanged so the caller can abort.
func (e *ValidationErrors) Append(field string, err error) error {
	if err == nil {
		return nil
	}
	var many *ValidationErrors
	if errors.As(err, &many) {
		e.Errors = append(e.Errors, many.Errors...)
		return nil
	}
	var one *ValidationError
	if errors.As(err, &one) {
		if one.Field == "" {
			one.Field = field
		}
		e.Errors = append(e.Errors, one)
		return nil
	}
	return err
}

// HasErrors reports whether any failure was collected
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrOrNil returns nil when no failure was collected
func (e *ValidationErrors) ErrOrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// Details returns the per-field failures for API responses
func (e *ValidationErrors) Details() []FieldErrorDetail {
	out := make([]FieldErrorDetail, 0, len(e.Errors))
	for _, ve := range e.Errors {
		out = append(out, FieldErrorDetail{Field: ve.Field, Message: ve.Message})
	}
	return out
}

// FieldErrorDetail is one entry of a validation error response
type FieldErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// UnauthorizedError represents authentication failures
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unauthorized: %s", e.Reason)
	}
	return "unauthorized"
}

func (e *UnauthorizedError) HTTPStatus() int {
	return http.StatusUnauthorized
}

func (e *UnauthorizedError) Code() string {
	return "UNAUTHORIZED"
}

// NewUnauthorizedError creates a new UnauthorizedError
func NewUnauthorizedError(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

// ConflictError represents a conflict with existing data
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s already exists with %s='%s'", e.Resource, e.Field, e.Value)
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

func (e *ConflictError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *ConflictError) Code() string {
	return "CONFLICT"
}

// NewConflictError creates a new ConflictError
func NewConflictError(resource, field, value string) *ConflictError {
	return &ConflictError{Resource: resource, Field: field, Value: value}
}

// InvalidOperationError represents a request that is well formed but not allowed
// in the current state (deleting a system module, retyping a populated field)
type InvalidOperationError struct {
	Operation string
	Reason    string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("cannot %s: %s", e.Operation, e.Reason)
}

func (e *InvalidOperationError) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

func (e *InvalidOperationError) Code() string {
	return "INVALID_OPERATION"
}

// NewInvalidOperationError creates a new InvalidOperationError
func NewInvalidOperationError(operation, reason string) *InvalidOperationError {
	return &InvalidOperationError{Operation: operation, Reason: reason}
}

// UnavailableError represents a storage backend that cannot be reached
type UnavailableError struct {
	Cause error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage unavailable: %v", e.Cause)
	}
	return "storage unavailable"
}

func (e *UnavailableError) HTTPStatus() int {
	return http.StatusServiceUnavailable
}

func (e *UnavailableError) Code() string {
	return "UNAVAILABLE"
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// NewUnavailableError creates a new UnavailableError
func NewUnavailableError(cause error) *UnavailableError {
	return &UnavailableError{Cause: cause}
}

// InternalError represents unexpected server errors
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *InternalError) Code() string {
	return "INTERNAL_ERROR"
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// Helper functions for error checking

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsValidation checks if an error is a ValidationError or ValidationErrors
func IsValidation(err error) bool {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return true
	}
	var many *ValidationErrors
	return errors.As(err, &many)
}

// IsUnauthorized checks if an error is an UnauthorizedError
func IsUnauthorized(err error) bool {
	var unauthorized *UnauthorizedError
	return errors.As(err, &unauthorized)
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// IsInvalidOperation checks if an error is an InvalidOperationError
func IsInvalidOperation(err error) bool {
	var invalid *InvalidOperationError
	return errors.As(err, &invalid)
}

// IsUnavailable checks if an error is an UnavailableError
func IsUnavailable(err error) bool {
	var unavailable *UnavailableError
	return errors.As(err, &unavailable)
}

// GetHTTPStatus returns the HTTP status code for an error
// Returns 500 if the error doesn't implement AppError
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetErrorCode returns the error code for an error
// Returns "UNKNOWN_ERROR" if the error doesn't implement AppError
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return "UNKNOWN_ERROR"
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ToResponse converts an error to an ErrorResponse
func ToResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Code:    GetErrorCode(err),
		Message: err.Error(),
	}
	var many *ValidationErrors
	if errors.As(err, &many) {
		resp.Details = many.Details()
	}
	return resp
}
