package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
)

// Error is an API error with HTTP status and a stable machine-readable code.
type Error struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// WithDetails returns a copy of e with the given details merged in.
func (e *Error) WithDetails(details map[string]any) *Error {
	c := *e
	c.Details = make(map[string]any, len(e.Details)+len(details))
	maps.Copy(c.Details, e.Details)
	maps.Copy(c.Details, details)
	return &c
}

// New creates an API error.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message, Details: map[string]any{}}
}

var (
	ErrNotFound            = New(http.StatusNotFound, "not_found", "The requested resource was not found.")
	ErrPermissionDenied    = New(http.StatusForbidden, "permission_denied", "You do not have permission to perform this action.")
	ErrNotAuthenticated    = New(http.StatusUnauthorized, "not_authenticated", "Authentication credentials were not provided.")
	ErrBadRequest          = New(http.StatusBadRequest, "bad_request", "The request could not be understood.")
	ErrInternalServerError = New(http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred.")
)

// ModuleDisabled is the refusal returned for a request that targets a disabled module.
func ModuleDisabled(slug string) *Error {
	return New(http.StatusForbidden, "module_disabled",
		fmt.Sprintf("The module %s is currently disabled for this tenant.", slug))
}

// Validation reports per-field validation failures.
func Validation(fields map[string]string) *Error {
	details := make(map[string]any, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	e := New(http.StatusBadRequest, "validation_error", "Invalid input.")
	e.Details = details
	return e
}

// Write renders err as JSON. Errors that are not *Error become a 500.
func Write(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = ErrInternalServerError
	}
	body := *apiErr
	if body.Details == nil {
		body.Details = map[string]any{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(body.Status)
	_ = json.NewEncoder(w).Encode(body)
}
