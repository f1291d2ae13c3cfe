// Package errs defines the gateway error taxonomy. Every error surfaced to
// a caller carries a code that maps to an HTTP status and a retryable flag;
// availability-class failures are retryable, validation/conflict/auth
// failures are not.
package errs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

type Code string

const (
	CodeInvalidRequest       Code = "INVALID_REQUEST"
	CodeMissingRequiredField Code = "MISSING_REQUIRED_FIELD"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeForbidden            Code = "FORBIDDEN"
	CodeNotFound             Code = "NOT_FOUND"
	CodeConflict             Code = "CONFLICT"
	CodeRateLimited          Code = "RATE_LIMITED"
	CodeUpstreamUnavailable  Code = "UPSTREAM_UNAVAILABLE"
	CodeInternal             Code = "INTERNAL_ERROR"
)

type definition struct {
	status    int
	message   string
	retryable bool
}

var definitions = map[Code]definition{
	CodeInvalidRequest:       {http.StatusBadRequest, "Invalid request parameters", false},
	CodeMissingRequiredField: {http.StatusBadRequest, "Missing required field", false},
	CodeUnauthorized:         {http.StatusUnauthorized, "Unauthorized. Invalid or missing auth token", false},
	CodeForbidden:            {http.StatusForbidden, "Forbidden. You do not have access to this resource", false},
	CodeNotFound:             {http.StatusNotFound, "Resource not found", false},
	CodeConflict:             {http.StatusConflict, "Conflict. Resource already exists", false},
	CodeRateLimited:          {http.StatusTooManyRequests, "Too many requests. Rate limit exceeded", true},
	CodeUpstreamUnavailable:  {http.StatusServiceUnavailable, "Upstream merchant API unavailable", true},
	CodeInternal:             {http.StatusInternalServerError, "Internal server error", true},
}

// Error is a coded gateway error. Details are merged into the serialized
// error body (e.g. existing_agent_id on a registration conflict).
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New returns a coded error. An empty message uses the code's default.
func New(code Code, message string) *Error {
	if message == "" {
		message = definitions[code].message
	}
	return &Error{Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// WithDetail attaches a key/value that will appear in the serialized body.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Status returns the HTTP status for the error's code.
func (e *Error) Status() int {
	if d, ok := definitions[e.Code]; ok {
		return d.status
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the error kind is worth retrying. Derived
// purely from the code, never from the message.
func Retryable(code Code) bool {
	if d, ok := definitions[code]; ok {
		return d.retryable
	}
	return false
}

// MissingFields returns a MISSING_REQUIRED_FIELD error listing the fields.
func MissingFields(fields ...string) *Error {
	e := Newf(CodeMissingRequiredField, "Missing required fields: %s", join(fields))
	return e.WithDetail("missing", fields)
}

func join(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ", "
		}
		out += f
	}
	return out
}

// Write serializes the error as the standard JSON error body and sets the
// status code. Rate-limit errors with a retry_after detail also set the
// Retry-After header.
func Write(w http.ResponseWriter, err *Error) {
	body := map[string]any{
		"success":     false,
		"error":       string(err.Code),
		"message":     err.Message,
		"status_code": err.Status(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"retryable":   Retryable(err.Code),
	}
	for k, v := range err.Details {
		body[k] = v
	}
	if err.Code == CodeRateLimited {
		if ra, ok := err.Details["retry_after"]; ok {
			if secs, ok := ra.(int); ok {
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	_ = json.NewEncoder(w).Encode(body)
}
