package apperror

import (
	"net/http"
)

// Kind classifies an AppError for callers that do not care about HTTP.
type Kind string

const (
	KindValidation Kind = "validation"
	KindPolicy     Kind = "policy"
	KindConflict   Kind = "conflict"
	KindStorage    Kind = "storage"
)

// AppError is a custom error type that includes an HTTP status code, a kind and a machine-readable reason.
type AppError struct {
	Code    int            // HTTP Status Code (e.g., 400, 404)
	Kind    Kind           // Error taxonomy bucket
	Reason  string         // Machine-readable reason code (e.g., "slot_occupied")
	Message string         // User-facing error message
	Detail  map[string]any // Optional remediation values (e.g., earliest legal date)
	Err     error          // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by reason so that sentinels survive WithDetail copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Reason != "" && e.Reason == t.Reason
}

// Validation creates an error for malformed input.
func Validation(reason, message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Reason: reason, Message: message}
}

// Policy creates an error for a well-formed request that violates a business rule.
func Policy(code int, reason, message string) *AppError {
	return &AppError{Code: code, Kind: KindPolicy, Reason: reason, Message: message}
}

// Conflict creates an error for a lost storage-level race.
func Conflict(reason, message string) *AppError {
	return &AppError{Code: http.StatusConflict, Kind: KindConflict, Reason: reason, Message: message}
}

// Storage wraps a backing store failure.
func Storage(err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Kind:    KindStorage,
		Reason:  "storage_unavailable",
		Message: message,
		Err:     err,
	}
}

// WithDetail returns a copy of e carrying the given detail value.
func (e *AppError) WithDetail(key string, value any) *AppError {
	cp := *e
	cp.Detail = make(map[string]any, len(e.Detail)+1)
	for k, v := range e.Detail {
		cp.Detail[k] = v
	}
	cp.Detail[key] = value
	return &cp
}
