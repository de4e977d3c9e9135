package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind classifies failures surfaced by the remote tracker or the
// transport underneath it.
type ErrorKind int

const (
	// ErrAuthentication indicates rejected credentials (HTTP 401)
	ErrAuthentication ErrorKind = iota
	// ErrForbidden indicates denied access, possibly a human-verification gate (HTTP 403)
	ErrForbidden
	// ErrNotFound indicates a missing resource (HTTP 404)
	ErrNotFound
	// ErrRateLimited indicates throttling by the remote service (HTTP 429)
	ErrRateLimited
	// ErrTransient indicates a temporary server-side failure (HTTP 502/503/504)
	ErrTransient
	// ErrTimeout indicates an attempt aborted by the per-request deadline
	ErrTimeout
	// ErrTransport indicates a network-level failure before any response
	ErrTransport
	// ErrAPI indicates any other non-2xx response
	ErrAPI
)

// String returns the human-readable label for an ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case ErrAuthentication:
		return "authentication failed"
	case ErrForbidden:
		return "access forbidden"
	case ErrNotFound:
		return "not found"
	case ErrRateLimited:
		return "rate limited"
	case ErrTransient:
		return "transient server error"
	case ErrTimeout:
		return "request timed out"
	case ErrTransport:
		return "transport error"
	default:
		return "API error"
	}
}

// APIError is the typed error returned by the REST clients. It carries the
// failure classification, the HTTP status when one was received, and the
// message parsed from the remote error payload.
type APIError struct {
	Kind       ErrorKind
	StatusCode int // zero when no response was received
	Message    string
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Retryable reports whether the failure is worth another attempt.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case ErrRateLimited, ErrTransient, ErrTimeout, ErrTransport:
		return true
	default:
		return false
	}
}

// NewAPIError creates an APIError with the given classification.
func NewAPIError(kind ErrorKind, statusCode int, message string) *APIError {
	return &APIError{
		Kind:       kind,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ClassifyStatus maps a non-2xx HTTP status code to its ErrorKind.
func ClassifyStatus(statusCode int) ErrorKind {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrTransient
	default:
		return ErrAPI
	}
}

// RetryableStatus reports whether a status code should trigger a retry.
func RetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// IsNotFound reports whether err is an APIError of kind ErrNotFound.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == ErrNotFound
}

// IsAuthentication reports whether err is an APIError of kind ErrAuthentication.
func IsAuthentication(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == ErrAuthentication
}

// IsRetryable reports whether err is a retryable APIError.
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

// ErrorDocument is the structured error payload the tracker returns for
// failed requests: a list of general messages plus per-field messages.
type ErrorDocument struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

// ParseErrorBody extracts a human-readable message from an error response.
// JSON payloads have their message list and field map joined with "; ";
// otherwise the raw body text is used; an empty body falls back to the
// bare status.
func ParseErrorBody(contentType string, body []byte, statusCode int) string {
	if strings.Contains(contentType, "application/json") {
		var doc ErrorDocument
		if err := json.Unmarshal(body, &doc); err == nil {
			parts := make([]string, 0, len(doc.ErrorMessages)+len(doc.Errors))
			parts = append(parts, doc.ErrorMessages...)

			// Field keys are sorted so the joined message is deterministic
			fields := make([]string, 0, len(doc.Errors))
			for field := range doc.Errors {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				parts = append(parts, fmt.Sprintf("%s: %s", field, doc.Errors[field]))
			}

			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	return fmt.Sprintf("HTTP %d", statusCode)
}
