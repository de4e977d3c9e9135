package domain

import (
	"errors"
	"fmt"
)

// DefaultResponseMapper is the default implementation of ResponseMapper.
// It renders payloads through the response formatter in the configured
// format and translates typed errors to JSON-RPC error objects.
type DefaultResponseMapper struct {
	format ResponseFormat
}

// NewResponseMapper creates a new DefaultResponseMapper producing output
// in the given response format.
func NewResponseMapper(format ResponseFormat) ResponseMapper {
	return &DefaultResponseMapper{format: format}
}

// MapToToolResponse renders a payload in the configured response format
// and wraps it in a single text content block. Paginated search results
// get an extra content block noting the visible window.
func (m *DefaultResponseMapper) MapToToolResponse(payload interface{}) (*ToolResponse, error) {
	if payload == nil {
		return &ToolResponse{
			Content: []ContentBlock{
				{
					Type: "text",
					Text: "{}",
				},
			},
		}, nil
	}

	text, err := FormatResponse(payload, m.format)
	if err != nil {
		return nil, fmt.Errorf("failed to render response: %w", err)
	}

	contentBlock := ContentBlock{
		Type: "text",
		Text: text,
	}

	// Paginated search responses carry a human-readable window summary
	// so the caller knows whether to request another page
	if pagination := extractPaginationInfo(payload); pagination != "" {
		return &ToolResponse{
			Content: []ContentBlock{
				contentBlock,
				{
					Type: "text",
					Text: pagination,
				},
			},
		}, nil
	}

	return &ToolResponse{
		Content: []ContentBlock{contentBlock},
	}, nil
}

// extractPaginationInfo extracts pagination metadata from responses that
// support it. Returns a formatted summary line, or an empty string when
// the payload is not paginated.
func extractPaginationInfo(payload interface{}) string {
	switch results := payload.(type) {
	case *SimplifiedSearchResults:
		return paginationSummary(results.StartAt, len(results.Issues), results.Total)
	case SimplifiedSearchResults:
		return paginationSummary(results.StartAt, len(results.Issues), results.Total)
	default:
		return ""
	}
}

// paginationSummary describes the visible result window.
func paginationSummary(startAt, count, total int) string {
	if count == 0 {
		return fmt.Sprintf("\nPagination: No results out of %d total", total)
	}
	return fmt.Sprintf("\nPagination: Showing %d-%d of %d total results",
		startAt+1, startAt+count, total)
}

// MapError converts an error to a JSON-RPC error object. Typed Jira API
// errors map by kind to the application error codes; configuration errors
// map to the configuration code; anything unrecognized maps to an
// internal error.
func (m *DefaultResponseMapper) MapError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return mapAPIError(apiErr)
	}

	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return &Error{
			Code:    ConfigurationErrorCode,
			Message: configErr.Error(),
		}
	}

	// Already a JSON-RPC error object
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	return &Error{
		Code:    InternalError,
		Message: err.Error(),
	}
}

// mapAPIError maps the typed error kinds to JSON-RPC error codes.
func mapAPIError(apiErr *APIError) *Error {
	var code int

	switch apiErr.Kind {
	case ErrAuthentication, ErrForbidden:
		code = AuthenticationErrorCode
	case ErrRateLimited:
		code = RateLimitErrorCode
	case ErrTransient, ErrTimeout, ErrTransport:
		code = NetworkErrorCode
	default:
		// Not-found and generic API failures
		code = APIErrorCode
	}

	errorData := map[string]interface{}{
		"kind": apiErr.Kind.String(),
	}
	if apiErr.StatusCode != 0 {
		errorData["statusCode"] = apiErr.StatusCode
	}

	return &Error{
		Code:    code,
		Message: apiErr.Error(),
		Data:    errorData,
	}
}
