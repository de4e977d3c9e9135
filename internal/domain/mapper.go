package domain

// ResponseMapper converts handler results to MCP tool responses.
// This interface is responsible for rendering simplified payloads in the
// configured response format and for translating errors into JSON-RPC
// error objects.
type ResponseMapper interface {
	// MapToToolResponse renders a payload in the configured response
	// format and wraps it in a single text content block.
	MapToToolResponse(payload interface{}) (*ToolResponse, error)

	// MapError converts an error to a JSON-RPC error object. Typed
	// Jira API errors map to the application error codes; anything
	// else maps to an internal error.
	MapError(err error) *Error
}
