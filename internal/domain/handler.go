package domain

import (
	"context"
)

// ToolHandler processes tool calls for one functional area of the Jira
// API. Handlers are grouped by concern: issue operations, catalog
// lookups, and agile boards.
type ToolHandler interface {
	// Handle processes an MCP tool call request.
	// Returns the tool response or an error if processing fails.
	Handle(ctx context.Context, req *ToolRequest) (*ToolResponse, error)

	// ListTools returns the tool definitions this handler serves.
	// The router dispatches tool calls by definition name.
	ListTools() []ToolDefinition

	// Name returns the identifier for this handler, used in logs.
	Name() string
}
