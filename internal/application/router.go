package application

import (
	"context"
	"fmt"

	"jira-mcp-server/internal/domain"
)

// RequestRouter dispatches MCP tool requests to the appropriate ToolHandler.
// Handlers group related tools (issue operations, catalog lookups, agile
// boards); every tool name a handler declares is registered against that
// handler, and requests are routed by exact tool name.
type RequestRouter struct {
	handlers []domain.ToolHandler
	tools    map[string]domain.ToolHandler
}

// NewRequestRouter creates a new RequestRouter with the provided handlers.
// Each tool name returned by a handler's ListTools() is registered to that
// handler. A tool name declared by two handlers keeps the later one.
func NewRequestRouter(handlers ...domain.ToolHandler) *RequestRouter {
	router := &RequestRouter{
		tools: make(map[string]domain.ToolHandler),
	}

	for _, handler := range handlers {
		router.handlers = append(router.handlers, handler)
		for _, tool := range handler.ListTools() {
			router.tools[tool.Name] = handler
		}
	}

	return router
}

// Route dispatches a tool request to the handler that declared the tool.
// Returns an error if the tool name is unknown or if the handler fails to
// process the request.
func (r *RequestRouter) Route(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	handler, exists := r.tools[req.Name]
	if !exists {
		return nil, fmt.Errorf("unknown tool: %s (no handler registered for it)", req.Name)
	}

	return handler.Handle(ctx, req)
}

// ListAllTools aggregates tool definitions from all registered handlers.
// This is used for MCP tool discovery (tools/list method). Definitions are
// returned in handler registration order.
func (r *RequestRouter) ListAllTools() []domain.ToolDefinition {
	var allTools []domain.ToolDefinition

	for _, handler := range r.handlers {
		tools := handler.ListTools()
		allTools = append(allTools, tools...)
	}

	return allTools
}

// GetHandler returns the handler registered for a specific tool name.
// This is useful for testing and debugging.
func (r *RequestRouter) GetHandler(toolName string) (domain.ToolHandler, bool) {
	handler, exists := r.tools[toolName]
	return handler, exists
}
