package application

import (
	"context"
	"testing"

	"jira-mcp-server/internal/domain"
)

// mockHandler is a test implementation of ToolHandler
type mockHandler struct {
	name  string
	tools []domain.ToolDefinition
}

func (m *mockHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	// Simple mock implementation that echoes the tool name
	return &domain.ToolResponse{
		Content: []domain.ContentBlock{
			{
				Type: "text",
				Text: "Handled by " + m.name + ": " + req.Name,
			},
		},
	}, nil
}

func (m *mockHandler) ListTools() []domain.ToolDefinition {
	return m.tools
}

func (m *mockHandler) Name() string {
	return m.name
}

// TestNewRequestRouter tests router creation with multiple handlers
func TestNewRequestRouter(t *testing.T) {
	issueHandler := &mockHandler{
		name: "issues",
		tools: []domain.ToolDefinition{
			{Name: "jira_get_issue", Description: "Get issue"},
			{Name: "jira_search", Description: "Search issues"},
		},
	}

	agileHandler := &mockHandler{
		name: "agile",
		tools: []domain.ToolDefinition{
			{Name: "jira_get_boards", Description: "List boards"},
		},
	}

	router := NewRequestRouter(issueHandler, agileHandler)

	if router == nil {
		t.Fatal("Expected router to be created, got nil")
	}

	if len(router.handlers) != 2 {
		t.Errorf("Expected 2 handlers, got %d", len(router.handlers))
	}

	// Verify each declared tool name maps to its handler
	if handler, exists := router.GetHandler("jira_get_issue"); !exists || handler != issueHandler {
		t.Error("jira_get_issue not registered to the issue handler")
	}
	if handler, exists := router.GetHandler("jira_search"); !exists || handler != issueHandler {
		t.Error("jira_search not registered to the issue handler")
	}
	if handler, exists := router.GetHandler("jira_get_boards"); !exists || handler != agileHandler {
		t.Error("jira_get_boards not registered to the agile handler")
	}
}

// TestRouteByToolName tests that requests reach the handler that declared the tool
func TestRouteByToolName(t *testing.T) {
	issueHandler := &mockHandler{
		name: "issues",
		tools: []domain.ToolDefinition{
			{Name: "jira_get_issue", Description: "Get issue"},
		},
	}

	router := NewRequestRouter(issueHandler)
	ctx := context.Background()

	req := &domain.ToolRequest{
		Name: "jira_get_issue",
		Arguments: map[string]interface{}{
			"issueKey": "TEST-123",
		},
	}

	resp, err := router.Route(ctx, req)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if resp == nil {
		t.Fatal("Expected response, got nil")
	}

	if len(resp.Content) != 1 {
		t.Fatalf("Expected 1 content block, got %d", len(resp.Content))
	}

	expectedText := "Handled by issues: jira_get_issue"
	if resp.Content[0].Text != expectedText {
		t.Errorf("Expected text '%s', got '%s'", expectedText, resp.Content[0].Text)
	}
}

// TestRouteSharedPrefix tests that tools sharing the jira_ prefix still route
// to the handlers that declared them
func TestRouteSharedPrefix(t *testing.T) {
	issueHandler := &mockHandler{
		name: "issues",
		tools: []domain.ToolDefinition{
			{Name: "jira_get_issue", Description: "Get issue"},
		},
	}
	catalogHandler := &mockHandler{
		name: "catalog",
		tools: []domain.ToolDefinition{
			{Name: "jira_get_projects", Description: "List projects"},
		},
	}
	agileHandler := &mockHandler{
		name: "agile",
		tools: []domain.ToolDefinition{
			{Name: "jira_get_boards", Description: "List boards"},
		},
	}

	router := NewRequestRouter(issueHandler, catalogHandler, agileHandler)
	ctx := context.Background()

	testCases := []struct {
		toolName        string
		expectedHandler string
	}{
		{"jira_get_issue", "issues"},
		{"jira_get_projects", "catalog"},
		{"jira_get_boards", "agile"},
	}

	for _, tc := range testCases {
		t.Run(tc.toolName, func(t *testing.T) {
			req := &domain.ToolRequest{
				Name:      tc.toolName,
				Arguments: map[string]interface{}{},
			}

			resp, err := router.Route(ctx, req)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}

			if resp == nil {
				t.Fatal("Expected response, got nil")
			}

			expectedText := "Handled by " + tc.expectedHandler + ": " + tc.toolName
			if resp.Content[0].Text != expectedText {
				t.Errorf("Expected text '%s', got '%s'", expectedText, resp.Content[0].Text)
			}
		})
	}
}

// TestRouteUnknownTool tests error handling for unknown tool names
func TestRouteUnknownTool(t *testing.T) {
	issueHandler := &mockHandler{
		name: "issues",
		tools: []domain.ToolDefinition{
			{Name: "jira_get_issue", Description: "Get issue"},
		},
	}

	router := NewRequestRouter(issueHandler)
	ctx := context.Background()

	req := &domain.ToolRequest{
		Name:      "jira_get_dashboards",
		Arguments: map[string]interface{}{},
	}

	resp, err := router.Route(ctx, req)
	if err == nil {
		t.Fatal("Expected error for unknown tool, got nil")
	}

	if resp != nil {
		t.Errorf("Expected nil response for unknown tool, got: %v", resp)
	}

	expectedError := "unknown tool: jira_get_page (no handler registered for it)"
	if err.Error() != expectedError {
		t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
	}
}

// TestListAllTools tests tool discovery aggregation
func TestListAllTools(t *testing.T) {
	issueHandler := &mockHandler{
		name: "issues",
		tools: []domain.ToolDefinition{
			{Name: "jira_get_issue", Description: "Get issue"},
			{Name: "jira_create_issue", Description: "Create issue"},
		},
	}

	catalogHandler := &mockHandler{
		name: "catalog",
		tools: []domain.ToolDefinition{
			{Name: "jira_get_projects", Description: "List projects"},
			{Name: "jira_get_fields", Description: "List fields"},
		},
	}

	agileHandler := &mockHandler{
		name: "agile",
		tools: []domain.ToolDefinition{
			{Name: "jira_get_boards", Description: "List boards"},
		},
	}

	router := NewRequestRouter(issueHandler, catalogHandler, agileHandler)

	allTools := router.ListAllTools()

	expectedCount := 5 // 2 + 2 + 1
	if len(allTools) != expectedCount {
		t.Errorf("Expected %d tools, got %d", expectedCount, len(allTools))
	}

	// Tools appear in handler registration order
	if allTools[0].Name != "jira_get_issue" {
		t.Errorf("Expected jira_get_issue first, got %s", allTools[0].Name)
	}
	if allTools[4].Name != "jira_get_boards" {
		t.Errorf("Expected jira_get_boards last, got %s", allTools[4].Name)
	}

	// Verify all tools are present
	toolNames := make(map[string]bool)
	for _, tool := range allTools {
		toolNames[tool.Name] = true
	}

	expectedTools := []string{
		"jira_get_issue",
		"jira_create_issue",
		"jira_get_projects",
		"jira_get_fields",
		"jira_get_boards",
	}

	for _, expectedTool := range expectedTools {
		if !toolNames[expectedTool] {
			t.Errorf("Expected tool '%s' not found in aggregated tools", expectedTool)
		}
	}
}

// TestListAllToolsEmptyRouter tests tool discovery with no handlers
func TestListAllToolsEmptyRouter(t *testing.T) {
	router := NewRequestRouter()

	allTools := router.ListAllTools()

	if len(allTools) != 0 {
		t.Errorf("Expected 0 tools for empty router, got %d", len(allTools))
	}
}

// TestGetHandler tests the GetHandler method
func TestGetHandler(t *testing.T) {
	issueHandler := &mockHandler{
		name: "issues",
		tools: []domain.ToolDefinition{
			{Name: "jira_get_issue", Description: "Get issue"},
		},
	}

	router := NewRequestRouter(issueHandler)

	// Test existing tool
	handler, exists := router.GetHandler("jira_get_issue")
	if !exists {
		t.Error("Expected jira_get_issue to be registered")
	}
	if handler != issueHandler {
		t.Error("Expected to get the same issue handler instance")
	}

	// Test non-existing tool
	handler, exists = router.GetHandler("jira_nonexistent")
	if exists {
		t.Error("Expected jira_nonexistent to not be registered")
	}
	if handler != nil {
		t.Error("Expected nil handler for unregistered tool")
	}
}
