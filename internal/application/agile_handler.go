package application

import (
	"context"
	"fmt"
	"strconv"

	"jira-mcp-server/internal/domain"
	"jira-mcp-server/internal/infrastructure"
)

// AgileHandler implements ToolHandler for agile board operations: board
// listings, sprint listings, and sprint issue queries.
type AgileHandler struct {
	client *infrastructure.AgileClient
	config *domain.Config
	mapper domain.ResponseMapper
}

// NewAgileHandler creates a new AgileHandler instance.
func NewAgileHandler(client *infrastructure.AgileClient, config *domain.Config, mapper domain.ResponseMapper) *AgileHandler {
	return &AgileHandler{
		client: client,
		config: config,
		mapper: mapper,
	}
}

// Tool name constants for agile operations
const (
	ToolGetBoards       = "jira_get_boards"
	ToolGetSprints      = "jira_get_sprints"
	ToolGetSprintIssues = "jira_get_sprint_issues"
)

// Name returns the identifier for this handler.
func (h *AgileHandler) Name() string {
	return "agile"
}

// ListTools returns available tools for agile operations.
func (h *AgileHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolGetBoards,
			Description: "List agile boards, optionally restricted to one project",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"projectKey": map[string]interface{}{
						"type":        "string",
						"description": "Restrict the listing to boards of this project (optional)",
					},
					"startAt": map[string]interface{}{
						"type":        "integer",
						"description": "The index of the first board to return (0-based, optional)",
					},
					"maxResults": map[string]interface{}{
						"type":        "integer",
						"description": "The maximum number of boards to return (optional)",
					},
				},
				Required: []string{},
			},
		},
		{
			Name:        ToolGetSprints,
			Description: "List the sprints of an agile board",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"boardId": map[string]interface{}{
						"type":        "integer",
						"description": "The board ID",
					},
					"state": map[string]interface{}{
						"type":        "string",
						"description": "Filter by sprint state: active, future, or closed (optional)",
					},
					"startAt": map[string]interface{}{
						"type":        "integer",
						"description": "The index of the first sprint to return (0-based, optional)",
					},
					"maxResults": map[string]interface{}{
						"type":        "integer",
						"description": "The maximum number of sprints to return (optional)",
					},
				},
				Required: []string{"boardId"},
			},
		},
		{
			Name:        ToolGetSprintIssues,
			Description: "List the issues assigned to a sprint",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"sprintId": map[string]interface{}{
						"type":        "integer",
						"description": "The sprint ID",
					},
					"startAt": map[string]interface{}{
						"type":        "integer",
						"description": "The index of the first issue to return (0-based, optional)",
					},
					"maxResults": map[string]interface{}{
						"type":        "integer",
						"description": "The maximum number of issues to return (optional)",
					},
				},
				Required: []string{"sprintId"},
			},
		},
	}
}

// Handle processes an MCP tool call request for agile operations.
func (h *AgileHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolGetBoards:
		return h.handleGetBoards(ctx, req.Arguments)
	case ToolGetSprints:
		return h.handleGetSprints(ctx, req.Arguments)
	case ToolGetSprintIssues:
		return h.handleGetSprintIssues(ctx, req.Arguments)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown agile tool: %s", req.Name),
		}
	}
}

// pageOptions builds the shared pagination options from tool arguments.
func pageOptions(args map[string]interface{}) (*infrastructure.PageOptions, error) {
	startAt, err := getIntParam(args, "startAt", false)
	if err != nil {
		return nil, err
	}
	maxResults, err := getIntParam(args, "maxResults", false)
	if err != nil {
		return nil, err
	}
	return &infrastructure.PageOptions{StartAt: startAt, MaxResults: maxResults}, nil
}

// handleGetBoards handles the jira_get_boards tool call.
func (h *AgileHandler) handleGetBoards(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	projectKey, err := getStringParam(args, "projectKey", false)
	if err != nil {
		return nil, err
	}
	if projectKey != "" {
		if err := requireProjectAllowed(h.config, projectKey); err != nil {
			return nil, err
		}
	}

	opts, err := pageOptions(args)
	if err != nil {
		return nil, err
	}

	boards, err := h.client.GetBoards(ctx, projectKey, opts)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(domain.SimplifyBoardPage(boards))
}

// handleGetSprints handles the jira_get_sprints tool call.
func (h *AgileHandler) handleGetSprints(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	boardID, err := getIntParam(args, "boardId", true)
	if err != nil {
		return nil, err
	}
	state, err := getStringParam(args, "state", false)
	if err != nil {
		return nil, err
	}
	opts, err := pageOptions(args)
	if err != nil {
		return nil, err
	}

	sprints, err := h.client.GetSprints(ctx, strconv.Itoa(boardID), state, opts)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(domain.SimplifySprintPage(sprints))
}

// handleGetSprintIssues handles the jira_get_sprint_issues tool call.
func (h *AgileHandler) handleGetSprintIssues(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	sprintID, err := getIntParam(args, "sprintId", true)
	if err != nil {
		return nil, err
	}
	opts, err := pageOptions(args)
	if err != nil {
		return nil, err
	}

	results, err := h.client.GetSprintIssues(ctx, strconv.Itoa(sprintID), opts)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(domain.SimplifySearchResults(results))
}
