package application

import (
	"context"
	"fmt"

	"jira-mcp-server/internal/domain"
	"jira-mcp-server/internal/infrastructure"
)

// CatalogHandler implements ToolHandler for reference data lookups:
// projects, fields, issue types, link types, and user search. Slow-moving
// catalogs are cached for the configured TTL so repeated lookups do not
// hit the remote API.
type CatalogHandler struct {
	client *infrastructure.JiraClient
	cache  *infrastructure.MemoryCache
	config *domain.Config
	mapper domain.ResponseMapper
}

// NewCatalogHandler creates a new CatalogHandler instance.
func NewCatalogHandler(client *infrastructure.JiraClient, cache *infrastructure.MemoryCache, config *domain.Config, mapper domain.ResponseMapper) *CatalogHandler {
	return &CatalogHandler{
		client: client,
		cache:  cache,
		config: config,
		mapper: mapper,
	}
}

// Tool name constants for catalog operations
const (
	ToolGetProjects          = "jira_get_projects"
	ToolGetFields            = "jira_get_fields"
	ToolGetProjectIssueTypes = "jira_get_project_issue_types"
	ToolGetLinkTypes         = "jira_get_link_types"
	ToolSearchUsers          = "jira_search_users"
)

// Name returns the identifier for this handler.
func (h *CatalogHandler) Name() string {
	return "catalog"
}

// ListTools returns available tools for catalog operations.
func (h *CatalogHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolGetProjects,
			Description: "List the Jira projects accessible to the configured account",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
				Required:   []string{},
			},
		},
		{
			Name:        ToolGetFields,
			Description: "List all Jira fields, including custom fields and their schemas",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
				Required:   []string{},
			},
		},
		{
			Name:        ToolGetProjectIssueTypes,
			Description: "List the issue types available in a Jira project",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"projectKey": map[string]interface{}{
						"type":        "string",
						"description": "The project key (e.g., TEST)",
					},
				},
				Required: []string{"projectKey"},
			},
		},
		{
			Name:        ToolGetLinkTypes,
			Description: "List the issue link types defined in Jira",
			InputSchema: domain.JSONSchema{
				Type:       "object",
				Properties: map[string]interface{}{},
				Required:   []string{},
			},
		},
		{
			Name:        ToolSearchUsers,
			Description: "Search for Jira users by name or username",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The search string to match against usernames and display names",
					},
					"maxResults": map[string]interface{}{
						"type":        "integer",
						"description": "The maximum number of users to return (optional)",
					},
				},
				Required: []string{"query"},
			},
		},
	}
}

// Handle processes an MCP tool call request for catalog operations.
func (h *CatalogHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolGetProjects:
		return h.handleGetProjects(ctx, req.Arguments)
	case ToolGetFields:
		return h.handleGetFields(ctx, req.Arguments)
	case ToolGetProjectIssueTypes:
		return h.handleGetProjectIssueTypes(ctx, req.Arguments)
	case ToolGetLinkTypes:
		return h.handleGetLinkTypes(ctx, req.Arguments)
	case ToolSearchUsers:
		return h.handleSearchUsers(ctx, req.Arguments)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown catalog tool: %s", req.Name),
		}
	}
}

// handleGetProjects handles the jira_get_projects tool call.
// The listing honors the configured project filter.
func (h *CatalogHandler) handleGetProjects(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	projects, err := h.client.GetProjects(ctx)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	allowed := make([]domain.Project, 0, len(projects))
	for _, project := range projects {
		if h.config.IsProjectAllowed(project.Key) {
			allowed = append(allowed, project)
		}
	}

	return h.mapper.MapToToolResponse(domain.SimplifyProjects(allowed))
}

// handleGetFields handles the jira_get_fields tool call.
// The field catalog changes rarely, so the simplified listing is cached.
func (h *CatalogHandler) handleGetFields(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	value, err := h.cache.WithCache(infrastructure.FieldCatalogKey(), 0, func() (interface{}, error) {
		fields, err := h.client.GetFields(ctx)
		if err != nil {
			return nil, err
		}
		return domain.SimplifyFields(fields), nil
	})
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(value)
}

// handleGetProjectIssueTypes handles the jira_get_project_issue_types tool call.
func (h *CatalogHandler) handleGetProjectIssueTypes(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	projectKey, err := getStringParam(args, "projectKey", true)
	if err != nil {
		return nil, err
	}
	if err := requireProjectAllowed(h.config, projectKey); err != nil {
		return nil, err
	}

	value, err := h.cache.WithCache(infrastructure.ProjectIssueTypesKey(projectKey), 0, func() (interface{}, error) {
		issueTypes, err := h.client.GetProjectIssueTypes(ctx, projectKey)
		if err != nil {
			return nil, err
		}
		return domain.SimplifyIssueTypes(issueTypes), nil
	})
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(value)
}

// handleGetLinkTypes handles the jira_get_link_types tool call.
func (h *CatalogHandler) handleGetLinkTypes(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	value, err := h.cache.WithCache(infrastructure.LinkTypesKey(), 0, func() (interface{}, error) {
		linkTypes, err := h.client.GetIssueLinkTypes(ctx)
		if err != nil {
			return nil, err
		}
		return domain.SimplifyLinkTypes(linkTypes), nil
	})
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(value)
}

// handleSearchUsers handles the jira_search_users tool call.
func (h *CatalogHandler) handleSearchUsers(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	query, err := getStringParam(args, "query", true)
	if err != nil {
		return nil, err
	}
	maxResults, err := getIntParam(args, "maxResults", false)
	if err != nil {
		return nil, err
	}

	users, err := h.client.SearchUsers(ctx, query, maxResults)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(domain.SimplifyUsers(users))
}
