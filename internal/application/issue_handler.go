package application

import (
	"context"
	"fmt"

	"jira-mcp-server/internal/domain"
	"jira-mcp-server/internal/infrastructure"
)

// IssueHandler implements ToolHandler for issue operations: lookup, JQL
// search, lifecycle changes, comments, worklogs, transitions, and links.
// It routes MCP tool calls to the appropriate JiraClient methods and
// transforms responses using the ResponseMapper.
type IssueHandler struct {
	client *infrastructure.JiraClient
	config *domain.Config
	mapper domain.ResponseMapper
}

// NewIssueHandler creates a new IssueHandler instance.
func NewIssueHandler(client *infrastructure.JiraClient, config *domain.Config, mapper domain.ResponseMapper) *IssueHandler {
	return &IssueHandler{
		client: client,
		config: config,
		mapper: mapper,
	}
}

// Tool name constants for issue operations
const (
	ToolGetIssue        = "jira_get_issue"
	ToolSearch          = "jira_search"
	ToolCreateIssue     = "jira_create_issue"
	ToolUpdateIssue     = "jira_update_issue"
	ToolDeleteIssue     = "jira_delete_issue"
	ToolAddComment      = "jira_add_comment"
	ToolGetComments     = "jira_get_comments"
	ToolGetTransitions  = "jira_get_transitions"
	ToolTransitionIssue = "jira_transition_issue"
	ToolLinkIssues      = "jira_link_issues"
	ToolAddWorklog      = "jira_add_worklog"
	ToolGetWorklogs     = "jira_get_worklogs"
)

// Name returns the identifier for this handler.
func (h *IssueHandler) Name() string {
	return "issues"
}

// ListTools returns available tools for issue operations.
func (h *IssueHandler) ListTools() []domain.ToolDefinition {
	return []domain.ToolDefinition{
		{
			Name:        ToolGetIssue,
			Description: "Retrieve a Jira issue by its key (e.g., TEST-123)",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
				},
				Required: []string{"issueKey"},
			},
		},
		{
			Name:        ToolSearch,
			Description: "Search for Jira issues using JQL (Jira Query Language)",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"jql": map[string]interface{}{
						"type":        "string",
						"description": "The JQL query string",
					},
					"startAt": map[string]interface{}{
						"type":        "integer",
						"description": "The index of the first issue to return (0-based, optional)",
					},
					"maxResults": map[string]interface{}{
						"type":        "integer",
						"description": "The maximum number of issues to return (optional)",
					},
					"fields": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "The fields to include in each result (optional)",
					},
				},
				Required: []string{"jql"},
			},
		},
		{
			Name:        ToolCreateIssue,
			Description: "Create a new Jira issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"projectKey": map[string]interface{}{
						"type":        "string",
						"description": "The project key (e.g., TEST)",
					},
					"summary": map[string]interface{}{
						"type":        "string",
						"description": "The issue summary/title",
					},
					"issueType": map[string]interface{}{
						"type":        "string",
						"description": "The issue type name (e.g., Bug, Story, Task)",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "The issue description (optional)",
					},
					"assignee": map[string]interface{}{
						"type":        "string",
						"description": "The assignee username (optional)",
					},
					"priority": map[string]interface{}{
						"type":        "string",
						"description": "The priority name (optional)",
					},
					"labels": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Labels to apply (optional)",
					},
				},
				Required: []string{"projectKey", "summary", "issueType"},
			},
		},
		{
			Name:        ToolUpdateIssue,
			Description: "Update an existing Jira issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
					"summary": map[string]interface{}{
						"type":        "string",
						"description": "The new summary/title (optional)",
					},
					"description": map[string]interface{}{
						"type":        "string",
						"description": "The new description (optional)",
					},
					"assignee": map[string]interface{}{
						"type":        "string",
						"description": "The new assignee username (optional)",
					},
					"priority": map[string]interface{}{
						"type":        "string",
						"description": "The new priority name (optional)",
					},
					"labels": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "The full replacement label list (optional)",
					},
				},
				Required: []string{"issueKey"},
			},
		},
		{
			Name:        ToolDeleteIssue,
			Description: "Delete a Jira issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
					"deleteSubtasks": map[string]interface{}{
						"type":        "boolean",
						"description": "Also delete the issue's subtasks (optional, defaults to false)",
					},
				},
				Required: []string{"issueKey"},
			},
		},
		{
			Name:        ToolAddComment,
			Description: "Add a comment to a Jira issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
					"body": map[string]interface{}{
						"type":        "string",
						"description": "The comment text",
					},
				},
				Required: []string{"issueKey", "body"},
			},
		},
		{
			Name:        ToolGetComments,
			Description: "List the comments on a Jira issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
				},
				Required: []string{"issueKey"},
			},
		},
		{
			Name:        ToolGetTransitions,
			Description: "List the workflow transitions currently available for a Jira issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
				},
				Required: []string{"issueKey"},
			},
		},
		{
			Name:        ToolTransitionIssue,
			Description: "Transition a Jira issue to a new status",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
					"transitionId": map[string]interface{}{
						"type":        "string",
						"description": "The transition ID (optional if transitionName is provided)",
					},
					"transitionName": map[string]interface{}{
						"type":        "string",
						"description": "The transition name (optional if transitionId is provided)",
					},
					"comment": map[string]interface{}{
						"type":        "string",
						"description": "A comment to add with the transition (optional)",
					},
				},
				Required: []string{"issueKey"},
			},
		},
		{
			Name:        ToolLinkIssues,
			Description: "Link two Jira issues with a typed relationship",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"inwardIssueKey": map[string]interface{}{
						"type":        "string",
						"description": "The key of the inward issue (e.g., the one being blocked)",
					},
					"outwardIssueKey": map[string]interface{}{
						"type":        "string",
						"description": "The key of the outward issue (e.g., the blocker)",
					},
					"linkType": map[string]interface{}{
						"type":        "string",
						"description": "The link type name (e.g., Blocks, Duplicate)",
					},
					"comment": map[string]interface{}{
						"type":        "string",
						"description": "A comment to add with the link (optional)",
					},
				},
				Required: []string{"inwardIssueKey", "outwardIssueKey", "linkType"},
			},
		},
		{
			Name:        ToolAddWorklog,
			Description: "Log work spent on a Jira issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
					"timeSpent": map[string]interface{}{
						"type":        "string",
						"description": "The time spent in Jira duration notation (e.g., 3h 30m)",
					},
					"comment": map[string]interface{}{
						"type":        "string",
						"description": "A description of the work done (optional)",
					},
					"started": map[string]interface{}{
						"type":        "string",
						"description": "When the work began, as an ISO-8601 timestamp (optional)",
					},
				},
				Required: []string{"issueKey", "timeSpent"},
			},
		},
		{
			Name:        ToolGetWorklogs,
			Description: "List the worklogs on a Jira issue",
			InputSchema: domain.JSONSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"issueKey": map[string]interface{}{
						"type":        "string",
						"description": "The issue key (e.g., TEST-123)",
					},
				},
				Required: []string{"issueKey"},
			},
		},
	}
}

// Handle processes an MCP tool call request for issue operations.
func (h *IssueHandler) Handle(ctx context.Context, req *domain.ToolRequest) (*domain.ToolResponse, error) {
	if req.Arguments == nil {
		req.Arguments = make(map[string]interface{})
	}

	switch req.Name {
	case ToolGetIssue:
		return h.handleGetIssue(ctx, req.Arguments)
	case ToolSearch:
		return h.handleSearch(ctx, req.Arguments)
	case ToolCreateIssue:
		return h.handleCreateIssue(ctx, req.Arguments)
	case ToolUpdateIssue:
		return h.handleUpdateIssue(ctx, req.Arguments)
	case ToolDeleteIssue:
		return h.handleDeleteIssue(ctx, req.Arguments)
	case ToolAddComment:
		return h.handleAddComment(ctx, req.Arguments)
	case ToolGetComments:
		return h.handleGetComments(ctx, req.Arguments)
	case ToolGetTransitions:
		return h.handleGetTransitions(ctx, req.Arguments)
	case ToolTransitionIssue:
		return h.handleTransitionIssue(ctx, req.Arguments)
	case ToolLinkIssues:
		return h.handleLinkIssues(ctx, req.Arguments)
	case ToolAddWorklog:
		return h.handleAddWorklog(ctx, req.Arguments)
	case ToolGetWorklogs:
		return h.handleGetWorklogs(ctx, req.Arguments)
	default:
		return nil, &domain.Error{
			Code:    domain.MethodNotFound,
			Message: fmt.Sprintf("unknown issue tool: %s", req.Name),
		}
	}
}

// handleGetIssue handles the jira_get_issue tool call.
func (h *IssueHandler) handleGetIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}

	issue, err := h.client.GetIssue(ctx, issueKey)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(domain.SimplifyIssue(issue))
}

// handleSearch handles the jira_search tool call.
func (h *IssueHandler) handleSearch(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	jql, err := getStringParam(args, "jql", true)
	if err != nil {
		return nil, err
	}

	// Optional pagination and field selection
	startAt, err := getIntParam(args, "startAt", false)
	if err != nil {
		return nil, err
	}
	maxResults, err := getIntParam(args, "maxResults", false)
	if err != nil {
		return nil, err
	}
	fields, err := getStringSliceParam(args, "fields")
	if err != nil {
		return nil, err
	}

	results, err := h.client.SearchIssues(ctx, jql, &infrastructure.SearchOptions{
		StartAt:    startAt,
		MaxResults: maxResults,
		Fields:     fields,
	})
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(domain.SimplifySearchResults(results))
}

// handleCreateIssue handles the jira_create_issue tool call.
func (h *IssueHandler) handleCreateIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	projectKey, err := getStringParam(args, "projectKey", true)
	if err != nil {
		return nil, err
	}
	if err := requireProjectAllowed(h.config, projectKey); err != nil {
		return nil, err
	}

	summary, err := getStringParam(args, "summary", true)
	if err != nil {
		return nil, err
	}
	issueType, err := getStringParam(args, "issueType", true)
	if err != nil {
		return nil, err
	}

	// Optional parameters
	description, _ := getStringParam(args, "description", false)
	assignee, _ := getStringParam(args, "assignee", false)
	priority, _ := getStringParam(args, "priority", false)
	labels, err := getStringSliceParam(args, "labels")
	if err != nil {
		return nil, err
	}

	createReq := &domain.IssueCreate{
		Fields: domain.CreateFields{
			Project:     domain.ProjectRef{Key: projectKey},
			Summary:     summary,
			Description: description,
			IssueType:   domain.IssueTypeRef{Name: issueType},
			Labels:      labels,
		},
	}
	if assignee != "" {
		createReq.Fields.Assignee = &domain.UserRef{Name: assignee}
	}
	if priority != "" {
		createReq.Fields.Priority = &domain.NameRef{Name: priority}
	}

	issue, err := h.client.CreateIssue(ctx, createReq)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	// The create response carries only identifiers, so report the new key
	// rather than an empty simplified issue.
	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Issue %s created successfully", issue.Key),
		"key":     issue.Key,
	})
}

// handleUpdateIssue handles the jira_update_issue tool call.
func (h *IssueHandler) handleUpdateIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}

	// Optional parameters
	summary, _ := getStringParam(args, "summary", false)
	description, _ := getStringParam(args, "description", false)
	assignee, _ := getStringParam(args, "assignee", false)
	priority, _ := getStringParam(args, "priority", false)
	labels, err := getStringSliceParam(args, "labels")
	if err != nil {
		return nil, err
	}

	updateReq := &domain.IssueUpdate{
		Fields: domain.UpdateFields{
			Summary:     summary,
			Description: description,
			Labels:      labels,
		},
	}
	if assignee != "" {
		updateReq.Fields.Assignee = &domain.UserRef{Name: assignee}
	}
	if priority != "" {
		updateReq.Fields.Priority = &domain.NameRef{Name: priority}
	}

	if err := h.client.UpdateIssue(ctx, issueKey, updateReq); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Issue %s updated successfully", issueKey),
	})
}

// handleDeleteIssue handles the jira_delete_issue tool call.
func (h *IssueHandler) handleDeleteIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}
	deleteSubtasks, err := getBoolParam(args, "deleteSubtasks", false)
	if err != nil {
		return nil, err
	}

	if err := h.client.DeleteIssue(ctx, issueKey, deleteSubtasks); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Issue %s deleted successfully", issueKey),
	})
}

// handleAddComment handles the jira_add_comment tool call.
func (h *IssueHandler) handleAddComment(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}
	body, err := getStringParam(args, "body", true)
	if err != nil {
		return nil, err
	}

	if _, err := h.client.AddComment(ctx, issueKey, body); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Comment added to issue %s successfully", issueKey),
	})
}

// handleGetComments handles the jira_get_comments tool call.
func (h *IssueHandler) handleGetComments(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}

	page, err := h.client.GetComments(ctx, issueKey)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(domain.SimplifyCommentPage(page))
}

// handleGetTransitions handles the jira_get_transitions tool call.
func (h *IssueHandler) handleGetTransitions(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}

	transitions, err := h.client.GetTransitions(ctx, issueKey)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(domain.SimplifyTransitions(transitions))
}

// handleTransitionIssue handles the jira_transition_issue tool call.
func (h *IssueHandler) handleTransitionIssue(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}

	// At least one of transitionId and transitionName is required
	transitionID, _ := getStringParam(args, "transitionId", false)
	transitionName, _ := getStringParam(args, "transitionName", false)
	if transitionID == "" && transitionName == "" {
		return nil, &domain.Error{
			Code:    domain.InvalidParams,
			Message: "either transitionId or transitionName must be provided",
		}
	}

	comment, _ := getStringParam(args, "comment", false)

	transition := &domain.TransitionRequest{
		Transition: domain.TransitionRef{
			ID:   transitionID,
			Name: transitionName,
		},
	}
	if comment != "" {
		transition.Update = &domain.TransitionUpdate{
			Comment: []domain.CommentOp{{Add: domain.CommentBody{Body: comment}}},
		}
	}

	if err := h.client.TransitionIssue(ctx, issueKey, transition); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Issue %s transitioned successfully", issueKey),
	})
}

// handleLinkIssues handles the jira_link_issues tool call.
func (h *IssueHandler) handleLinkIssues(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	inwardKey, err := getStringParam(args, "inwardIssueKey", true)
	if err != nil {
		return nil, err
	}
	outwardKey, err := getStringParam(args, "outwardIssueKey", true)
	if err != nil {
		return nil, err
	}
	linkType, err := getStringParam(args, "linkType", true)
	if err != nil {
		return nil, err
	}

	comment, _ := getStringParam(args, "comment", false)

	link := &domain.LinkCreate{
		Type:         domain.NameRef{Name: linkType},
		InwardIssue:  domain.KeyRef{Key: inwardKey},
		OutwardIssue: domain.KeyRef{Key: outwardKey},
	}
	if comment != "" {
		link.Comment = &domain.CommentBody{Body: comment}
	}

	if err := h.client.CreateIssueLink(ctx, link); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Issues %s and %s linked successfully", inwardKey, outwardKey),
	})
}

// handleAddWorklog handles the jira_add_worklog tool call.
func (h *IssueHandler) handleAddWorklog(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}
	timeSpent, err := getStringParam(args, "timeSpent", true)
	if err != nil {
		return nil, err
	}

	// Optional parameters
	comment, _ := getStringParam(args, "comment", false)
	started, _ := getStringParam(args, "started", false)

	worklog := &domain.WorklogCreate{
		TimeSpent: timeSpent,
		Comment:   comment,
		Started:   started,
	}

	if _, err := h.client.AddWorklog(ctx, issueKey, worklog); err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Worklog added to issue %s successfully", issueKey),
	})
}

// handleGetWorklogs handles the jira_get_worklogs tool call.
func (h *IssueHandler) handleGetWorklogs(ctx context.Context, args map[string]interface{}) (*domain.ToolResponse, error) {
	issueKey, err := getStringParam(args, "issueKey", true)
	if err != nil {
		return nil, err
	}

	page, err := h.client.GetWorklogs(ctx, issueKey)
	if err != nil {
		return nil, h.mapper.MapError(err)
	}

	return h.mapper.MapToToolResponse(domain.SimplifyWorklogPage(page))
}
