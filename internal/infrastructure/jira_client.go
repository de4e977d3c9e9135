package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"jira-mcp-server/internal/domain"
)

// JiraClient provides typed access to the core REST API family: issues,
// search, comments, worklogs, links, and the project and field catalogs.
// Every method is one endpoint call through the shared rest transport.
type JiraClient struct {
	rest domain.RestAPI
}

// NewJiraClient creates a client for the core API family.
func NewJiraClient(rest domain.RestAPI) *JiraClient {
	return &JiraClient{rest: rest}
}

// GetIssue retrieves an issue by its key (e.g. "TEST-123").
func (c *JiraClient) GetIssue(ctx context.Context, issueKey string) (*domain.Issue, error) {
	path := "/issue/" + url.PathEscape(issueKey)

	payload, err := c.rest.Request(ctx, "GET", domain.CoreAPI, path, nil)
	if err != nil {
		return nil, err
	}

	var issue domain.Issue
	if err := json.Unmarshal(payload, &issue); err != nil {
		return nil, fmt.Errorf("failed to decode issue: %w", err)
	}
	return &issue, nil
}

// SearchOptions contains the optional parameters of a JQL search.
type SearchOptions struct {
	StartAt    int
	MaxResults int
	Fields     []string
}

// SearchIssues performs a JQL search and returns matching issues with
// pagination metadata.
func (c *JiraClient) SearchIssues(ctx context.Context, jql string, opts *SearchOptions) (*domain.SearchResults, error) {
	params := url.Values{}
	params.Set("jql", jql)

	if opts != nil {
		if opts.StartAt > 0 {
			params.Set("startAt", fmt.Sprintf("%d", opts.StartAt))
		}
		if opts.MaxResults > 0 {
			params.Set("maxResults", fmt.Sprintf("%d", opts.MaxResults))
		}
		for _, field := range opts.Fields {
			params.Add("fields", field)
		}
	}

	payload, err := c.rest.Request(ctx, "GET", domain.CoreAPI, "/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var results domain.SearchResults
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return &results, nil
}

// CreateIssue creates a new issue and returns the created stub with its
// assigned ID and key.
func (c *JiraClient) CreateIssue(ctx context.Context, create *domain.IssueCreate) (*domain.Issue, error) {
	payload, err := c.rest.Request(ctx, "POST", domain.CoreAPI, "/issue", create)
	if err != nil {
		return nil, err
	}

	var issue domain.Issue
	if err := json.Unmarshal(payload, &issue); err != nil {
		return nil, fmt.Errorf("failed to decode created issue: %w", err)
	}
	return &issue, nil
}

// UpdateIssue applies a field update to an existing issue.
func (c *JiraClient) UpdateIssue(ctx context.Context, issueKey string, update *domain.IssueUpdate) error {
	path := "/issue/" + url.PathEscape(issueKey)

	_, err := c.rest.Request(ctx, "PUT", domain.CoreAPI, path, update)
	return err
}

// DeleteIssue deletes an issue. When deleteSubtasks is set, subtasks are
// removed along with it; otherwise Jira rejects deleting a parent issue.
func (c *JiraClient) DeleteIssue(ctx context.Context, issueKey string, deleteSubtasks bool) error {
	path := "/issue/" + url.PathEscape(issueKey)
	if deleteSubtasks {
		path += "?deleteSubtasks=true"
	}

	_, err := c.rest.Request(ctx, "DELETE", domain.CoreAPI, path, nil)
	return err
}

// GetTransitions lists the workflow transitions currently available for
// an issue.
func (c *JiraClient) GetTransitions(ctx context.Context, issueKey string) (*domain.TransitionList, error) {
	path := "/issue/" + url.PathEscape(issueKey) + "/transitions"

	payload, err := c.rest.Request(ctx, "GET", domain.CoreAPI, path, nil)
	if err != nil {
		return nil, err
	}

	var transitions domain.TransitionList
	if err := json.Unmarshal(payload, &transitions); err != nil {
		return nil, fmt.Errorf("failed to decode transitions: %w", err)
	}
	return &transitions, nil
}

// TransitionIssue performs a workflow transition on an issue.
func (c *JiraClient) TransitionIssue(ctx context.Context, issueKey string, transition *domain.TransitionRequest) error {
	path := "/issue/" + url.PathEscape(issueKey) + "/transitions"

	_, err := c.rest.Request(ctx, "POST", domain.CoreAPI, path, transition)
	return err
}

// AddComment adds a comment to an issue and returns the created comment.
func (c *JiraClient) AddComment(ctx context.Context, issueKey, body string) (*domain.Comment, error) {
	path := "/issue/" + url.PathEscape(issueKey) + "/comment"

	payload, err := c.rest.Request(ctx, "POST", domain.CoreAPI, path, &domain.CommentBody{Body: body})
	if err != nil {
		return nil, err
	}

	var comment domain.Comment
	if err := json.Unmarshal(payload, &comment); err != nil {
		return nil, fmt.Errorf("failed to decode comment: %w", err)
	}
	return &comment, nil
}

// GetComments lists the comments on an issue.
func (c *JiraClient) GetComments(ctx context.Context, issueKey string) (*domain.CommentPage, error) {
	path := "/issue/" + url.PathEscape(issueKey) + "/comment"

	payload, err := c.rest.Request(ctx, "GET", domain.CoreAPI, path, nil)
	if err != nil {
		return nil, err
	}

	var comments domain.CommentPage
	if err := json.Unmarshal(payload, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return &comments, nil
}

// AddWorklog logs work on an issue and returns the created entry.
func (c *JiraClient) AddWorklog(ctx context.Context, issueKey string, worklog *domain.WorklogCreate) (*domain.Worklog, error) {
	path := "/issue/" + url.PathEscape(issueKey) + "/worklog"

	payload, err := c.rest.Request(ctx, "POST", domain.CoreAPI, path, worklog)
	if err != nil {
		return nil, err
	}

	var created domain.Worklog
	if err := json.Unmarshal(payload, &created); err != nil {
		return nil, fmt.Errorf("failed to decode worklog: %w", err)
	}
	return &created, nil
}

// GetWorklogs lists the work logged on an issue.
func (c *JiraClient) GetWorklogs(ctx context.Context, issueKey string) (*domain.WorklogPage, error) {
	path := "/issue/" + url.PathEscape(issueKey) + "/worklog"

	payload, err := c.rest.Request(ctx, "GET", domain.CoreAPI, path, nil)
	if err != nil {
		return nil, err
	}

	var worklogs domain.WorklogPage
	if err := json.Unmarshal(payload, &worklogs); err != nil {
		return nil, fmt.Errorf("failed to decode worklogs: %w", err)
	}
	return &worklogs, nil
}

// CreateIssueLink relates two issues with the named link type.
func (c *JiraClient) CreateIssueLink(ctx context.Context, link *domain.LinkCreate) error {
	_, err := c.rest.Request(ctx, "POST", domain.CoreAPI, "/issueLink", link)
	return err
}

// GetIssueLinkTypes lists the configured issue link types.
func (c *JiraClient) GetIssueLinkTypes(ctx context.Context) (*domain.LinkTypeList, error) {
	payload, err := c.rest.Request(ctx, "GET", domain.CoreAPI, "/issueLinkType", nil)
	if err != nil {
		return nil, err
	}

	var linkTypes domain.LinkTypeList
	if err := json.Unmarshal(payload, &linkTypes); err != nil {
		return nil, fmt.Errorf("failed to decode link types: %w", err)
	}
	return &linkTypes, nil
}

// GetProjects lists the projects visible to the authenticated user.
func (c *JiraClient) GetProjects(ctx context.Context) ([]domain.Project, error) {
	payload, err := c.rest.Request(ctx, "GET", domain.CoreAPI, "/project", nil)
	if err != nil {
		return nil, err
	}

	var projects []domain.Project
	if err := json.Unmarshal(payload, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return projects, nil
}

// GetProjectIssueTypes returns the issue types available in a project.
func (c *JiraClient) GetProjectIssueTypes(ctx context.Context, projectKey string) ([]domain.IssueType, error) {
	path := "/project/" + url.PathEscape(projectKey)

	payload, err := c.rest.Request(ctx, "GET", domain.CoreAPI, path, nil)
	if err != nil {
		return nil, err
	}

	var detail domain.ProjectDetail
	if err := json.Unmarshal(payload, &detail); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}
	return detail.IssueTypes, nil
}

// GetFields returns the field catalog, including vendor extension
// fields.
func (c *JiraClient) GetFields(ctx context.Context) ([]domain.Field, error) {
	payload, err := c.rest.Request(ctx, "GET", domain.CoreAPI, "/field", nil)
	if err != nil {
		return nil, err
	}

	var fields []domain.Field
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return fields, nil
}

// SearchUsers finds users matching a name or username fragment.
func (c *JiraClient) SearchUsers(ctx context.Context, query string, maxResults int) ([]domain.User, error) {
	params := url.Values{}
	params.Set("username", query)
	if maxResults > 0 {
		params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	}

	payload, err := c.rest.Request(ctx, "GET", domain.CoreAPI, "/user/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var users []domain.User
	if err := json.Unmarshal(payload, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}
