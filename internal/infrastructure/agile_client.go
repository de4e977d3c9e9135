package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"jira-mcp-server/internal/domain"
)

// AgileClient provides typed access to the agile REST API family:
// boards, sprints, and sprint issue listings.
type AgileClient struct {
	rest domain.RestAPI
}

// NewAgileClient creates a client for the agile API family.
func NewAgileClient(rest domain.RestAPI) *AgileClient {
	return &AgileClient{rest: rest}
}

// PageOptions contains the pagination parameters of agile listings.
type PageOptions struct {
	StartAt    int
	MaxResults int
}

func (o *PageOptions) apply(params url.Values) {
	if o == nil {
		return
	}
	if o.StartAt > 0 {
		params.Set("startAt", fmt.Sprintf("%d", o.StartAt))
	}
	if o.MaxResults > 0 {
		params.Set("maxResults", fmt.Sprintf("%d", o.MaxResults))
	}
}

// GetBoards lists agile boards, optionally restricted to one project.
func (c *AgileClient) GetBoards(ctx context.Context, projectKey string, opts *PageOptions) (*domain.BoardPage, error) {
	params := url.Values{}
	if projectKey != "" {
		params.Set("projectKeyOrId", projectKey)
	}
	opts.apply(params)

	path := "/board"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	payload, err := c.rest.Request(ctx, "GET", domain.AgileAPI, path, nil)
	if err != nil {
		return nil, err
	}

	var boards domain.BoardPage
	if err := json.Unmarshal(payload, &boards); err != nil {
		return nil, fmt.Errorf("failed to decode boards: %w", err)
	}
	return &boards, nil
}

// GetSprints lists the sprints of a board, optionally filtered by state
// ("active", "future", "closed", or a comma-separated combination).
func (c *AgileClient) GetSprints(ctx context.Context, boardID string, state string, opts *PageOptions) (*domain.SprintPage, error) {
	params := url.Values{}
	if state != "" {
		params.Set("state", state)
	}
	opts.apply(params)

	path := "/board/" + url.PathEscape(boardID) + "/sprint"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	payload, err := c.rest.Request(ctx, "GET", domain.AgileAPI, path, nil)
	if err != nil {
		return nil, err
	}

	var sprints domain.SprintPage
	if err := json.Unmarshal(payload, &sprints); err != nil {
		return nil, fmt.Errorf("failed to decode sprints: %w", err)
	}
	return &sprints, nil
}

// GetSprintIssues lists the issues assigned to a sprint. The response
// shares the search result shape, pagination included.
func (c *AgileClient) GetSprintIssues(ctx context.Context, sprintID string, opts *PageOptions) (*domain.SearchResults, error) {
	params := url.Values{}
	opts.apply(params)

	path := "/sprint/" + url.PathEscape(sprintID) + "/issue"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	payload, err := c.rest.Request(ctx, "GET", domain.AgileAPI, path, nil)
	if err != nil {
		return nil, err
	}

	var results domain.SearchResults
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, fmt.Errorf("failed to decode sprint issues: %w", err)
	}
	return &results, nil
}
