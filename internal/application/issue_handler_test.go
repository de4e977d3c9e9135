package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jira-mcp-server/internal/domain"
	"jira-mcp-server/internal/infrastructure"
)

// containsSubstring is shared by the handler tests for response text
// assertions.
func containsSubstring(s, substr string) bool {
	return strings.Contains(s, substr)
}

func newTestIssueHandler(server *httptest.Server, filter []string) *IssueHandler {
	config := &domain.Config{
		BaseURL:        server.URL,
		Username:       "agent",
		Password:       "secret",
		ProjectFilter:  filter,
		ResponseFormat: domain.FormatJSON,
		TimeoutMS:      5000,
		RetryCount:     0,
		RetryDelayMS:   10,
		TLSVerify:      true,
		CacheTTLSec:    300,
	}
	rest := infrastructure.NewRestClient(config, server.Client(), nil)
	return NewIssueHandler(infrastructure.NewJiraClient(rest), config, domain.NewResponseMapper(domain.FormatJSON))
}

func TestIssueHandler_Name(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	if name := newTestIssueHandler(server, nil).Name(); name != "issues" {
		t.Errorf("Expected handler name 'issues', got '%s'", name)
	}
}

func TestIssueHandler_ListTools(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	tools := newTestIssueHandler(server, nil).ListTools()

	if len(tools) != 12 {
		t.Fatalf("Expected 12 issue tools, got %d", len(tools))
	}

	if tools[0].Name != ToolGetIssue {
		t.Errorf("Expected first tool %s, got %s", ToolGetIssue, tools[0].Name)
	}

	for _, tool := range tools {
		if tool.InputSchema.Type != "object" {
			t.Errorf("Tool %s schema type = %s, want object", tool.Name, tool.InputSchema.Type)
		}
		if tool.Description == "" {
			t.Errorf("Tool %s has no description", tool.Name)
		}
	}
}

func TestIssueHandler_GetIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/issue/TEST-1" {
			t.Errorf("Expected issue path, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "10001",
			"key": "TEST-1",
			"fields": {
				"summary": "Login page rejects valid passwords",
				"status": {"name": "Open"},
				"issuetype": {"name": "Bug"},
				"assignee": {"name": "jsmith", "displayName": "John Smith"}
			}
		}`))
	}))
	defer server.Close()

	resp, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name:      ToolGetIssue,
		Arguments: map[string]interface{}{"issueKey": "TEST-1"},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}

	if len(resp.Content) != 1 {
		t.Fatalf("Expected 1 content block, got %d", len(resp.Content))
	}

	text := resp.Content[0].Text
	if !containsSubstring(text, "TEST-1") {
		t.Errorf("Expected issue key in response, got %s", text)
	}
	if !containsSubstring(text, "Login page rejects valid passwords") {
		t.Errorf("Expected summary in response, got %s", text)
	}
}

func TestIssueHandler_GetIssue_MissingKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	defer server.Close()

	_, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name:      ToolGetIssue,
		Arguments: map[string]interface{}{},
	})
	if err == nil {
		t.Fatal("Expected error for missing issueKey")
	}

	var rpcErr *domain.Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Expected *domain.Error, got %T", err)
	}
	if rpcErr.Code != domain.InvalidParams {
		t.Errorf("Expected error code %d, got %d", domain.InvalidParams, rpcErr.Code)
	}
}

func TestIssueHandler_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/search" {
			t.Errorf("Expected search path, got %s", r.URL.Path)
		}
		if jql := r.URL.Query().Get("jql"); jql != "project = TEST" {
			t.Errorf("Expected jql 'project = TEST', got %q", jql)
		}
		if max := r.URL.Query().Get("maxResults"); max != "2" {
			t.Errorf("Expected maxResults 2, got %q", max)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"startAt": 0,
			"maxResults": 2,
			"total": 5,
			"issues": [
				{"id": "10001", "key": "TEST-1", "fields": {"summary": "First", "status": {"name": "Open"}}},
				{"id": "10002", "key": "TEST-2", "fields": {"summary": "Second", "status": {"name": "Done"}}}
			]
		}`))
	}))
	defer server.Close()

	resp, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name: ToolSearch,
		Arguments: map[string]interface{}{
			"jql":        "project = TEST",
			"maxResults": float64(2),
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}

	// Paginated results carry a second content block with the window summary
	if len(resp.Content) != 2 {
		t.Fatalf("Expected 2 content blocks, got %d", len(resp.Content))
	}
	if !containsSubstring(resp.Content[0].Text, "TEST-2") {
		t.Errorf("Expected second issue in results, got %s", resp.Content[0].Text)
	}
	if !containsSubstring(resp.Content[1].Text, "Showing 1-2 of 5") {
		t.Errorf("Expected pagination summary, got %s", resp.Content[1].Text)
	}
}

func TestIssueHandler_CreateIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/rest/api/2/issue" {
			t.Errorf("Expected POST /rest/api/2/issue, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		fields, _ := body["fields"].(map[string]interface{})
		if fields["summary"] != "New bug report" {
			t.Errorf("Expected summary in request, got %v", fields["summary"])
		}
		project, _ := fields["project"].(map[string]interface{})
		if project["key"] != "TEST" {
			t.Errorf("Expected project key TEST, got %v", project["key"])
		}
		priority, _ := fields["priority"].(map[string]interface{})
		if priority["name"] != "High" {
			t.Errorf("Expected priority High, got %v", priority["name"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "10003", "key": "TEST-3"}`))
	}))
	defer server.Close()

	resp, err := newTestIssueHandler(server, []string{"TEST"}).Handle(context.Background(), &domain.ToolRequest{
		Name: ToolCreateIssue,
		Arguments: map[string]interface{}{
			"projectKey": "TEST",
			"summary":    "New bug report",
			"issueType":  "Bug",
			"priority":   "High",
			"labels":     []interface{}{"backend", "urgent"},
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}

	text := resp.Content[0].Text
	if !containsSubstring(text, "TEST-3") {
		t.Errorf("Expected new issue key in response, got %s", text)
	}
	if !containsSubstring(text, "created successfully") {
		t.Errorf("Expected success message, got %s", text)
	}
}

func TestIssueHandler_CreateIssue_FilteredProject(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	_, err := newTestIssueHandler(server, []string{"TEST"}).Handle(context.Background(), &domain.ToolRequest{
		Name: ToolCreateIssue,
		Arguments: map[string]interface{}{
			"projectKey": "SECRET",
			"summary":    "Should be rejected",
			"issueType":  "Bug",
		},
	})
	if err == nil {
		t.Fatal("Expected error for filtered project")
	}

	var rpcErr *domain.Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Expected *domain.Error, got %T", err)
	}
	if rpcErr.Code != domain.AuthenticationErrorCode {
		t.Errorf("Expected error code %d, got %d", domain.AuthenticationErrorCode, rpcErr.Code)
	}

	if requests != 0 {
		t.Errorf("Expected no requests to reach the server, got %d", requests)
	}
}

func TestIssueHandler_UpdateIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" || r.URL.Path != "/rest/api/2/issue/TEST-1" {
			t.Errorf("Expected PUT /rest/api/2/issue/TEST-1, got %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name: ToolUpdateIssue,
		Arguments: map[string]interface{}{
			"issueKey": "TEST-1",
			"summary":  "Clarified summary",
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}

	if !containsSubstring(resp.Content[0].Text, "updated successfully") {
		t.Errorf("Expected success message, got %s", resp.Content[0].Text)
	}
}

func TestIssueHandler_DeleteIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "DELETE" {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		if r.URL.Query().Get("deleteSubtasks") != "true" {
			t.Errorf("Expected deleteSubtasks=true, got %s", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name: ToolDeleteIssue,
		Arguments: map[string]interface{}{
			"issueKey":       "TEST-1",
			"deleteSubtasks": true,
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}

	if !containsSubstring(resp.Content[0].Text, "deleted successfully") {
		t.Errorf("Expected success message, got %s", resp.Content[0].Text)
	}
}

func TestIssueHandler_AddComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/rest/api/2/issue/TEST-1/comment" {
			t.Errorf("Expected POST comment path, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		if body["body"] != "Deployed the fix to staging" {
			t.Errorf("Expected comment body, got %v", body["body"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "20001", "body": "Deployed the fix to staging", "author": {"displayName": "John Smith"}}`))
	}))
	defer server.Close()

	resp, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name: ToolAddComment,
		Arguments: map[string]interface{}{
			"issueKey": "TEST-1",
			"body":     "Deployed the fix to staging",
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}

	if !containsSubstring(resp.Content[0].Text, "Comment added to issue TEST-1") {
		t.Errorf("Expected success message, got %s", resp.Content[0].Text)
	}
}

func TestIssueHandler_GetComments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/issue/TEST-1/comment" {
			t.Errorf("Expected comment path, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"startAt": 0,
			"maxResults": 50,
			"total": 1,
			"comments": [
				{"id": "20001", "body": "Looks fixed now", "author": {"displayName": "John Smith"}, "created": "2024-03-02T10:00:00.000+0000"}
			]
		}`))
	}))
	defer server.Close()

	resp, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name:      ToolGetComments,
		Arguments: map[string]interface{}{"issueKey": "TEST-1"},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}

	text := resp.Content[0].Text
	if !containsSubstring(text, "Looks fixed now") {
		t.Errorf("Expected comment body in response, got %s", text)
	}
	if !containsSubstring(text, "John Smith") {
		t.Errorf("Expected comment author in response, got %s", text)
	}
}

func TestIssueHandler_TransitionIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/rest/api/2/issue/TEST-1/transitions" {
			t.Errorf("Expected POST transitions path, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		transition, _ := body["transition"].(map[string]interface{})
		if transition["id"] != "21" {
			t.Errorf("Expected transition id 21, got %v", transition["id"])
		}
		if body["update"] == nil {
			t.Error("Expected update block with transition comment")
		}

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	resp, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name: ToolTransitionIssue,
		Arguments: map[string]interface{}{
			"issueKey":     "TEST-1",
			"transitionId": "21",
			"comment":      "Verified on staging",
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}

	if !containsSubstring(resp.Content[0].Text, "transitioned successfully") {
		t.Errorf("Expected success message, got %s", resp.Content[0].Text)
	}
}

func TestIssueHandler_TransitionIssue_RequiresTarget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
	}))
	defer server.Close()

	_, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name:      ToolTransitionIssue,
		Arguments: map[string]interface{}{"issueKey": "TEST-1"},
	})
	if err == nil {
		t.Fatal("Expected error when neither transitionId nor transitionName is given")
	}

	var rpcErr *domain.Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Expected *domain.Error, got %T", err)
	}
	if rpcErr.Code != domain.InvalidParams {
		t.Errorf("Expected error code %d, got %d", domain.InvalidParams, rpcErr.Code)
	}
	if rpcErr.Message != "either transitionId or transitionName must be provided" {
		t.Errorf("Unexpected error message: %s", rpcErr.Message)
	}
}

func TestIssueHandler_LinkIssues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/rest/api/2/issueLink" {
			t.Errorf("Expected POST /rest/api/2/issueLink, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		linkType, _ := body["type"].(map[string]interface{})
		if linkType["name"] != "Blocks" {
			t.Errorf("Expected link type Blocks, got %v", linkType["name"])
		}

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	resp, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name: ToolLinkIssues,
		Arguments: map[string]interface{}{
			"inwardIssueKey":  "TEST-1",
			"outwardIssueKey": "TEST-2",
			"linkType":        "Blocks",
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}

	if !containsSubstring(resp.Content[0].Text, "TEST-1 and TEST-2 linked successfully") {
		t.Errorf("Expected success message, got %s", resp.Content[0].Text)
	}
}

func TestIssueHandler_AddWorklog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/rest/api/2/issue/TEST-1/worklog" {
			t.Errorf("Expected POST worklog path, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		if body["timeSpent"] != "3h 30m" {
			t.Errorf("Expected timeSpent '3h 30m', got %v", body["timeSpent"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "30001", "timeSpent": "3h 30m", "timeSpentSeconds": 12600}`))
	}))
	defer server.Close()

	resp, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name: ToolAddWorklog,
		Arguments: map[string]interface{}{
			"issueKey":  "TEST-1",
			"timeSpent": "3h 30m",
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}

	if !containsSubstring(resp.Content[0].Text, "Worklog added to issue TEST-1") {
		t.Errorf("Expected success message, got %s", resp.Content[0].Text)
	}
}

func TestIssueHandler_NotFoundMapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errorMessages": ["Issue does not exist or you do not have permission to see it."]}`))
	}))
	defer server.Close()

	_, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name:      ToolGetIssue,
		Arguments: map[string]interface{}{"issueKey": "MISSING-1"},
	})
	if err == nil {
		t.Fatal("Expected error for missing issue")
	}

	var rpcErr *domain.Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Expected *domain.Error, got %T", err)
	}
	if rpcErr.Code != domain.APIErrorCode {
		t.Errorf("Expected error code %d, got %d", domain.APIErrorCode, rpcErr.Code)
	}

	data, _ := rpcErr.Data.(map[string]interface{})
	if data["statusCode"] != 404 {
		t.Errorf("Expected statusCode 404 in error data, got %v", data["statusCode"])
	}
}

func TestIssueHandler_UnknownTool(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := newTestIssueHandler(server, nil).Handle(context.Background(), &domain.ToolRequest{
		Name:      "jira_bogus",
		Arguments: map[string]interface{}{},
	})
	if err == nil {
		t.Fatal("Expected error for unknown tool")
	}

	var rpcErr *domain.Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Expected *domain.Error, got %T", err)
	}
	if rpcErr.Code != domain.MethodNotFound {
		t.Errorf("Expected error code %d, got %d", domain.MethodNotFound, rpcErr.Code)
	}
}
