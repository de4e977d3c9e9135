package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"jira-mcp-server/internal/domain"
)

func newAgileClient(server *httptest.Server) *AgileClient {
	rest := NewRestClient(newTestConfig(server.URL, 0, 5000, 1), server.Client(), nil)
	return NewAgileClient(rest)
}

func TestAgileClient_GetBoards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/agile/1.0/board" {
			t.Errorf("Expected /rest/agile/1.0/board, got %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("projectKeyOrId") != "TEST" {
			t.Errorf("Expected projectKeyOrId TEST, got %q", query.Get("projectKeyOrId"))
		}
		if query.Get("maxResults") != "25" {
			t.Errorf("Expected maxResults 25, got %q", query.Get("maxResults"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"maxResults": 25,
			"startAt": 0,
			"total": 2,
			"isLast": true,
			"values": [
				{"id": 1, "name": "TEST board", "type": "scrum"},
				{"id": 2, "name": "TEST kanban", "type": "kanban"}
			]
		}`))
	}))
	defer server.Close()

	boards, err := newAgileClient(server).GetBoards(context.Background(), "TEST", &PageOptions{MaxResults: 25})
	if err != nil {
		t.Fatalf("GetBoards() error = %v, want nil", err)
	}

	if len(boards.Values) != 2 {
		t.Fatalf("Expected 2 boards, got %d", len(boards.Values))
	}
	if boards.Values[0].ID.String() != "1" {
		t.Errorf("Expected board id 1, got %s", boards.Values[0].ID)
	}
	if boards.Values[1].Type != "kanban" {
		t.Errorf("Expected kanban board type, got %s", boards.Values[1].Type)
	}
	if !boards.IsLast {
		t.Error("Expected isLast true")
	}
}

func TestAgileClient_GetBoardsNoFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("Expected no query parameters, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"maxResults": 50, "startAt": 0, "total": 0, "isLast": true, "values": []}`))
	}))
	defer server.Close()

	boards, err := newAgileClient(server).GetBoards(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("GetBoards() error = %v, want nil", err)
	}
	if len(boards.Values) != 0 {
		t.Errorf("Expected no boards, got %d", len(boards.Values))
	}
}

func TestAgileClient_GetSprints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/agile/1.0/board/7/sprint" {
			t.Errorf("Expected /rest/agile/1.0/board/7/sprint, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("state") != "active" {
			t.Errorf("Expected state active, got %q", r.URL.Query().Get("state"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"maxResults": 50,
			"startAt": 0,
			"isLast": true,
			"values": [
				{"id": 42, "name": "Sprint 12", "state": "active", "goal": "Ship the login fix", "originBoardId": 7}
			]
		}`))
	}))
	defer server.Close()

	sprints, err := newAgileClient(server).GetSprints(context.Background(), "7", "active", nil)
	if err != nil {
		t.Fatalf("GetSprints() error = %v, want nil", err)
	}

	if len(sprints.Values) != 1 {
		t.Fatalf("Expected 1 sprint, got %d", len(sprints.Values))
	}
	sprint := sprints.Values[0]
	if sprint.ID.String() != "42" {
		t.Errorf("Expected sprint id 42, got %s", sprint.ID)
	}
	if sprint.State != "active" {
		t.Errorf("Expected active sprint, got %s", sprint.State)
	}
	if sprint.Goal != "Ship the login fix" {
		t.Errorf("Expected sprint goal, got %s", sprint.Goal)
	}
}

func TestAgileClient_GetSprintIssues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/agile/1.0/sprint/42/issue" {
			t.Errorf("Expected /rest/agile/1.0/sprint/42/issue, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("startAt") != "10" {
			t.Errorf("Expected startAt 10, got %q", r.URL.Query().Get("startAt"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"startAt": 10,
			"maxResults": 50,
			"total": 11,
			"issues": [
				{"id": "10001", "key": "TEST-1", "fields": {"summary": "Sprint work"}}
			]
		}`))
	}))
	defer server.Close()

	results, err := newAgileClient(server).GetSprintIssues(context.Background(), "42", &PageOptions{StartAt: 10})
	if err != nil {
		t.Fatalf("GetSprintIssues() error = %v, want nil", err)
	}

	if results.Total != 11 {
		t.Errorf("Expected total 11, got %d", results.Total)
	}
	if len(results.Issues) != 1 || results.Issues[0].Key != "TEST-1" {
		t.Errorf("Expected TEST-1 in sprint, got %v", results.Issues)
	}
}

func TestAgileClient_BoardNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errorMessages": ["Board does not exist"], "errors": {}}`))
	}))
	defer server.Close()

	_, err := newAgileClient(server).GetSprints(context.Background(), "999", "", nil)
	if err == nil {
		t.Fatal("Expected error for missing board, got nil")
	}
	if !domain.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
	if !contains(err.Error(), "Jira Agile API") {
		t.Errorf("Expected agile family label in error, got %v", err)
	}
}
