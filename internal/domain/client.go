package domain

import (
	"context"
	"encoding/json"
)

// APIFamily selects which REST API family a request is routed to. The
// core family carries issue, project, and catalog operations; the agile
// family carries board and sprint operations.
type APIFamily int

const (
	// CoreAPI is the Jira platform REST API.
	CoreAPI APIFamily = iota
	// AgileAPI is the Jira Software (agile) REST API.
	AgileAPI
)

// BasePath returns the URL path prefix for the family.
func (f APIFamily) BasePath() string {
	if f == AgileAPI {
		return "/rest/agile/1.0"
	}
	return "/rest/api/2"
}

// String returns the short family name used in metrics labels.
func (f APIFamily) String() string {
	if f == AgileAPI {
		return "agile"
	}
	return "core"
}

// RestAPI executes authenticated REST requests against one Jira
// deployment. Implementations handle authentication, retries, and
// error classification; callers get either the raw response body or a
// typed error.
type RestAPI interface {
	// Request executes a single API call. The path is relative to the
	// family's base path and must already carry any encoded query
	// string. A nil body sends no payload; anything else is encoded as
	// JSON. Responses without a body yield a nil message.
	Request(ctx context.Context, method string, family APIFamily, path string, body interface{}) (json.RawMessage, error)
}
