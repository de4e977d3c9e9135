package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CustomFieldPrefix is the naming convention marking vendor extension
// fields in the tracker's wire representation.
const CustomFieldPrefix = "customfield_"

// FlexibleID is a type that can unmarshal both string and numeric IDs from JSON.
type FlexibleID string

// UnmarshalJSON implements custom unmarshaling to handle both string and numeric IDs.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	// Try to unmarshal as string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleID(s)
		return nil
	}

	// Try to unmarshal as number
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleID(n.String())
		return nil
	}

	return fmt.Errorf("id must be a string or number")
}

// String returns the string representation of the ID.
func (f FlexibleID) String() string {
	return string(f)
}

// Issue is the tracker's wire representation of an issue: deeply nested,
// partially optional, with an open-ended set of vendor extension fields.
type Issue struct {
	ID     FlexibleID  `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// IssueFields contains the field data for an issue. The known fields are
// typed; vendor extension fields are collected into Custom by a single
// scan of the top-level keys during unmarshaling.
type IssueFields struct {
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	IssueType   IssueType     `json:"issuetype"`
	Project     Project       `json:"project"`
	Status      Status        `json:"status"`
	Priority    *Priority     `json:"priority,omitempty"`
	Resolution  *Resolution   `json:"resolution,omitempty"`
	Assignee    *User         `json:"assignee,omitempty"`
	Reporter    *User         `json:"reporter,omitempty"`
	Labels      []string      `json:"labels,omitempty"`
	Components  []Component   `json:"components,omitempty"`
	FixVersions []Version     `json:"fixVersions,omitempty"`
	Parent      *LinkedIssue  `json:"parent,omitempty"`
	Subtasks    []LinkedIssue `json:"subtasks,omitempty"`
	IssueLinks  []IssueLink   `json:"issuelinks,omitempty"`
	Attachments []Attachment  `json:"attachment,omitempty"`
	Comment     *CommentPage  `json:"comment,omitempty"`
	Worklog     *WorklogPage  `json:"worklog,omitempty"`
	Created     string        `json:"created"`
	Updated     string        `json:"updated"`

	// Custom holds the vendor extension fields keyed by their wire name.
	// Null values are excluded during the scan.
	Custom map[string]interface{} `json:"-"`
}

// UnmarshalJSON decodes the typed fields and then scans the top-level keys
// once for vendor extension fields, skipping JSON nulls.
func (f *IssueFields) UnmarshalJSON(data []byte) error {
	type fieldsAlias IssueFields
	var typed fieldsAlias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}
	*f = IssueFields(typed)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		if !strings.HasPrefix(key, CustomFieldPrefix) {
			continue
		}
		if string(value) == "null" {
			continue
		}
		var decoded interface{}
		if err := json.Unmarshal(value, &decoded); err != nil {
			return fmt.Errorf("failed to decode extension field %s: %w", key, err)
		}
		if f.Custom == nil {
			f.Custom = make(map[string]interface{})
		}
		f.Custom[key] = decoded
	}

	return nil
}

// IssueType represents an issue type (e.g., Bug, Story, Task).
type IssueType struct {
	ID      FlexibleID `json:"id"`
	Name    string     `json:"name"`
	Subtask bool       `json:"subtask,omitempty"`
}

// Project represents a project.
type Project struct {
	ID   FlexibleID `json:"id"`
	Key  string     `json:"key"`
	Name string     `json:"name"`
}

// ProjectDetail is the full project representation, including the issue
// types available in the project.
type ProjectDetail struct {
	ID         FlexibleID  `json:"id"`
	Key        string      `json:"key"`
	Name       string      `json:"name"`
	IssueTypes []IssueType `json:"issueTypes"`
}

// Status represents an issue status (e.g., Open, In Progress, Done).
type Status struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// Priority represents an issue priority.
type Priority struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// Resolution represents an issue resolution.
type Resolution struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// User represents a tracker user.
type User struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	Active       bool   `json:"active,omitempty"`
}

// Component represents a project component.
type Component struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// Version represents a project version.
type Version struct {
	ID       FlexibleID `json:"id"`
	Name     string     `json:"name"`
	Released bool       `json:"released,omitempty"`
}

// LinkedIssue is the reduced issue representation nested inside parents,
// subtasks, and issue links.
type LinkedIssue struct {
	ID     FlexibleID        `json:"id"`
	Key    string            `json:"key"`
	Fields LinkedIssueFields `json:"fields"`
}

// LinkedIssueFields carries the display fields of a nested issue reference.
type LinkedIssueFields struct {
	Summary string `json:"summary"`
	Status  Status `json:"status"`
}

// LinkType describes an issue link type with its direction labels.
type LinkType struct {
	ID      FlexibleID `json:"id"`
	Name    string     `json:"name"`
	Inward  string     `json:"inward"`
	Outward string     `json:"outward"`
}

// LinkTypeList is the response wrapper for the link type catalog.
type LinkTypeList struct {
	IssueLinkTypes []LinkType `json:"issueLinkTypes"`
}

// IssueLink relates two issues. Exactly one of InwardIssue or OutwardIssue
// is populated; which one determines the link's direction as seen from the
// containing issue.
type IssueLink struct {
	ID           FlexibleID   `json:"id"`
	Type         LinkType     `json:"type"`
	InwardIssue  *LinkedIssue `json:"inwardIssue,omitempty"`
	OutwardIssue *LinkedIssue `json:"outwardIssue,omitempty"`
}

// Attachment represents a file attached to an issue.
type Attachment struct {
	ID       FlexibleID `json:"id"`
	Filename string     `json:"filename"`
	Author   *User      `json:"author,omitempty"`
	Created  string     `json:"created"`
	Size     int64      `json:"size"`
	MimeType string     `json:"mimeType"`
}

// Comment represents a comment on an issue.
type Comment struct {
	ID      FlexibleID `json:"id"`
	Author  *User      `json:"author,omitempty"`
	Body    string     `json:"body"`
	Created string     `json:"created"`
	Updated string     `json:"updated"`
}

// CommentPage is the paginated comment collection for an issue.
type CommentPage struct {
	Comments   []Comment `json:"comments"`
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
}

// Worklog represents a work log entry on an issue.
type Worklog struct {
	ID               FlexibleID `json:"id"`
	Author           *User      `json:"author,omitempty"`
	Comment          string     `json:"comment"`
	TimeSpent        string     `json:"timeSpent"`
	TimeSpentSeconds int        `json:"timeSpentSeconds"`
	Started          string     `json:"started"`
}

// WorklogPage is the paginated worklog collection for an issue.
type WorklogPage struct {
	Worklogs   []Worklog `json:"worklogs"`
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
}

// Transition represents an available workflow transition.
type Transition struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
	To   Status     `json:"to"`
}

// TransitionList is the response wrapper for available transitions.
type TransitionList struct {
	Transitions []Transition `json:"transitions"`
}

// Field describes an entry of the field catalog, including vendor
// extension fields.
type Field struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Custom bool        `json:"custom"`
	Schema FieldSchema `json:"schema,omitempty"`
}

// FieldSchema describes the value type of a field.
type FieldSchema struct {
	Type   string `json:"type,omitempty"`
	Custom string `json:"custom,omitempty"`
}

// SearchResults represents the results of a JQL search or a sprint issue
// listing: issues plus pagination metadata.
type SearchResults struct {
	Issues     []Issue `json:"issues"`
	Total      int     `json:"total"`
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
}

// IssueCreate represents the request body for creating a new issue.
type IssueCreate struct {
	Fields CreateFields `json:"fields"`
}

// CreateFields contains the fields accepted when creating an issue.
type CreateFields struct {
	Project     ProjectRef   `json:"project"`
	Summary     string       `json:"summary"`
	Description string       `json:"description,omitempty"`
	IssueType   IssueTypeRef `json:"issuetype"`
	Assignee    *UserRef     `json:"assignee,omitempty"`
	Priority    *NameRef     `json:"priority,omitempty"`
	Labels      []string     `json:"labels,omitempty"`
	Components  []NameRef    `json:"components,omitempty"`
}

// IssueUpdate represents the request body for updating an issue.
type IssueUpdate struct {
	Fields UpdateFields `json:"fields"`
}

// UpdateFields contains the fields accepted when updating an issue.
type UpdateFields struct {
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Assignee    *UserRef `json:"assignee,omitempty"`
	Priority    *NameRef `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// IssueTypeRef is a reference to an issue type (used in create operations).
type IssueTypeRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ProjectRef is a reference to a project (used in create operations).
type ProjectRef struct {
	ID  string `json:"id,omitempty"`
	Key string `json:"key,omitempty"`
}

// UserRef is a reference to a user (used in create/update operations).
type UserRef struct {
	Name string `json:"name"`
}

// NameRef is a reference to a named entity such as a priority, component,
// or link type.
type NameRef struct {
	Name string `json:"name"`
}

// KeyRef is a reference to an issue by key (used when linking issues).
type KeyRef struct {
	Key string `json:"key"`
}

// TransitionRequest represents a workflow transition request, optionally
// adding a comment in the same call.
type TransitionRequest struct {
	Transition TransitionRef     `json:"transition"`
	Update     *TransitionUpdate `json:"update,omitempty"`
}

// TransitionRef is a reference to a workflow transition.
type TransitionRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// TransitionUpdate carries update operations applied with a transition.
type TransitionUpdate struct {
	Comment []CommentOp `json:"comment,omitempty"`
}

// CommentOp wraps a comment addition inside an update operation.
type CommentOp struct {
	Add CommentBody `json:"add"`
}

// CommentBody is the body of a comment being created.
type CommentBody struct {
	Body string `json:"body"`
}

// WorklogCreate represents the request body for logging work on an issue.
type WorklogCreate struct {
	TimeSpent string `json:"timeSpent"`
	Comment   string `json:"comment,omitempty"`
	Started   string `json:"started,omitempty"`
}

// LinkCreate represents the request body for linking two issues.
type LinkCreate struct {
	Type         NameRef      `json:"type"`
	InwardIssue  KeyRef       `json:"inwardIssue"`
	OutwardIssue KeyRef       `json:"outwardIssue"`
	Comment      *CommentBody `json:"comment,omitempty"`
}
