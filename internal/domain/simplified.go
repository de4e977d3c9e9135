package domain

// Link direction values as seen from the issue that carries the link.
const (
	DirectionInward  = "inward"
	DirectionOutward = "outward"
)

// SimplifiedIssue is the flat, caller-facing projection of an Issue.
// Nested objects are reduced to their display names; relation lists become
// flat summaries; vendor extension fields live in a separate map.
// Labels, components, and fix versions are always present, defaulting to
// empty lists rather than being absent.
type SimplifiedIssue struct {
	ID           string                 `json:"id"`
	Key          string                 `json:"key"`
	Summary      string                 `json:"summary"`
	Description  string                 `json:"description,omitempty"`
	IssueType    string                 `json:"issueType,omitempty"`
	Status       string                 `json:"status,omitempty"`
	Priority     string                 `json:"priority,omitempty"`
	Resolution   string                 `json:"resolution,omitempty"`
	ProjectKey   string                 `json:"projectKey,omitempty"`
	Assignee     string                 `json:"assignee,omitempty"`
	Reporter     string                 `json:"reporter,omitempty"`
	Created      string                 `json:"created,omitempty"`
	Updated      string                 `json:"updated,omitempty"`
	Labels       []string               `json:"labels"`
	Components   []string               `json:"components"`
	FixVersions  []string               `json:"fixVersions"`
	Parent       string                 `json:"parent,omitempty"`
	Subtasks     []SimplifiedIssueRef   `json:"subtasks,omitempty"`
	Links        []SimplifiedLink       `json:"links,omitempty"`
	Comments     []SimplifiedComment    `json:"comments,omitempty"`
	Worklogs     []SimplifiedWorklog    `json:"worklogs,omitempty"`
	Attachments  []SimplifiedAttachment `json:"attachments,omitempty"`
	CustomFields map[string]interface{} `json:"customFields,omitempty"`
}

// SimplifiedIssueRef is a flat reference to a related issue.
type SimplifiedIssueRef struct {
	Key     string `json:"key"`
	Summary string `json:"summary,omitempty"`
	Status  string `json:"status,omitempty"`
}

// SimplifiedLink is a flat view of an issue link with its direction
// resolved and the direction-appropriate relation label.
type SimplifiedLink struct {
	Direction string `json:"direction"`
	Type      string `json:"type"`
	IssueKey  string `json:"issueKey"`
	Summary   string `json:"summary,omitempty"`
	Status    string `json:"status,omitempty"`
}

// SimplifiedComment is a flat view of a comment.
type SimplifiedComment struct {
	Author  string `json:"author,omitempty"`
	Body    string `json:"body"`
	Created string `json:"created,omitempty"`
}

// SimplifiedWorklog is a flat view of a worklog entry.
type SimplifiedWorklog struct {
	Author    string `json:"author,omitempty"`
	TimeSpent string `json:"timeSpent"`
	Comment   string `json:"comment,omitempty"`
	Started   string `json:"started,omitempty"`
}

// SimplifiedAttachment is a flat view of an attachment.
type SimplifiedAttachment struct {
	Filename string `json:"filename"`
	Author   string `json:"author,omitempty"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType,omitempty"`
	Created  string `json:"created,omitempty"`
}

// SimplifiedSearchResults carries element-wise simplified issues with the
// original pagination metadata unchanged.
type SimplifiedSearchResults struct {
	Total      int               `json:"total"`
	StartAt    int               `json:"startAt"`
	MaxResults int               `json:"maxResults"`
	Issues     []SimplifiedIssue `json:"issues"`
}

// SimplifiedCommentPage carries element-wise simplified comments with the
// original pagination metadata unchanged.
type SimplifiedCommentPage struct {
	Total      int                 `json:"total"`
	StartAt    int                 `json:"startAt"`
	MaxResults int                 `json:"maxResults"`
	Comments   []SimplifiedComment `json:"comments"`
}

// SimplifiedWorklogPage carries element-wise simplified worklogs with the
// original pagination metadata unchanged.
type SimplifiedWorklogPage struct {
	Total      int                 `json:"total"`
	StartAt    int                 `json:"startAt"`
	MaxResults int                 `json:"maxResults"`
	Worklogs   []SimplifiedWorklog `json:"worklogs"`
}

// SimplifiedProject is a flat view of a project.
type SimplifiedProject struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// SimplifiedIssueType is a flat view of an issue type.
type SimplifiedIssueType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subtask bool   `json:"subtask"`
}

// SimplifiedField is a flat view of a field catalog entry.
type SimplifiedField struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Custom bool   `json:"custom"`
}

// SimplifiedUser is a flat view of a user.
type SimplifiedUser struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Active      bool   `json:"active"`
}

// SimplifiedTransition is a flat view of an available transition.
type SimplifiedTransition struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ToStatus string `json:"toStatus,omitempty"`
}

// SimplifiedLinkType is a flat view of a link type with both direction labels.
type SimplifiedLinkType struct {
	Name    string `json:"name"`
	Inward  string `json:"inward"`
	Outward string `json:"outward"`
}

// SimplifiedBoard is a flat view of an agile board.
type SimplifiedBoard struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// SimplifiedBoardPage carries element-wise simplified boards with the
// original pagination metadata unchanged.
type SimplifiedBoardPage struct {
	Total      int               `json:"total"`
	StartAt    int               `json:"startAt"`
	MaxResults int               `json:"maxResults"`
	IsLast     bool              `json:"isLast"`
	Boards     []SimplifiedBoard `json:"boards"`
}

// SimplifiedSprint is a flat view of a sprint.
type SimplifiedSprint struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Goal      string `json:"goal,omitempty"`
}

// SimplifiedSprintPage carries element-wise simplified sprints with the
// original pagination metadata unchanged.
type SimplifiedSprintPage struct {
	Total      int                `json:"total"`
	StartAt    int                `json:"startAt"`
	MaxResults int                `json:"maxResults"`
	IsLast     bool               `json:"isLast"`
	Sprints    []SimplifiedSprint `json:"sprints"`
}
