package domain

// Transformation from raw wire representations to simplified shapes.
// Every function here is a pure mapping: no network access, no cache
// access, and no mutation of its input.

// SimplifyIssue converts a raw issue into its flat caller-facing shape.
// Nested objects are projected to display names, relation lists become
// flat summaries, and vendor extension fields are copied into a separate
// map with null values already excluded by the wire decoder.
func SimplifyIssue(issue *Issue) *SimplifiedIssue {
	fields := issue.Fields

	simplified := &SimplifiedIssue{
		ID:          issue.ID.String(),
		Key:         issue.Key,
		Summary:     fields.Summary,
		Description: fields.Description,
		IssueType:   fields.IssueType.Name,
		Status:      fields.Status.Name,
		ProjectKey:  fields.Project.Key,
		Created:     fields.Created,
		Updated:     fields.Updated,
		// List-valued fields default to empty lists, never to absence
		Labels:      []string{},
		Components:  []string{},
		FixVersions: []string{},
	}

	if fields.Priority != nil {
		simplified.Priority = fields.Priority.Name
	}
	if fields.Resolution != nil {
		simplified.Resolution = fields.Resolution.Name
	}
	if fields.Assignee != nil {
		simplified.Assignee = displayName(fields.Assignee)
	}
	if fields.Reporter != nil {
		simplified.Reporter = displayName(fields.Reporter)
	}

	simplified.Labels = append(simplified.Labels, fields.Labels...)
	for _, component := range fields.Components {
		simplified.Components = append(simplified.Components, component.Name)
	}
	for _, version := range fields.FixVersions {
		simplified.FixVersions = append(simplified.FixVersions, version.Name)
	}

	if fields.Parent != nil {
		simplified.Parent = fields.Parent.Key
	}
	for _, subtask := range fields.Subtasks {
		simplified.Subtasks = append(simplified.Subtasks, simplifyIssueRef(subtask))
	}
	for _, link := range fields.IssueLinks {
		if flat, ok := SimplifyLink(link); ok {
			simplified.Links = append(simplified.Links, flat)
		}
	}

	if fields.Comment != nil {
		for _, comment := range fields.Comment.Comments {
			simplified.Comments = append(simplified.Comments, SimplifyComment(comment))
		}
	}
	if fields.Worklog != nil {
		for _, worklog := range fields.Worklog.Worklogs {
			simplified.Worklogs = append(simplified.Worklogs, SimplifyWorklog(worklog))
		}
	}
	for _, attachment := range fields.Attachments {
		simplified.Attachments = append(simplified.Attachments, simplifyAttachment(attachment))
	}

	if len(fields.Custom) > 0 {
		simplified.CustomFields = make(map[string]interface{}, len(fields.Custom))
		for key, value := range fields.Custom {
			simplified.CustomFields[key] = value
		}
	}

	return simplified
}

// SimplifyLink flattens an issue link, resolving its direction by which
// nested issue object is present and selecting the direction-appropriate
// relation label. Links with neither side populated are reported as not ok.
func SimplifyLink(link IssueLink) (SimplifiedLink, bool) {
	switch {
	case link.OutwardIssue != nil:
		return SimplifiedLink{
			Direction: DirectionOutward,
			Type:      link.Type.Outward,
			IssueKey:  link.OutwardIssue.Key,
			Summary:   link.OutwardIssue.Fields.Summary,
			Status:    link.OutwardIssue.Fields.Status.Name,
		}, true
	case link.InwardIssue != nil:
		return SimplifiedLink{
			Direction: DirectionInward,
			Type:      link.Type.Inward,
			IssueKey:  link.InwardIssue.Key,
			Summary:   link.InwardIssue.Fields.Summary,
			Status:    link.InwardIssue.Fields.Status.Name,
		}, true
	default:
		return SimplifiedLink{}, false
	}
}

// SimplifyComment flattens a comment to its author display name, body,
// and creation time.
func SimplifyComment(comment Comment) SimplifiedComment {
	return SimplifiedComment{
		Author:  displayName(comment.Author),
		Body:    comment.Body,
		Created: comment.Created,
	}
}

// SimplifyWorklog flattens a worklog entry.
func SimplifyWorklog(worklog Worklog) SimplifiedWorklog {
	return SimplifiedWorklog{
		Author:    displayName(worklog.Author),
		TimeSpent: worklog.TimeSpent,
		Comment:   worklog.Comment,
		Started:   worklog.Started,
	}
}

// simplifyAttachment flattens an attachment.
func simplifyAttachment(attachment Attachment) SimplifiedAttachment {
	return SimplifiedAttachment{
		Filename: attachment.Filename,
		Author:   displayName(attachment.Author),
		Size:     attachment.Size,
		MimeType: attachment.MimeType,
		Created:  attachment.Created,
	}
}

// simplifyIssueRef flattens a nested issue reference.
func simplifyIssueRef(ref LinkedIssue) SimplifiedIssueRef {
	return SimplifiedIssueRef{
		Key:     ref.Key,
		Summary: ref.Fields.Summary,
		Status:  ref.Fields.Status.Name,
	}
}

// displayName projects a user to its display name, falling back to the
// login name when no display name is set.
func displayName(user *User) string {
	if user == nil {
		return ""
	}
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Name
}

// SimplifySearchResults applies the issue transform element-wise,
// preserving the pagination metadata unchanged.
func SimplifySearchResults(results *SearchResults) *SimplifiedSearchResults {
	simplified := &SimplifiedSearchResults{
		Total:      results.Total,
		StartAt:    results.StartAt,
		MaxResults: results.MaxResults,
		Issues:     make([]SimplifiedIssue, 0, len(results.Issues)),
	}
	for i := range results.Issues {
		simplified.Issues = append(simplified.Issues, *SimplifyIssue(&results.Issues[i]))
	}
	return simplified
}

// SimplifyCommentPage applies the comment transform element-wise,
// preserving the pagination metadata unchanged.
func SimplifyCommentPage(page *CommentPage) *SimplifiedCommentPage {
	simplified := &SimplifiedCommentPage{
		Total:      page.Total,
		StartAt:    page.StartAt,
		MaxResults: page.MaxResults,
		Comments:   make([]SimplifiedComment, 0, len(page.Comments)),
	}
	for _, comment := range page.Comments {
		simplified.Comments = append(simplified.Comments, SimplifyComment(comment))
	}
	return simplified
}

// SimplifyWorklogPage applies the worklog transform element-wise,
// preserving the pagination metadata unchanged.
func SimplifyWorklogPage(page *WorklogPage) *SimplifiedWorklogPage {
	simplified := &SimplifiedWorklogPage{
		Total:      page.Total,
		StartAt:    page.StartAt,
		MaxResults: page.MaxResults,
		Worklogs:   make([]SimplifiedWorklog, 0, len(page.Worklogs)),
	}
	for _, worklog := range page.Worklogs {
		simplified.Worklogs = append(simplified.Worklogs, SimplifyWorklog(worklog))
	}
	return simplified
}

// SimplifyProject flattens a project.
func SimplifyProject(project Project) SimplifiedProject {
	return SimplifiedProject{
		ID:   project.ID.String(),
		Key:  project.Key,
		Name: project.Name,
	}
}

// SimplifyProjects flattens a project listing.
func SimplifyProjects(projects []Project) []SimplifiedProject {
	simplified := make([]SimplifiedProject, 0, len(projects))
	for _, project := range projects {
		simplified = append(simplified, SimplifyProject(project))
	}
	return simplified
}

// SimplifyIssueTypes flattens an issue type listing.
func SimplifyIssueTypes(issueTypes []IssueType) []SimplifiedIssueType {
	simplified := make([]SimplifiedIssueType, 0, len(issueTypes))
	for _, issueType := range issueTypes {
		simplified = append(simplified, SimplifiedIssueType{
			ID:      issueType.ID.String(),
			Name:    issueType.Name,
			Subtask: issueType.Subtask,
		})
	}
	return simplified
}

// SimplifyFields flattens the field catalog.
func SimplifyFields(fields []Field) []SimplifiedField {
	simplified := make([]SimplifiedField, 0, len(fields))
	for _, field := range fields {
		simplified = append(simplified, SimplifiedField{
			ID:     field.ID,
			Name:   field.Name,
			Type:   field.Schema.Type,
			Custom: field.Custom,
		})
	}
	return simplified
}

// SimplifyUser flattens a user.
func SimplifyUser(user User) SimplifiedUser {
	return SimplifiedUser{
		Username:    user.Name,
		DisplayName: user.DisplayName,
		Email:       user.EmailAddress,
		Active:      user.Active,
	}
}

// SimplifyUsers flattens a user listing.
func SimplifyUsers(users []User) []SimplifiedUser {
	simplified := make([]SimplifiedUser, 0, len(users))
	for _, user := range users {
		simplified = append(simplified, SimplifyUser(user))
	}
	return simplified
}

// SimplifyTransitions flattens the available workflow transitions.
func SimplifyTransitions(list *TransitionList) []SimplifiedTransition {
	simplified := make([]SimplifiedTransition, 0, len(list.Transitions))
	for _, transition := range list.Transitions {
		simplified = append(simplified, SimplifiedTransition{
			ID:       transition.ID.String(),
			Name:     transition.Name,
			ToStatus: transition.To.Name,
		})
	}
	return simplified
}

// SimplifyLinkTypes flattens the link type catalog.
func SimplifyLinkTypes(list *LinkTypeList) []SimplifiedLinkType {
	simplified := make([]SimplifiedLinkType, 0, len(list.IssueLinkTypes))
	for _, linkType := range list.IssueLinkTypes {
		simplified = append(simplified, SimplifiedLinkType{
			Name:    linkType.Name,
			Inward:  linkType.Inward,
			Outward: linkType.Outward,
		})
	}
	return simplified
}

// SimplifyBoard flattens an agile board.
func SimplifyBoard(board Board) SimplifiedBoard {
	return SimplifiedBoard{
		ID:   board.ID.String(),
		Name: board.Name,
		Type: board.Type,
	}
}

// SimplifyBoardPage applies the board transform element-wise, preserving
// the pagination metadata unchanged.
func SimplifyBoardPage(page *BoardPage) *SimplifiedBoardPage {
	simplified := &SimplifiedBoardPage{
		Total:      page.Total,
		StartAt:    page.StartAt,
		MaxResults: page.MaxResults,
		IsLast:     page.IsLast,
		Boards:     make([]SimplifiedBoard, 0, len(page.Values)),
	}
	for _, board := range page.Values {
		simplified.Boards = append(simplified.Boards, SimplifyBoard(board))
	}
	return simplified
}

// SimplifySprint flattens a sprint.
func SimplifySprint(sprint Sprint) SimplifiedSprint {
	return SimplifiedSprint{
		ID:        sprint.ID.String(),
		Name:      sprint.Name,
		State:     sprint.State,
		StartDate: sprint.StartDate,
		EndDate:   sprint.EndDate,
		Goal:      sprint.Goal,
	}
}

// SimplifySprintPage applies the sprint transform element-wise, preserving
// the pagination metadata unchanged.
func SimplifySprintPage(page *SprintPage) *SimplifiedSprintPage {
	simplified := &SimplifiedSprintPage{
		Total:      page.Total,
		StartAt:    page.StartAt,
		MaxResults: page.MaxResults,
		IsLast:     page.IsLast,
		Sprints:    make([]SimplifiedSprint, 0, len(page.Values)),
	}
	for _, sprint := range page.Values {
		simplified.Sprints = append(simplified.Sprints, SimplifySprint(sprint))
	}
	return simplified
}
