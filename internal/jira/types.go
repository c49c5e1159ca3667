// Package jira provides the issue-tracker client used to link documentation
// to tickets: connectivity checks, issue lookup and comments.
package jira

import (
	"encoding/json"
	"time"

	"github.com/scribe-docs/scribe/internal/types"
)

// Issue represents a Jira issue from the REST API.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`

	// browseURL is filled in by the client.
	browseURL string
}

// IssueFields contains the fields of a Jira issue.
type IssueFields struct {
	Summary     string           `json:"summary"`
	Description json.RawMessage  `json:"description"` // ADF (Atlassian Document Format) or plain text
	Status      *StatusField     `json:"status"`
	Priority    *PriorityField   `json:"priority"`
	IssueType   *IssueTypeField  `json:"issuetype"`
	Project     *ProjectField    `json:"project"`
	Assignee    *UserField       `json:"assignee"`
	Labels      []string         `json:"labels"`
	Created     string           `json:"created"`
	Updated     string           `json:"updated"`
	Resolution  *ResolutionField `json:"resolution"`
}

// StatusField represents a Jira issue status.
type StatusField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PriorityField represents a Jira issue priority.
type PriorityField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueTypeField represents a Jira issue type.
type IssueTypeField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectField represents a Jira project.
type ProjectField struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// UserField represents a Jira user.
type UserField struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// ResolutionField represents a Jira resolution.
type ResolutionField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Comment is the response to adding a comment.
type Comment struct {
	ID   string `json:"id"`
	Self string `json:"self"`
}

// URL returns the browser URL of the issue.
func (i *Issue) URL() string { return i.browseURL }

// Description returns the description as plain text.
func (i *Issue) Description() string {
	return DescriptionToPlainText(i.Fields.Description)
}

// Updated returns the last update time, or the zero time when the field is
// missing or unparseable.
func (i *Issue) Updated() time.Time {
	t, err := ParseTimestamp(i.Fields.Updated)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Summary projects the issue onto the read-only view rendered in pages.
func (i *Issue) Summary() types.IssueSummary {
	s := types.IssueSummary{
		Key:     i.Key,
		Summary: i.Fields.Summary,
		URL:     i.browseURL,
	}
	if i.Fields.Status != nil {
		s.Status = i.Fields.Status.Name
	}
	if i.Fields.IssueType != nil {
		s.IssueType = i.Fields.IssueType.Name
	}
	if i.Fields.Priority != nil {
		s.Priority = i.Fields.Priority.Name
	}
	if i.Fields.Assignee != nil {
		s.Assignee = i.Fields.Assignee.DisplayName
	}
	return s
}
