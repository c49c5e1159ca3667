// Package types defines the records scribe renders and the remote entities it
// references.
package types

import (
	"fmt"
	"strings"
	"time"
)

// FileRef is a file touched during a work session.
type FileRef struct {
	Path        string `json:"path" yaml:"path" toml:"path"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
}

// CodeSnippet is a block of code worth preserving on the page.
type CodeSnippet struct {
	Code     string `json:"code" yaml:"code" toml:"code"`
	Language string `json:"language,omitempty" yaml:"language,omitempty" toml:"language"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty" toml:"title"`
}

// IssueSummary is a read-only projection of a tracker issue.
type IssueSummary struct {
	Key       string `json:"key" yaml:"key" toml:"key"`
	Summary   string `json:"summary,omitempty" yaml:"summary,omitempty" toml:"summary"`
	Status    string `json:"status,omitempty" yaml:"status,omitempty" toml:"status"`
	IssueType string `json:"issue_type,omitempty" yaml:"issue_type,omitempty" toml:"issue_type"`
	Priority  string `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority"`
	Assignee  string `json:"assignee,omitempty" yaml:"assignee,omitempty" toml:"assignee"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty" toml:"url"`
}

// WorkSessionRecord describes one completed unit of work. Sequence fields
// keep the order the caller supplied; steps are rendered in that order.
type WorkSessionRecord struct {
	TaskName          string        `json:"task_name" yaml:"task_name" toml:"task_name"`
	Overview          string        `json:"overview,omitempty" yaml:"overview,omitempty" toml:"overview"`
	ActionsDone       []string      `json:"actions_done,omitempty" yaml:"actions_done,omitempty" toml:"actions_done"`
	FilesInvolved     []FileRef     `json:"files_involved,omitempty" yaml:"files_involved,omitempty" toml:"files_involved"`
	CodeSnippets      []CodeSnippet `json:"code_snippets,omitempty" yaml:"code_snippets,omitempty" toml:"code_snippets"`
	CommandsRun       []string      `json:"commands_run,omitempty" yaml:"commands_run,omitempty" toml:"commands_run"`
	HowToRecreate     []string      `json:"how_to_recreate,omitempty" yaml:"how_to_recreate,omitempty" toml:"how_to_recreate"`
	Notes             string        `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes"`
	ErrorsEncountered string        `json:"errors_encountered,omitempty" yaml:"errors_encountered,omitempty" toml:"errors_encountered"`
	LinkedIssue       *IssueSummary `json:"linked_issue,omitempty" yaml:"linked_issue,omitempty" toml:"linked_issue"`
	DocumentedBy      string        `json:"documented_by,omitempty" yaml:"documented_by,omitempty" toml:"documented_by"`
	DocumentedAt      time.Time     `json:"documented_at,omitempty" yaml:"documented_at,omitempty" toml:"documented_at"`
}

// DefaultAuthor is used when a record does not say who documented it.
const DefaultAuthor = "scribe"

// Validate checks the fields rendering cannot do without.
func (r *WorkSessionRecord) Validate() error {
	if strings.TrimSpace(r.TaskName) == "" {
		return fmt.Errorf("task_name is required")
	}
	return nil
}

// Author returns DocumentedBy or DefaultAuthor.
func (r *WorkSessionRecord) Author() string {
	if a := strings.TrimSpace(r.DocumentedBy); a != "" {
		return a
	}
	return DefaultAuthor
}

// PageTitle is the default page title for the session.
func (r *WorkSessionRecord) PageTitle() string {
	title := strings.TrimSpace(r.TaskName)
	if r.LinkedIssue != nil && r.LinkedIssue.Key != "" && !strings.HasPrefix(title, r.LinkedIssue.Key) {
		title = r.LinkedIssue.Key + ": " + title
	}
	return title
}
