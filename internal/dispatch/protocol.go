package dispatch

import (
	"encoding/json"
	"time"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/hierarchy"
	"github.com/scribe-docs/scribe/internal/types"
)

// Operation names. The set is closed: anything else is InvalidInput.
const (
	OpTestConnection      = "test-connection"
	OpTestIssueConnection = "test-issue-connection"
	OpVerifySpace         = "verify-space"
	OpCreateSpace         = "create-space"
	OpSearchPage          = "search-page"
	OpGetPage             = "get-page"
	OpCreatePage          = "create-page"
	OpUpdatePage          = "update-page"
	OpGetIssue            = "get-issue"
	OpAddIssueComment     = "add-issue-comment"

	// Workflows composed of the operations above.
	OpDocumentSession = "document-session"
	OpDocumentProject = "document-project"
)

// Request is one operation invocation.
type Request struct {
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

// SpaceArgs names a space; empty means the configured default.
type SpaceArgs struct {
	Space string `json:"space,omitempty"`
}

// CreateSpaceArgs represents arguments for create-space.
type CreateSpaceArgs struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SearchPageArgs represents arguments for search-page.
type SearchPageArgs struct {
	Title string `json:"title"`
	Space string `json:"space,omitempty"`
}

// PageIDArgs represents arguments for get-page.
type PageIDArgs struct {
	PageID string `json:"page_id"`
}

// CreatePageArgs represents arguments for create-page. ParentID and
// ParentTitle are mutually exclusive.
type CreatePageArgs struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Space       string `json:"space,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	ParentTitle string `json:"parent_title,omitempty"`
}

// UpdatePageArgs represents arguments for update-page.
type UpdatePageArgs struct {
	PageID  string `json:"page_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// IssueArgs represents arguments for get-issue.
type IssueArgs struct {
	IssueKey string `json:"issue_key"`
}

// CommentArgs represents arguments for add-issue-comment.
type CommentArgs struct {
	IssueKey string `json:"issue_key"`
	Comment  string `json:"comment"`
}

// DocumentSessionArgs represents arguments for document-session.
type DocumentSessionArgs struct {
	Record      *types.WorkSessionRecord `json:"record"`
	Title       string                   `json:"title,omitempty"` // overrides the record's page title
	Space       string                   `json:"space,omitempty"`
	ParentTitle string                   `json:"parent_title,omitempty"`
	IssueKey    string                   `json:"issue_key,omitempty"`
	Comment     string                   `json:"comment,omitempty"` // custom issue comment; a link to the page is appended
	NoComment   bool                     `json:"no_comment,omitempty"`

	// AllowStandalone creates the page at the space root when the parent
	// title matches no page, instead of failing with ParentMissing.
	AllowStandalone bool `json:"allow_standalone,omitempty"`
}

// DocumentProjectArgs represents arguments for document-project.
type DocumentProjectArgs struct {
	Docs            *types.ProjectDocs `json:"docs"`
	Space           string             `json:"space,omitempty"`
	ParentTitle     string             `json:"parent_title,omitempty"`
	AllowStandalone bool               `json:"allow_standalone,omitempty"`
}

// Result is the normalized outcome of every operation.
type Result struct {
	OK    bool        `json:"ok"`
	Op    string      `json:"op"`
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the user-facing form of a failure.
type ErrorBody struct {
	Kind    apierr.Kind     `json:"kind,omitempty"`
	Message string          `json:"message"`
	Hint    string          `json:"hint,omitempty"`
	Status  int             `json:"status,omitempty"`
	Page    *apierr.PageRef `json:"page,omitempty"`
}

// Exit codes returned by Result.ExitCode.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitPartial = 3
)

// ExitCode maps the result to a process exit status.
func (r *Result) ExitCode() int {
	if r.OK {
		return ExitOK
	}
	if r.Error == nil {
		return ExitFailure
	}
	switch r.Error.Kind {
	case apierr.KindInvalidInput, apierr.KindConfigInvalid:
		return ExitUsage
	case apierr.KindPartialSuccess:
		return ExitPartial
	default:
		return ExitFailure
	}
}

// ConnectionInfo is the data of test-connection and test-issue-connection.
type ConnectionInfo struct {
	Service   string         `json:"service"`
	URL       string         `json:"url"`
	Connected bool           `json:"connected"`
	User      types.Identity `json:"user"`
}

// IssueDetails is the data of get-issue.
type IssueDetails struct {
	types.IssueSummary
	Description string     `json:"description,omitempty"`
	Updated     *time.Time `json:"updated,omitempty"`
}

// CommentInfo is the data of add-issue-comment.
type CommentInfo struct {
	IssueKey  string `json:"issue_key"`
	CommentID string `json:"comment_id,omitempty"`
	URL       string `json:"url,omitempty"`
}

// SessionOutcome is the data of document-session.
type SessionOutcome struct {
	Page       *types.Page         `json:"page"`
	Parent     *types.Page         `json:"parent,omitempty"`
	Standalone bool                `json:"standalone,omitempty"`
	Issue      *types.IssueSummary `json:"issue,omitempty"`
	Comment    *CommentInfo        `json:"comment,omitempty"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// ProjectPage is one page of a documented project tree.
type ProjectPage struct {
	Section string      `json:"section"`
	Page    *types.Page `json:"page"`
	Created bool        `json:"created"`
}

// ProjectOutcome is the data of document-project.
type ProjectOutcome struct {
	Overview ProjectPage           `json:"overview"`
	Children []ProjectPage         `json:"children,omitempty"`
	Parent   *hierarchy.Resolution `json:"parent,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
}

