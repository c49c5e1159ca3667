// Package scribe provides a minimal public API for publishing documentation
// from Go programs.
//
// It exposes the record types and one Client that runs the same operations
// as the scribe CLI and MCP server. Most programs only need LoadConfig, New
// and DocumentSession.
package scribe

import (
	"context"

	"github.com/scribe-docs/scribe/internal/config"
	"github.com/scribe-docs/scribe/internal/dispatch"
	"github.com/scribe-docs/scribe/internal/types"
)

// Record types
type (
	WorkSessionRecord = types.WorkSessionRecord
	ProjectDocs       = types.ProjectDocs
	IssueSummary      = types.IssueSummary
	Page              = types.Page
)

// Results
type (
	Result         = dispatch.Result
	SessionOutcome = dispatch.SessionOutcome
	ProjectOutcome = dispatch.ProjectOutcome
)

// Credentials is a validated configuration.
type Credentials = config.Credentials

// LoadConfig loads configuration the way the CLI does, searching dir for
// .scribe/config.* and .env. An empty dir means the working directory.
func LoadConfig(dir string) (*Credentials, error) {
	return config.Load(config.LoadOptions{Dir: dir})
}

// Client runs scribe operations.
type Client struct {
	d *dispatch.Dispatcher
}

// New builds a Client from credentials.
func New(creds *Credentials) (*Client, error) {
	d, err := dispatch.FromCredentials(creds, dispatch.BuildOptions{UserAgent: "scribe-go"})
	if err != nil {
		return nil, err
	}
	return &Client{d: d}, nil
}

// Call runs any operation by name. See the dispatch operation names.
func (c *Client) Call(ctx context.Context, op string, args interface{}) *Result {
	return c.d.Call(ctx, op, args)
}

// DocumentSession publishes rec under the page titled parentTitle (or at the
// space root when empty) and comments on issueKey when set. On a partial
// success both the outcome and the error are returned.
func (c *Client) DocumentSession(ctx context.Context, rec *WorkSessionRecord, parentTitle, issueKey string) (*SessionOutcome, error) {
	res := c.d.Call(ctx, dispatch.OpDocumentSession, dispatch.DocumentSessionArgs{
		Record:      rec,
		ParentTitle: parentTitle,
		IssueKey:    issueKey,
	})
	out, _ := res.Data.(*SessionOutcome)
	if !res.OK {
		return out, res.Err()
	}
	return out, nil
}

// DocumentProject publishes a project overview and its child pages.
func (c *Client) DocumentProject(ctx context.Context, docs *ProjectDocs, parentTitle string) (*ProjectOutcome, error) {
	res := c.d.Call(ctx, dispatch.OpDocumentProject, dispatch.DocumentProjectArgs{
		Docs:        docs,
		ParentTitle: parentTitle,
	})
	out, _ := res.Data.(*ProjectOutcome)
	if !res.OK {
		return out, res.Err()
	}
	return out, nil
}
