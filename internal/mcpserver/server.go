// Package mcpserver exposes the dispatcher's operations as MCP tools so that
// coding agents can publish documentation over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scribe-docs/scribe/internal/dispatch"
)

// ServerName is the implementation name announced to MCP clients.
const ServerName = "scribe"

type spaceInput struct {
	Space string `json:"space,omitempty" jsonschema:"space key; defaults to the configured space"`
}

type createSpaceInput struct {
	Key         string `json:"key" jsonschema:"key of the new space"`
	Name        string `json:"name" jsonschema:"display name of the new space"`
	Description string `json:"description,omitempty" jsonschema:"optional plain-text description"`
}

type searchPageInput struct {
	Title string `json:"title" jsonschema:"exact page title"`
	Space string `json:"space,omitempty" jsonschema:"space key; defaults to the configured space"`
}

type pageIDInput struct {
	PageID string `json:"page_id" jsonschema:"numeric page id"`
}

type createPageInput struct {
	Title       string `json:"title" jsonschema:"page title, unique within the space"`
	Content     string `json:"content" jsonschema:"page body in storage-format markup"`
	Space       string `json:"space,omitempty" jsonschema:"space key; defaults to the configured space"`
	ParentID    string `json:"parent_id,omitempty" jsonschema:"id of the parent page"`
	ParentTitle string `json:"parent_title,omitempty" jsonschema:"title of the parent page, resolved to an id"`
}

type updatePageInput struct {
	PageID  string `json:"page_id" jsonschema:"numeric page id"`
	Title   string `json:"title" jsonschema:"new page title"`
	Content string `json:"content" jsonschema:"new page body in storage-format markup"`
}

type issueInput struct {
	IssueKey string `json:"issue_key" jsonschema:"issue key such as PROJ-123, or a browse URL"`
}

type commentInput struct {
	IssueKey string `json:"issue_key" jsonschema:"issue key such as PROJ-123, or a browse URL"`
	Comment  string `json:"comment" jsonschema:"plain-text comment body"`
}

type documentSessionInput struct {
	Record          map[string]any `json:"record" jsonschema:"work session record: task_name (required), overview, actions_done, files_involved, code_snippets, commands_run, how_to_recreate, notes, errors_encountered, documented_by"`
	Title           string         `json:"title,omitempty" jsonschema:"page title; defaults to the task name prefixed by the issue key"`
	Space           string         `json:"space,omitempty" jsonschema:"space key; defaults to the configured space"`
	ParentTitle     string         `json:"parent_title,omitempty" jsonschema:"title of the parent page"`
	IssueKey        string         `json:"issue_key,omitempty" jsonschema:"issue to link and comment on"`
	Comment         string         `json:"comment,omitempty" jsonschema:"custom issue comment; a link to the page is appended"`
	NoComment       bool           `json:"no_comment,omitempty" jsonschema:"do not comment on the linked issue"`
	AllowStandalone bool           `json:"allow_standalone,omitempty" jsonschema:"create at the space root when the parent title matches no page"`
}

type documentProjectInput struct {
	Docs            map[string]any `json:"docs" jsonschema:"project docs: overview (name required), architecture, dependencies, setup, structure, key_files"`
	Space           string         `json:"space,omitempty" jsonschema:"space key; defaults to the configured space"`
	ParentTitle     string         `json:"parent_title,omitempty" jsonschema:"title of the parent page"`
	AllowStandalone bool           `json:"allow_standalone,omitempty" jsonschema:"create at the space root when the parent title matches no page"`
}

// New builds an MCP server with one tool per dispatcher operation. Tool names
// use underscores in place of the operation's hyphens.
func New(d *dispatch.Dispatcher, version string, logger *slog.Logger) *mcp.Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	t := &tools{d: d, log: logger}

	addTool[struct{}](s, t, dispatch.OpTestConnection, "Check knowledge-base credentials and report the authenticated user.")
	addTool[struct{}](s, t, dispatch.OpTestIssueConnection, "Check issue-tracker credentials and report the authenticated user.")
	addTool[spaceInput](s, t, dispatch.OpVerifySpace, "Confirm a space exists and is readable.")
	addTool[createSpaceInput](s, t, dispatch.OpCreateSpace, "Create a new knowledge-base space.")
	addTool[searchPageInput](s, t, dispatch.OpSearchPage, "Find a page by exact title within a space.")
	addTool[pageIDInput](s, t, dispatch.OpGetPage, "Fetch a page with its body and version.")
	addTool[createPageInput](s, t, dispatch.OpCreatePage, "Create a page, optionally under a parent page.")
	addTool[updatePageInput](s, t, dispatch.OpUpdatePage, "Replace a page's title and body, bumping its version.")
	addTool[issueInput](s, t, dispatch.OpGetIssue, "Fetch an issue summary from the tracker.")
	addTool[commentInput](s, t, dispatch.OpAddIssueComment, "Add a comment to an issue.")
	addTool[documentSessionInput](s, t, dispatch.OpDocumentSession, "Render a work session record to a page, link it to an issue and comment on the issue.")
	addTool[documentProjectInput](s, t, dispatch.OpDocumentProject, "Publish a project overview page with its child pages.")
	return s
}

// ToolName maps an operation to its MCP tool name.
func ToolName(op string) string {
	b := []byte(op)
	for i, c := range b {
		if c == '-' {
			b[i] = '_'
		}
	}
	return string(b)
}

type tools struct {
	d   *dispatch.Dispatcher
	log *slog.Logger
}

func addTool[In any](s *mcp.Server, t *tools, op, description string) {
	tool := &mcp.Tool{Name: ToolName(op), Description: description}
	mcp.AddTool(s, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		return t.call(ctx, op, in)
	})
}

// call runs op and reports the normalized result as JSON text. Operation
// failures are tool errors, not protocol errors.
func (t *tools) call(ctx context.Context, op string, args any) (*mcp.CallToolResult, any, error) {
	res := t.d.Call(ctx, op, args)
	t.log.Debug("mcp tool call", "op", op, "ok", res.OK)

	text, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s result: %w", op, err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
		IsError: !res.OK,
	}, nil, nil
}

// Serve runs the server on stdio until ctx is cancelled or the client
// disconnects.
func Serve(ctx context.Context, s *mcp.Server) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}
