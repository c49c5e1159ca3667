// Package dispatch is the single entry point the CLI and the MCP server use
// to run scribe operations.
//
// Every operation takes a JSON argument object with a fixed schema. The
// arguments are decoded and validated before any remote call, and every
// outcome, success or failure, is normalized into a Result. Errors are never
// swallowed: each failure kind maps to a message, a hint and an exit code.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/confluence"
	"github.com/scribe-docs/scribe/internal/hierarchy"
	"github.com/scribe-docs/scribe/internal/jira"
	"github.com/scribe-docs/scribe/internal/types"
)

// KnowledgeBase is the knowledge-base client the dispatcher drives.
type KnowledgeBase interface {
	hierarchy.Pages
	DefaultSpace() string
	TestConnection(ctx context.Context) (*types.Identity, error)
	VerifySpace(ctx context.Context, key string) (*types.Space, error)
	CreateSpace(ctx context.Context, key, name, description string) (*types.Space, error)
	UpdatePage(ctx context.Context, id, title, content string) (*types.Page, error)
	BaseURL() string
}

// IssueTracker is the issue-tracker client the dispatcher drives.
type IssueTracker interface {
	TestConnection(ctx context.Context) (*types.Identity, error)
	GetIssue(ctx context.Context, ref string) (*jira.Issue, error)
	AddComment(ctx context.Context, ref, text string) (*jira.Comment, error)
	BaseURL() string
}

var (
	_ KnowledgeBase = (*confluence.Client)(nil)
	_ IssueTracker  = (*jira.Client)(nil)
)

type handlerFunc func(ctx context.Context, args json.RawMessage) (interface{}, error)

// Dispatcher runs operations against one knowledge base and, optionally,
// one issue tracker.
type Dispatcher struct {
	kb       KnowledgeBase
	tracker  IssueTracker
	resolver *hierarchy.Resolver
	logger   *slog.Logger
	now      func() time.Time
	handlers map[string]handlerFunc
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for workflow diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithClock sets the clock used to stamp records that carry no timestamp.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// New creates a Dispatcher. tracker may be nil when no issue tracker is
// configured; tracker operations then fail with ConfigInvalid.
func New(kb KnowledgeBase, tracker IssueTracker, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		kb:       kb,
		tracker:  tracker,
		resolver: hierarchy.New(kb),
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.handlers = map[string]handlerFunc{
		OpTestConnection:      d.handleTestConnection,
		OpTestIssueConnection: d.handleTestIssueConnection,
		OpVerifySpace:         d.handleVerifySpace,
		OpCreateSpace:         d.handleCreateSpace,
		OpSearchPage:          d.handleSearchPage,
		OpGetPage:             d.handleGetPage,
		OpCreatePage:          d.handleCreatePage,
		OpUpdatePage:          d.handleUpdatePage,
		OpGetIssue:            d.handleGetIssue,
		OpAddIssueComment:     d.handleAddIssueComment,
		OpDocumentSession:     d.handleDocumentSession,
		OpDocumentProject:     d.handleDocumentProject,
	}
	return d
}

// Operations lists the supported operation names, sorted.
func (d *Dispatcher) Operations() []string {
	ops := make([]string, 0, len(d.handlers))
	for op := range d.handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Dispatch runs one request.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) *Result {
	handler, ok := d.handlers[req.Op]
	if !ok {
		return failure(req.Op, nil, apierr.New(apierr.KindInvalidInput, "dispatch", "unknown operation %q", req.Op))
	}
	start := d.now()
	data, err := handler(ctx, req.Args)
	if err != nil {
		d.logger.Debug("operation failed", "op", req.Op, "kind", apierr.KindOf(err), "error", err)
		return failure(req.Op, data, err)
	}
	d.logger.Debug("operation succeeded", "op", req.Op, "elapsed", d.now().Sub(start))
	return &Result{OK: true, Op: req.Op, Data: data}
}

// Call encodes args and runs op. args may be nil for operations without
// arguments.
func (d *Dispatcher) Call(ctx context.Context, op string, args interface{}) *Result {
	req := Request{Op: op}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return failure(op, nil, apierr.Wrap(apierr.KindInvalidInput, op, fmt.Errorf("encode arguments: %w", err)))
		}
		req.Args = raw
	}
	return d.Dispatch(ctx, req)
}

// decodeArgs strictly decodes args into v. Unknown fields are rejected so a
// misspelled argument is never silently ignored.
func decodeArgs(op string, args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apierr.Wrap(apierr.KindInvalidInput, op, fmt.Errorf("invalid arguments: %w", err))
	}
	return nil
}

func (d *Dispatcher) requireTracker(op string) (IssueTracker, error) {
	if d.tracker == nil {
		return nil, &apierr.Error{
			Kind:    apierr.KindConfigInvalid,
			Op:      op,
			Message: "issue tracker is not configured (set jira_url or SCRIBE_JIRA_URL)",
		}
	}
	return d.tracker, nil
}

func (d *Dispatcher) space(s string) string {
	if s != "" {
		return s
	}
	return d.kb.DefaultSpace()
}

func (d *Dispatcher) handleTestConnection(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if err := decodeArgs(OpTestConnection, args, &struct{}{}); err != nil {
		return nil, err
	}
	id, err := d.kb.TestConnection(ctx)
	if err != nil {
		return nil, err
	}
	return &ConnectionInfo{Service: "confluence", URL: d.kb.BaseURL(), Connected: true, User: *id}, nil
}

func (d *Dispatcher) handleTestIssueConnection(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if err := decodeArgs(OpTestIssueConnection, args, &struct{}{}); err != nil {
		return nil, err
	}
	tracker, err := d.requireTracker(OpTestIssueConnection)
	if err != nil {
		return nil, err
	}
	id, err := tracker.TestConnection(ctx)
	if err != nil {
		return nil, err
	}
	return &ConnectionInfo{Service: "jira", URL: tracker.BaseURL(), Connected: true, User: *id}, nil
}

func (d *Dispatcher) handleVerifySpace(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a SpaceArgs
	if err := decodeArgs(OpVerifySpace, args, &a); err != nil {
		return nil, err
	}
	a.Space = d.space(a.Space)
	if err := validateSpaceKey(OpVerifySpace, a.Space); err != nil {
		return nil, err
	}
	return d.kb.VerifySpace(ctx, a.Space)
}

func (d *Dispatcher) handleCreateSpace(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a CreateSpaceArgs
	if err := decodeArgs(OpCreateSpace, args, &a); err != nil {
		return nil, err
	}
	if err := validateSpaceKey(OpCreateSpace, a.Key); err != nil {
		return nil, err
	}
	if err := required(OpCreateSpace, "name", a.Name); err != nil {
		return nil, err
	}
	return d.kb.CreateSpace(ctx, a.Key, a.Name, a.Description)
}

func (d *Dispatcher) handleSearchPage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a SearchPageArgs
	if err := decodeArgs(OpSearchPage, args, &a); err != nil {
		return nil, err
	}
	if err := required(OpSearchPage, "title", a.Title); err != nil {
		return nil, err
	}
	a.Space = d.space(a.Space)
	if err := validateSpaceKey(OpSearchPage, a.Space); err != nil {
		return nil, err
	}
	return d.kb.SearchPage(ctx, a.Title, a.Space)
}

func (d *Dispatcher) handleGetPage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a PageIDArgs
	if err := decodeArgs(OpGetPage, args, &a); err != nil {
		return nil, err
	}
	if err := validatePageID(OpGetPage, "page_id", a.PageID); err != nil {
		return nil, err
	}
	return d.kb.GetPage(ctx, a.PageID)
}

func (d *Dispatcher) handleCreatePage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a CreatePageArgs
	if err := decodeArgs(OpCreatePage, args, &a); err != nil {
		return nil, err
	}
	if err := required(OpCreatePage, "title", a.Title); err != nil {
		return nil, err
	}
	if err := validateContent(OpCreatePage, a.Content); err != nil {
		return nil, err
	}
	a.Space = d.space(a.Space)
	if err := validateSpaceKey(OpCreatePage, a.Space); err != nil {
		return nil, err
	}
	if a.ParentID != "" && a.ParentTitle != "" {
		return nil, apierr.New(apierr.KindInvalidInput, OpCreatePage, "parent_id and parent_title are mutually exclusive")
	}
	if a.ParentID != "" {
		if err := validatePageID(OpCreatePage, "parent_id", a.ParentID); err != nil {
			return nil, err
		}
	}

	parentID := a.ParentID
	if a.ParentTitle != "" {
		res, err := d.resolver.Resolve(ctx, a.Space, a.ParentTitle)
		if err != nil {
			return nil, err
		}
		parentID = res.ParentID
	}
	if _, err := d.resolver.Confirm(ctx, parentID); err != nil {
		return nil, err
	}
	return d.kb.CreatePage(ctx, confluence.CreatePageRequest{
		Title:    a.Title,
		Space:    a.Space,
		Content:  a.Content,
		ParentID: parentID,
	})
}

func (d *Dispatcher) handleUpdatePage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a UpdatePageArgs
	if err := decodeArgs(OpUpdatePage, args, &a); err != nil {
		return nil, err
	}
	if err := validatePageID(OpUpdatePage, "page_id", a.PageID); err != nil {
		return nil, err
	}
	if err := required(OpUpdatePage, "title", a.Title); err != nil {
		return nil, err
	}
	if err := validateContent(OpUpdatePage, a.Content); err != nil {
		return nil, err
	}
	return d.kb.UpdatePage(ctx, a.PageID, a.Title, a.Content)
}

func (d *Dispatcher) handleGetIssue(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a IssueArgs
	if err := decodeArgs(OpGetIssue, args, &a); err != nil {
		return nil, err
	}
	key, err := validateIssueKey(OpGetIssue, a.IssueKey)
	if err != nil {
		return nil, err
	}
	tracker, err := d.requireTracker(OpGetIssue)
	if err != nil {
		return nil, err
	}
	issue, err := tracker.GetIssue(ctx, key)
	if err != nil {
		return nil, err
	}
	details := &IssueDetails{IssueSummary: issue.Summary(), Description: issue.Description()}
	if u := issue.Updated(); !u.IsZero() {
		details.Updated = &u
	}
	return details, nil
}

func (d *Dispatcher) handleAddIssueComment(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a CommentArgs
	if err := decodeArgs(OpAddIssueComment, args, &a); err != nil {
		return nil, err
	}
	key, err := validateIssueKey(OpAddIssueComment, a.IssueKey)
	if err != nil {
		return nil, err
	}
	if err := required(OpAddIssueComment, "comment", a.Comment); err != nil {
		return nil, err
	}
	tracker, err := d.requireTracker(OpAddIssueComment)
	if err != nil {
		return nil, err
	}
	c, err := tracker.AddComment(ctx, key, a.Comment)
	if err != nil {
		return nil, err
	}
	return &CommentInfo{IssueKey: key, CommentID: c.ID, URL: c.Self}, nil
}
