package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/config"
	"github.com/scribe-docs/scribe/internal/markup"
	"github.com/scribe-docs/scribe/internal/testutil/fakekb"
	"github.com/scribe-docs/scribe/internal/types"
)

const (
	contentPath = "/wiki/rest/api/content"
	validBody   = "<p>Hello</p>"
)

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

type fixture struct {
	srv *fakekb.Server
	d   *Dispatcher
}

func newFixture(t *testing.T, withJira bool) *fixture {
	t.Helper()
	srv := fakekb.New()
	t.Cleanup(srv.Close)

	creds := &config.Credentials{
		ConfluenceURL: srv.ConfluenceURL(),
		Email:         "alice@example.com",
		APIToken:      "token",
		SpaceKey:      "DOCS",
		Timeout:       5 * time.Second,
		MaxAttempts:   1,
	}
	if withJira {
		creds.JiraURL = srv.JiraURL()
	}
	d, err := FromCredentials(creds, BuildOptions{}, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return &fixture{srv: srv, d: d}
}

func (f *fixture) call(t *testing.T, op string, args interface{}) *Result {
	t.Helper()
	res := f.d.Call(context.Background(), op, args)
	require.NotNil(t, res)
	assert.Equal(t, op, res.Op)
	return res
}

func requireKind(t *testing.T, res *Result, kind apierr.Kind) {
	t.Helper()
	require.False(t, res.OK, "expected failure, got %+v", res.Data)
	require.NotNil(t, res.Error)
	require.Equal(t, kind, res.Error.Kind, res.Error.Message)
	assert.NotEmpty(t, res.Error.Hint)
}

func TestDispatchUnknownOperation(t *testing.T) {
	f := newFixture(t, false)
	res := f.d.Dispatch(context.Background(), Request{Op: "delete-everything"})
	requireKind(t, res, apierr.KindInvalidInput)
	assert.Equal(t, ExitUsage, res.ExitCode())
	assert.Empty(t, f.srv.Requests())
}

func TestDispatchRejectsUnknownArguments(t *testing.T) {
	f := newFixture(t, false)
	res := f.d.Dispatch(context.Background(), Request{
		Op:   OpSearchPage,
		Args: json.RawMessage(`{"title": "Roadmap", "spcae": "ENG"}`),
	})
	requireKind(t, res, apierr.KindInvalidInput)
	assert.Contains(t, res.Error.Message, "spcae")
	assert.Empty(t, f.srv.Requests())
}

func TestOperationsListsClosedSet(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, []string{
		OpAddIssueComment, OpCreatePage, OpCreateSpace, OpDocumentProject, OpDocumentSession,
		OpGetIssue, OpGetPage, OpSearchPage, OpTestConnection, OpTestIssueConnection,
		OpUpdatePage, OpVerifySpace,
	}, f.d.Operations())
}

func TestTestConnections(t *testing.T) {
	f := newFixture(t, true)

	res := f.call(t, OpTestConnection, nil)
	require.True(t, res.OK, "%+v", res.Error)
	info := res.Data.(*ConnectionInfo)
	assert.Equal(t, "confluence", info.Service)
	assert.True(t, info.Connected)
	assert.Equal(t, "Fake User", info.User.Name())

	res = f.call(t, OpTestIssueConnection, nil)
	require.True(t, res.OK, "%+v", res.Error)
	assert.Equal(t, "jira", res.Data.(*ConnectionInfo).Service)
	assert.Equal(t, ExitOK, res.ExitCode())
}

func TestTestConnectionAuthFailed(t *testing.T) {
	f := newFixture(t, false)
	f.srv.RequireAuth("Basic something-else")

	res := f.call(t, OpTestConnection, nil)
	requireKind(t, res, apierr.KindAuthFailed)
	assert.Equal(t, http.StatusUnauthorized, res.Error.Status)
	assert.Equal(t, ExitFailure, res.ExitCode())
}

func TestTrackerOperationsWithoutTracker(t *testing.T) {
	f := newFixture(t, false)
	for _, c := range []struct {
		op   string
		args interface{}
	}{
		{OpTestIssueConnection, nil},
		{OpGetIssue, IssueArgs{IssueKey: "PROJ-1"}},
		{OpAddIssueComment, CommentArgs{IssueKey: "PROJ-1", Comment: "hi"}},
	} {
		t.Run(c.op, func(t *testing.T) {
			res := f.call(t, c.op, c.args)
			requireKind(t, res, apierr.KindConfigInvalid)
			assert.Equal(t, ExitUsage, res.ExitCode())
		})
	}
	assert.Empty(t, f.srv.Requests())
}

func TestSearchPageOutcomes(t *testing.T) {
	f := newFixture(t, false)
	f.srv.AddPage("DOCS", "Unique", "", validBody)
	f.srv.AddPage("DOCS", "Twin", "", validBody)
	f.srv.AddPage("DOCS", "Twin", "", validBody)

	t.Run("zero matches", func(t *testing.T) {
		res := f.call(t, OpSearchPage, SearchPageArgs{Title: "Missing"})
		requireKind(t, res, apierr.KindNotFound)
	})
	t.Run("one match", func(t *testing.T) {
		res := f.call(t, OpSearchPage, SearchPageArgs{Title: "Unique"})
		require.True(t, res.OK, "%+v", res.Error)
		page := res.Data.(*types.Page)
		assert.Equal(t, "Unique", page.Title)
		assert.NotEmpty(t, page.URL)
	})
	t.Run("two matches", func(t *testing.T) {
		res := f.call(t, OpSearchPage, SearchPageArgs{Title: "Twin"})
		requireKind(t, res, apierr.KindAmbiguous)
	})
	t.Run("bad space key", func(t *testing.T) {
		res := f.call(t, OpSearchPage, SearchPageArgs{Title: "Unique", Space: "NOT A KEY"})
		requireKind(t, res, apierr.KindInvalidInput)
	})
}

func TestCreatePageValidation(t *testing.T) {
	tests := []struct {
		name string
		args CreatePageArgs
		want string
	}{
		{"missing title", CreatePageArgs{Content: validBody}, "title"},
		{"missing content", CreatePageArgs{Title: "T"}, "content"},
		{"malformed content", CreatePageArgs{Title: "T", Content: "<p>unclosed"}, "malformed"},
		{"non-numeric parent", CreatePageArgs{Title: "T", Content: validBody, ParentID: "abc"}, "parent_id"},
		{"both parents", CreatePageArgs{Title: "T", Content: validBody, ParentID: "1", ParentTitle: "P"}, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			res := f.call(t, OpCreatePage, tt.args)
			requireKind(t, res, apierr.KindInvalidInput)
			assert.Contains(t, res.Error.Message, tt.want)
			assert.Empty(t, f.srv.Requests(), "validation must happen before any request")
		})
	}
}

func TestCreatePageAtRoot(t *testing.T) {
	f := newFixture(t, false)

	res := f.call(t, OpCreatePage, CreatePageArgs{Title: "Runbook", Content: validBody})
	require.True(t, res.OK, "%+v", res.Error)
	page := res.Data.(*types.Page)
	assert.NotEmpty(t, page.ID)
	assert.Equal(t, f.srv.ConfluenceURL()+"/spaces/DOCS/pages/"+page.ID, page.URL)
	assert.Empty(t, page.ParentID)

	stored, ok := f.srv.Page(page.ID)
	require.True(t, ok)
	assert.Equal(t, validBody, stored.Body)
}

func TestCreatePageUnderParent(t *testing.T) {
	f := newFixture(t, false)
	parentID := f.srv.AddPage("DOCS", "Engineering", "", validBody)

	t.Run("by id", func(t *testing.T) {
		res := f.call(t, OpCreatePage, CreatePageArgs{Title: "Child A", Content: validBody, ParentID: parentID})
		require.True(t, res.OK, "%+v", res.Error)
		assert.Equal(t, parentID, res.Data.(*types.Page).ParentID)
	})
	t.Run("by title", func(t *testing.T) {
		res := f.call(t, OpCreatePage, CreatePageArgs{Title: "Child B", Content: validBody, ParentTitle: "Engineering"})
		require.True(t, res.OK, "%+v", res.Error)
		assert.Equal(t, parentID, res.Data.(*types.Page).ParentID)
	})
	t.Run("missing parent id is never created parent-less", func(t *testing.T) {
		before := f.srv.Count(http.MethodPost, contentPath)
		res := f.call(t, OpCreatePage, CreatePageArgs{Title: "Orphan", Content: validBody, ParentID: "999999"})
		requireKind(t, res, apierr.KindParentMissing)
		assert.Equal(t, before, f.srv.Count(http.MethodPost, contentPath))
		assert.Empty(t, f.srv.PagesTitled("Orphan"))
	})
	t.Run("missing parent title", func(t *testing.T) {
		res := f.call(t, OpCreatePage, CreatePageArgs{Title: "Orphan", Content: validBody, ParentTitle: "Nowhere"})
		requireKind(t, res, apierr.KindParentMissing)
	})
}

func TestCreatePageParentLinkLost(t *testing.T) {
	f := newFixture(t, false)
	parentID := f.srv.AddPage("DOCS", "Engineering", "", validBody)
	f.srv.DropAncestors = true

	res := f.call(t, OpCreatePage, CreatePageArgs{Title: "Child", Content: validBody, ParentID: parentID})
	requireKind(t, res, apierr.KindPartialSuccess)
	assert.Equal(t, ExitPartial, res.ExitCode())
	require.NotNil(t, res.Error.Page)
	page, ok := res.Data.(*types.Page)
	require.True(t, ok, "partial result carries the created page")
	assert.Equal(t, page.ID, res.Error.Page.ID)
}

func TestUpdatePage(t *testing.T) {
	f := newFixture(t, false)
	id := f.srv.AddPage("DOCS", "Runbook", "", validBody)

	t.Run("bumps version", func(t *testing.T) {
		res := f.call(t, OpUpdatePage, UpdatePageArgs{PageID: id, Title: "Runbook", Content: "<p>v2</p>"})
		require.True(t, res.OK, "%+v", res.Error)
		assert.Equal(t, 2, res.Data.(*types.Page).Version)
	})
	t.Run("retries one conflict", func(t *testing.T) {
		f.srv.Fail(fakekb.RouteUpdatePage, http.StatusConflict)
		res := f.call(t, OpUpdatePage, UpdatePageArgs{PageID: id, Title: "Runbook", Content: "<p>v3</p>"})
		require.True(t, res.OK, "%+v", res.Error)
		stored, _ := f.srv.Page(id)
		assert.Equal(t, "<p>v3</p>", stored.Body)
	})
	t.Run("second conflict surfaces", func(t *testing.T) {
		f.srv.Fail(fakekb.RouteUpdatePage, http.StatusConflict, http.StatusConflict)
		res := f.call(t, OpUpdatePage, UpdatePageArgs{PageID: id, Title: "Runbook", Content: "<p>v4</p>"})
		requireKind(t, res, apierr.KindVersionConflict)
	})
	t.Run("page id must be numeric", func(t *testing.T) {
		res := f.call(t, OpUpdatePage, UpdatePageArgs{PageID: "12a", Title: "Runbook", Content: validBody})
		requireKind(t, res, apierr.KindInvalidInput)
	})
}

func TestGetPage(t *testing.T) {
	f := newFixture(t, false)
	id := f.srv.AddPage("DOCS", "Runbook", "", validBody)

	res := f.call(t, OpGetPage, PageIDArgs{PageID: id})
	require.True(t, res.OK, "%+v", res.Error)
	assert.Equal(t, validBody, res.Data.(*types.Page).Body)

	res = f.call(t, OpGetPage, PageIDArgs{PageID: "424242"})
	requireKind(t, res, apierr.KindNotFound)
}

func TestSpaces(t *testing.T) {
	f := newFixture(t, false)
	f.srv.AddSpace("DOCS", "Documentation")

	res := f.call(t, OpVerifySpace, nil)
	require.True(t, res.OK, "%+v", res.Error)
	assert.Equal(t, "DOCS", res.Data.(*types.Space).Key)

	res = f.call(t, OpVerifySpace, SpaceArgs{Space: "NOPE"})
	requireKind(t, res, apierr.KindNotFound)

	res = f.call(t, OpCreateSpace, CreateSpaceArgs{Key: "OPS", Name: "Operations"})
	require.True(t, res.OK, "%+v", res.Error)
	assert.Equal(t, "OPS", res.Data.(*types.Space).Key)

	res = f.call(t, OpCreateSpace, CreateSpaceArgs{Key: "OPS"})
	requireKind(t, res, apierr.KindInvalidInput)
}

func TestIssueOperations(t *testing.T) {
	f := newFixture(t, true)
	f.srv.AddIssue(fakekb.Issue{Key: "PROJ-7", Summary: "Login times out", Status: "In Progress", Type: "Bug", Priority: "High", Assignee: "Bob"})

	res := f.call(t, OpGetIssue, IssueArgs{IssueKey: f.srv.JiraURL() + "/browse/proj-7"})
	require.True(t, res.OK, "%+v", res.Error)
	details := res.Data.(*IssueDetails)
	assert.Equal(t, "PROJ-7", details.Key)
	assert.Equal(t, "In Progress", details.Status)
	assert.Equal(t, "Bob", details.Assignee)
	assert.Equal(t, f.srv.JiraURL()+"/browse/PROJ-7", details.URL)
	require.NotNil(t, details.Updated)

	res = f.call(t, OpAddIssueComment, CommentArgs{IssueKey: "PROJ-7", Comment: "Deployed."})
	require.True(t, res.OK, "%+v", res.Error)
	assert.NotEmpty(t, res.Data.(*CommentInfo).CommentID)
	assert.Equal(t, []string{"Deployed."}, f.srv.Comments("PROJ-7"))

	res = f.call(t, OpGetIssue, IssueArgs{IssueKey: "PROJ-404"})
	requireKind(t, res, apierr.KindNotFound)

	res = f.call(t, OpAddIssueComment, CommentArgs{IssueKey: "PROJ-404", Comment: "x"})
	requireKind(t, res, apierr.KindNotFound)

	f.srv.Fail(fakekb.RouteAddComment, http.StatusForbidden)
	res = f.call(t, OpAddIssueComment, CommentArgs{IssueKey: "PROJ-7", Comment: "x"})
	requireKind(t, res, apierr.KindAuthFailed)

	res = f.call(t, OpGetIssue, IssueArgs{IssueKey: "not a key"})
	requireKind(t, res, apierr.KindInvalidInput)
}

func loginTimeoutRecord() *types.WorkSessionRecord {
	return &types.WorkSessionRecord{
		TaskName:      "Fix login timeout",
		Overview:      "Users were logged out after five minutes.",
		ActionsDone:   []string{"Raised the session timeout"},
		FilesInvolved: []types.FileRef{{Path: "config.py", Description: "raised timeout to 1800s"}},
		CodeSnippets:  []types.CodeSnippet{{Code: "TIMEOUT=1800", Language: "python"}},
		DocumentedBy:  "alice",
	}
}

func TestDocumentSessionEndToEnd(t *testing.T) {
	f := newFixture(t, false)

	res := f.call(t, OpDocumentSession, DocumentSessionArgs{Record: loginTimeoutRecord()})
	require.True(t, res.OK, "%+v", res.Error)
	out := res.Data.(*SessionOutcome)
	require.NotNil(t, out.Page)
	assert.NotEmpty(t, out.Page.ID)
	assert.NotEmpty(t, out.Page.URL)
	assert.Nil(t, out.Parent)

	reqs := f.srv.Requests()
	var create *fakekb.RecordedRequest
	for i := range reqs {
		if reqs[i].Method == http.MethodPost && reqs[i].Path == contentPath {
			create = &reqs[i]
		}
	}
	require.NotNil(t, create)
	assert.NotContains(t, string(create.Body), "ancestors", "root page carries no parent id")

	stored, ok := f.srv.Page(out.Page.ID)
	require.True(t, ok)
	body := markup.Content(stored.Body)
	require.NoError(t, markup.Validate(body))
	for _, section := range []string{markup.SectionOverview, markup.SectionActions, markup.SectionFiles, markup.SectionCode} {
		assert.Contains(t, stored.Body, "<h2>"+section+"</h2>")
	}
	for _, section := range []string{markup.SectionNotes, markup.SectionIssue} {
		assert.NotContains(t, stored.Body, "<h2>"+section+"</h2>")
	}
	blocks, err := markup.CodeBlocks(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"TIMEOUT=1800"}, blocks)
	assert.Contains(t, stored.Body, fixedNow.Format("2006-01-02 15:04:05"))
}

func TestDocumentSessionParentMissing(t *testing.T) {
	f := newFixture(t, false)
	args := DocumentSessionArgs{Record: loginTimeoutRecord(), ParentTitle: "Sprint 12"}

	res := f.call(t, OpDocumentSession, args)
	requireKind(t, res, apierr.KindParentMissing)
	assert.Zero(t, f.srv.Count(http.MethodPost, contentPath))

	args.AllowStandalone = true
	res = f.call(t, OpDocumentSession, args)
	require.True(t, res.OK, "%+v", res.Error)
	out := res.Data.(*SessionOutcome)
	assert.True(t, out.Standalone)
	assert.Empty(t, out.Page.ParentID)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "Sprint 12")
}

func TestDocumentSessionUnderParent(t *testing.T) {
	f := newFixture(t, false)
	parentID := f.srv.AddPage("DOCS", "Sprint 12", "", validBody)

	res := f.call(t, OpDocumentSession, DocumentSessionArgs{
		Record:      loginTimeoutRecord(),
		ParentTitle: "Sprint 12",
		Title:       "Login timeout fix",
	})
	require.True(t, res.OK, "%+v", res.Error)
	out := res.Data.(*SessionOutcome)
	assert.Equal(t, parentID, out.Page.ParentID)
	assert.Equal(t, "Login timeout fix", out.Page.Title)
	require.NotNil(t, out.Parent)
	assert.Equal(t, "Sprint 12", out.Parent.Title)
}

func TestDocumentSessionWithIssue(t *testing.T) {
	f := newFixture(t, true)
	f.srv.AddIssue(fakekb.Issue{Key: "PROJ-7", Summary: "Login times out", Status: "Done", Type: "Bug"})

	res := f.call(t, OpDocumentSession, DocumentSessionArgs{Record: loginTimeoutRecord(), IssueKey: "PROJ-7"})
	require.True(t, res.OK, "%+v", res.Error)
	out := res.Data.(*SessionOutcome)
	assert.Equal(t, "PROJ-7: Fix login timeout", out.Page.Title)
	require.NotNil(t, out.Issue)
	assert.Equal(t, "Done", out.Issue.Status)
	require.NotNil(t, out.Comment)

	stored, _ := f.srv.Page(out.Page.ID)
	assert.Contains(t, stored.Body, "<h2>"+markup.SectionIssue+"</h2>")
	assert.Less(t, strings.Index(stored.Body, markup.SectionIssue), strings.Index(stored.Body, markup.SectionOverview))

	comments := f.srv.Comments("PROJ-7")
	require.Len(t, comments, 1)
	assert.Contains(t, comments[0], out.Page.URL)
}

func TestDocumentSessionCommentFailureIsPartial(t *testing.T) {
	f := newFixture(t, true)
	f.srv.AddIssue(fakekb.Issue{Key: "PROJ-7", Summary: "Login times out", Status: "Done"})
	f.srv.Fail(fakekb.RouteAddComment, http.StatusBadRequest)

	res := f.call(t, OpDocumentSession, DocumentSessionArgs{Record: loginTimeoutRecord(), IssueKey: "PROJ-7"})
	requireKind(t, res, apierr.KindPartialSuccess)
	assert.Equal(t, ExitPartial, res.ExitCode())
	require.NotNil(t, res.Error.Page)

	out := res.Data.(*SessionOutcome)
	require.NotNil(t, out.Page)
	assert.Equal(t, out.Page.ID, res.Error.Page.ID)
	_, ok := f.srv.Page(out.Page.ID)
	assert.True(t, ok, "the page stays created")
	assert.ErrorIs(t, res.Err(), apierr.PartialSuccess)
}

func TestDocumentSessionIssueMissing(t *testing.T) {
	f := newFixture(t, true)
	res := f.call(t, OpDocumentSession, DocumentSessionArgs{Record: loginTimeoutRecord(), IssueKey: "PROJ-404"})
	requireKind(t, res, apierr.KindNotFound)
	assert.Zero(t, f.srv.Count(http.MethodPost, contentPath))
}

func TestDocumentSessionValidation(t *testing.T) {
	f := newFixture(t, false)

	res := f.call(t, OpDocumentSession, DocumentSessionArgs{})
	requireKind(t, res, apierr.KindInvalidInput)

	res = f.call(t, OpDocumentSession, DocumentSessionArgs{Record: &types.WorkSessionRecord{Overview: "no name"}})
	requireKind(t, res, apierr.KindInvalidInput)

	res = f.call(t, OpDocumentSession, DocumentSessionArgs{Record: loginTimeoutRecord(), IssueKey: "PROJ-1"})
	requireKind(t, res, apierr.KindConfigInvalid)
	assert.Empty(t, f.srv.Requests())
}

func billingDocs() *types.ProjectDocs {
	return &types.ProjectDocs{
		Overview: types.ProjectOverview{
			Name:      "Billing",
			TechStack: []string{"Go", "Postgres"},
		},
		Architecture: &types.ArchitectureOverview{Components: []string{"api", "worker"}},
		Dependencies: &types.DependencyReport{Production: []types.Dependency{{Name: "pgx", Version: "v5"}}},
		KeyFiles:     []types.KeyFile{{Path: "cmd/billing/main.go", CodeSample: "package main"}},
	}
}

func TestDocumentProject(t *testing.T) {
	f := newFixture(t, false)

	res := f.call(t, OpDocumentProject, DocumentProjectArgs{Docs: billingDocs()})
	require.True(t, res.OK, "%+v", res.Error)
	out := res.Data.(*ProjectOutcome)
	assert.True(t, out.Overview.Created)
	require.Len(t, out.Children, 3)

	wantSections := []string{types.TitleArchitecture, types.TitleDependencies, types.TitleKeyFiles}
	for i, child := range out.Children {
		assert.Equal(t, wantSections[i], child.Section)
		assert.True(t, child.Created)
		assert.Equal(t, "Billing - "+wantSections[i], child.Page.Title)
		assert.Equal(t, out.Overview.Page.ID, child.Page.ParentID)
	}

	overview, ok := f.srv.Page(out.Overview.Page.ID)
	require.True(t, ok)
	assert.Equal(t, 2, overview.Version, "overview is updated once with the child links")
	for _, child := range out.Children {
		assert.Contains(t, overview.Body, child.Page.URL)
	}
	require.NoError(t, markup.Validate(markup.Content(overview.Body)))

	// A second run reuses every page.
	res = f.call(t, OpDocumentProject, DocumentProjectArgs{Docs: billingDocs()})
	require.True(t, res.OK, "%+v", res.Error)
	again := res.Data.(*ProjectOutcome)
	assert.False(t, again.Overview.Created)
	assert.Equal(t, out.Overview.Page.ID, again.Overview.Page.ID)
	for _, child := range again.Children {
		assert.False(t, child.Created)
	}
	assert.Equal(t, 4, f.srv.PageCount())
}

func TestDocumentProjectChildFailureIsPartial(t *testing.T) {
	f := newFixture(t, false)
	f.srv.Fail(fakekb.RouteCreatePage, 0, http.StatusBadRequest)

	res := f.call(t, OpDocumentProject, DocumentProjectArgs{Docs: billingDocs()})
	requireKind(t, res, apierr.KindPartialSuccess)
	require.NotNil(t, res.Error.Page)
	out := res.Data.(*ProjectOutcome)
	assert.Equal(t, out.Overview.Page.ID, res.Error.Page.ID)
	assert.Empty(t, out.Children)
}

func TestDocumentProjectChildUnderOtherParentIsPartial(t *testing.T) {
	f := newFixture(t, false)
	stray := f.srv.AddPage("DOCS", "Billing - "+types.TitleArchitecture, "", validBody)

	res := f.call(t, OpDocumentProject, DocumentProjectArgs{Docs: billingDocs()})
	requireKind(t, res, apierr.KindPartialSuccess)
	require.NotNil(t, res.Error.Page)
	out := res.Data.(*ProjectOutcome)
	assert.Equal(t, out.Overview.Page.ID, res.Error.Page.ID)
	for _, child := range out.Children {
		assert.NotEqual(t, stray, child.Page.ID, "page under another parent must not be linked")
	}
	page, ok := f.srv.Page(stray)
	require.True(t, ok)
	assert.Empty(t, page.ParentID)
}

func TestDocumentProjectParent(t *testing.T) {
	f := newFixture(t, false)

	res := f.call(t, OpDocumentProject, DocumentProjectArgs{Docs: billingDocs(), ParentTitle: "Projects"})
	requireKind(t, res, apierr.KindParentMissing)
	assert.Zero(t, f.srv.PageCount())

	parentID := f.srv.AddPage("DOCS", "Projects", "", validBody)
	res = f.call(t, OpDocumentProject, DocumentProjectArgs{Docs: billingDocs(), ParentTitle: "Projects"})
	require.True(t, res.OK, "%+v", res.Error)
	out := res.Data.(*ProjectOutcome)
	assert.Equal(t, parentID, out.Overview.Page.ParentID)
	require.NotNil(t, out.Parent)
	assert.Equal(t, parentID, out.Parent.ParentID)
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		res  Result
		want int
	}{
		{Result{OK: true}, ExitOK},
		{Result{}, ExitFailure},
		{Result{Error: &ErrorBody{Kind: apierr.KindInvalidInput}}, ExitUsage},
		{Result{Error: &ErrorBody{Kind: apierr.KindConfigInvalid}}, ExitUsage},
		{Result{Error: &ErrorBody{Kind: apierr.KindPartialSuccess}}, ExitPartial},
		{Result{Error: &ErrorBody{Kind: apierr.KindTransient}}, ExitFailure},
		{Result{Error: &ErrorBody{Message: "unclassified"}}, ExitFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.res.ExitCode(), "%+v", tt.res.Error)
	}
}

func TestEveryKindHasHint(t *testing.T) {
	for _, k := range []apierr.Kind{
		apierr.KindConfigInvalid, apierr.KindInvalidInput, apierr.KindAuthFailed, apierr.KindNotFound,
		apierr.KindParentMissing, apierr.KindAmbiguous, apierr.KindVersionConflict, apierr.KindTransient,
		apierr.KindRejected, apierr.KindPartialSuccess,
	} {
		assert.NotEmpty(t, Hint(k), k)
	}
}
