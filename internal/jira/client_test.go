package jira

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/atlassian"
	"github.com/scribe-docs/scribe/internal/testutil/fakekb"
)

func newTestClient(t *testing.T, srv *fakekb.Server) *Client {
	t.Helper()
	rest, err := atlassian.New(atlassian.Config{
		BaseURL:         srv.JiraURL(),
		Email:           "alice@example.com",
		APIToken:        "token",
		Service:         "jira",
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("atlassian.New() error = %v", err)
	}
	return NewClient(rest, nil)
}

func TestTestConnection(t *testing.T) {
	srv := fakekb.New()
	defer srv.Close()

	id, err := newTestClient(t, srv).TestConnection(context.Background())
	if err != nil {
		t.Fatalf("TestConnection() error = %v", err)
	}
	if id.Email != "fake@example.com" {
		t.Errorf("identity = %+v", id)
	}
}

func TestGetIssue(t *testing.T) {
	srv := fakekb.New()
	defer srv.Close()
	srv.AddIssue(fakekb.Issue{
		Key: "AUTH-7", Summary: "Session expires early", Status: "In Progress",
		Type: "Bug", Priority: "High", Assignee: "Bob",
	})
	c := newTestClient(t, srv)

	issue, err := c.GetIssue(context.Background(), srv.JiraURL()+"/browse/AUTH-7")
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	sum := issue.Summary()
	if sum.Key != "AUTH-7" || sum.Status != "In Progress" || sum.IssueType != "Bug" ||
		sum.Priority != "High" || sum.Assignee != "Bob" {
		t.Errorf("Summary() = %+v", sum)
	}
	if sum.URL != srv.JiraURL()+"/browse/AUTH-7" {
		t.Errorf("URL = %q", sum.URL)
	}
	if issue.Updated().Year() != 2025 {
		t.Errorf("Updated() = %v", issue.Updated())
	}

	reqs := srv.Requests()
	if got := reqs[len(reqs)-1].Query.Get("fields"); got != issueFields {
		t.Errorf("fields = %q, want %q", got, issueFields)
	}
}

func TestGetIssueErrors(t *testing.T) {
	srv := fakekb.New()
	defer srv.Close()
	c := newTestClient(t, srv)

	if _, err := c.GetIssue(context.Background(), "NOPE-1"); !errors.Is(err, apierr.NotFound) {
		t.Errorf("GetIssue(NOPE-1) error = %v, want NotFound", err)
	}
	if _, err := c.GetIssue(context.Background(), "not a key"); !errors.Is(err, apierr.InvalidInput) {
		t.Errorf("GetIssue(not a key) error = %v, want InvalidInput", err)
	}
	if n := len(srv.Requests()); n != 1 {
		t.Errorf("requests = %d, want 1 (invalid keys are not sent)", n)
	}
}

func TestAddComment(t *testing.T) {
	srv := fakekb.New()
	defer srv.Close()
	srv.AddIssue(fakekb.Issue{Key: "OPS-1", Summary: "s"})
	c := newTestClient(t, srv)

	out, err := c.AddComment(context.Background(), "OPS-1", "Documented at https://kb/p/1\nSecond line")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if out.ID == "" {
		t.Errorf("comment id missing")
	}
	got := srv.Comments("OPS-1")
	if len(got) != 1 || got[0] != "Documented at https://kb/p/1\nSecond line" {
		t.Errorf("comments = %q", got)
	}
}

func TestAddCommentFailures(t *testing.T) {
	srv := fakekb.New()
	defer srv.Close()
	srv.AddIssue(fakekb.Issue{Key: "OPS-1"})
	c := newTestClient(t, srv)

	if _, err := c.AddComment(context.Background(), "OPS-404", "x"); !errors.Is(err, apierr.NotFound) {
		t.Errorf("missing issue error = %v, want NotFound", err)
	}

	srv.Fail(fakekb.RouteAddComment, http.StatusForbidden)
	_, err := c.AddComment(context.Background(), "OPS-1", "x")
	if !errors.Is(err, apierr.AuthFailed) {
		t.Errorf("forbidden error = %v, want AuthFailed", err)
	}
	if errors.Is(err, apierr.NotFound) {
		t.Errorf("comment failure must stay distinct from NotFound")
	}

	if _, err := c.AddComment(context.Background(), "OPS-1", "  "); !errors.Is(err, apierr.InvalidInput) {
		t.Errorf("blank comment error = %v, want InvalidInput", err)
	}
}

func TestDescriptionToPlainText(t *testing.T) {
	tests := []struct {
		name string
		raw  json.RawMessage
		want string
	}{
		{"null", json.RawMessage(`null`), ""},
		{"empty", json.RawMessage(``), ""},
		{"plain string", json.RawMessage(`"hello world"`), "hello world"},
		{"ADF document", json.RawMessage(`{
			"type": "doc",
			"content": [
				{
					"type": "paragraph",
					"content": [
						{"type": "text", "text": "First paragraph"}
					]
				},
				{
					"type": "paragraph",
					"content": [
						{"type": "text", "text": "Second paragraph"}
					]
				}
			]
		}`), "First paragraph\nSecond paragraph"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DescriptionToPlainText(tt.raw)
			if got != tt.want {
				t.Errorf("DescriptionToPlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlainTextToADF(t *testing.T) {
	adf := PlainTextToADF("Hello\nWorld")
	if adf == nil {
		t.Fatal("PlainTextToADF returned nil")
	}

	var doc struct {
		Type    string `json:"type"`
		Version int    `json:"version"`
		Content []struct {
			Type    string `json:"type"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"content"`
	}
	if err := json.Unmarshal(adf, &doc); err != nil {
		t.Fatalf("Failed to parse ADF: %v", err)
	}
	if doc.Type != "doc" {
		t.Errorf("doc type = %q, want %q", doc.Type, "doc")
	}
	if len(doc.Content) != 2 {
		t.Fatalf("content length = %d, want 2", len(doc.Content))
	}
	if doc.Content[0].Content[0].Text != "Hello" {
		t.Errorf("first paragraph text = %q, want %q", doc.Content[0].Content[0].Text, "Hello")
	}
	if got := DescriptionToPlainText(adf); got != "Hello\nWorld" {
		t.Errorf("round trip = %q", got)
	}
}
