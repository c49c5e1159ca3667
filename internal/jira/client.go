package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/atlassian"
	"github.com/scribe-docs/scribe/internal/types"
)

// issueFields is the set of fields requested when fetching an issue.
const issueFields = "summary,description,status,priority,issuetype,project,assignee,labels,created,updated,resolution"

// Client provides HTTP access to a Jira instance.
type Client struct {
	rest   *atlassian.Client
	logger *slog.Logger
}

// NewClient creates a Jira client on top of a REST core.
func NewClient(rest *atlassian.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{rest: rest, logger: logger}
}

// BaseURL returns the tracker base URL.
func (c *Client) BaseURL() string { return c.rest.BaseURL() }

// BrowseURL returns the browser URL of an issue.
func (c *Client) BrowseURL(key string) string {
	return c.rest.BaseURL() + "/browse/" + key
}

// TestConnection reads the authenticated user.
func (c *Client) TestConnection(ctx context.Context) (*types.Identity, error) {
	const op = "test issue connection"
	var me UserField
	if err := c.rest.Get(ctx, op, "/rest/api/3/myself", nil, &me); err != nil {
		return nil, err
	}
	if me.AccountID == "" && me.EmailAddress == "" && me.DisplayName == "" {
		return nil, apierr.New(apierr.KindRejected, op, "response did not identify a user")
	}
	return &types.Identity{AccountID: me.AccountID, DisplayName: me.DisplayName, Email: me.EmailAddress}, nil
}

// GetIssue fetches a single Jira issue by key (e.g., "PROJ-123") or browse URL.
func (c *Client) GetIssue(ctx context.Context, ref string) (*Issue, error) {
	const op = "get issue"
	key, err := ExtractKey(ref)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInvalidInput, op, err)
	}

	var issue Issue
	q := url.Values{"fields": {issueFields}}
	if err := c.rest.Get(ctx, op, "/rest/api/3/issue/"+url.PathEscape(key), q, &issue); err != nil {
		if errors.Is(err, apierr.NotFound) {
			return nil, &apierr.Error{Kind: apierr.KindNotFound, Op: op, Message: fmt.Sprintf("issue %s not found", key), Err: err}
		}
		return nil, err
	}
	if issue.Key == "" {
		issue.Key = key
	}
	issue.browseURL = c.BrowseURL(issue.Key)
	return &issue, nil
}

// AddComment posts a plain-text comment, converted to ADF, on an issue.
// A missing issue is NotFound; every other failure keeps its own kind.
func (c *Client) AddComment(ctx context.Context, ref, text string) (*Comment, error) {
	const op = "add comment"
	key, err := ExtractKey(ref)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInvalidInput, op, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, apierr.New(apierr.KindInvalidInput, op, "comment text is required")
	}

	payload := map[string]json.RawMessage{"body": PlainTextToADF(text)}
	var out Comment
	if err := c.rest.Post(ctx, op, "/rest/api/3/issue/"+url.PathEscape(key)+"/comment", payload, &out); err != nil {
		if errors.Is(err, apierr.NotFound) {
			return nil, &apierr.Error{Kind: apierr.KindNotFound, Op: op, Message: fmt.Sprintf("issue %s not found", key), Err: err}
		}
		return nil, err
	}
	c.logger.Debug("added comment", "issue", key, "comment", out.ID)
	return &out, nil
}

// DescriptionToPlainText extracts plain text from Jira's ADF (Atlassian Document Format).
// Jira v3 API returns descriptions as ADF JSON, not plain text.
func DescriptionToPlainText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	// Try to parse as ADF document
	var doc struct {
		Type    string `json:"type"`
		Content []struct {
			Type    string `json:"type"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"content"`
	}

	if err := json.Unmarshal(raw, &doc); err != nil {
		// Not JSON - treat as plain text string
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	}

	if doc.Type != "doc" {
		// Not ADF - try plain string
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	}

	// Extract text from ADF nodes
	var parts []string
	for _, block := range doc.Content {
		var line []string
		for _, inline := range block.Content {
			if inline.Text != "" {
				line = append(line, inline.Text)
			}
		}
		if len(line) > 0 {
			parts = append(parts, strings.Join(line, ""))
		}
	}

	return strings.Join(parts, "\n")
}

// PlainTextToADF converts plain text to Jira's ADF (Atlassian Document Format).
func PlainTextToADF(text string) json.RawMessage {
	if text == "" {
		return nil
	}

	paragraphs := strings.Split(text, "\n")
	var content []interface{}
	for _, para := range paragraphs {
		if para == "" {
			content = append(content, map[string]interface{}{
				"type":    "paragraph",
				"content": []interface{}{},
			})
			continue
		}
		content = append(content, map[string]interface{}{
			"type": "paragraph",
			"content": []interface{}{
				map[string]interface{}{
					"type": "text",
					"text": para,
				},
			},
		})
	}

	doc := map[string]interface{}{
		"type":    "doc",
		"version": 1,
		"content": content,
	}

	data, _ := json.Marshal(doc)
	return data
}
