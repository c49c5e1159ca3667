package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/confluence"
	"github.com/scribe-docs/scribe/internal/markup"
	"github.com/scribe-docs/scribe/internal/types"
)

// handleDocumentSession publishes a work-session page: attach the linked
// issue, render, resolve and confirm the parent, create the page and
// finally comment on the issue with a link to it.
func (d *Dispatcher) handleDocumentSession(ctx context.Context, args json.RawMessage) (interface{}, error) {
	const op = OpDocumentSession
	var a DocumentSessionArgs
	if err := decodeArgs(op, args, &a); err != nil {
		return nil, err
	}
	if a.Record == nil {
		return nil, apierr.New(apierr.KindInvalidInput, op, "record is required")
	}
	rec := *a.Record
	if err := rec.Validate(); err != nil {
		return nil, apierr.Wrap(apierr.KindInvalidInput, op, err)
	}
	a.Space = d.space(a.Space)
	if err := validateSpaceKey(op, a.Space); err != nil {
		return nil, err
	}

	issueRef := a.IssueKey
	if issueRef == "" && rec.LinkedIssue != nil {
		issueRef = rec.LinkedIssue.Key
	}
	var issueKey string
	if issueRef != "" {
		key, err := validateIssueKey(op, issueRef)
		if err != nil {
			return nil, err
		}
		issueKey = key
	}

	out := &SessionOutcome{}

	// Fetch the issue so the panel shows live fields. A record that already
	// carries a summary is still rendered when no tracker is configured.
	if issueKey != "" {
		if d.tracker != nil {
			issue, err := d.tracker.GetIssue(ctx, issueKey)
			if err != nil {
				return nil, err
			}
			summary := issue.Summary()
			rec.LinkedIssue = &summary
		} else if a.IssueKey != "" {
			_, err := d.requireTracker(op)
			return nil, err
		} else {
			out.Warnings = append(out.Warnings, "issue tracker is not configured; linked issue fields were not refreshed")
		}
		out.Issue = rec.LinkedIssue
	}
	if rec.DocumentedAt.IsZero() {
		rec.DocumentedAt = d.now()
	}

	content, err := markup.RenderWorkSession(&rec)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(a.Title)
	if title == "" {
		title = rec.PageTitle()
	}

	res, err := d.resolver.Resolve(ctx, a.Space, a.ParentTitle)
	switch {
	case err == nil:
	case errors.Is(err, apierr.ParentMissing) && a.AllowStandalone:
		out.Standalone = true
		out.Warnings = append(out.Warnings, fmt.Sprintf("parent page %q not found; page created at the space root", a.ParentTitle))
		d.logger.Info("parent missing, creating standalone page", "parent", a.ParentTitle, "space", a.Space)
	default:
		return nil, err
	}

	parent, err := d.resolver.Confirm(ctx, res.ParentID)
	if err != nil {
		return nil, err
	}
	out.Parent = parent

	page, err := d.kb.CreatePage(ctx, confluence.CreatePageRequest{
		Title:    title,
		Space:    a.Space,
		Content:  string(content),
		ParentID: res.ParentID,
	})
	if err != nil {
		if page != nil {
			out.Page = page
			return out, err
		}
		return nil, err
	}
	out.Page = page

	if issueKey == "" || a.NoComment || d.tracker == nil {
		return out, nil
	}
	text := sessionComment(a.Comment, page)
	c, err := d.tracker.AddComment(ctx, issueKey, text)
	if err != nil {
		ref := apierr.PageRef{ID: page.ID, Title: page.Title, URL: page.URL}
		return out, apierr.Partial(op, ref, err)
	}
	out.Comment = &CommentInfo{IssueKey: issueKey, CommentID: c.ID, URL: c.Self}
	return out, nil
}

func sessionComment(custom string, page *types.Page) string {
	link := fmt.Sprintf("Documentation: %s\n%s", page.Title, page.URL)
	if strings.TrimSpace(custom) == "" {
		return "Work documented in the knowledge base.\n" + link
	}
	return strings.TrimSpace(custom) + "\n" + link
}

// handleDocumentProject publishes a project tree: the overview page, its
// child pages, then the overview again with links to every child. Existing
// pages with the same titles are reused.
func (d *Dispatcher) handleDocumentProject(ctx context.Context, args json.RawMessage) (interface{}, error) {
	const op = OpDocumentProject
	var a DocumentProjectArgs
	if err := decodeArgs(op, args, &a); err != nil {
		return nil, err
	}
	if a.Docs == nil {
		return nil, apierr.New(apierr.KindInvalidInput, op, "docs is required")
	}
	docs := *a.Docs
	if err := docs.Validate(); err != nil {
		return nil, apierr.Wrap(apierr.KindInvalidInput, op, err)
	}
	a.Space = d.space(a.Space)
	if err := validateSpaceKey(op, a.Space); err != nil {
		return nil, err
	}
	if docs.Overview.GeneratedAt.IsZero() {
		docs.Overview.GeneratedAt = d.now()
	}

	out := &ProjectOutcome{}
	res, err := d.resolver.Resolve(ctx, a.Space, a.ParentTitle)
	switch {
	case err == nil:
		if !res.Root() {
			out.Parent = &res
		}
	case errors.Is(err, apierr.ParentMissing) && a.AllowStandalone:
		out.Warnings = append(out.Warnings, fmt.Sprintf("parent page %q not found; overview created at the space root", a.ParentTitle))
	default:
		return nil, err
	}

	overviewTitle := strings.TrimSpace(docs.Overview.Name)
	overview, created, err := d.resolver.EnsurePage(ctx, a.Space, overviewTitle, res.ParentID, func() (markup.Content, error) {
		return markup.RenderProjectOverview(&docs.Overview)
	})
	if err != nil {
		if overview != nil {
			out.Overview = ProjectPage{Section: "Overview", Page: overview, Created: created}
			return out, err
		}
		return nil, err
	}
	out.Overview = ProjectPage{Section: "Overview", Page: overview, Created: created}

	// Past this point the overview exists, so any failure is partial.
	partial := func(cause error) (interface{}, error) {
		ref := apierr.PageRef{ID: overview.ID, Title: overview.Title, URL: overview.URL}
		return out, apierr.Partial(op, ref, cause)
	}

	links := make([]types.ChildLink, 0, 5)
	for _, s := range markup.ProjectSections(&docs) {
		title := docs.ChildTitle(s.Name)
		page, created, err := d.resolver.EnsurePage(ctx, a.Space, title, overview.ID, s.Render)
		if err != nil {
			return partial(fmt.Errorf("%s: %w", s.Name, err))
		}
		out.Children = append(out.Children, ProjectPage{Section: s.Name, Page: page, Created: created})
		links = append(links, types.ChildLink{Title: s.Name, URL: page.URL})
	}
	if len(links) == 0 {
		return out, nil
	}

	docs.Overview.ChildPages = links
	content, err := markup.RenderProjectOverview(&docs.Overview)
	if err != nil {
		return partial(err)
	}
	updated, err := d.kb.UpdatePage(ctx, overview.ID, overview.Title, string(content))
	if err != nil {
		return partial(fmt.Errorf("link child pages: %w", err))
	}
	out.Overview.Page = updated
	return out, nil
}
