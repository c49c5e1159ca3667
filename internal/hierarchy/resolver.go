// Package hierarchy locates the parent page a new page nests under, and
// finds or creates the pages of a documentation tree.
//
// The resolver never guesses: a parent title that matches no page is
// ParentMissing and one that matches several is Ambiguous. Whether a
// missing parent should fall back to a root-level page is the caller's
// decision.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/confluence"
	"github.com/scribe-docs/scribe/internal/markup"
	"github.com/scribe-docs/scribe/internal/types"
)

// Pages is the slice of the knowledge-base client the resolver needs.
type Pages interface {
	SearchPage(ctx context.Context, title, space string) (*types.Page, error)
	GetPage(ctx context.Context, id string) (*types.Page, error)
	CreatePage(ctx context.Context, req confluence.CreatePageRequest) (*types.Page, error)
}

// Resolution is the outcome of resolving a parent title. A zero Resolution
// means the page goes at the space root.
type Resolution struct {
	ParentID string      `json:"parent_id,omitempty"`
	Parent   *types.Page `json:"parent,omitempty"`
}

// Root reports whether the resolution places the page at the space root.
func (r Resolution) Root() bool { return r.ParentID == "" }

// Resolver resolves parent pages against one knowledge base.
type Resolver struct {
	pages Pages
}

// New creates a Resolver.
func New(pages Pages) *Resolver {
	return &Resolver{pages: pages}
}

// Resolve finds the page titled parentTitle in space. An empty title
// resolves to the root.
func (r *Resolver) Resolve(ctx context.Context, space, parentTitle string) (Resolution, error) {
	const op = "resolve parent"
	if strings.TrimSpace(parentTitle) == "" {
		return Resolution{}, nil
	}
	parent, err := r.pages.SearchPage(ctx, parentTitle, space)
	switch {
	case err == nil:
		return Resolution{ParentID: parent.ID, Parent: parent}, nil
	case errors.Is(err, apierr.NotFound):
		return Resolution{}, &apierr.Error{
			Kind:    apierr.KindParentMissing,
			Op:      op,
			Message: fmt.Sprintf("parent page %q does not exist", parentTitle),
			Err:     err,
		}
	case errors.Is(err, apierr.Ambiguous):
		return Resolution{}, &apierr.Error{
			Kind:    apierr.KindAmbiguous,
			Op:      op,
			Message: fmt.Sprintf("parent title %q matches more than one page", parentTitle),
			Err:     err,
		}
	default:
		return Resolution{}, err
	}
}

// Confirm re-reads a parent by id right before a page is linked to it, so
// a parent deleted since Resolve is reported as ParentMissing instead of
// producing an orphan. An empty id confirms the root.
func (r *Resolver) Confirm(ctx context.Context, parentID string) (*types.Page, error) {
	if parentID == "" {
		return nil, nil
	}
	p, err := r.pages.GetPage(ctx, parentID)
	if errors.Is(err, apierr.NotFound) {
		return nil, &apierr.Error{
			Kind:    apierr.KindParentMissing,
			Op:      "confirm parent",
			Message: fmt.Sprintf("parent page %s no longer exists", parentID),
			Err:     err,
		}
	}
	return p, err
}

// RenderFunc produces the body of a page that has to be created.
type RenderFunc func() (markup.Content, error)

// EnsurePage returns the page titled title in space, creating it under
// parentID when it does not exist yet. render is only called on create.
// The boolean reports whether the page was created. An existing page with
// that title under a different parent is Ambiguous; titles are unique per
// space, so it can neither be reused nor created again.
func (r *Resolver) EnsurePage(ctx context.Context, space, title, parentID string, render RenderFunc) (*types.Page, bool, error) {
	existing, err := r.pages.SearchPage(ctx, title, space)
	if err == nil {
		if existing.ParentID != parentID {
			return nil, false, apierr.New(apierr.KindAmbiguous, "ensure page",
				"page %q (%s) already exists under %s, not under %s",
				title, existing.ID, describeParent(existing.ParentID), describeParent(parentID))
		}
		return existing, false, nil
	}
	if !errors.Is(err, apierr.NotFound) {
		return nil, false, err
	}

	content, err := render()
	if err != nil {
		return nil, false, err
	}
	if _, err := r.Confirm(ctx, parentID); err != nil {
		return nil, false, err
	}
	page, err := r.pages.CreatePage(ctx, confluence.CreatePageRequest{
		Title:    title,
		Space:    space,
		Content:  string(content),
		ParentID: parentID,
	})
	if err != nil {
		return page, page != nil, err
	}
	return page, true, nil
}

func describeParent(id string) string {
	if id == "" {
		return "the space root"
	}
	return "page " + id
}
