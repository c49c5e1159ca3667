package confluence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/atlassian"
	"github.com/scribe-docs/scribe/internal/types"
)

const (
	// DefaultPageSize is the limit requested per listing page.
	DefaultPageSize = 25
	// DefaultMaxPages bounds how many listing pages a single search follows.
	DefaultMaxPages = 20

	contentPath = "/rest/api/content"
	pageExpand  = "body.storage,version,ancestors,space"
	listExpand  = "version,ancestors,space"
)

// Client talks to one knowledge base. It is safe for sequential reuse; all
// state is fixed at construction.
type Client struct {
	rest         *atlassian.Client
	defaultSpace string
	pageSize     int
	maxPages     int
	logger       *slog.Logger
}

// Option tunes a Client.
type Option func(*Client)

// WithPageSize sets the per-request listing limit.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxPages bounds how many listing pages are followed.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a knowledge-base client on top of a REST core.
// defaultSpace is used when an operation does not name a space.
func NewClient(rest *atlassian.Client, defaultSpace string, opts ...Option) *Client {
	c := &Client{
		rest:         rest,
		defaultSpace: defaultSpace,
		pageSize:     DefaultPageSize,
		maxPages:     DefaultMaxPages,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the knowledge-base base URL.
func (c *Client) BaseURL() string { return c.rest.BaseURL() }

// DefaultSpace returns the configured space key.
func (c *Client) DefaultSpace() string { return c.defaultSpace }

func (c *Client) space(key string) string {
	if key = strings.TrimSpace(key); key != "" {
		return key
	}
	return c.defaultSpace
}

// PageURL builds the browser URL of a page: the webui link when the service
// returned one, the viewpage action otherwise.
func (c *Client) PageURL(id, webui string) string {
	if webui != "" {
		return c.rest.BaseURL() + webui
	}
	return c.rest.BaseURL() + "/pages/viewpage.action?pageId=" + url.QueryEscape(id)
}

// TestConnection reads the authenticated user. Success requires a 2xx
// response carrying a recognisable identity.
func (c *Client) TestConnection(ctx context.Context) (*types.Identity, error) {
	const op = "test connection"
	var u currentUser
	if err := c.rest.Get(ctx, op, "/rest/api/user/current", nil, &u); err != nil {
		return nil, err
	}
	if u.AccountID == "" && u.Username == "" && u.Email == "" {
		return nil, apierr.New(apierr.KindRejected, op, "response did not identify a user")
	}
	if u.Type == "anonymous" {
		return nil, apierr.New(apierr.KindAuthFailed, op, "credentials were accepted as anonymous")
	}
	id := &types.Identity{AccountID: u.AccountID, DisplayName: u.DisplayName, Email: u.Email}
	if id.AccountID == "" {
		id.AccountID = u.Username
	}
	return id, nil
}

// VerifySpace checks that a space exists and is visible to the credentials.
func (c *Client) VerifySpace(ctx context.Context, key string) (*types.Space, error) {
	const op = "verify space"
	key = c.space(key)
	if key == "" {
		return nil, apierr.New(apierr.KindInvalidInput, op, "space key is required")
	}
	var s space
	if err := c.rest.Get(ctx, op, "/rest/api/space/"+url.PathEscape(key), nil, &s); err != nil {
		if errors.Is(err, apierr.NotFound) {
			return nil, &apierr.Error{Kind: apierr.KindNotFound, Op: op, Message: fmt.Sprintf("space %q not found", key), Err: err}
		}
		return nil, err
	}
	return c.toSpace(s), nil
}

// CreateSpace creates a space. An existing key is reported as Rejected.
func (c *Client) CreateSpace(ctx context.Context, key, name, description string) (*types.Space, error) {
	const op = "create space"
	if description == "" {
		description = "Space for " + name
	}
	payload := spacePayload{
		Key:  key,
		Name: name,
		Description: spaceDescription{
			Plain: storage{Value: description, Representation: "plain"},
		},
	}
	var s space
	if err := c.rest.Post(ctx, op, "/rest/api/space", payload, &s); err != nil {
		if errors.Is(err, apierr.VersionConflict) {
			return nil, &apierr.Error{Kind: apierr.KindRejected, Op: op, Message: fmt.Sprintf("space %q already exists", key), Err: err}
		}
		return nil, err
	}
	if s.Key == "" {
		s.Key, s.Name = key, name
	}
	return c.toSpace(s), nil
}

func (c *Client) toSpace(s space) *types.Space {
	out := &types.Space{Key: s.Key, Name: s.Name}
	if s.Links.WebUI != "" {
		out.URL = c.rest.BaseURL() + s.Links.WebUI
	}
	return out
}

// GetPage fetches a page by id with its body, version and ancestors.
func (c *Client) GetPage(ctx context.Context, id string) (*types.Page, error) {
	const op = "get page"
	var ct content
	q := url.Values{"expand": {pageExpand}}
	if err := c.rest.Get(ctx, op, contentPath+"/"+url.PathEscape(id), q, &ct); err != nil {
		if errors.Is(err, apierr.NotFound) {
			return nil, &apierr.Error{Kind: apierr.KindNotFound, Op: op, Message: fmt.Sprintf("page %s not found", id), Err: err}
		}
		return nil, err
	}
	return c.toPage(ct), nil
}

// SearchPage finds the unique page with exactly this title in space.
// No match is NotFound; several matches are Ambiguous.
func (c *Client) SearchPage(ctx context.Context, title, spaceKey string) (*types.Page, error) {
	const op = "search page"
	pages, err := c.SearchPages(ctx, title, spaceKey)
	if err != nil {
		return nil, err
	}
	switch len(pages) {
	case 0:
		return nil, apierr.New(apierr.KindNotFound, op, "no page titled %q in space %s", title, c.space(spaceKey))
	case 1:
		return &pages[0], nil
	default:
		ids := make([]string, 0, len(pages))
		for _, p := range pages {
			ids = append(ids, p.ID)
		}
		return nil, apierr.New(apierr.KindAmbiguous, op, "%d pages titled %q in space %s (ids %s)",
			len(pages), title, c.space(spaceKey), strings.Join(ids, ", "))
	}
}

// SearchPages returns every page whose title equals title exactly. The
// CQL title match is not exact, so results are filtered here.
func (c *Client) SearchPages(ctx context.Context, title, spaceKey string) ([]types.Page, error) {
	const op = "search page"
	spaceKey = c.space(spaceKey)
	if strings.TrimSpace(title) == "" {
		return nil, apierr.New(apierr.KindInvalidInput, op, "title is required")
	}
	if spaceKey == "" {
		return nil, apierr.New(apierr.KindInvalidInput, op, "space key is required")
	}

	q := url.Values{
		"cql":    {fmt.Sprintf("type=page AND space=%s AND title=%s", quoteCQL(spaceKey), quoteCQL(title))},
		"expand": {listExpand},
	}
	var matches []types.Page
	seen := 0
	truncated, err := c.list(ctx, op, contentPath+"/search", q, func(ct content) {
		seen++
		if ct.Title == title {
			matches = append(matches, *c.toPage(ct))
		}
	})
	if err != nil {
		return nil, err
	}
	if truncated {
		return nil, c.truncatedError(op, fmt.Sprintf("pages titled %q in space %s (%d exact so far)", title, spaceKey, len(matches)), seen)
	}
	c.logger.Debug("search page", "title", title, "space", spaceKey, "matches", len(matches))
	return matches, nil
}

// ListChildren returns the direct child pages of a page.
func (c *Client) ListChildren(ctx context.Context, id string) ([]types.Page, error) {
	const op = "list children"
	var children []types.Page
	q := url.Values{"expand": {listExpand}}
	truncated, err := c.list(ctx, op, contentPath+"/"+url.PathEscape(id)+"/child/page", q, func(ct content) {
		children = append(children, *c.toPage(ct))
	})
	if err != nil {
		return nil, err
	}
	if truncated {
		return nil, c.truncatedError(op, "children of page "+id, len(children))
	}
	return children, nil
}

// CreatePage creates a page. The parent, if any, is set in the same request
// so the page is never visible at the wrong place. When the created page
// does not report the requested parent the page is returned together with a
// PartialSuccess error.
func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (*types.Page, error) {
	const op = "create page"
	spaceKey := c.space(req.Space)
	if strings.TrimSpace(req.Title) == "" {
		return nil, apierr.New(apierr.KindInvalidInput, op, "title is required")
	}
	if spaceKey == "" {
		return nil, apierr.New(apierr.KindInvalidInput, op, "space key is required")
	}

	payload := pagePayload{
		Type:  "page",
		Title: req.Title,
		Space: &spaceRef{Key: spaceKey},
		Body:  body{Storage: storage{Value: req.Content, Representation: "storage"}},
	}
	if req.ParentID != "" {
		payload.Ancestors = []ancestor{{ID: req.ParentID}}
	}

	var ct content
	if err := c.rest.Post(ctx, op, contentPath, payload, &ct); err != nil {
		if req.ParentID != "" && errors.Is(err, apierr.NotFound) {
			return nil, &apierr.Error{Kind: apierr.KindParentMissing, Op: op, Message: fmt.Sprintf("parent page %s not found", req.ParentID), Err: err}
		}
		return nil, err
	}
	page := c.toPage(ct)
	if page.SpaceKey == "" {
		page.SpaceKey = spaceKey
	}
	c.logger.Debug("created page", "id", page.ID, "title", page.Title, "parent", page.ParentID)

	if req.ParentID != "" && page.ParentID != req.ParentID {
		ref := apierr.PageRef{ID: page.ID, Title: page.Title, URL: page.URL}
		cause := fmt.Errorf("page reports parent %q, requested %q", page.ParentID, req.ParentID)
		return page, apierr.Partial(op, ref, cause)
	}
	return page, nil
}

// UpdatePage replaces a page's title and body. The current version is read
// first and the update sent as version+1; a conflicting concurrent edit is
// retried once against the fresh version before VersionConflict is returned.
func (c *Client) UpdatePage(ctx context.Context, id, title, storageContent string) (*types.Page, error) {
	const op = "update page"
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		current, err := c.GetPage(ctx, id)
		if err != nil {
			return nil, err
		}
		payload := pagePayload{
			ID:      id,
			Type:    "page",
			Title:   title,
			Body:    body{Storage: storage{Value: storageContent, Representation: "storage"}},
			Version: &version{Number: current.Version + 1},
		}
		var ct content
		err = c.rest.Put(ctx, op, contentPath+"/"+url.PathEscape(id), payload, &ct)
		if err == nil {
			page := c.toPage(ct)
			if page.ID == "" {
				page.ID, page.Title, page.URL = id, title, c.PageURL(id, "")
			}
			if page.Version == 0 {
				page.Version = current.Version + 1
			}
			return page, nil
		}
		if !errors.Is(err, apierr.VersionConflict) {
			return nil, err
		}
		c.logger.Debug("version conflict, re-reading page", "id", id, "attempt", attempt+1)
		lastErr = err
	}
	return nil, &apierr.Error{
		Kind:    apierr.KindVersionConflict,
		Op:      op,
		Message: fmt.Sprintf("page %s was modified concurrently", id),
		Err:     lastErr,
	}
}

// list walks a paginated content listing, following _links.next until the
// listing is exhausted or maxPages pages have been read. truncated reports
// that more results remained unread.
func (c *Client) list(ctx context.Context, op, path string, q url.Values, visit func(content)) (truncated bool, err error) {
	q.Set("start", "0")
	q.Set("limit", strconv.Itoa(c.pageSize))
	next := path
	query := q
	for pages := 0; next != ""; pages++ {
		if pages >= c.maxPages {
			c.logger.Warn("listing truncated", "op", op, "pages", pages)
			return true, nil
		}
		var res contentList
		if err := c.rest.Get(ctx, op, next, query, &res); err != nil {
			return false, err
		}
		for _, ct := range res.Results {
			visit(ct)
		}
		if len(res.Results) == 0 {
			return false, nil
		}
		next, query = res.Links.Next, nil
	}
	return false, nil
}

// truncatedError reports a listing cut off at maxPages. The unread part
// may hold further matches, so no single answer is safe.
func (c *Client) truncatedError(op, what string, seen int) error {
	return apierr.New(apierr.KindAmbiguous, op, "%s: listing truncated after %d results (%d pages of %d); more may exist",
		what, seen, c.maxPages, c.pageSize)
}

// quoteCQL renders s as a double-quoted CQL string literal.
func quoteCQL(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
