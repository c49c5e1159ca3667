// Package confluence provides the knowledge-base client: connectivity and
// space checks, page search, create, update and child listing over the
// Confluence REST API.
package confluence

import (
	"github.com/scribe-docs/scribe/internal/types"
)

// content is a page as returned by /rest/api/content.
type content struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Status    string     `json:"status,omitempty"`
	Title     string     `json:"title"`
	Space     *spaceRef  `json:"space,omitempty"`
	Version   *version   `json:"version,omitempty"`
	Body      *body      `json:"body,omitempty"`
	Ancestors []ancestor `json:"ancestors,omitempty"`
	Links     links      `json:"_links"`
}

type spaceRef struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

type version struct {
	Number int `json:"number"`
}

type body struct {
	Storage storage `json:"storage"`
}

type storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

type ancestor struct {
	ID string `json:"id"`
}

type links struct {
	WebUI string `json:"webui,omitempty"`
	Base  string `json:"base,omitempty"`
	Next  string `json:"next,omitempty"`
}

// contentList is one page of a paginated listing.
type contentList struct {
	Results []content `json:"results"`
	Start   int       `json:"start"`
	Limit   int       `json:"limit"`
	Size    int       `json:"size"`
	Links   links     `json:"_links"`
}

// space is a space as returned by /rest/api/space.
type space struct {
	ID    int64  `json:"id,omitempty"`
	Key   string `json:"key"`
	Name  string `json:"name"`
	Links links  `json:"_links"`
}

// currentUser is the identity payload of /rest/api/user/current.
type currentUser struct {
	Type        string `json:"type"`
	AccountID   string `json:"accountId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// pagePayload is the body of create and update requests.
type pagePayload struct {
	ID        string     `json:"id,omitempty"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Space     *spaceRef  `json:"space,omitempty"`
	Body      body       `json:"body"`
	Version   *version   `json:"version,omitempty"`
	Ancestors []ancestor `json:"ancestors,omitempty"`
}

// spacePayload is the body of a create-space request.
type spacePayload struct {
	Key         string           `json:"key"`
	Name        string           `json:"name"`
	Description spaceDescription `json:"description"`
}

type spaceDescription struct {
	Plain storage `json:"plain"`
}

// CreatePageRequest describes a page to create. ParentID, when set, must
// already have been confirmed to exist.
type CreatePageRequest struct {
	Title    string
	Space    string
	Content  string
	ParentID string
}

// toPage converts the wire representation, resolving the page URL.
func (c *Client) toPage(ct content) *types.Page {
	p := &types.Page{
		ID:    ct.ID,
		Title: ct.Title,
		URL:   c.PageURL(ct.ID, ct.Links.WebUI),
	}
	if ct.Space != nil {
		p.SpaceKey = ct.Space.Key
	}
	if ct.Version != nil {
		p.Version = ct.Version.Number
	}
	if n := len(ct.Ancestors); n > 0 {
		p.ParentID = ct.Ancestors[n-1].ID
	}
	if ct.Body != nil {
		p.Body = ct.Body.Storage.Value
	}
	return p
}
