package types

// Page is a knowledge-base page as scribe sees it. Pages are referenced,
// never owned: the remote service is the source of truth.
type Page struct {
	ID       string `json:"page_id"`
	Title    string `json:"title"`
	SpaceKey string `json:"space_key,omitempty"`
	Version  int    `json:"version,omitempty"`
	URL      string `json:"url,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
	Body     string `json:"body,omitempty"`
}

// Space is a knowledge-base space.
type Space struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Identity is the account a set of credentials authenticates as.
type Identity struct {
	AccountID   string `json:"account_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Name returns the most readable identifier available.
func (i Identity) Name() string {
	switch {
	case i.DisplayName != "":
		return i.DisplayName
	case i.Email != "":
		return i.Email
	default:
		return i.AccountID
	}
}
