// Package fakekb provides an in-memory knowledge base and issue tracker
// speaking enough of the Confluence and Jira REST APIs for client,
// resolver and dispatcher tests.
//
// The knowledge base is served under /wiki, the tracker at the root, so a
// single server backs both clients:
//
//	srv := fakekb.New()
//	defer srv.Close()
//	kb := srv.ConfluenceURL() // http://127.0.0.1:port/wiki
//	tr := srv.JiraURL()       // http://127.0.0.1:port
package fakekb

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// RecordedRequest stores information about a request made to the server.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Page is a stored knowledge-base page.
type Page struct {
	ID       string
	Space    string
	Title    string
	Body     string
	Version  int
	ParentID string
}

// Issue is a stored tracker issue.
type Issue struct {
	Key      string
	Summary  string
	Status   string
	Type     string
	Priority string
	Assignee string
}

// Server is the fake. All exported methods are safe for concurrent use.
type Server struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	pages    map[string]*Page
	order    []string
	spaces   map[string]string
	issues   map[string]Issue
	comments map[string][]string
	nextID   int

	authHeader string
	failures   map[string][]int // route name -> queued statuses
	retryAfter string

	// DropAncestors makes created pages ignore the requested parent, the
	// way a service does when it silently re-homes a page.
	DropAncestors bool
	// AnonymousUser makes the identity endpoint answer as an anonymous user.
	AnonymousUser bool
}

// Route names accepted by Fail.
const (
	RouteCurrentUser = "current-user"
	RouteGetSpace    = "get-space"
	RouteCreateSpace = "create-space"
	RouteSearch      = "search"
	RouteGetPage     = "get-page"
	RouteChildren    = "children"
	RouteCreatePage  = "create-page"
	RouteUpdatePage  = "update-page"
	RouteMyself      = "myself"
	RouteGetIssue    = "get-issue"
	RouteAddComment  = "add-comment"
)

// New starts a fake with no content.
func New() *Server {
	s := &Server{
		pages:    make(map[string]*Page),
		spaces:   make(map[string]string),
		issues:   make(map[string]Issue),
		comments: make(map[string][]string),
		failures: make(map[string][]int),
		nextID:   1000,
	}

	r := mux.NewRouter()
	r.Use(s.record, s.auth)

	kb := r.PathPrefix("/wiki/rest/api").Subrouter()
	kb.HandleFunc("/user/current", s.failable(RouteCurrentUser, s.currentUser)).Methods(http.MethodGet)
	kb.HandleFunc("/space/{key}", s.failable(RouteGetSpace, s.getSpace)).Methods(http.MethodGet)
	kb.HandleFunc("/space", s.failable(RouteCreateSpace, s.createSpace)).Methods(http.MethodPost)
	kb.HandleFunc("/content/search", s.failable(RouteSearch, s.search)).Methods(http.MethodGet)
	kb.HandleFunc("/content/{id}/child/page", s.failable(RouteChildren, s.children)).Methods(http.MethodGet)
	kb.HandleFunc("/content/{id}", s.failable(RouteGetPage, s.getPage)).Methods(http.MethodGet)
	kb.HandleFunc("/content/{id}", s.failable(RouteUpdatePage, s.updatePage)).Methods(http.MethodPut)
	kb.HandleFunc("/content", s.failable(RouteCreatePage, s.createPage)).Methods(http.MethodPost)

	tr := r.PathPrefix("/rest/api/3").Subrouter()
	tr.HandleFunc("/myself", s.failable(RouteMyself, s.myself)).Methods(http.MethodGet)
	tr.HandleFunc("/issue/{key}", s.failable(RouteGetIssue, s.getIssue)).Methods(http.MethodGet)
	tr.HandleFunc("/issue/{key}/comment", s.failable(RouteAddComment, s.addComment)).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	return s
}

// Close shuts down the server.
func (s *Server) Close() { s.Server.Close() }

// ConfluenceURL is the knowledge-base base URL.
func (s *Server) ConfluenceURL() string { return s.Server.URL + "/wiki" }

// JiraURL is the tracker base URL.
func (s *Server) JiraURL() string { return s.Server.URL }

// RequireAuth rejects requests whose Authorization header differs.
func (s *Server) RequireAuth(header string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authHeader = header
}

// Fail queues statuses returned by the next requests to route, in order.
func (s *Server) Fail(route string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], statuses...)
}

// SetRetryAfter sets the Retry-After header sent with queued 429 failures.
func (s *Server) SetRetryAfter(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retryAfter = v
}

// AddSpace registers a space.
func (s *Server) AddSpace(key, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spaces[key] = name
}

// AddPage stores a page and returns its id.
func (s *Server) AddPage(space, title, parentID, body string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPageLocked(space, title, parentID, body)
}

func (s *Server) addPageLocked(space, title, parentID, body string) string {
	s.nextID++
	id := strconv.Itoa(s.nextID)
	s.pages[id] = &Page{ID: id, Space: space, Title: title, Body: body, Version: 1, ParentID: parentID}
	s.order = append(s.order, id)
	return id
}

// DeletePage removes a page, simulating a concurrent delete.
func (s *Server) DeletePage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, id)
}

// BumpVersion simulates a concurrent edit of a page.
func (s *Server) BumpVersion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pages[id]; ok {
		p.Version++
	}
}

// Page returns a copy of a stored page.
func (s *Server) Page(id string) (Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	if !ok {
		return Page{}, false
	}
	return *p, true
}

// PagesTitled returns copies of every page with this exact title.
func (s *Server) PagesTitled(title string) []Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Page
	for _, id := range s.order {
		if p, ok := s.pages[id]; ok && p.Title == title {
			out = append(out, *p)
		}
	}
	return out
}

// PageCount returns the number of stored pages.
func (s *Server) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// AddIssue stores an issue.
func (s *Server) AddIssue(is Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues[is.Key] = is
}

// Comments returns the plain text of the comments posted to an issue.
func (s *Server) Comments(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.comments[key]...)
}

// Requests returns the recorded requests.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Count returns how many recorded requests match method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// ── middleware ─────────────────────────────────────────────────────────────

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		want := s.authHeader
		s.mu.Unlock()
		if want != "" && r.Header.Get("Authorization") != want {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failable(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var status int
		if q := s.failures[route]; len(q) > 0 {
			status, s.failures[route] = q[0], q[1:]
		}
		retryAfter := s.retryAfter
		s.mu.Unlock()

		if status != 0 {
			if status == http.StatusTooManyRequests && retryAfter != "" {
				w.Header().Set("Retry-After", retryAfter)
			}
			writeJSON(w, status, map[string]interface{}{
				"statusCode": status,
				"message":    fmt.Sprintf("injected %s failure", route),
			})
			return
		}
		h(w, r)
	}
}

// ── knowledge base ─────────────────────────────────────────────────────────

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	if s.AnonymousUser {
		writeJSON(w, http.StatusOK, map[string]string{"type": "anonymous"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"type":        "known",
		"accountId":   "557058:fake",
		"displayName": "Fake User",
		"email":       "fake@example.com",
	})
}

func (s *Server) getSpace(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	s.mu.Lock()
	name, ok := s.spaces[key]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No space with key : " + key})
		return
	}
	writeJSON(w, http.StatusOK, spaceJSON(key, name))
}

func (s *Server) createSpace(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Key == "" || in.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "key and name are required"})
		return
	}
	s.mu.Lock()
	_, exists := s.spaces[in.Key]
	if !exists {
		s.spaces[in.Key] = in.Name
	}
	s.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "A space with key " + in.Key + " already exists"})
		return
	}
	writeJSON(w, http.StatusOK, spaceJSON(in.Key, in.Name))
}

func spaceJSON(key, name string) map[string]interface{} {
	return map[string]interface{}{
		"key":    key,
		"name":   name,
		"_links": map[string]string{"webui": "/spaces/" + key},
	}
}

var (
	cqlSpace = regexp.MustCompile(`space="((?:[^"\\]|\\.)*)"`)
	cqlTitle = regexp.MustCompile(`title="((?:[^"\\]|\\.)*)"`)
)

func unquoteCQL(s string) string {
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(s)
}

// search emulates CQL title matching, which is case-insensitive and
// matches on contained words, so callers must filter for exact titles.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	cql := r.URL.Query().Get("cql")
	var space, title string
	if m := cqlSpace.FindStringSubmatch(cql); m != nil {
		space = unquoteCQL(m[1])
	}
	if m := cqlTitle.FindStringSubmatch(cql); m != nil {
		title = unquoteCQL(m[1])
	}
	if space == "" || title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Could not parse cql : " + cql})
		return
	}

	s.mu.Lock()
	var hits []Page
	for _, id := range s.order {
		p, ok := s.pages[id]
		if ok && p.Space == space && strings.Contains(strings.ToLower(p.Title), strings.ToLower(title)) {
			hits = append(hits, *p)
		}
	}
	s.mu.Unlock()

	s.writeList(w, r, "/rest/api/content/search", hits)
}

func (s *Server) children(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	_, ok := s.pages[id]
	var kids []Page
	for _, cid := range s.order {
		if p, exists := s.pages[cid]; exists && p.ParentID == id {
			kids = append(kids, *p)
		}
	}
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No content found with id : " + id})
		return
	}
	s.writeList(w, r, "/rest/api/content/"+id+"/child/page", kids)
}

// writeList paginates with start/limit and a relative _links.next.
func (s *Server) writeList(w http.ResponseWriter, r *http.Request, path string, all []Page) {
	q := r.URL.Query()
	start, _ := strconv.Atoi(q.Get("start"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 25
	}
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	results := make([]interface{}, 0, end-start)
	s.mu.Lock()
	for _, p := range all[start:end] {
		results = append(results, s.contentJSON(p, false))
	}
	s.mu.Unlock()

	links := map[string]string{"base": s.ConfluenceURL(), "context": "/wiki"}
	if end < len(all) {
		nq := url.Values{}
		for k, v := range q {
			nq[k] = v
		}
		nq.Set("start", strconv.Itoa(end))
		nq.Set("limit", strconv.Itoa(limit))
		links["next"] = path + "?" + nq.Encode()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"start":   start,
		"limit":   limit,
		"size":    len(results),
		"_links":  links,
	})
}

func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No content found with id : " + id})
		return
	}
	writeJSON(w, http.StatusOK, s.contentJSON(*p, true))
}

type pageIn struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Space *struct {
		Key string `json:"key"`
	} `json:"space"`
	Body struct {
		Storage struct {
			Value          string `json:"value"`
			Representation string `json:"representation"`
		} `json:"storage"`
	} `json:"body"`
	Version *struct {
		Number int `json:"number"`
	} `json:"version"`
	Ancestors []struct {
		ID string `json:"id"`
	} `json:"ancestors"`
}

func (s *Server) createPage(w http.ResponseWriter, r *http.Request) {
	var in pageIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" || in.Space == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "title and space are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spaces[in.Space.Key]; !ok && len(s.spaces) > 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No space with key : " + in.Space.Key})
		return
	}
	var parent string
	if len(in.Ancestors) > 0 {
		parent = in.Ancestors[len(in.Ancestors)-1].ID
		if _, ok := s.pages[parent]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "No parent with id : " + parent})
			return
		}
	}
	for _, p := range s.pages {
		if p.Space == in.Space.Key && p.Title == in.Title {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"message": "A page with this title already exists: A page already exists with the title " + in.Title,
			})
			return
		}
	}
	if s.DropAncestors {
		parent = ""
	}
	id := s.addPageLocked(in.Space.Key, in.Title, parent, in.Body.Storage.Value)
	writeJSON(w, http.StatusOK, s.contentJSON(*s.pages[id], true))
}

func (s *Server) updatePage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var in pageIn
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Version == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "version is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No content found with id : " + id})
		return
	}
	if in.Version.Number != p.Version+1 {
		writeJSON(w, http.StatusConflict, map[string]string{
			"message": fmt.Sprintf("Version must be incremented on update. Current version is: %d", p.Version),
		})
		return
	}
	p.Version = in.Version.Number
	p.Title = in.Title
	p.Body = in.Body.Storage.Value
	writeJSON(w, http.StatusOK, s.contentJSON(*p, true))
}

// contentJSON must be called with s.mu held.
func (s *Server) contentJSON(p Page, withBody bool) map[string]interface{} {
	var ancestors []map[string]string
	for id := p.ParentID; id != ""; {
		ancestors = append([]map[string]string{{"id": id}}, ancestors...)
		parent, ok := s.pages[id]
		if !ok {
			break
		}
		id = parent.ParentID
	}
	out := map[string]interface{}{
		"id":        p.ID,
		"type":      "page",
		"status":    "current",
		"title":     p.Title,
		"space":     map[string]string{"key": p.Space},
		"version":   map[string]int{"number": p.Version},
		"ancestors": ancestors,
		"_links": map[string]string{
			"webui": "/spaces/" + p.Space + "/pages/" + p.ID,
		},
	}
	if withBody {
		out["body"] = map[string]interface{}{
			"storage": map[string]string{"value": p.Body, "representation": "storage"},
		}
	}
	return out
}

// ── tracker ────────────────────────────────────────────────────────────────

func (s *Server) myself(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accountId":    "557058:fake",
		"displayName":  "Fake User",
		"emailAddress": "fake@example.com",
		"active":       true,
	})
}

func (s *Server) getIssue(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	s.mu.Lock()
	is, ok := s.issues[key]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"errorMessages": []string{"Issue does not exist or you do not have permission to see it."},
		})
		return
	}
	fields := map[string]interface{}{
		"summary":   is.Summary,
		"status":    map[string]string{"name": is.Status},
		"issuetype": map[string]string{"name": is.Type},
		"updated":   "2025-01-15T10:30:00.000+0000",
	}
	if is.Priority != "" {
		fields["priority"] = map[string]string{"name": is.Priority}
	}
	if is.Assignee != "" {
		fields["assignee"] = map[string]string{"displayName": is.Assignee}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     "10001",
		"key":    is.Key,
		"self":   s.JiraURL() + "/rest/api/3/issue/10001",
		"fields": fields,
	})
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	var in struct {
		Body json.RawMessage `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || len(in.Body) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errorMessages": []string{"Comment body can not be empty!"}})
		return
	}

	s.mu.Lock()
	_, ok := s.issues[key]
	if ok {
		s.comments[key] = append(s.comments[key], adfText(in.Body))
	}
	n := len(s.comments[key])
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"errorMessages": []string{"Issue does not exist or you do not have permission to see it."},
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":   strconv.Itoa(20000 + n),
		"self": s.JiraURL() + "/rest/api/3/issue/" + key + "/comment/" + strconv.Itoa(20000+n),
	})
}

// adfText flattens an ADF document to paragraphs joined by newlines.
func adfText(raw json.RawMessage) string {
	var node struct {
		Type    string            `json:"type"`
		Text    string            `json:"text"`
		Attrs   map[string]string `json:"attrs"`
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return string(raw)
	}
	if node.Type == "text" {
		return node.Text
	}
	parts := make([]string, 0, len(node.Content))
	for _, c := range node.Content {
		parts = append(parts, adfText(c))
	}
	if node.Type == "doc" {
		return strings.Join(parts, "\n")
	}
	return strings.Join(parts, "")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SortedTitles lists the titles of every stored page, sorted.
func (s *Server) SortedTitles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	titles := make([]string, 0, len(s.pages))
	for _, p := range s.pages {
		titles = append(titles, p.Title)
	}
	sort.Strings(titles)
	return titles
}
