// Package apitest provides an in-memory fake of the remote blog API for tests.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

const (
	PageSize = 10

	PermissionToEdit   = "You have permission to edit that."
	MembershipRequired = "You must become a member on Codingwithmitch.com to access the API. Visit https://codingwithmitch.com/enroll/"
)

type Account struct {
	Pk       int
	Email    string
	Username string
	Password string
	Token    string
}

type Post struct {
	Pk          int
	Title       string
	Slug        string
	Body        string
	Image       string
	DateUpdated time.Time
	Username    string
}

type override struct {
	status int
	body   string
}

// Server is a fake of the remote API. Zero or more accounts and posts can be
// seeded before use; all handlers are safe for concurrent requests.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	accounts   map[string]*Account
	posts      map[string]*Post
	nextPk     int
	hits       map[string]int
	overrides  map[string]override
	delay      time.Duration
	membership bool
}

func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		accounts:  make(map[string]*Account),
		posts:     make(map[string]*Post),
		nextPk:    1,
		hits:      make(map[string]int),
		overrides: make(map[string]override),
	}

	s.Server = httptest.NewServer(s.routes())
	s.Server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(s.Close)

	return s
}

// BaseURL is the root the client should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + "/api/"
}

func (s *Server) AddAccount(email, username, password string) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := &Account{Pk: s.nextPk, Email: email, Username: username, Password: password, Token: uuid.NewString()}
	s.nextPk++
	s.accounts[email] = a
	return a
}

func (s *Server) AddPost(title, body, username string, updated time.Time) *Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &Post{
		Pk:          s.nextPk,
		Title:       title,
		Slug:        fmt.Sprintf("%s-%d", slugify(title), s.nextPk),
		Body:        body,
		DateUpdated: updated,
		Username:    username,
	}
	s.nextPk++
	s.posts[p.Slug] = p
	return p
}

func (s *Server) Post(slug string) (Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[slug]
	if !ok {
		return Post{}, false
	}
	return *p, true
}

// Override makes the route answer with a fixed status and raw body.
// The route is named as registered, e.g. "POST /api/account/login".
func (s *Server) Override(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[route] = override{status: status, body: body}
}

// SetDelay holds every response for d before answering.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// RequireMembership makes create and update answer with the membership notice.
func (s *Server) RequireMembership(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.membership = on
}

// Hits returns how many requests reached the route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits returns the number of requests served on every route.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, h := range s.hits {
		n += h
	}
	return n
}

func (s *Server) accountByToken(r *http.Request) *Account {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
	if !ok || token == "" {
		return nil
	}

	for _, a := range s.accounts {
		if a.Token == token {
			return a
		}
	}
	return nil
}

func (s *Server) sortedPosts(search, ordering string) []*Post {
	var out []*Post
	search = strings.ToLower(search)
	for _, p := range s.posts {
		if search == "" ||
			strings.Contains(strings.ToLower(p.Title), search) ||
			strings.Contains(strings.ToLower(p.Body), search) ||
			strings.Contains(strings.ToLower(p.Username), search) {
			out = append(out, p)
		}
	}

	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if desc {
			a, b = b, a
		}
		if field == "username" && a.Username != b.Username {
			return a.Username < b.Username
		}
		if !a.DateUpdated.Equal(b.DateUpdated) {
			return a.DateUpdated.Before(b.DateUpdated)
		}
		return a.Pk < b.Pk
	})

	return out
}

func slugify(title string) string {
	fields := strings.Fields(strings.ToLower(title))
	return strings.Join(fields, "-")
}
