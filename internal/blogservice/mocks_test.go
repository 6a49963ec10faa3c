package blogservice

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/blogposts/internal/api"
	"github.com/sushihentaime/blogposts/internal/api/apitest"
	"github.com/sushihentaime/blogposts/internal/storage"
)

// memStore is an in-memory BlogStore. Inserts of pks in failPks fail.
type memStore struct {
	mu      sync.Mutex
	rows    map[int]storage.BlogPost
	failPks map[int]bool
	inserts int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[int]storage.BlogPost), failPks: make(map[int]bool)}
}

func (m *memStore) Insert(ctx context.Context, b *storage.BlogPost) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inserts++
	if m.failPks[b.Pk] {
		return -1, errors.New("disk I/O error")
	}
	m.rows[b.Pk] = *b
	return int64(b.Pk), nil
}

func (m *memStore) UpdateBlogPost(ctx context.Context, pk int, title, body, image string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[pk]
	if !ok {
		return storage.ErrRecordNotFound
	}
	row.Title, row.Body, row.Image = title, body, image
	m.rows[pk] = row
	return nil
}

func (m *memStore) DeleteBlogPost(ctx context.Context, pk int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[pk]; !ok {
		return storage.ErrRecordNotFound
	}
	delete(m.rows, pk)
	return nil
}

func (m *memStore) SearchOrdered(ctx context.Context, query, filterAndOrder string, page, pageSize int) ([]storage.BlogPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []storage.BlogPost{}
	for _, row := range m.rows {
		if query == "" || strings.Contains(row.Title, query) || strings.Contains(row.Body, query) || strings.Contains(row.Username, query) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateUpdated.After(out[j].DateUpdated) })

	if page < 1 {
		page = 1
	}
	if limit := page * pageSize; len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) get(pk int) (storage.BlogPost, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[pk]
	return row, ok
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type staticConnectivity bool

func (c staticConnectivity) IsConnectedToTheInternet() bool {
	return bool(c)
}

func newTestClient(t *testing.T, srv *apitest.Server) *api.Client {
	t.Helper()

	c, err := api.NewClient(api.Config{BaseURL: srv.BaseURL(), Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	return c
}

// seedPosts adds n posts by author to the fake API, newest last.
func seedPosts(srv *apitest.Server, n int, author string) []*apitest.Post {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]*apitest.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, srv.AddPost("Post number "+string(rune('a'+i%26)), "body text", author, base.Add(time.Duration(i)*time.Hour)))
	}
	return posts
}
