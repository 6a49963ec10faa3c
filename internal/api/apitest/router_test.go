package apitest

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutes(t *testing.T) {
	srv := NewServer(t)
	acc := srv.AddAccount("mitch@example.com", "mitch", "password")
	post := srv.AddPost("Hello", "body", "mitch", time.Now())

	testCases := []struct {
		name       string
		method     string
		path       string
		route      string
		wantStatus int
	}{
		{name: "list", method: http.MethodGet, path: "blog/list", route: "GET /api/blog/list", wantStatus: http.StatusOK},
		{name: "is author", method: http.MethodGet, path: "blog/" + post.Slug + "/is_author", route: "GET /api/blog/:slug/is_author", wantStatus: http.StatusOK},
		{name: "update", method: http.MethodPut, path: "blog/" + post.Slug + "/update", route: "PUT /api/blog/:slug/update", wantStatus: http.StatusBadRequest},
		{name: "delete", method: http.MethodDelete, path: "blog/" + post.Slug + "/delete", route: "DELETE /api/blog/:slug/delete", wantStatus: http.StatusOK},
		{name: "create", method: http.MethodPost, path: "blog/create", route: "POST /api/blog/create", wantStatus: http.StatusBadRequest},
		{name: "properties", method: http.MethodGet, path: "account/properties", route: "GET /api/account/properties", wantStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, srv.BaseURL()+tc.path, strings.NewReader(""))
			require.NoError(t, err)
			req.Header.Set("Authorization", "Token "+acc.Token)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, 1, srv.Hits(tc.route))
		})
	}
}

func TestRoutes_UnknownBlogRoute(t *testing.T) {
	srv := NewServer(t)
	acc := srv.AddAccount("mitch@example.com", "mitch", "password")

	for _, path := range []string{"blog/archive", "blog/hello-1/publish"} {
		req, err := http.NewRequest(http.MethodGet, srv.BaseURL()+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Token "+acc.Token)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	assert.Zero(t, srv.TotalHits())
}

func TestOverride_BlogRoute(t *testing.T) {
	srv := NewServer(t)
	srv.Override("GET /api/blog/list", http.StatusNotFound, `{"detail":"Invalid page."}`)

	resp, err := http.Get(srv.BaseURL() + "blog/list?page=9")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, srv.Hits("GET /api/blog/list"))
}
