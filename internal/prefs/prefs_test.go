package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Defaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "missing", "prefs.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "", s.PreviousAuthUser())
	assert.Equal(t, FilterDateUpdated, s.BlogFilter())
	assert.Equal(t, OrderDesc, s.BlogOrder())
	assert.Equal(t, "-date_updated", s.FilterAndOrder())
}

func TestStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetPreviousAuthUser("mitch@example.com"))
	require.NoError(t, s.SetBlogFilter(FilterUsername))
	require.NoError(t, s.SetBlogOrder(OrderAsc))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "mitch@example.com", reopened.PreviousAuthUser())
	assert.Equal(t, FilterUsername, reopened.BlogFilter())
	assert.Equal(t, OrderAsc, reopened.BlogOrder())
	assert.Equal(t, "username", reopened.FilterAndOrder())
}

func TestStore_RejectsUnknownValues(t *testing.T) {
	testCases := []struct {
		name string
		set  func(s *Store) error
	}{
		{name: "filter", set: func(s *Store) error { return s.SetBlogFilter("title") }},
		{name: "order", set: func(s *Store) error { return s.SetBlogOrder("+") }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Open(filepath.Join(t.TempDir(), "prefs.yaml"))
			require.NoError(t, err)

			assert.ErrorIs(t, tc.set(s), ErrInvalidPreference)
			assert.Equal(t, "-date_updated", s.FilterAndOrder())
		})
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("blog_filter: [unterminated"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}
