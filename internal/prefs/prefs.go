// Package prefs persists small user preferences across runs.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

const (
	keyPreviousAuthUser = "previous_auth_user"
	keyBlogFilter       = "blog_filter"
	keyBlogOrder        = "blog_order"
)

const (
	FilterDateUpdated = "date_updated"
	FilterUsername    = "username"

	OrderDesc = "-"
	OrderAsc  = ""
)

var ErrInvalidPreference = errors.New("invalid preference value")

// Store is a preference file backed by viper. Writes are flushed immediately.
type Store struct {
	mu   sync.RWMutex
	v    *viper.Viper
	path string
}

// Open loads the preference file at path, creating it on first write.
func Open(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(keyPreviousAuthUser, "")
	v.SetDefault(keyBlogFilter, FilterDateUpdated)
	v.SetDefault(keyBlogOrder, OrderDesc)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read preferences: %w", err)
		}
	}

	return &Store{v: v, path: path}, nil
}

func (s *Store) PreviousAuthUser() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetString(keyPreviousAuthUser)
}

func (s *Store) SetPreviousAuthUser(email string) error {
	return s.set(keyPreviousAuthUser, email)
}

func (s *Store) BlogFilter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetString(keyBlogFilter)
}

func (s *Store) SetBlogFilter(filter string) error {
	if filter != FilterDateUpdated && filter != FilterUsername {
		return fmt.Errorf("%w: filter %q", ErrInvalidPreference, filter)
	}
	return s.set(keyBlogFilter, filter)
}

func (s *Store) BlogOrder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetString(keyBlogOrder)
}

func (s *Store) SetBlogOrder(order string) error {
	if order != OrderDesc && order != OrderAsc {
		return fmt.Errorf("%w: order %q", ErrInvalidPreference, order)
	}
	return s.set(keyBlogOrder, order)
}

// FilterAndOrder is the ordering parameter sent to the API and used for
// cached queries, e.g. "-date_updated".
func (s *Store) FilterAndOrder() string {
	return s.BlogOrder() + s.BlogFilter()
}

func (s *Store) set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
