package userservice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/blogposts/internal/api"
	"github.com/sushihentaime/blogposts/internal/api/apitest"
	"github.com/sushihentaime/blogposts/internal/storage"
)

type mockAccountStore struct {
	InsertOrIgnoreFunc          func(ctx context.Context, a *storage.AccountProperties) (int64, error)
	InsertAndReplaceFunc        func(ctx context.Context, a *storage.AccountProperties) (int64, error)
	SearchByPkFunc              func(ctx context.Context, pk int) (*storage.AccountProperties, error)
	SearchByEmailFunc           func(ctx context.Context, email string) (*storage.AccountProperties, error)
	UpdateAccountPropertiesFunc func(ctx context.Context, pk int, email, username string) error
}

func (m *mockAccountStore) InsertOrIgnore(ctx context.Context, a *storage.AccountProperties) (int64, error) {
	return m.InsertOrIgnoreFunc(ctx, a)
}

func (m *mockAccountStore) InsertAndReplace(ctx context.Context, a *storage.AccountProperties) (int64, error) {
	return m.InsertAndReplaceFunc(ctx, a)
}

func (m *mockAccountStore) SearchByPk(ctx context.Context, pk int) (*storage.AccountProperties, error) {
	return m.SearchByPkFunc(ctx, pk)
}

func (m *mockAccountStore) SearchByEmail(ctx context.Context, email string) (*storage.AccountProperties, error) {
	return m.SearchByEmailFunc(ctx, email)
}

func (m *mockAccountStore) UpdateAccountProperties(ctx context.Context, pk int, email, username string) error {
	return m.UpdateAccountPropertiesFunc(ctx, pk, email, username)
}

type mockTokenStore struct {
	InsertFunc     func(ctx context.Context, t *storage.AuthToken) (int64, error)
	SearchByPkFunc func(ctx context.Context, pk int) (*storage.AuthToken, error)
}

func (m *mockTokenStore) Insert(ctx context.Context, t *storage.AuthToken) (int64, error) {
	return m.InsertFunc(ctx, t)
}

func (m *mockTokenStore) SearchByPk(ctx context.Context, pk int) (*storage.AuthToken, error) {
	return m.SearchByPkFunc(ctx, pk)
}

type memPrefs struct {
	mu    sync.Mutex
	email string
}

func (p *memPrefs) PreviousAuthUser() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.email
}

func (p *memPrefs) SetPreviousAuthUser(email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.email = email
	return nil
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

// okAccountStore accepts every write.
func okAccountStore() *mockAccountStore {
	return &mockAccountStore{
		InsertOrIgnoreFunc: func(ctx context.Context, a *storage.AccountProperties) (int64, error) {
			return int64(a.Pk), nil
		},
		InsertAndReplaceFunc: func(ctx context.Context, a *storage.AccountProperties) (int64, error) {
			return int64(a.Pk), nil
		},
		UpdateAccountPropertiesFunc: func(ctx context.Context, pk int, email, username string) error {
			return nil
		},
	}
}

func okTokenStore() *mockTokenStore {
	return &mockTokenStore{
		InsertFunc: func(ctx context.Context, t *storage.AuthToken) (int64, error) {
			return int64(t.AccountPk), nil
		},
	}
}
