package userservice

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/blogposts/internal/api/apitest"
	"github.com/sushihentaime/blogposts/internal/resource"
	"github.com/sushihentaime/blogposts/internal/storage"
)

func newAuthService(t *testing.T, srv *apitest.Server, accounts *mockAccountStore, tokens *mockTokenStore, prefs *memPrefs, online bool) *AuthService {
	t.Helper()
	return NewAuthService(newTestClient(t, srv), accounts, tokens, prefs, staticConnectivity(online), Options{Timeout: 2 * time.Second})
}

func TestAttemptLogin(t *testing.T) {
	srv := apitest.NewServer(t)
	acc := srv.AddAccount("mitch@example.com", "mitch", "password")

	var ignored atomic.Int32
	accounts := okAccountStore()
	accounts.InsertOrIgnoreFunc = func(ctx context.Context, a *storage.AccountProperties) (int64, error) {
		ignored.Add(1)
		assert.Equal(t, &storage.AccountProperties{Pk: acc.Pk, Email: "mitch@example.com"}, a)
		return -1, nil
	}
	prefs := &memPrefs{}

	s := newAuthService(t, srv, accounts, okTokenStore(), prefs, true)
	final := resource.Final(s.AttemptLogin(context.Background(), "mitch@example.com", "password"))

	require.Nil(t, final.Error)
	require.NotNil(t, final.Value())
	assert.True(t, storage.NewAuthToken(acc.Pk, acc.Token).Equal(final.Value().AuthToken))
	assert.Equal(t, int32(1), ignored.Load(), "an existing account row is not an error")
	assert.Equal(t, "mitch@example.com", prefs.PreviousAuthUser())
}

func TestAttemptLogin_Failures(t *testing.T) {
	testCases := []struct {
		name      string
		email     string
		password  string
		online    bool
		tokens    *mockTokenStore
		wantMsg   string
		wantType  resource.ResponseType
		wantCalls int
	}{
		{
			name:      "blank fields never reach the network",
			email:     "mitch@example.com",
			online:    true,
			tokens:    okTokenStore(),
			wantMsg:   errLoginFieldsBlank,
			wantType:  resource.ResponseDialog,
			wantCalls: 0,
		},
		{
			name:      "sentinel body is an error",
			email:     "mitch@example.com",
			password:  "wrong",
			online:    true,
			tokens:    okTokenStore(),
			wantMsg:   "Invalid credentials",
			wantType:  resource.ResponseDialog,
			wantCalls: 1,
		},
		{
			name:      "offline cancels",
			email:     "mitch@example.com",
			password:  "password",
			online:    false,
			tokens:    okTokenStore(),
			wantMsg:   resource.UnableToDoOperationWithoutInternet,
			wantType:  resource.ResponseDialog,
			wantCalls: 0,
		},
		{
			name:     "token write rejected",
			email:    "mitch@example.com",
			password: "password",
			online:   true,
			tokens: &mockTokenStore{
				InsertFunc: func(ctx context.Context, t *storage.AuthToken) (int64, error) {
					return -1, errors.New("foreign key violation")
				},
			},
			wantMsg:   ErrorSaveAuthToken,
			wantType:  resource.ResponseDialog,
			wantCalls: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			srv.AddAccount("mitch@example.com", "mitch", "password")
			prefs := &memPrefs{}

			s := newAuthService(t, srv, okAccountStore(), tc.tokens, prefs, tc.online)
			final := resource.Final(s.AttemptLogin(context.Background(), tc.email, tc.password))

			require.NotNil(t, final.Error)
			assert.Equal(t, resource.Response{Message: tc.wantMsg, Type: tc.wantType}, final.Error.Response)
			assert.Equal(t, tc.wantCalls, srv.Hits("POST /api/account/login"))
			assert.Empty(t, prefs.PreviousAuthUser())
		})
	}
}

func TestAttemptRegistration(t *testing.T) {
	srv := apitest.NewServer(t)

	var replaced *storage.AccountProperties
	accounts := okAccountStore()
	accounts.InsertAndReplaceFunc = func(ctx context.Context, a *storage.AccountProperties) (int64, error) {
		replaced = a
		return int64(a.Pk), nil
	}
	prefs := &memPrefs{}

	s := newAuthService(t, srv, accounts, okTokenStore(), prefs, true)
	final := resource.Final(s.AttemptRegistration(context.Background(), "new@example.com", "newbie", "pw", "pw"))

	require.Nil(t, final.Error)
	require.NotNil(t, final.Value())
	assert.True(t, final.Value().AuthToken.Valid())
	require.NotNil(t, replaced)
	assert.Equal(t, "newbie", replaced.Username)
	assert.Equal(t, "new@example.com", prefs.PreviousAuthUser())
}

func TestAttemptRegistration_Failures(t *testing.T) {
	testCases := []struct {
		name      string
		password2 string
		accounts  func() *mockAccountStore
		seed      bool
		wantMsg   string
		wantCalls int
	}{
		{
			name:      "password mismatch fails before the network",
			password2: "different",
			accounts:  okAccountStore,
			wantMsg:   errPasswordsMustMatch,
			wantCalls: 0,
		},
		{
			name:      "email taken",
			password2: "pw",
			accounts:  okAccountStore,
			seed:      true,
			wantMsg:   "That email is already in use.",
			wantCalls: 1,
		},
		{
			name:      "account write rejected",
			password2: "pw",
			accounts: func() *mockAccountStore {
				m := okAccountStore()
				m.InsertAndReplaceFunc = func(ctx context.Context, a *storage.AccountProperties) (int64, error) {
					return -1, nil
				}
				return m
			},
			wantMsg:   ErrorSaveAccountProperties,
			wantCalls: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			if tc.seed {
				srv.AddAccount("new@example.com", "someone", "pw")
			}

			s := newAuthService(t, srv, tc.accounts(), okTokenStore(), &memPrefs{}, true)
			final := resource.Final(s.AttemptRegistration(context.Background(), "new@example.com", "newbie", "pw", tc.password2))

			require.NotNil(t, final.Error)
			assert.Equal(t, resource.Response{Message: tc.wantMsg, Type: resource.ResponseDialog}, final.Error.Response)
			assert.Equal(t, tc.wantCalls, srv.Hits("POST /api/account/register"))
		})
	}
}

func TestCheckPreviousAuthUser(t *testing.T) {
	found := &storage.AccountProperties{Pk: 7, Email: "mitch@example.com", Username: "mitch"}

	testCases := []struct {
		name      string
		remember  string
		account   func(ctx context.Context, email string) (*storage.AccountProperties, error)
		token     func(ctx context.Context, pk int) (*storage.AuthToken, error)
		wantToken *storage.AuthToken
	}{
		{
			name: "nothing remembered",
		},
		{
			name:     "account missing",
			remember: "mitch@example.com",
			account: func(ctx context.Context, email string) (*storage.AccountProperties, error) {
				return nil, storage.ErrRecordNotFound
			},
		},
		{
			name:     "account lookup fails",
			remember: "mitch@example.com",
			account: func(ctx context.Context, email string) (*storage.AccountProperties, error) {
				return nil, errors.New("connection reset")
			},
		},
		{
			name:     "token nulled by logout",
			remember: "mitch@example.com",
			account: func(ctx context.Context, email string) (*storage.AccountProperties, error) {
				return found, nil
			},
			token: func(ctx context.Context, pk int) (*storage.AuthToken, error) {
				return &storage.AuthToken{AccountPk: pk}, nil
			},
		},
		{
			name:     "token restored",
			remember: "mitch@example.com",
			account: func(ctx context.Context, email string) (*storage.AccountProperties, error) {
				return found, nil
			},
			token: func(ctx context.Context, pk int) (*storage.AuthToken, error) {
				return storage.NewAuthToken(pk, "abc"), nil
			},
			wantToken: storage.NewAuthToken(7, "abc"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			accounts := &mockAccountStore{SearchByEmailFunc: tc.account}
			tokens := &mockTokenStore{SearchByPkFunc: tc.token}

			s := newAuthService(t, srv, accounts, tokens, &memPrefs{email: tc.remember}, true)
			final := resource.Final(s.CheckPreviousAuthUser(context.Background()))

			require.Nil(t, final.Error)
			assert.Zero(t, srv.TotalHits())

			if tc.wantToken != nil {
				require.NotNil(t, final.Value())
				assert.True(t, tc.wantToken.Equal(final.Value().AuthToken))
				return
			}

			assert.Nil(t, final.Value())
			msg, ok := final.Message()
			require.True(t, ok)
			assert.Equal(t, resource.Response{Message: RespCheckPreviousAuthUserDone, Type: resource.ResponseNone}, msg)
		})
	}
}

func TestCheckPreviousAuthUser_Repeatable(t *testing.T) {
	srv := apitest.NewServer(t)
	s := newAuthService(t, srv, &mockAccountStore{}, &mockTokenStore{}, &memPrefs{}, true)

	for i := 0; i < 2; i++ {
		final := resource.Final(s.CheckPreviousAuthUser(context.Background()))
		assert.Nil(t, final.Error)
		assert.Nil(t, final.Value())
	}
}

func TestAuthService_CancelActiveJobs(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SetDelay(time.Second)
	srv.AddAccount("mitch@example.com", "mitch", "password")
	prefs := &memPrefs{}

	s := newAuthService(t, srv, okAccountStore(), okTokenStore(), prefs, true)
	updates := s.AttemptLogin(context.Background(), "mitch@example.com", "password")
	s.CancelActiveJobs()

	final := resource.Final(updates)
	require.NotNil(t, final.Error)
	assert.Equal(t, resource.ResponseNone, final.Error.Response.Type)
	assert.Empty(t, prefs.PreviousAuthUser())
}
