package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTokenInsert(t *testing.T) {
	m, mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO auth_token (account_pk, token)`)).
		WithArgs(7, "abc").
		WillReturnRows(sqlmock.NewRows([]string{"account_pk"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO auth_token`)).
		WithArgs(8, "def").
		WillReturnError(errors.New("foreign key violation"))

	got, err := m.AuthTokens.Insert(context.Background(), NewAuthToken(7, "abc"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	got, err = m.AuthTokens.Insert(context.Background(), NewAuthToken(8, "def"))
	assert.Error(t, err)
	assert.Equal(t, int64(-1), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthTokenNullify(t *testing.T) {
	m, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`SET token = NULL`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := m.AuthTokens.NullifyToken(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthTokenSearchByPk(t *testing.T) {
	testCases := []struct {
		name    string
		rows    *sqlmock.Rows
		want    *AuthToken
		wantErr error
	}{
		{
			name: "token present",
			rows: sqlmock.NewRows([]string{"account_pk", "token"}).AddRow(7, "abc"),
			want: NewAuthToken(7, "abc"),
		},
		{
			name: "token nulled",
			rows: sqlmock.NewRows([]string{"account_pk", "token"}).AddRow(7, nil),
			want: &AuthToken{AccountPk: 7},
		},
		{
			name:    "no row",
			rows:    sqlmock.NewRows([]string{"account_pk", "token"}),
			wantErr: ErrRecordNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, mock := setupMock(t)
			mock.ExpectQuery(regexp.QuoteMeta(`FROM auth_token`)).WithArgs(7).WillReturnRows(tc.rows)

			got, err := m.AuthTokens.SearchByPk(context.Background(), 7)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got))
		})
	}
}

func TestAuthTokenValid(t *testing.T) {
	testCases := []struct {
		name  string
		token *AuthToken
		valid bool
	}{
		{name: "nil", token: nil, valid: false},
		{name: "no account", token: NewAuthToken(NoAccount, "abc"), valid: false},
		{name: "nulled token", token: &AuthToken{AccountPk: 7}, valid: false},
		{name: "valid", token: NewAuthToken(7, "abc"), valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, tc.token.Valid())
		})
	}
}

func TestAuthTokenEqual(t *testing.T) {
	assert.True(t, NewAuthToken(1, "a").Equal(NewAuthToken(1, "a")))
	assert.False(t, NewAuthToken(1, "a").Equal(NewAuthToken(1, "b")))
	assert.False(t, NewAuthToken(1, "a").Equal(NewAuthToken(2, "a")))
	assert.False(t, NewAuthToken(1, "a").Equal(&AuthToken{AccountPk: 1}))
	assert.True(t, (&AuthToken{AccountPk: 1}).Equal(&AuthToken{AccountPk: 1}))

	var none *AuthToken
	assert.True(t, none.Equal(nil))
	assert.False(t, none.Equal(NewAuthToken(1, "a")))
	assert.Equal(t, "", none.Value())
}
