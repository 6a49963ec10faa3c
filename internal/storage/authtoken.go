package storage

import (
	"context"
	"database/sql"
	"errors"
)

func NewAuthTokenModel(db *sql.DB) *AuthTokenModel {
	return &AuthTokenModel{db: db}
}

// Insert writes the token, replacing any token already stored for the account.
// It returns the account pk, or -1 if the write failed.
func (m *AuthTokenModel) Insert(ctx context.Context, t *AuthToken) (int64, error) {
	query := `
		INSERT INTO auth_token (account_pk, token)
		VALUES ($1, $2)
		ON CONFLICT (account_pk) DO UPDATE
		SET token = EXCLUDED.token
		RETURNING account_pk`

	var pk int64
	err := m.db.QueryRowContext(ctx, query, t.AccountPk, t.Token).Scan(&pk)
	if err != nil {
		return -1, err
	}

	return pk, nil
}

// NullifyToken clears the token column but keeps the row.
func (m *AuthTokenModel) NullifyToken(ctx context.Context, pk int) (int64, error) {
	query := `
		UPDATE auth_token
		SET token = NULL
		WHERE account_pk = $1`

	res, err := m.db.ExecContext(ctx, query, pk)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (m *AuthTokenModel) SearchByPk(ctx context.Context, pk int) (*AuthToken, error) {
	query := `
		SELECT account_pk, token
		FROM auth_token
		WHERE account_pk = $1`

	var (
		t     AuthToken
		token sql.NullString
	)
	err := m.db.QueryRowContext(ctx, query, pk).Scan(&t.AccountPk, &token)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	if token.Valid {
		t.Token = &token.String
	}

	return &t, nil
}
