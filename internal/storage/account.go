package storage

import (
	"context"
	"database/sql"
	"errors"
)

func NewAccountPropertiesModel(db *sql.DB) *AccountPropertiesModel {
	return &AccountPropertiesModel{db: db}
}

// InsertOrIgnore inserts the account unless a row with the same pk exists.
// It returns the pk when a row was written and -1 when the insert was ignored or failed.
func (m *AccountPropertiesModel) InsertOrIgnore(ctx context.Context, a *AccountProperties) (int64, error) {
	query := `
		INSERT INTO account_properties (pk, email, username)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING pk`

	var pk int64
	err := m.db.QueryRowContext(ctx, query, a.Pk, a.Email, a.Username).Scan(&pk)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return -1, nil
		default:
			return -1, err
		}
	}

	return pk, nil
}

// InsertAndReplace writes the account, overwriting email and username of an existing row.
// A different row cached under the same email is removed first so the unique email
// constraint cannot reject the write.
func (m *AccountPropertiesModel) InsertAndReplace(ctx context.Context, a *AccountProperties) (int64, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return -1, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM account_properties
		WHERE email = $1 AND pk <> $2`, a.Email, a.Pk)
	if err != nil {
		return -1, err
	}

	query := `
		INSERT INTO account_properties (pk, email, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (pk) DO UPDATE
		SET email = EXCLUDED.email, username = EXCLUDED.username
		RETURNING pk`

	var pk int64
	err = tx.QueryRowContext(ctx, query, a.Pk, a.Email, a.Username).Scan(&pk)
	if err != nil {
		return -1, err
	}

	if err := tx.Commit(); err != nil {
		return -1, err
	}

	return pk, nil
}

func (m *AccountPropertiesModel) SearchByPk(ctx context.Context, pk int) (*AccountProperties, error) {
	query := `
		SELECT pk, email, username
		FROM account_properties
		WHERE pk = $1`

	return m.scanOne(ctx, query, pk)
}

func (m *AccountPropertiesModel) SearchByEmail(ctx context.Context, email string) (*AccountProperties, error) {
	query := `
		SELECT pk, email, username
		FROM account_properties
		WHERE email = $1`

	return m.scanOne(ctx, query, email)
}

func (m *AccountPropertiesModel) UpdateAccountProperties(ctx context.Context, pk int, email, username string) error {
	query := `
		UPDATE account_properties
		SET email = $1, username = $2
		WHERE pk = $3`

	res, err := m.db.ExecContext(ctx, query, email, username, pk)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *AccountPropertiesModel) scanOne(ctx context.Context, query string, arg any) (*AccountProperties, error) {
	var a AccountProperties
	err := m.db.QueryRowContext(ctx, query, arg).Scan(&a.Pk, &a.Email, &a.Username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &a, nil
}
