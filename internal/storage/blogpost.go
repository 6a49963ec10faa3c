package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Blog list ordering keys understood by the remote API and by SearchOrdered.
const (
	OrderByAscDateUpdated  = "date_updated"
	OrderByDescDateUpdated = "-date_updated"
	OrderByAscUsername     = "username"
	OrderByDescUsername    = "-username"
)

var orderClauses = map[string]string{
	OrderByAscDateUpdated:  "date_updated ASC",
	OrderByDescDateUpdated: "date_updated DESC",
	OrderByAscUsername:     "username ASC",
	OrderByDescUsername:    "username DESC",
}

func NewBlogPostModel(db *sql.DB) *BlogPostModel {
	return &BlogPostModel{db: db}
}

// Insert upserts the post by pk. It returns the pk, or -1 if the write failed.
func (m *BlogPostModel) Insert(ctx context.Context, b *BlogPost) (int64, error) {
	query := `
		INSERT INTO blog_post (pk, title, slug, body, image, date_updated, username)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pk) DO UPDATE
		SET title = EXCLUDED.title, slug = EXCLUDED.slug, body = EXCLUDED.body,
			image = EXCLUDED.image, date_updated = EXCLUDED.date_updated, username = EXCLUDED.username
		RETURNING pk`

	var pk int64
	err := m.db.QueryRowContext(ctx, query, b.Pk, b.Title, b.Slug, b.Body, b.Image, b.DateUpdated, b.Username).Scan(&pk)
	if err != nil {
		return -1, err
	}

	return pk, nil
}

func (m *BlogPostModel) UpdateBlogPost(ctx context.Context, pk int, title, body, image string) error {
	query := `
		UPDATE blog_post
		SET title = $1, body = $2, image = $3
		WHERE pk = $4`

	res, err := m.db.ExecContext(ctx, query, title, body, image, pk)
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

func (m *BlogPostModel) DeleteBlogPost(ctx context.Context, pk int) error {
	query := `
		DELETE FROM blog_post
		WHERE pk = $1`

	res, err := m.db.ExecContext(ctx, query, pk)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (m *BlogPostModel) SearchBySlug(ctx context.Context, slug string) (*BlogPost, error) {
	query := `
		SELECT pk, title, slug, body, image, date_updated, username
		FROM blog_post
		WHERE slug = $1`

	var b BlogPost
	err := m.db.QueryRowContext(ctx, query, slug).Scan(&b.Pk, &b.Title, &b.Slug, &b.Body, &b.Image, &b.DateUpdated, &b.Username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &b, nil
}

// SearchOrdered returns every cached post matching query in title, body or author,
// sorted by filterAndOrder and capped at page*pageSize rows so that the result always
// holds all pages loaded so far.
func (m *BlogPostModel) SearchOrdered(ctx context.Context, query, filterAndOrder string, page, pageSize int) ([]BlogPost, error) {
	order, ok := orderClauses[filterAndOrder]
	if !ok {
		order = orderClauses[OrderByDescDateUpdated]
	}
	if page < 1 {
		page = 1
	}

	stmt := fmt.Sprintf(`
		SELECT pk, title, slug, body, image, date_updated, username
		FROM blog_post
		WHERE title ILIKE $1 OR body ILIKE $1 OR username ILIKE $1
		ORDER BY %s
		LIMIT $2`, order)

	rows, err := m.db.QueryContext(ctx, stmt, "%"+query+"%", page*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []BlogPost{}
	for rows.Next() {
		var b BlogPost
		err := rows.Scan(&b.Pk, &b.Title, &b.Slug, &b.Body, &b.Image, &b.DateUpdated, &b.Username)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}
