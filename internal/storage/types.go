// Package storage is the local cache of account properties, auth tokens and blog posts.
package storage

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

// NoAccount marks an auth token that is not bound to any account.
const NoAccount = -1

type AccountProperties struct {
	Pk       int    `json:"pk"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type AuthToken struct {
	AccountPk int     `json:"account_pk"`
	Token     *string `json:"token"`
}

// NewAuthToken returns a token for the account with the given token value.
func NewAuthToken(accountPk int, token string) *AuthToken {
	return &AuthToken{AccountPk: accountPk, Token: &token}
}

// Valid reports whether the token identifies a logged in session.
func (t *AuthToken) Valid() bool {
	return t != nil && t.AccountPk != NoAccount && t.Token != nil
}

// Value returns the token string, or "" when the token has been nulled.
func (t *AuthToken) Value() string {
	if t == nil || t.Token == nil {
		return ""
	}
	return *t.Token
}

// Equal compares account and token value.
func (t *AuthToken) Equal(o *AuthToken) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.AccountPk != o.AccountPk {
		return false
	}
	if t.Token == nil || o.Token == nil {
		return t.Token == o.Token
	}
	return *t.Token == *o.Token
}

type BlogPost struct {
	Pk          int       `json:"pk"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Body        string    `json:"body"`
	Image       string    `json:"image"`
	DateUpdated time.Time `json:"date_updated"`
	Username    string    `json:"username"`
}

type AccountPropertiesModel struct {
	db *sql.DB
}

type AuthTokenModel struct {
	db *sql.DB
}

type BlogPostModel struct {
	db *sql.DB
}

// Models groups the cache tables sharing one connection pool.
type Models struct {
	AccountProperties *AccountPropertiesModel
	AuthTokens        *AuthTokenModel
	BlogPosts         *BlogPostModel
}

func NewModels(db *sql.DB) *Models {
	return &Models{
		AccountProperties: NewAccountPropertiesModel(db),
		AuthTokens:        NewAuthTokenModel(db),
		BlogPosts:         NewBlogPostModel(db),
	}
}
