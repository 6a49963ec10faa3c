package api

import (
	"strings"
	"time"
)

// Response bodies of the remote blog API.

type LoginResponse struct {
	Response     string `json:"response"`
	ErrorMessage string `json:"error_message"`
	Token        string `json:"token"`
	Pk           int    `json:"pk"`
	Email        string `json:"email"`
}

type RegistrationResponse struct {
	Response     string `json:"response"`
	ErrorMessage string `json:"error_message"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	Pk           int    `json:"pk"`
	Token        string `json:"token"`
}

type AccountProperties struct {
	Pk       int    `json:"pk"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type GenericResponse struct {
	Response string `json:"response"`
}

type BlogSearchResponse struct {
	Pk          int         `json:"pk"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Body        string      `json:"body"`
	Image       string      `json:"image"`
	DateUpdated DateUpdated `json:"date_updated"`
	Username    string      `json:"username"`
}

type BlogListSearchResponse struct {
	Results []BlogSearchResponse `json:"results"`
	Detail  string               `json:"detail"`
}

type BlogCreateUpdateResponse struct {
	Response    string      `json:"response"`
	Pk          int         `json:"pk"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Body        string      `json:"body"`
	Image       string      `json:"image"`
	DateUpdated DateUpdated `json:"date_updated"`
	Username    string      `json:"username"`
}

// Image is an optional file part of a blog create or update request.
type Image struct {
	Filename string
	Data     []byte
}

// DateUpdated is the server's textual timestamp.
type DateUpdated string

// Time parses the timestamp. The server sends RFC 3339; older payloads
// only carry a yyyy-mm-dd date, in which case midnight UTC is returned.
func (d DateUpdated) Time() (time.Time, error) {
	s := strings.TrimSpace(string(d))

	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}

	if len(s) >= len(time.DateOnly) {
		if t, derr := time.Parse(time.DateOnly, s[:len(time.DateOnly)]); derr == nil {
			return t, nil
		}
	}

	return time.Time{}, err
}
