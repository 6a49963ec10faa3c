package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	form := url.Values{"username": {email}, "password": {password}}
	return call[LoginResponse](ctx, c, formRequest(http.MethodPost, "account/login", "", form))
}

func (c *Client) Register(ctx context.Context, email, username, password, password2 string) (*RegistrationResponse, error) {
	form := url.Values{
		"email":     {email},
		"username":  {username},
		"password":  {password},
		"password2": {password2},
	}
	return call[RegistrationResponse](ctx, c, formRequest(http.MethodPost, "account/register", "", form))
}

func (c *Client) GetAccountProperties(ctx context.Context, token string) (*AccountProperties, error) {
	return call[AccountProperties](ctx, c, request{method: http.MethodGet, path: "account/properties", token: token})
}

func (c *Client) SaveAccountProperties(ctx context.Context, token, email, username string) (*GenericResponse, error) {
	form := url.Values{"email": {email}, "username": {username}}
	return call[GenericResponse](ctx, c, formRequest(http.MethodPut, "account/properties/update", token, form))
}

func (c *Client) UpdatePassword(ctx context.Context, token, currentPassword, newPassword, confirmNewPassword string) (*GenericResponse, error) {
	form := url.Values{
		"old_password":         {currentPassword},
		"new_password":         {newPassword},
		"confirm_new_password": {confirmNewPassword},
	}
	return call[GenericResponse](ctx, c, formRequest(http.MethodPut, "account/change_password/", token, form))
}

func (c *Client) SearchListBlogPosts(ctx context.Context, token, query, ordering string, page int) (*BlogListSearchResponse, error) {
	q := url.Values{
		"search":   {query},
		"ordering": {ordering},
		"page":     {strconv.Itoa(page)},
	}
	return call[BlogListSearchResponse](ctx, c, request{method: http.MethodGet, path: "blog/list", query: q, token: token})
}

func (c *Client) IsAuthorOfBlogPost(ctx context.Context, token, slug string) (*GenericResponse, error) {
	return call[GenericResponse](ctx, c, request{method: http.MethodGet, path: "blog/" + url.PathEscape(slug) + "/is_author", token: token})
}

func (c *Client) DeleteBlogPost(ctx context.Context, token, slug string) (*GenericResponse, error) {
	return call[GenericResponse](ctx, c, request{method: http.MethodDelete, path: "blog/" + url.PathEscape(slug) + "/delete", token: token})
}

func (c *Client) UpdateBlog(ctx context.Context, token, slug, title, body string, image *Image) (*BlogCreateUpdateResponse, error) {
	req, err := multipartRequest(http.MethodPut, "blog/"+url.PathEscape(slug)+"/update", token,
		map[string]string{"title": title, "body": body}, image)
	if err != nil {
		return nil, err
	}
	return call[BlogCreateUpdateResponse](ctx, c, req)
}

func (c *Client) CreateBlog(ctx context.Context, token, title, body string, image *Image) (*BlogCreateUpdateResponse, error) {
	req, err := multipartRequest(http.MethodPost, "blog/create", token,
		map[string]string{"title": title, "body": body}, image)
	if err != nil {
		return nil, err
	}
	return call[BlogCreateUpdateResponse](ctx, c, req)
}
