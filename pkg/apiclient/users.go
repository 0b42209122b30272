package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

// Users lists every account, newest first. Admin only.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var resp struct {
		Data []User `json:"data"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users"}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// DeleteUser removes an account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/users/delete/" + url.PathEscape(id)}, nil)
}
