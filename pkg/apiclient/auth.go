package apiclient

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a session token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp struct {
		Token string `json:"token"`
		Data  User   `json:"data"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return nil, err
	}

	c.creds.Set(resp.Token)
	return &resp.Data, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	var resp struct {
		Data User `json:"data"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register",
		body: map[string]string{
			"username": username,
			"email":    email,
			"password": password,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Logout forgets the session token locally.
func (c *Client) Logout() {
	c.creds.Clear()
}
