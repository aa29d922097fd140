package fleetapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Login exchanges credentials for an API token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, errors.New("fleet api: email and password are required")
	}
	var out LoginResult
	err := c.do(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   "/login",
		body: struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}{Email: email, Password: password},
		schema: schemaLogin,
	}, &out)
	return out, err
}

// Me returns the user the client's token belongs to.
func (c *Client) Me(ctx context.Context) (CurrentUser, error) {
	var out CurrentUser
	err := c.do(ctx, request{
		op:     "me",
		method: http.MethodGet,
		path:   "/me",
		schema: schemaMe,
	}, &out)
	return out, err
}
