package api

import (
	"context"
	"net/http"

	"github.com/wisdomie/foodlens/internal/model"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResult struct {
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, username, password string) (AuthResult, error) {
	return c.authenticate(ctx, "login", "/auth/login", username, password)
}

func (c *Client) Register(ctx context.Context, username, password string) (AuthResult, error) {
	return c.authenticate(ctx, "register", "/auth/register", username, password)
}

func (c *Client) authenticate(ctx context.Context, op, path, username, password string) (AuthResult, error) {
	var out AuthResult
	if err := c.send(ctx, op, http.MethodPost, path, Credentials{Username: username, Password: password}, &out); err != nil {
		return AuthResult{}, err
	}
	if err := requireField(op, "access_token", out.AccessToken != ""); err != nil {
		return AuthResult{}, err
	}
	if err := requireField(op, "user", out.User != nil); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

func (c *Client) Me(ctx context.Context) (model.User, error) {
	var out struct {
		User *model.User `json:"user"`
	}
	if err := c.get(ctx, "current user", "/auth/me", &out); err != nil {
		return model.User{}, err
	}
	if err := requireField("current user", "user", out.User != nil); err != nil {
		return model.User{}, err
	}
	return *out.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil)
}
