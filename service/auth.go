package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"transpo-cli/model"
)

// Login authenticates against the backend. On success the session
// cookie is kept in the client's jar.
func (c *Client) Login(ctx context.Context, username string, password string) (model.LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.LoginResponse{}, errors.New("username and password are required")
	}
	var res model.LoginResponse
	body := model.LoginRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("/auth/login", nil), body, &res); err != nil {
		return model.LoginResponse{}, err
	}
	return res, nil
}

// Whoami returns the identity bound to the current session cookie.
func (c *Client) Whoami(ctx context.Context) (model.Whoami, error) {
	var me model.Whoami
	if err := c.getJSON(ctx, c.endpoint("/auth/whoami", nil), &me); err != nil {
		return model.Whoami{}, err
	}
	if !me.Authenticated {
		return model.Whoami{}, errors.New("session is not authenticated")
	}
	return me, nil
}
