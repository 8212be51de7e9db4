package gateway

import (
	"context"
	"fmt"
	"net/http"

	"booking-portal/models"
)

// AuthReply is the platform's answer to a successful login or
// registration.
type AuthReply struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthReply, error) {
	body := map[string]string{"email": email, "password": password}

	var reply AuthReply
	if err := c.doJSON(ctx, "auth.login", http.MethodPost, "/auth/login", "", body, &reply); err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}
	return &reply, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthReply, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	var reply AuthReply
	if err := c.doJSON(ctx, "auth.register", http.MethodPost, "/auth/register", "", body, &reply); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}
	return &reply, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	if err := c.doJSON(ctx, "auth.logout", http.MethodPost, "/auth/logout", token, nil, nil); err != nil {
		return fmt.Errorf("Logout: %w", err)
	}
	return nil
}

func (c *Client) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, "auth.me", http.MethodGet, "/auth/me", token, nil, &user); err != nil {
		return nil, fmt.Errorf("CurrentUser: %w", err)
	}
	return &user, nil
}
