package apiclient

import (
	"context"
	"net/http"

	"github.com/olp/portal/internal/models"
)

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login", nil, req, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// Register creates an account and returns its token pair
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	if err := c.call(ctx, http.MethodPost, "/auth/register", nil, req, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}
