package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/olp/portal/internal/models"
)

// GetProfile returns the profile of the current user
func (c *Client) GetProfile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := c.call(ctx, http.MethodGet, "/profile", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile updates the non-empty fields of the request
func (c *Client) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.Profile, error) {
	var profile models.Profile
	if err := c.call(ctx, http.MethodPut, "/profile", nil, req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ChangePassword changes the password of the current user
func (c *Client) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return c.call(ctx, http.MethodPut, "/profile/password", nil, req, nil)
}

// UploadFile forwards a file to the platform storage and returns its public URL
// The body is buffered so the upload can be replayed after a token refresh
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req := &request{
		method:      http.MethodPost,
		path:        "/files/upload",
		body:        buf.Bytes(),
		contentType: writer.FormDataContentType(),
	}

	var fileURL string
	if err := c.do(ctx, req, &fileURL); err != nil {
		return "", err
	}
	return fileURL, nil
}
