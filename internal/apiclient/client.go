// Package apiclient is the gateway to the learning platform REST API
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/session"
	"github.com/olp/portal/libs/config"
	"github.com/olp/portal/libs/middlewares"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const maxErrorBody = 64 << 10

// Gateway holds what all sessions share: the HTTP transport, the session store and
// the in-flight token refreshes
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	refreshes  singleflight.Group
	logger     *zap.Logger
}

// NewGateway creates a gateway to the platform API
func NewGateway(cfg config.APIConfig, store session.Store, logger *zap.Logger) *Gateway {
	return &Gateway{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		store:      store,
		logger:     logger,
	}
}

// Connect returns a client bound to one session
// A nil session yields an anonymous client, usable for login and registration only
func (g *Gateway) Connect(sess *session.Session) *Client {
	return &Client{gw: g, sess: sess}
}

// Client issues platform calls on behalf of one session
// Each call carries the session access token and a 401 triggers a single refresh and retry
type Client struct {
	gw   *Gateway
	sess *session.Session
}

// Session returns the session the client is bound to
func (c *Client) Session() *session.Session {
	return c.sess
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

func newRequest(method, path string, body any) (*request, error) {
	req := &request{method: method, path: path}
	if body == nil {
		return req, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	req.body = data
	req.contentType = "application/json"
	return req, nil
}

// call encodes body, performs the request and decodes the answer into out
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := newRequest(method, path, body)
	if err != nil {
		return err
	}
	req.query = query
	return c.do(ctx, req, out)
}

// do performs the request, refreshing the token pair once on 401
func (c *Client) do(ctx context.Context, req *request, out any) error {
	resp, err := c.send(ctx, req, c.accessToken())
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.sess != nil {
		drain(resp)

		if err := c.refresh(ctx); err != nil {
			return err
		}

		resp, err = c.send(ctx, req, c.accessToken())
		if err != nil {
			return err
		}
	}
	defer drain(resp)

	if resp.StatusCode >= http.StatusBadRequest {
		return c.apiError(req, resp)
	}
	return decode(resp, out)
}

func (c *Client) accessToken() string {
	if c.sess == nil {
		return ""
	}
	return c.sess.AccessToken
}

func (c *Client) send(ctx context.Context, req *request, token string) (*http.Response, error) {
	target := c.gw.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID := middlewares.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.gw.httpClient.Do(httpReq)
	if err != nil {
		c.gw.logger.Warn("platform call failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err),
		)
		return nil, &TransportError{Method: req.method, Path: req.path, Err: err}
	}

	c.gw.logger.Debug("platform call",
		zap.String("request_id", middlewares.GetRequestID(ctx)),
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

// refresh exchanges the refresh token for a new pair and stores it
// Without a refresh token, or when the exchange fails, the whole session is cleared
func (c *Client) refresh(ctx context.Context) error {
	refreshToken := c.sess.RefreshToken
	if refreshToken == "" {
		c.expire(ctx, "no refresh token")
		return ErrSessionExpired
	}

	// Concurrent 401s of one session share a single exchange
	result, err, _ := c.gw.refreshes.Do(refreshToken, func() (any, error) {
		return c.gw.exchange(ctx, refreshToken)
	})
	if err != nil {
		c.gw.logger.Warn("token refresh failed", zap.String("session_id", c.sess.ID), zap.Error(err))
		c.expire(ctx, "refresh failed")
		return ErrSessionExpired
	}

	c.sess.SetTokens(result.(*models.AuthResponse))
	if err := c.gw.store.Save(ctx, c.sess); err != nil {
		return fmt.Errorf("failed to store refreshed tokens: %w", err)
	}

	c.gw.logger.Info("access token refreshed", zap.String("session_id", c.sess.ID))
	return nil
}

// exchange calls the refresh endpoint with the refresh token as bearer
func (g *Gateway) exchange(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	anonymous := g.Connect(nil)
	resp, err := anonymous.send(ctx, &request{method: http.MethodPost, path: "/auth/refresh"}, refreshToken)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{Status: resp.StatusCode, Message: "refresh rejected"}
	}

	var auth models.AuthResponse
	if err := decode(resp, &auth); err != nil {
		return nil, err
	}
	if auth.AccessToken == "" {
		return nil, errors.New("refresh answer carries no access token")
	}
	return &auth, nil
}

func (c *Client) expire(ctx context.Context, reason string) {
	c.gw.logger.Info("session expired",
		zap.String("session_id", c.sess.ID),
		zap.String("username", c.sess.Username),
		zap.String("reason", reason),
	)

	c.sess.Clear()
	if err := c.gw.store.Delete(ctx, c.sess.ID); err != nil {
		c.gw.logger.Error("failed to delete expired session", zap.String("session_id", c.sess.ID), zap.Error(err))
	}
}

// apiError builds an APIError from a failed answer
func (c *Client) apiError(req *request, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := errorMessage(raw)

	c.gw.logger.Warn("platform call rejected",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.String("message", message),
	)

	if resp.StatusCode >= http.StatusInternalServerError {
		message = serverErrorMessage
	}
	return &APIError{Status: resp.StatusCode, Message: message}
}

// errorMessage extracts the message of a platform error body
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}

// decode reads a successful answer into out
// A *string target receives the raw body, unquoted when the body is a JSON string
func decode(resp *http.Response, out any) error {
	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if target, ok := out.(*string); ok {
		text := strings.TrimSpace(string(raw))
		if unquoted, err := strconv.Unquote(text); err == nil && strings.HasPrefix(text, `"`) {
			text = unquoted
		}
		*target = text
		return nil
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func pageQuery(page models.PageRequest) url.Values {
	query := url.Values{}
	if page.Page > 0 {
		query.Set("page", strconv.Itoa(page.Page))
	}
	if page.Size > 0 {
		query.Set("size", strconv.Itoa(page.Size))
	}
	return query
}
