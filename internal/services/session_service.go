package services

import (
	"context"
	"fmt"
	"time"

	"github.com/olp/portal/internal/auth/service"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/session"
	"github.com/olp/portal/libs/validation"
	"go.uber.org/zap"
)

// SessionInfo describes the signed in user of a session
type SessionInfo struct {
	Username       string      `json:"username"`
	Role           models.Role `json:"role"`
	TokenExpiresAt *time.Time  `json:"tokenExpiresAt,omitempty"`
	SessionExpires time.Time   `json:"sessionExpiresAt"`
}

// SessionService starts and ends portal sessions
type SessionService struct {
	store     session.Store
	connect   Connector
	inspector *service.TokenInspector
	ttl       time.Duration
	logger    *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(store session.Store, connect Connector, inspector *service.TokenInspector, ttl time.Duration, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:     store,
		connect:   connect,
		inspector: inspector,
		ttl:       ttl,
		logger:    logger,
	}
}

// Login authenticates against the platform and starts a new session
// A previous session of the same browser is discarded, so a session id is never reused
// across sign ins
func (s *SessionService) Login(ctx context.Context, previous *session.Session, req models.LoginRequest) (*session.Session, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	resp, err := s.connect(nil).Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	return s.start(ctx, previous, resp)
}

// Register creates a platform account and starts a session for it
func (s *SessionService) Register(ctx context.Context, previous *session.Session, req models.RegisterRequest) (*session.Session, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	resp, err := s.connect(nil).Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	return s.start(ctx, previous, resp)
}

func (s *SessionService) start(ctx context.Context, previous *session.Session, resp *models.AuthResponse) (*session.Session, error) {
	sess := session.New(s.ttl)
	sess.SetTokens(resp)
	sess.Role = s.inspector.EffectiveRole(sess.AccessToken, sess.Role)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if previous != nil {
		if err := s.store.Delete(ctx, previous.ID); err != nil {
			s.logger.Warn("failed to delete previous session", zap.String("session_id", previous.ID), zap.Error(err))
		}
	}

	s.logger.Info("session started", zap.String("username", sess.Username), zap.String("role", string(sess.Role)))
	return sess, nil
}

// Logout ends the session
func (s *SessionService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Info describes the session user, the access token expiry is read from its claims
func (s *SessionService) Info(sess *session.Session) *SessionInfo {
	info := &SessionInfo{
		Username:       sess.Username,
		Role:           s.inspector.EffectiveRole(sess.AccessToken, sess.Role),
		SessionExpires: sess.ExpiresAt,
	}
	if claims, err := s.inspector.Inspect(sess.AccessToken); err == nil && !claims.ExpiresAt.IsZero() {
		expiresAt := claims.ExpiresAt
		info.TokenExpiresAt = &expiresAt
	}
	return info
}
