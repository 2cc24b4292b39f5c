// Package session holds the per-browser portal session and its storage backends
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/olp/portal/internal/models"
)

// ErrNotFound is returned by stores when no live session exists for an id
var ErrNotFound = errors.New("session not found")

// Session is the explicit session context of one browser
// It carries the token pair issued by the platform and the identity it was issued for
type Session struct {
	ID           string      `json:"id"`
	AccessToken  string      `json:"accessToken,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	Username     string      `json:"username,omitempty"`
	Role         models.Role `json:"role,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	ExpiresAt    time.Time   `json:"expiresAt"`
}

// New creates an unauthenticated session living for ttl
func New(ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Authenticated reports whether an access token is present
func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != ""
}

// Expired reports whether the session outlived its expiry at the given instant
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SetTokens stores the token pair and identity of an auth response
// An empty username or role keeps the current value, refresh answers may omit them
func (s *Session) SetTokens(resp *models.AuthResponse) {
	s.AccessToken = resp.AccessToken
	s.RefreshToken = resp.RefreshToken
	if resp.Username != "" {
		s.Username = resp.Username
	}
	if resp.Role != "" {
		s.Role = resp.Role
	}
}

// Clear drops all credentials, leaving an unauthenticated session
func (s *Session) Clear() {
	s.AccessToken = ""
	s.RefreshToken = ""
	s.Username = ""
	s.Role = ""
}

// HasRole reports whether the session role is one of roles
// An empty list allows every authenticated role
func (s *Session) HasRole(roles ...models.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}
	return false
}

// Store persists sessions by id
// Implementations must be safe for concurrent use
type Store interface {
	// Get retrieves a session by id
	// Returns ErrNotFound if the session is missing or expired
	Get(ctx context.Context, id string) (*Session, error)

	// Save creates or replaces the session
	Save(ctx context.Context, sess *Session) error

	// Delete removes the session, a missing session is not an error
	Delete(ctx context.Context, id string) error
}

type contextKey string

const sessionKey contextKey = "session"

// NewContext returns a copy of ctx carrying the session
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext retrieves the session attached by NewContext
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok && sess != nil
}
