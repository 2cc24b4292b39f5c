// Package service reads the claims of tokens issued by the platform identity service
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/olp/portal/internal/models"
)

// Claims holds the token claims the portal cares about
type Claims struct {
	Subject   string
	Role      models.Role
	ExpiresAt time.Time
}

// Expired reports whether the token expired at the given instant
// A token without an expiry claim never expires
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// TokenInspector decodes access tokens without verifying their signature
// The portal never holds the signing key, the platform verifies tokens on every call
type TokenInspector struct {
	parser *jwt.Parser
}

// NewTokenInspector creates a new token inspector
func NewTokenInspector() *TokenInspector {
	return &TokenInspector{
		parser: jwt.NewParser(),
	}
}

// Inspect decodes the token and extracts subject, role and expiry
func (ti *TokenInspector) Inspect(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token is empty")
	}

	claims := jwt.MapClaims{}
	if _, _, err := ti.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	result := &Claims{}

	subject, err := claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("invalid sub claim: %w", err)
	}
	result.Subject = subject

	expiresAt, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if expiresAt != nil {
		result.ExpiresAt = expiresAt.Time
	}

	// Role claim is optional, refresh tokens do not carry it
	if raw, ok := claims["role"]; ok {
		role, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("role claim is not a string")
		}
		result.Role = models.Role(strings.TrimPrefix(strings.ToUpper(role), "ROLE_"))
	}

	return result, nil
}

// EffectiveRole returns the role claimed by the access token, falling back to the stored role
// when the token cannot be decoded or carries no role
func (ti *TokenInspector) EffectiveRole(accessToken string, stored models.Role) models.Role {
	claims, err := ti.Inspect(accessToken)
	if err != nil || claims.Role == "" || !claims.Role.IsValid() {
		return stored
	}
	return claims.Role
}
