package middleware

import (
	"net/http"

	"github.com/olp/portal/internal/auth/service"
	"github.com/olp/portal/internal/models"
)

// RoleMiddleware checks that the session role is one of the allowed roles
// It must run after AuthMiddleware. The role claimed by the access token takes precedence
// over the stored one, so a stale session cannot keep a revoked role
func RoleMiddleware(inspector *service.TokenInspector, allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSession(r.Context())
			if !ok || !sess.Authenticated() {
				writeJSONError(w, http.StatusUnauthorized, `{"error":"authentication required","redirect":"/login"}`)
				return
			}

			role := inspector.EffectiveRole(sess.AccessToken, sess.Role)
			if len(allowed) > 0 && !contains(allowed, role) {
				writeJSONError(w, http.StatusForbidden, `{"error":"insufficient permissions"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func contains(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
