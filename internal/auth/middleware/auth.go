package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie carrying the portal session id
const SessionCookieName = "olp_session"

// AuthMiddleware loads the portal session named by the session cookie and rejects requests
// without an access token
// The loaded session is attached to the request context, retrieve it with GetSession
func AuthMiddleware(store session.Store, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := LoadSession(r, store)
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				logger.Error("failed to load session", zap.Error(err))
				writeJSONError(w, http.StatusInternalServerError, `{"error":"internal server error"}`)
				return
			}

			// No session or a session without tokens is unauthenticated
			if !sess.Authenticated() {
				writeJSONError(w, http.StatusUnauthorized, `{"error":"authentication required","redirect":"/login"}`)
				return
			}

			ctx := session.NewContext(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoadSession reads the session cookie and fetches the session from the store
// Returns session.ErrNotFound when the cookie is missing or the session is gone
func LoadSession(r *http.Request, store session.Store) (*session.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, session.ErrNotFound
	}
	return store.Get(r.Context(), cookie.Value)
}

// GetSession retrieves the session attached by AuthMiddleware
func GetSession(ctx context.Context) (*session.Session, bool) {
	return session.FromContext(ctx)
}

// SetSessionCookie writes the session cookie, expiring together with the session
func SetSessionCookie(w http.ResponseWriter, sess *session.Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSONError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
