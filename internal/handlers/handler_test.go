package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/session"
	"github.com/stretchr/testify/require"
)

// testGuards attaches sess to every request, a nil session is rejected like a signed out browser
func testGuards(sess *session.Session) Guards {
	role := func(roles ...models.Role) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				current, ok := session.FromContext(r.Context())
				if !ok || !current.HasRole(roles...) {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
			})
		}
	}

	return Guards{
		Auth: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !sess.Authenticated() {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
			})
		},
		Student:    role(models.RoleStudent),
		Instructor: role(models.RoleInstructor, models.RoleAdmin),
		Admin:      role(models.RoleAdmin),
	}
}

func testSession(role models.Role) *session.Session {
	sess := session.New(time.Hour)
	sess.AccessToken = "access"
	sess.RefreshToken = "refresh"
	sess.Username = "ann"
	sess.Role = role
	return sess
}

type routeRegistrar interface {
	RegisterRoutes(r chi.Router, guards Guards)
}

func viewsRouter(h routeRegistrar, sess *session.Session) http.Handler {
	r := chi.NewRouter()
	r.Route("/views", func(r chi.Router) {
		h.RegisterRoutes(r, testGuards(sess))
	})
	return r
}

func serve(handler http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func uploadRequest(t *testing.T, target, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
