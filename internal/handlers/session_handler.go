package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	authMiddleware "github.com/olp/portal/internal/auth/middleware"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/services"
	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// SessionService is the interface that wraps methods for portal sign in and sign out
type SessionService interface {
	// Login authenticates against the platform and starts a new session
	//
	// "previous" is the session of the browser, if any, it is discarded.
	//
	// Returns the new session and an error if any.
	Login(ctx context.Context, previous *session.Session, req models.LoginRequest) (*session.Session, error)
	// Register creates a platform account and starts a session for it
	Register(ctx context.Context, previous *session.Session, req models.RegisterRequest) (*session.Session, error)
	// Logout ends the session
	Logout(ctx context.Context, sess *session.Session) error
	// Info describes the signed in user of the session
	Info(sess *session.Session) *services.SessionInfo
}

// SessionHandler handles HTTP requests for portal sessions
type SessionHandler struct {
	BaseHandler
	service SessionService
	store   session.Store
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc SessionService, store session.Store, cookieSecure bool, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: newBaseHandler(logger, cookieSecure),
		service:     svc,
		store:       store,
	}
}

// RegisterRoutes registers all session handler routes
func (h *SessionHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/session", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Group(func(r chi.Router) {
			r.Use(guards.Auth)
			r.Get("/", h.Info)
			r.Post("/logout", h.Logout)
		})
	})
}

// Login handles POST /session/login
// @Summary Sign in
// @Description Authenticate with the platform and start a portal session stored behind an HTTP-only cookie
// @Tags session
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} services.SessionInfo "Signed in"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /session/login [post]
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.service.Login(r.Context(), h.previous(r), req)
	if err != nil {
		h.respondServiceError(w, r, err, "login")
		return
	}

	authMiddleware.SetSessionCookie(w, sess, h.cookieSecure)
	h.RespondJSON(w, http.StatusOK, h.service.Info(sess))
}

// Register handles POST /session/register
// @Summary Create an account
// @Description Register with the platform and start a portal session
// @Tags session
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Account"
// @Success 201 {object} services.SessionInfo "Registered"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /session/register [post]
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.service.Register(r.Context(), h.previous(r), req)
	if err != nil {
		h.respondServiceError(w, r, err, "register")
		return
	}

	authMiddleware.SetSessionCookie(w, sess, h.cookieSecure)
	h.RespondJSON(w, http.StatusCreated, h.service.Info(sess))
}

// Logout handles POST /session/logout
// @Summary Sign out
// @Tags session
// @Success 204 "No Content"
// @Router /session/logout [post]
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), sess); err != nil {
		h.respondServiceError(w, r, err, "logout")
		return
	}

	authMiddleware.ClearSessionCookie(w, h.cookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

// Info handles GET /session
// @Summary Current user
// @Tags session
// @Produce json
// @Success 200 {object} services.SessionInfo "Signed in user"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /session [get]
func (h *SessionHandler) Info(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	h.RespondJSON(w, http.StatusOK, h.service.Info(sess))
}

// previous returns the session the browser already holds, if any
func (h *SessionHandler) previous(r *http.Request) *session.Session {
	sess, err := authMiddleware.LoadSession(r, h.store)
	if err != nil {
		return nil
	}
	return sess
}
