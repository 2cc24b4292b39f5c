package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for the profile screen
type ProfileService interface {
	// Get retrieves the profile of the signed in user
	Get(ctx context.Context, sess *session.Session) (*models.Profile, error)
	// Update updates the profile with validation
	Update(ctx context.Context, sess *session.Session, req models.UpdateProfileRequest) (*models.Profile, error)
	// ChangePassword changes the password with validation
	ChangePassword(ctx context.Context, sess *session.Session, req models.ChangePasswordRequest) error
	// UploadPicture uploads an image and sets it as the profile picture
	//
	// "filename" decides the accepted file types by its extension.
	//
	// Returns the updated profile and an error if any.
	UploadPicture(ctx context.Context, sess *session.Session, filename string, content io.Reader) (*models.Profile, error)
}

// ProfileHandler handles HTTP requests for the profile screen
type ProfileHandler struct {
	BaseHandler
	service ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(svc ProfileService, cookieSecure bool, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: newBaseHandler(logger, cookieSecure),
		service:     svc,
	}
}

// RegisterRoutes registers all profile handler routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/profile", func(r chi.Router) {
		r.Use(guards.Auth)
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Put("/password", h.ChangePassword)
		r.Post("/picture", h.UploadPicture)
	})
}

// Get handles GET /views/profile
// @Summary Get profile
// @Tags profile
// @Produce json
// @Success 200 {object} models.Profile "Profile"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /views/profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Get(r.Context(), sess)
	if err != nil {
		h.respondServiceError(w, r, err, "get profile")
		return
	}

	h.RespondJSON(w, http.StatusOK, profile)
}

// Update handles PUT /views/profile
// @Summary Update profile
// @Tags profile
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.Profile "Updated profile"
// @Failure 400 {object} map[string]any "Validation failed"
// @Router /views/profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.Update(r.Context(), sess, req)
	if err != nil {
		h.respondServiceError(w, r, err, "update profile")
		return
	}

	h.RespondJSON(w, http.StatusOK, profile)
}

// ChangePassword handles PUT /views/profile/password
// @Summary Change password
// @Tags profile
// @Accept json
// @Produce json
// @Param request body models.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]string "Password changed"
// @Failure 400 {object} map[string]any "Validation failed"
// @Router /views/profile/password [put]
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), sess, req); err != nil {
		h.respondServiceError(w, r, err, "change password")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully!"})
}

// UploadPicture handles POST /views/profile/picture
// @Summary Upload profile picture
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 200 {object} models.Profile "Updated profile"
// @Failure 400 {object} map[string]string "File missing or unsupported"
// @Router /views/profile/picture [post]
func (h *ProfileHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	file, filename, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	profile, err := h.service.UploadPicture(r.Context(), sess, filename, file)
	if err != nil {
		h.respondServiceError(w, r, err, "upload profile picture")
		return
	}

	h.RespondJSON(w, http.StatusOK, profile)
}
