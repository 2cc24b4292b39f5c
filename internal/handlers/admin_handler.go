package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/services"
	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps methods for the admin moderation screen
type AdminService interface {
	// Courses lists every course split by publication state
	Courses(ctx context.Context, sess *session.Session) (*services.AdminView, error)
	// Publish publishes a course of any instructor
	Publish(ctx context.Context, sess *session.Session, courseID string) (*models.Course, error)
	// Delete deletes a course of any instructor
	Delete(ctx context.Context, sess *session.Session, courseID string) error
}

// AdminHandler handles HTTP requests for course moderation
type AdminHandler struct {
	BaseHandler
	service AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc AdminService, cookieSecure bool, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: newBaseHandler(logger, cookieSecure),
		service:     svc,
	}
}

// RegisterRoutes registers all admin handler routes
func (h *AdminHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/admin/courses", func(r chi.Router) {
		r.Use(guards.Auth, guards.Admin)
		r.Get("/", h.Courses)
		r.Post("/{id}/publish", h.Publish)
		r.Delete("/{id}", h.Delete)
	})
}

// Courses handles GET /views/admin/courses
// @Summary Course moderation
// @Tags admin
// @Produce json
// @Success 200 {object} services.AdminView "Unpublished and published courses"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /views/admin/courses [get]
func (h *AdminHandler) Courses(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.service.Courses(r.Context(), sess)
	if err != nil {
		h.respondServiceError(w, r, err, "admin courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// Publish handles POST /views/admin/courses/{id}/publish
// @Summary Publish a course
// @Tags admin
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.Course "Published course"
// @Router /views/admin/courses/{id}/publish [post]
func (h *AdminHandler) Publish(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	course, err := h.service.Publish(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "admin publish course")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// Delete handles DELETE /views/admin/courses/{id}
// @Summary Delete a course
// @Tags admin
// @Param id path string true "Course ID"
// @Success 204 "No Content"
// @Router /views/admin/courses/{id} [delete]
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, err, "admin delete course")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
