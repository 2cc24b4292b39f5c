package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/services"
	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// CatalogService is the interface that wraps methods for the catalog and course detail screens
type CatalogService interface {
	// Catalog lists courses with the enroll action state of the viewer
	//
	// "tag" filters the catalog, empty for every course.
	// "page" selects the page, zero values use the platform defaults.
	//
	// Returns the catalog view and an error if any.
	Catalog(ctx context.Context, sess *session.Session, tag string, page models.PageRequest) (*services.CatalogView, error)
	// CourseDetail retrieves a course with the enroll action state of the viewer
	CourseDetail(ctx context.Context, sess *session.Session, courseID string) (*services.CourseDetailView, error)
	// Enroll enrolls the student, unpublished courses are rejected without a platform call
	Enroll(ctx context.Context, sess *session.Session, courseID string) error
}

// CatalogHandler handles HTTP requests for the catalog screens
type CatalogHandler struct {
	BaseHandler
	service CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc CatalogService, cookieSecure bool, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: newBaseHandler(logger, cookieSecure),
		service:     svc,
	}
}

// RegisterRoutes registers all catalog handler routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Group(func(r chi.Router) {
		r.Use(guards.Auth)
		r.Get("/catalog", h.Catalog)
		r.Route("/courses/{id}", func(r chi.Router) {
			r.Get("/", h.CourseDetail)
			r.With(guards.Student).Post("/enroll", h.Enroll)
		})
	})
}

// Catalog handles GET /views/catalog
// @Summary Course catalog
// @Description List courses, marking for students which ones can be enrolled in
// @Tags catalog
// @Produce json
// @Param tag query string false "Tag filter"
// @Param page query int false "Page number (zero based)"
// @Param size query int false "Page size"
// @Success 200 {object} services.CatalogView "Catalog"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /views/catalog [get]
func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.service.Catalog(r.Context(), sess, r.URL.Query().Get("tag"), pageRequest(r))
	if err != nil {
		h.respondServiceError(w, r, err, "catalog")
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// CourseDetail handles GET /views/courses/{id}
// @Summary Course detail
// @Tags catalog
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} services.CourseDetailView "Course"
// @Failure 404 {object} map[string]string "Not found"
// @Router /views/courses/{id} [get]
func (h *CatalogHandler) CourseDetail(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.service.CourseDetail(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "course detail")
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// Enroll handles POST /views/courses/{id}/enroll
// @Summary Enroll in a course
// @Tags catalog
// @Param id path string true "Course ID"
// @Success 200 {object} map[string]string "Enrolled"
// @Failure 403 {object} map[string]string "Not a student"
// @Failure 409 {object} map[string]string "Course not open for enrollment"
// @Router /views/courses/{id}/enroll [post]
func (h *CatalogHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.service.Enroll(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, err, "enroll")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "Enrolled successfully!"})
}

// pageRequest reads the optional page and size query parameters
func pageRequest(r *http.Request) models.PageRequest {
	var page models.PageRequest
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page.Page = p
	}
	if s, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && s > 0 {
		page.Size = s
	}
	return page
}
