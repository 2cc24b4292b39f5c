package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/olp/portal/internal/services"
	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// CertificateService is the interface that wraps methods for the my courses and certificate screens
type CertificateService interface {
	// MyCourses lists the enrolled courses with the certificates earned
	MyCourses(ctx context.Context, sess *session.Session) (*services.MyCoursesView, error)
	// Certificate retrieves the certificate of a course, or the reason it is not earned yet
	Certificate(ctx context.Context, sess *session.Session, courseID string) (*services.CertificateView, error)
	// CertificateImage renders an earned certificate as PNG
	CertificateImage(ctx context.Context, sess *session.Session, courseID string) ([]byte, error)
}

// CertificateHandler handles HTTP requests for the my courses and certificate screens
type CertificateHandler struct {
	BaseHandler
	service CertificateService
}

// NewCertificateHandler creates a new certificate handler
func NewCertificateHandler(svc CertificateService, cookieSecure bool, logger *zap.Logger) *CertificateHandler {
	return &CertificateHandler{
		BaseHandler: newBaseHandler(logger, cookieSecure),
		service:     svc,
	}
}

// RegisterRoutes registers all certificate handler routes
func (h *CertificateHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Group(func(r chi.Router) {
		r.Use(guards.Auth, guards.Student)
		r.Get("/my-courses", h.MyCourses)
		r.Get("/certificates/{courseId}", h.Certificate)
		r.Get("/certificates/{courseId}/image", h.CertificateImage)
	})
}

// MyCourses handles GET /views/my-courses
// @Summary Enrolled courses
// @Tags certificates
// @Produce json
// @Success 200 {object} services.MyCoursesView "Enrolled and completed courses"
// @Router /views/my-courses [get]
func (h *CertificateHandler) MyCourses(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.service.MyCourses(r.Context(), sess)
	if err != nil {
		h.respondServiceError(w, r, err, "my courses")
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// Certificate handles GET /views/certificates/{courseId}
// @Summary Course certificate
// @Tags certificates
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} services.CertificateView "Certificate or reason"
// @Router /views/certificates/{courseId} [get]
func (h *CertificateHandler) Certificate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.service.Certificate(r.Context(), sess, chi.URLParam(r, "courseId"))
	if err != nil {
		h.respondServiceError(w, r, err, "certificate")
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// CertificateImage handles GET /views/certificates/{courseId}/image
// @Summary Certificate image
// @Tags certificates
// @Produce png
// @Param courseId path string true "Course ID"
// @Success 200 {file} binary "PNG image"
// @Failure 403 {object} map[string]string "Certificate not earned"
// @Router /views/certificates/{courseId}/image [get]
func (h *CertificateHandler) CertificateImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	image, err := h.service.CertificateImage(r.Context(), sess, chi.URLParam(r, "courseId"))
	if err != nil {
		h.respondServiceError(w, r, err, "certificate image")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(image)))
	w.Header().Set("Content-Disposition", `inline; filename="certificate.png"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(image); err != nil {
		h.Logger.Warn("failed to write certificate image", zap.Error(err))
	}
}
