package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/olp/portal/internal/certimage"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/services"
	"github.com/olp/portal/internal/session"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type mockCertificateService struct {
	courseID string
	image    []byte
	err      error
}

func (m *mockCertificateService) MyCourses(ctx context.Context, sess *session.Session) (*services.MyCoursesView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &services.MyCoursesView{
		Courses:   []services.MyCourse{{Course: models.Course{ID: "c1"}}},
		Completed: []services.MyCourse{},
	}, nil
}

func (m *mockCertificateService) Certificate(ctx context.Context, sess *session.Session, courseID string) (*services.CertificateView, error) {
	m.courseID = courseID
	if m.err != nil {
		return nil, m.err
	}
	return &services.CertificateView{Eligible: false, Reason: "Complete every lesson to earn the certificate."}, nil
}

func (m *mockCertificateService) CertificateImage(ctx context.Context, sess *session.Session, courseID string) ([]byte, error) {
	m.courseID = courseID
	return m.image, m.err
}

func TestCertificateHandler_MyCourses(t *testing.T) {
	tests := []struct {
		name           string
		role           models.Role
		expectedStatus int
	}{
		{name: "student", role: models.RoleStudent, expectedStatus: http.StatusOK},
		{name: "instructor", role: models.RoleInstructor, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCertificateHandler(&mockCertificateService{}, false, zap.NewNop())

			w := serve(viewsRouter(h, testSession(tt.role)), http.MethodGet, "/views/my-courses", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestCertificateHandler_Certificate(t *testing.T) {
	svc := &mockCertificateService{}
	h := NewCertificateHandler(svc, false, zap.NewNop())

	w := serve(viewsRouter(h, testSession(models.RoleStudent)), http.MethodGet, "/views/certificates/c9", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c9", svc.courseID)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["eligible"])
	assert.NotEmpty(t, body["reason"])
}

func TestCertificateHandler_CertificateImage(t *testing.T) {
	tests := []struct {
		name           string
		service        *mockCertificateService
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "png",
			service:        &mockCertificateService{image: []byte("\x89PNG\r\n\x1a\n")},
			expectedStatus: http.StatusOK,
			expectedType:   "image/png",
		},
		{
			name:           "not earned",
			service:        &mockCertificateService{err: certimage.ErrNotEligible},
			expectedStatus: http.StatusForbidden,
			expectedType:   "application/json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCertificateHandler(tt.service, false, zap.NewNop())

			w := serve(viewsRouter(h, testSession(models.RoleStudent)), http.MethodGet, "/views/certificates/c1/image", nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedType, w.Header().Get("Content-Type"))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.service.image, w.Body.Bytes())
			}
		})
	}
}
