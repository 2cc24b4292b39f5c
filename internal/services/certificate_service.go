package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/olp/portal/internal/apiclient"
	"github.com/olp/portal/internal/certimage"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// MyCourse is an enrolled course with its certificate once earned
type MyCourse struct {
	models.Course
	Certificate *models.Certificate `json:"certificate,omitempty"`
}

// MyCoursesView is the my courses screen
type MyCoursesView struct {
	Courses   []MyCourse `json:"courses"`
	Completed []MyCourse `json:"completed"`
}

// CertificateView is the certificate screen
// An ineligible answer carries the reason instead of the certificate
type CertificateView struct {
	Certificate *models.Certificate `json:"certificate,omitempty"`
	Eligible    bool                `json:"eligible"`
	Reason      string              `json:"reason,omitempty"`
}

// CertificateService composes the my courses and certificate screens
type CertificateService struct {
	connect Connector
	logger  *zap.Logger
}

// NewCertificateService creates a new certificate service
func NewCertificateService(connect Connector, logger *zap.Logger) *CertificateService {
	return &CertificateService{
		connect: connect,
		logger:  logger,
	}
}

// MyCourses lists the enrolled courses and checks each one for a certificate
// Checks run one course at a time, only eligible answers are attached. A failed check
// leaves the course without certificate.
func (s *CertificateService) MyCourses(ctx context.Context, sess *session.Session) (*MyCoursesView, error) {
	api := s.connect(sess)

	enrolled, err := enrolledCourses(ctx, api)
	if err != nil {
		return nil, err
	}

	view := &MyCoursesView{
		Courses:   make([]MyCourse, 0, len(enrolled)),
		Completed: []MyCourse{},
	}
	for _, course := range enrolled {
		entry := MyCourse{Course: course}

		cert, err := api.CheckCertificate(ctx, course.ID)
		switch {
		case err == nil:
			if cert.Eligible {
				entry.Certificate = cert
			}
		case errors.Is(err, apiclient.ErrSessionExpired):
			return nil, fmt.Errorf("failed to check certificate: %w", err)
		default:
			s.logger.Warn("certificate check failed", zap.String("course_id", course.ID), zap.Error(err))
		}

		view.Courses = append(view.Courses, entry)
		if entry.Certificate != nil {
			view.Completed = append(view.Completed, entry)
		}
	}

	return view, nil
}

// Certificate retrieves the certificate of a course
func (s *CertificateService) Certificate(ctx context.Context, sess *session.Session, courseID string) (*CertificateView, error) {
	cert, err := s.connect(sess).GetCertificate(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	if !cert.Eligible {
		reason := cert.Reason
		if reason == "" {
			reason = "Complete all lessons of the course to earn the certificate."
		}
		return &CertificateView{Eligible: false, Reason: reason}, nil
	}

	return &CertificateView{Certificate: cert, Eligible: true}, nil
}

// CertificateImage renders the certificate of a course as PNG
// Returns certimage.ErrNotEligible when the certificate has not been earned
func (s *CertificateService) CertificateImage(ctx context.Context, sess *session.Session, courseID string) ([]byte, error) {
	cert, err := s.connect(sess).GetCertificate(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	image, err := certimage.Render(cert)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("certificate rendered", zap.String("course_id", courseID), zap.Int("bytes", len(image)))
	return image, nil
}
