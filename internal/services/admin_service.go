package services

import (
	"context"
	"fmt"

	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// AdminView is the admin panel, courses split by publication state
type AdminView struct {
	Unpublished []models.Course `json:"unpublished"`
	Published   []models.Course `json:"published"`
}

// AdminService composes the admin panel
type AdminService struct {
	connect Connector
	logger  *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(connect Connector, logger *zap.Logger) *AdminService {
	return &AdminService{
		connect: connect,
		logger:  logger,
	}
}

// Courses lists every course, split into unpublished and published ones
func (s *AdminService) Courses(ctx context.Context, sess *session.Session) (*AdminView, error) {
	page, err := s.connect(sess).ListCourses(ctx, "", models.PageRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	view := &AdminView{
		Unpublished: []models.Course{},
		Published:   []models.Course{},
	}
	for _, course := range page.Content {
		if course.IsPublished {
			view.Published = append(view.Published, course)
		} else {
			view.Unpublished = append(view.Unpublished, course)
		}
	}
	return view, nil
}

// Publish publishes any course
func (s *AdminService) Publish(ctx context.Context, sess *session.Session, courseID string) (*models.Course, error) {
	course, err := s.connect(sess).PublishCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to publish course: %w", err)
	}
	s.logger.Info("course published by admin", zap.String("course_id", courseID), zap.String("username", sess.Username))
	return course, nil
}

// Delete deletes any course
func (s *AdminService) Delete(ctx context.Context, sess *session.Session, courseID string) error {
	if err := s.connect(sess).DeleteCourse(ctx, courseID); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	s.logger.Info("course deleted by admin", zap.String("course_id", courseID), zap.String("username", sess.Username))
	return nil
}
