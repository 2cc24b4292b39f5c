package services

import (
	"context"
	"fmt"

	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// CatalogEntry is a catalog course with the enroll action state of the viewer
type CatalogEntry struct {
	models.Course
	Enrolled  bool `json:"enrolled"`
	CanEnroll bool `json:"canEnroll"`
}

// CatalogView is the course catalog screen
type CatalogView struct {
	Courses       []CatalogEntry `json:"courses"`
	TotalElements int            `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	Number        int            `json:"number"`
}

// CourseDetailView is the course detail screen
type CourseDetailView struct {
	Course      *models.Course `json:"course"`
	Enrolled    bool           `json:"enrolled"`
	CanEnroll   bool           `json:"canEnroll"`
	LessonCount int            `json:"lessonCount"`
	Notice      string         `json:"notice,omitempty"`
}

// CatalogService composes the catalog, course detail and enroll screens
type CatalogService struct {
	connect Connector
	logger  *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(connect Connector, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		connect: connect,
		logger:  logger,
	}
}

// Catalog lists courses, marking for students which ones they can still enroll in
func (s *CatalogService) Catalog(ctx context.Context, sess *session.Session, tag string, page models.PageRequest) (*CatalogView, error) {
	api := s.connect(sess)

	courses, err := api.ListCourses(ctx, tag, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	enrolled, err := s.enrolledSet(ctx, api, sess)
	if err != nil {
		return nil, err
	}

	view := &CatalogView{
		Courses:       make([]CatalogEntry, 0, len(courses.Content)),
		TotalElements: courses.TotalElements,
		TotalPages:    courses.TotalPages,
		Number:        courses.Number,
	}
	for _, course := range courses.Content {
		_, isEnrolled := enrolled[course.ID]
		view.Courses = append(view.Courses, CatalogEntry{
			Course:    course,
			Enrolled:  isEnrolled,
			CanEnroll: course.CanEnroll(sess.Role, isEnrolled),
		})
	}

	return view, nil
}

// CourseDetail retrieves a course with the enroll action state of the viewer
func (s *CatalogService) CourseDetail(ctx context.Context, sess *session.Session, courseID string) (*CourseDetailView, error) {
	api := s.connect(sess)

	course, err := api.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	enrolled, err := s.enrolledSet(ctx, api, sess)
	if err != nil {
		return nil, err
	}
	_, isEnrolled := enrolled[course.ID]

	view := &CourseDetailView{
		Course:      course,
		Enrolled:    isEnrolled,
		CanEnroll:   course.CanEnroll(sess.Role, isEnrolled),
		LessonCount: course.LessonCount(),
	}
	if !course.IsPublished {
		view.Notice = "This course is not yet published and is not available for enrollment."
	}

	return view, nil
}

// Enroll enrolls the student in a course
// The course is read first, an unpublished course is rejected without an enroll call
func (s *CatalogService) Enroll(ctx context.Context, sess *session.Session, courseID string) error {
	api := s.connect(sess)

	course, err := api.GetCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("failed to get course: %w", err)
	}
	if !course.CanEnroll(sess.Role, false) {
		return ErrNotEnrollable
	}

	if err := api.EnrollCourse(ctx, courseID); err != nil {
		return fmt.Errorf("failed to enroll: %w", err)
	}

	s.logger.Info("student enrolled", zap.String("course_id", courseID), zap.String("username", sess.Username))
	return nil
}

// enrolledSet returns the ids of the courses the student is enrolled in
// Every page is read, other roles cannot enroll and no call is made for them
func (s *CatalogService) enrolledSet(ctx context.Context, api PlatformAPI, sess *session.Session) (map[string]struct{}, error) {
	ids := map[string]struct{}{}
	if sess.Role != models.RoleStudent {
		return ids, nil
	}

	enrolled, err := enrolledCourses(ctx, api)
	if err != nil {
		return nil, err
	}
	for _, course := range enrolled {
		ids[course.ID] = struct{}{}
	}
	return ids, nil
}
