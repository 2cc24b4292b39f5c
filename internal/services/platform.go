package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/olp/portal/internal/apiclient"
	"github.com/olp/portal/internal/editor"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/quizbuilder"
	"github.com/olp/portal/internal/session"
)

// PlatformAPI is the interface that wraps the platform calls the portal screens make
// It is satisfied by *apiclient.Client
type PlatformAPI interface {
	editor.CourseAPI
	quizbuilder.QuizAPI

	// Login exchanges credentials for a token pair
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	// Register creates an account and returns its token pair
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)

	// ListCourses retrieves the course catalog, optionally filtered by tag
	ListCourses(ctx context.Context, tag string, page models.PageRequest) (*models.Page[models.Course], error)
	// DeleteCourse deletes a course with its sections, lessons and enrollments
	DeleteCourse(ctx context.Context, courseID string) error
	// PublishCourse makes a course visible for enrollment
	PublishCourse(ctx context.Context, courseID string) (*models.Course, error)
	// EnrollCourse enrolls the current student
	EnrollCourse(ctx context.Context, courseID string) error
	// EnrolledCourses retrieves the courses of the current student
	EnrolledCourses(ctx context.Context, page models.PageRequest) (*models.Page[models.Course], error)
	// InstructorCourses retrieves the courses of the current instructor
	InstructorCourses(ctx context.Context, page models.PageRequest) (*models.Page[models.Course], error)
	// CourseStudents retrieves the students enrolled in a course
	CourseStudents(ctx context.Context, courseID string, page models.PageRequest) (*models.Page[models.Student], error)

	// GetSectionQuiz retrieves the quiz of a section
	GetSectionQuiz(ctx context.Context, sectionID string) (*models.Quiz, error)
	// SubmitQuiz submits answers for grading
	SubmitQuiz(ctx context.Context, quizID string, answers models.QuizAnswers) (*models.QuizResult, error)
	// QuizStatus retrieves the latest attempt of the current student
	QuizStatus(ctx context.Context, quizID string) (*models.QuizStatus, error)

	// CourseProgress retrieves the lesson completion of the current student
	CourseProgress(ctx context.Context, courseID string) (*models.Progress, error)
	// CompleteLesson marks a lesson completed
	CompleteLesson(ctx context.Context, lessonID string) error

	// CheckCertificate checks eligibility and issues the certificate when eligible
	CheckCertificate(ctx context.Context, courseID string) (*models.Certificate, error)
	// GetCertificate retrieves an issued certificate
	GetCertificate(ctx context.Context, courseID string) (*models.Certificate, error)

	// GetProfile retrieves the profile of the current user
	GetProfile(ctx context.Context) (*models.Profile, error)
	// UpdateProfile updates the non-empty profile fields
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.Profile, error)
	// ChangePassword changes the password of the current user
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error
	// UploadFile stores a file on the platform and returns its URL
	UploadFile(ctx context.Context, filename string, content io.Reader) (string, error)
}

// Connector binds the platform API to one portal session
// A nil session yields an anonymous API, usable for login and registration
type Connector func(sess *session.Session) PlatformAPI

// GatewayConnector adapts a gateway to a Connector
func GatewayConnector(gw *apiclient.Gateway) Connector {
	return func(sess *session.Session) PlatformAPI {
		return gw.Connect(sess)
	}
}

// ErrNotEnrollable is returned when enrolling in a course that does not offer enrollment
var ErrNotEnrollable = errors.New("course is not open for enrollment")

// enrolledCourses pages through every course the student is enrolled in
func enrolledCourses(ctx context.Context, api PlatformAPI) ([]models.Course, error) {
	var courses []models.Course
	for page := 0; ; page++ {
		result, err := api.EnrolledCourses(ctx, models.PageRequest{Page: page})
		if err != nil {
			return nil, fmt.Errorf("failed to get enrolled courses: %w", err)
		}
		courses = append(courses, result.Content...)
		if len(result.Content) == 0 || page+1 >= result.TotalPages {
			return courses, nil
		}
	}
}
