package services

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/olp/portal/internal/apiclient"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/session"
)

// mockPlatform is a mock implementation of PlatformAPI recording every call
type mockPlatform struct {
	calls []string
	// errs makes the named method fail
	errs map[string]error

	auth         *models.AuthResponse
	course       *models.Course
	courses      *models.Page[models.Course]
	enrolled     *models.Page[models.Course]
	students     *models.Page[models.Student]
	progress     *models.Progress
	quizzes      map[string]*models.Quiz       // by section id
	statuses     map[string]*models.QuizStatus // by quiz id
	certificates map[string]*models.Certificate
	quizResult   *models.QuizResult
	profile      *models.Profile
	uploadURL    string
	uploaded     string
	created      *models.Course

	// enrolledPages replaces enrolled, indexed by page number
	enrolledPages []*models.Page[models.Course]
}

func newMockPlatform() *mockPlatform {
	return &mockPlatform{
		errs:         map[string]error{},
		quizzes:      map[string]*models.Quiz{},
		statuses:     map[string]*models.QuizStatus{},
		certificates: map[string]*models.Certificate{},
	}
}

// connector returns a Connector handing out the mock and remembering the bound session
func (m *mockPlatform) connector(bound **session.Session) Connector {
	return func(sess *session.Session) PlatformAPI {
		if bound != nil {
			*bound = sess
		}
		return m
	}
}

func (m *mockPlatform) record(call, arg string) error {
	if arg != "" {
		m.calls = append(m.calls, call+" "+arg)
	} else {
		m.calls = append(m.calls, call)
	}
	return m.errs[call]
}

func notFound() error {
	return &apiclient.APIError{Status: http.StatusNotFound, Message: "not found"}
}

func (m *mockPlatform) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := m.record("login", req.Username); err != nil {
		return nil, err
	}
	return m.auth, nil
}

func (m *mockPlatform) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if err := m.record("register", req.Username); err != nil {
		return nil, err
	}
	return m.auth, nil
}

func (m *mockPlatform) ListCourses(ctx context.Context, tag string, page models.PageRequest) (*models.Page[models.Course], error) {
	if err := m.record("list_courses", tag); err != nil {
		return nil, err
	}
	return m.courses, nil
}

func (m *mockPlatform) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	if err := m.record("get_course", courseID); err != nil {
		return nil, err
	}
	return m.course, nil
}

func (m *mockPlatform) CreateCourse(ctx context.Context, req models.CourseRequest) (*models.Course, error) {
	if err := m.record("create_course", req.Title); err != nil {
		return nil, err
	}
	return m.created, nil
}

func (m *mockPlatform) UpdateCourse(ctx context.Context, courseID string, req models.CourseRequest) (*models.Course, error) {
	return m.course, m.record("update_course", courseID)
}

func (m *mockPlatform) DeleteCourse(ctx context.Context, courseID string) error {
	return m.record("delete_course", courseID)
}

func (m *mockPlatform) PublishCourse(ctx context.Context, courseID string) (*models.Course, error) {
	if err := m.record("publish_course", courseID); err != nil {
		return nil, err
	}
	published := *m.course
	published.IsPublished = true
	return &published, nil
}

func (m *mockPlatform) EnrollCourse(ctx context.Context, courseID string) error {
	return m.record("enroll", courseID)
}

func (m *mockPlatform) EnrolledCourses(ctx context.Context, page models.PageRequest) (*models.Page[models.Course], error) {
	if len(m.enrolledPages) > 0 {
		if err := m.record("enrolled_courses", strconv.Itoa(page.Page)); err != nil {
			return nil, err
		}
		return m.enrolledPages[page.Page], nil
	}
	if err := m.record("enrolled_courses", ""); err != nil {
		return nil, err
	}
	return m.enrolled, nil
}

func (m *mockPlatform) InstructorCourses(ctx context.Context, page models.PageRequest) (*models.Page[models.Course], error) {
	if err := m.record("instructor_courses", ""); err != nil {
		return nil, err
	}
	return m.courses, nil
}

func (m *mockPlatform) CourseStudents(ctx context.Context, courseID string, page models.PageRequest) (*models.Page[models.Student], error) {
	if err := m.record("course_students", courseID); err != nil {
		return nil, err
	}
	return m.students, nil
}

func (m *mockPlatform) CreateSection(ctx context.Context, courseID string, req models.SectionRequest) (*models.Course, error) {
	return m.course, m.record("create_section", req.Title)
}

func (m *mockPlatform) UpdateSection(ctx context.Context, courseID, sectionID string, req models.SectionRequest) (*models.Course, error) {
	return m.course, m.record("update_section", sectionID)
}

func (m *mockPlatform) DeleteSection(ctx context.Context, courseID, sectionID string) (*models.Course, error) {
	return m.course, m.record("delete_section", sectionID)
}

func (m *mockPlatform) CreateLesson(ctx context.Context, courseID string, req models.LessonRequest) (*models.Course, error) {
	return m.course, m.record("create_lesson", req.Title)
}

func (m *mockPlatform) UpdateLesson(ctx context.Context, courseID, lessonID string, req models.LessonRequest) (*models.Course, error) {
	return m.course, m.record("update_lesson", lessonID)
}

func (m *mockPlatform) DeleteLesson(ctx context.Context, courseID, lessonID string) (*models.Course, error) {
	return m.course, m.record("delete_lesson", lessonID)
}

func (m *mockPlatform) CreateQuiz(ctx context.Context, sectionID string, payload *models.QuizPayload) (*models.Quiz, error) {
	if err := m.record("create_quiz", sectionID); err != nil {
		return nil, err
	}
	return &models.Quiz{ID: "Q-" + sectionID, Title: payload.Title}, nil
}

func (m *mockPlatform) GetSectionQuiz(ctx context.Context, sectionID string) (*models.Quiz, error) {
	if err := m.record("get_quiz", sectionID); err != nil {
		return nil, err
	}
	quiz, ok := m.quizzes[sectionID]
	if !ok {
		return nil, notFound()
	}
	return quiz, nil
}

func (m *mockPlatform) DeleteSectionQuiz(ctx context.Context, sectionID string) error {
	return m.record("delete_quiz", sectionID)
}

func (m *mockPlatform) SubmitQuiz(ctx context.Context, quizID string, answers models.QuizAnswers) (*models.QuizResult, error) {
	if err := m.record("submit_quiz", quizID); err != nil {
		return nil, err
	}
	return m.quizResult, nil
}

func (m *mockPlatform) QuizStatus(ctx context.Context, quizID string) (*models.QuizStatus, error) {
	if err := m.record("quiz_status", quizID); err != nil {
		return nil, err
	}
	status, ok := m.statuses[quizID]
	if !ok {
		return nil, notFound()
	}
	return status, nil
}

func (m *mockPlatform) CourseProgress(ctx context.Context, courseID string) (*models.Progress, error) {
	if err := m.record("progress", courseID); err != nil {
		return nil, err
	}
	copied := *m.progress
	copied.CompletedLessonIDs = append([]string(nil), m.progress.CompletedLessonIDs...)
	return &copied, nil
}

func (m *mockPlatform) CompleteLesson(ctx context.Context, lessonID string) error {
	return m.record("complete_lesson", lessonID)
}

func (m *mockPlatform) CheckCertificate(ctx context.Context, courseID string) (*models.Certificate, error) {
	if err := m.record("check_certificate", courseID); err != nil {
		return nil, err
	}
	cert, ok := m.certificates[courseID]
	if !ok {
		return &models.Certificate{Eligible: false, Reason: "Course not completed"}, nil
	}
	return cert, nil
}

func (m *mockPlatform) GetCertificate(ctx context.Context, courseID string) (*models.Certificate, error) {
	if err := m.record("get_certificate", courseID); err != nil {
		return nil, err
	}
	cert, ok := m.certificates[courseID]
	if !ok {
		return &models.Certificate{Eligible: false}, nil
	}
	return cert, nil
}

func (m *mockPlatform) GetProfile(ctx context.Context) (*models.Profile, error) {
	if err := m.record("get_profile", ""); err != nil {
		return nil, err
	}
	return m.profile, nil
}

func (m *mockPlatform) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.Profile, error) {
	if err := m.record("update_profile", req.ProfilePicture); err != nil {
		return nil, err
	}
	updated := *m.profile
	if req.ProfilePicture != "" {
		updated.ProfilePicture = req.ProfilePicture
	}
	if req.FirstName != "" {
		updated.FirstName = req.FirstName
	}
	return &updated, nil
}

func (m *mockPlatform) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return m.record("change_password", "")
}

func (m *mockPlatform) UploadFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := m.record("upload", filename); err != nil {
		return "", err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	m.uploaded = string(data)
	return m.uploadURL, nil
}
