package services

import (
	"context"
	"fmt"

	"github.com/olp/portal/internal/apiclient"
	"github.com/olp/portal/internal/editor"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/quizbuilder"
	"github.com/olp/portal/internal/session"
	"github.com/olp/portal/libs/validation"
	"go.uber.org/zap"
)

// EditorView is the course editor screen, the draft starts as a copy of the course
type EditorView struct {
	Course *models.Course `json:"course"`
	Draft  *editor.Draft  `json:"draft"`
}

// SaveResult is the outcome of an editor save, with the course as stored afterwards
type SaveResult struct {
	*editor.Result
	Course *models.Course `json:"course"`
}

// StudentsView lists the students of a course
type StudentsView struct {
	CourseID string           `json:"courseId"`
	Students []models.Student `json:"students"`
	Total    int              `json:"total"`
}

// InstructorService composes the instructor dashboard, course editor and quiz builder
type InstructorService struct {
	connect Connector
	applier *editor.Applier
	logger  *zap.Logger
}

// NewInstructorService creates a new instructor service
func NewInstructorService(connect Connector, applier *editor.Applier, logger *zap.Logger) *InstructorService {
	return &InstructorService{
		connect: connect,
		applier: applier,
		logger:  logger,
	}
}

// Dashboard lists the courses of the instructor
func (s *InstructorService) Dashboard(ctx context.Context, sess *session.Session) ([]models.Course, error) {
	courses, err := s.connect(sess).InstructorCourses(ctx, models.PageRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to get instructor courses: %w", err)
	}
	return courses.Content, nil
}

// CreateCourse creates a course from a draft, including the quizzes of its sections
func (s *InstructorService) CreateCourse(ctx context.Context, sess *session.Session, draft *editor.Draft) (*models.Course, error) {
	if err := validation.Struct(draft); err != nil {
		return nil, err
	}

	course, err := s.applier.CreateCourse(ctx, s.connect(sess), draft)
	if err != nil {
		return course, fmt.Errorf("failed to create course: %w", err)
	}
	return course, nil
}

// Students lists the students enrolled in a course
func (s *InstructorService) Students(ctx context.Context, sess *session.Session, courseID string) (*StudentsView, error) {
	page, err := s.connect(sess).CourseStudents(ctx, courseID, models.PageRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to get course students: %w", err)
	}
	return &StudentsView{
		CourseID: courseID,
		Students: page.Content,
		Total:    page.TotalElements,
	}, nil
}

// Editor loads a course into a fresh draft
// Every section is checked for a persisted quiz, one after another
func (s *InstructorService) Editor(ctx context.Context, sess *session.Session, courseID string) (*EditorView, error) {
	api := s.connect(sess)

	course, err := api.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	quizzes := make(map[string]bool, len(course.Sections))
	for _, section := range course.Sections {
		quiz, err := api.GetSectionQuiz(ctx, section.ID)
		if err != nil {
			if lookupFatal(err) {
				return nil, fmt.Errorf("failed to get section quiz: %w", err)
			}
			continue
		}
		quizzes[section.ID] = quiz != nil
	}

	return &EditorView{
		Course: course,
		Draft:  editor.DraftFromCourse(course, quizzes),
	}, nil
}

// Plan computes the calls a save of the draft would make without making them
func (s *InstructorService) Plan(ctx context.Context, sess *session.Session, courseID string, draft *editor.Draft) (*editor.SyncPlan, error) {
	if err := validation.Struct(draft); err != nil {
		return nil, err
	}
	draft.AssignTempIDs()

	original, err := s.connect(sess).GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return editor.Plan(original, draft), nil
}

// Save converges the stored course with the draft
// The stored course is re-read before planning so created sections resolve against the
// current state. Deletions stay limited to the draft base, entities added since the
// editor loaded are left alone.
func (s *InstructorService) Save(ctx context.Context, sess *session.Session, courseID string, draft *editor.Draft) (*SaveResult, error) {
	if err := validation.Struct(draft); err != nil {
		return nil, err
	}
	draft.AssignTempIDs()

	api := s.connect(sess)

	original, err := api.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	plan := editor.Plan(original, draft)
	result, err := s.applier.Apply(ctx, api, plan, sess.Username)
	if err != nil {
		return nil, err
	}

	course, err := api.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("changes saved but course reload failed: %w", err)
	}

	return &SaveResult{Result: result, Course: course}, nil
}

// Publish makes the course visible for enrollment
func (s *InstructorService) Publish(ctx context.Context, sess *session.Session, courseID string) (*models.Course, error) {
	course, err := s.connect(sess).PublishCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to publish course: %w", err)
	}
	s.logger.Info("course published", zap.String("course_id", courseID), zap.String("username", sess.Username))
	return course, nil
}

// Delete deletes the course with its sections, lessons and enrollments
func (s *InstructorService) Delete(ctx context.Context, sess *session.Session, courseID string) error {
	if err := s.connect(sess).DeleteCourse(ctx, courseID); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	s.logger.Info("course deleted", zap.String("course_id", courseID), zap.String("username", sess.Username))
	return nil
}

// QuizBuilder starts the quiz builder of a section
// An existing quiz is loaded for editing, otherwise a blank quiz titled after the section
func (s *InstructorService) QuizBuilder(ctx context.Context, sess *session.Session, sectionID, sectionTitle string) (*quizbuilder.Builder, error) {
	if models.IsTempID(sectionID) {
		return quizbuilder.New(sectionTitle), nil
	}

	quiz, err := s.connect(sess).GetSectionQuiz(ctx, sectionID)
	if err != nil {
		if apiclient.IsNotFound(err) {
			return quizbuilder.New(sectionTitle), nil
		}
		return nil, fmt.Errorf("failed to get section quiz: %w", err)
	}
	if quiz == nil {
		return quizbuilder.New(sectionTitle), nil
	}
	return quizbuilder.FromQuiz(quiz), nil
}

// SaveQuiz submits the builder for a section
// For a section not saved yet the payload is handed back to travel with the draft
func (s *InstructorService) SaveQuiz(ctx context.Context, sess *session.Session, sectionID string, builder *quizbuilder.Builder) (*quizbuilder.Outcome, error) {
	outcome, err := builder.Submit(ctx, s.connect(sess), sectionID)
	if err != nil {
		return nil, err
	}
	if outcome.Quiz != nil {
		s.logger.Info("quiz saved",
			zap.String("section_id", sectionID),
			zap.String("quiz_id", outcome.Quiz.ID),
			zap.Bool("replaced", outcome.Replaced),
		)
	}
	return outcome, nil
}

// DeleteQuiz deletes the persisted quiz of a section
func (s *InstructorService) DeleteQuiz(ctx context.Context, sess *session.Session, sectionID string) error {
	section := &editor.DraftSection{ID: sectionID, HasQuiz: true}
	if _, err := editor.RemoveQuiz(ctx, s.connect(sess), section); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	return nil
}
