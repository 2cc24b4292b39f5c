package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/olp/portal/internal/apiclient"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// ErrNoAnswers is returned when a quiz is submitted without any answer
var ErrNoAnswers = errors.New("no answers given")

// SectionQuiz is the quiz of a section with the attempt state of the student
type SectionQuiz struct {
	Quiz   *models.Quiz       `json:"quiz"`
	Status *models.QuizStatus `json:"status,omitempty"`
	State  models.QuizState   `json:"state"`
}

// SectionState is the completion state of one section
type SectionState struct {
	SectionID string       `json:"sectionId"`
	Completed bool         `json:"completed"`
	Quiz      *SectionQuiz `json:"quiz,omitempty"`
}

// PlayerView is the learning player screen
type PlayerView struct {
	Course              *models.Course   `json:"course"`
	Progress            *models.Progress `json:"progress"`
	Sections            []SectionState   `json:"sections"`
	CurrentLesson       *models.Lesson   `json:"currentLesson,omitempty"`
	CertificateEligible bool             `json:"certificateEligible"`
}

// LearningService composes the learning player screen and its actions
type LearningService struct {
	connect Connector
	logger  *zap.Logger
}

// NewLearningService creates a new learning service
func NewLearningService(connect Connector, logger *zap.Logger) *LearningService {
	return &LearningService{
		connect: connect,
		logger:  logger,
	}
}

// Player loads the course, the student progress and the quiz of every section
// Quiz and status lookups run one after another in section order. A section without a
// quiz or a quiz without an attempt is not an error.
func (s *LearningService) Player(ctx context.Context, sess *session.Session, courseID string) (*PlayerView, error) {
	api := s.connect(sess)

	course, err := api.GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	progress, err := api.CourseProgress(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	view := &PlayerView{
		Course:              course,
		Progress:            progress,
		Sections:            make([]SectionState, 0, len(course.Sections)),
		CurrentLesson:       progress.FirstIncompleteLesson(course),
		CertificateEligible: progress.CertificateEligible(),
	}

	for _, section := range course.Sections {
		state := SectionState{
			SectionID: section.ID,
			Completed: progress.SectionCompleted(section),
		}

		quiz, err := s.sectionQuiz(ctx, api, section.ID)
		if err != nil {
			return nil, err
		}
		state.Quiz = quiz

		view.Sections = append(view.Sections, state)
	}

	return view, nil
}

func (s *LearningService) sectionQuiz(ctx context.Context, api PlatformAPI, sectionID string) (*SectionQuiz, error) {
	quiz, err := api.GetSectionQuiz(ctx, sectionID)
	if err != nil {
		if lookupFatal(err) {
			return nil, fmt.Errorf("failed to get section quiz: %w", err)
		}
		s.logMissing("section quiz", sectionID, err)
		return nil, nil
	}
	if quiz == nil {
		return nil, nil
	}

	result := &SectionQuiz{Quiz: quiz}
	status, err := api.QuizStatus(ctx, quiz.ID)
	if err != nil {
		if lookupFatal(err) {
			return nil, fmt.Errorf("failed to get quiz status: %w", err)
		}
		s.logMissing("quiz status", quiz.ID, err)
		status = nil
	}
	result.Status = status
	result.State = status.State()

	return result, nil
}

func (s *LearningService) logMissing(what, id string, err error) {
	if apiclient.IsNotFound(err) {
		s.logger.Debug(what+" not found", zap.String("id", id))
		return
	}
	s.logger.Warn(what+" lookup failed", zap.String("id", id), zap.Error(err))
}

// lookupFatal reports whether a failed optional lookup must fail the whole screen
func lookupFatal(err error) bool {
	return errors.Is(err, apiclient.ErrSessionExpired)
}

// CompleteLesson marks the lesson completed and returns the progress as read afterwards
func (s *LearningService) CompleteLesson(ctx context.Context, sess *session.Session, courseID, lessonID string) (*models.Progress, error) {
	api := s.connect(sess)

	if err := api.CompleteLesson(ctx, lessonID); err != nil {
		return nil, fmt.Errorf("failed to complete lesson: %w", err)
	}

	progress, err := api.CourseProgress(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	// The lesson counts as completed even if the progress read raced the completion
	progress.MarkCompleted(lessonID)

	return progress, nil
}

// SubmitQuiz submits the answers of the student for grading
func (s *LearningService) SubmitQuiz(ctx context.Context, sess *session.Session, quizID string, answers models.QuizAnswers) (*models.QuizResult, error) {
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}

	result, err := s.connect(sess).SubmitQuiz(ctx, quizID, answers)
	if err != nil {
		return nil, fmt.Errorf("failed to submit quiz: %w", err)
	}

	s.logger.Info("quiz submitted",
		zap.String("quiz_id", quizID),
		zap.Int("score", result.Score),
		zap.Bool("passed", result.Passed),
	)
	return result, nil
}
