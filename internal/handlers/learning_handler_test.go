package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/services"
	"github.com/olp/portal/internal/session"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type mockLearningService struct {
	courseID string
	lessonID string
	quizID   string
	answers  models.QuizAnswers
	err      error
}

func (m *mockLearningService) Player(ctx context.Context, sess *session.Session, courseID string) (*services.PlayerView, error) {
	m.courseID = courseID
	if m.err != nil {
		return nil, m.err
	}
	return &services.PlayerView{Course: &models.Course{ID: courseID}, CertificateEligible: true}, nil
}

func (m *mockLearningService) CompleteLesson(ctx context.Context, sess *session.Session, courseID, lessonID string) (*models.Progress, error) {
	m.courseID = courseID
	m.lessonID = lessonID
	if m.err != nil {
		return nil, m.err
	}
	return &models.Progress{CourseID: courseID, CompletedLessonIDs: []string{lessonID}}, nil
}

func (m *mockLearningService) SubmitQuiz(ctx context.Context, sess *session.Session, quizID string, answers models.QuizAnswers) (*models.QuizResult, error) {
	m.quizID = quizID
	m.answers = answers
	if m.err != nil {
		return nil, m.err
	}
	return &models.QuizResult{Score: 1, Passed: true}, nil
}

func TestLearningHandler_Player(t *testing.T) {
	svc := &mockLearningService{}
	h := NewLearningHandler(svc, false, zap.NewNop())

	w := serve(viewsRouter(h, testSession(models.RoleStudent)), http.MethodGet, "/views/learn/c1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", svc.courseID)
	assert.Equal(t, true, decodeBody(t, w)["certificateEligible"])
}

func TestLearningHandler_CompleteLesson(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		role           models.Role
		expectedStatus int
		expectedLesson string
	}{
		{name: "success", target: "/views/learn/lessons/l1/complete?courseId=c1", role: models.RoleStudent, expectedStatus: http.StatusOK, expectedLesson: "l1"},
		{name: "missing course id", target: "/views/learn/lessons/l1/complete", role: models.RoleStudent, expectedStatus: http.StatusBadRequest},
		{name: "not a student", target: "/views/learn/lessons/l1/complete?courseId=c1", role: models.RoleAdmin, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockLearningService{}
			h := NewLearningHandler(svc, false, zap.NewNop())

			w := serve(viewsRouter(h, testSession(tt.role)), http.MethodPost, tt.target, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedLesson, svc.lessonID)
		})
	}
}

func TestLearningHandler_SubmitQuiz(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		err            error
		expectedStatus int
	}{
		{name: "graded", body: `{"q1":"o2"}`, expectedStatus: http.StatusOK},
		{name: "no answers", body: `{}`, err: services.ErrNoAnswers, expectedStatus: http.StatusBadRequest},
		{name: "malformed body", body: `["o2"]`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockLearningService{err: tt.err}
			h := NewLearningHandler(svc, false, zap.NewNop())

			w := serve(viewsRouter(h, testSession(models.RoleStudent)), http.MethodPost, "/views/learn/quizzes/qz1/submit", strings.NewReader(tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "qz1", svc.quizID)
				assert.Equal(t, models.QuizAnswers{"q1": "o2"}, svc.answers)
				assert.Equal(t, true, decodeBody(t, w)["passed"])
			}
		})
	}
}
