package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/services"
	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// LearningService is the interface that wraps methods for the learning player
type LearningService interface {
	// Player loads the course, the progress and the section quizzes of the student
	Player(ctx context.Context, sess *session.Session, courseID string) (*services.PlayerView, error)
	// CompleteLesson marks the lesson completed and returns the progress read afterwards
	CompleteLesson(ctx context.Context, sess *session.Session, courseID, lessonID string) (*models.Progress, error)
	// SubmitQuiz submits answers, question ID to option ID, for grading
	SubmitQuiz(ctx context.Context, sess *session.Session, quizID string, answers models.QuizAnswers) (*models.QuizResult, error)
}

// LearningHandler handles HTTP requests for the learning player
type LearningHandler struct {
	BaseHandler
	service LearningService
}

// NewLearningHandler creates a new learning handler
func NewLearningHandler(svc LearningService, cookieSecure bool, logger *zap.Logger) *LearningHandler {
	return &LearningHandler{
		BaseHandler: newBaseHandler(logger, cookieSecure),
		service:     svc,
	}
}

// RegisterRoutes registers all learning handler routes
func (h *LearningHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/learn", func(r chi.Router) {
		r.Use(guards.Auth)
		r.Get("/{courseId}", h.Player)
		r.Group(func(r chi.Router) {
			r.Use(guards.Student)
			r.Post("/lessons/{lessonId}/complete", h.CompleteLesson)
			r.Post("/quizzes/{quizId}/submit", h.SubmitQuiz)
		})
	})
}

// Player handles GET /views/learn/{courseId}
// @Summary Learning player
// @Tags learning
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} services.PlayerView "Player"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /views/learn/{courseId} [get]
func (h *LearningHandler) Player(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.service.Player(r.Context(), sess, chi.URLParam(r, "courseId"))
	if err != nil {
		h.respondServiceError(w, r, err, "learning player")
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// CompleteLesson handles POST /views/learn/lessons/{lessonId}/complete
// @Summary Mark a lesson completed
// @Tags learning
// @Produce json
// @Param lessonId path string true "Lesson ID"
// @Param courseId query string true "Course ID"
// @Success 200 {object} models.Progress "Progress after completion"
// @Failure 400 {object} map[string]string "Missing course ID"
// @Router /views/learn/lessons/{lessonId}/complete [post]
func (h *LearningHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	courseID := r.URL.Query().Get("courseId")
	if courseID == "" {
		h.RespondError(w, http.StatusBadRequest, "courseId is required")
		return
	}

	progress, err := h.service.CompleteLesson(r.Context(), sess, courseID, chi.URLParam(r, "lessonId"))
	if err != nil {
		h.respondServiceError(w, r, err, "complete lesson")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// SubmitQuiz handles POST /views/learn/quizzes/{quizId}/submit
// @Summary Submit quiz answers
// @Tags learning
// @Accept json
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Param request body models.QuizAnswers true "Question ID to option ID"
// @Success 200 {object} models.QuizResult "Graded result"
// @Failure 400 {object} map[string]string "No answers"
// @Router /views/learn/quizzes/{quizId}/submit [post]
func (h *LearningHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var answers models.QuizAnswers
	if !h.decodeJSON(w, r, &answers) {
		return
	}

	result, err := h.service.SubmitQuiz(r.Context(), sess, chi.URLParam(r, "quizId"), answers)
	if err != nil {
		h.respondServiceError(w, r, err, "submit quiz")
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}
