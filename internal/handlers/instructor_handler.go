package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/olp/portal/internal/editor"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/internal/quizbuilder"
	"github.com/olp/portal/internal/services"
	"github.com/olp/portal/internal/session"
	"go.uber.org/zap"
)

// InstructorService is the interface that wraps methods for the instructor screens
type InstructorService interface {
	// Dashboard lists the courses of the instructor
	Dashboard(ctx context.Context, sess *session.Session) ([]models.Course, error)
	// CreateCourse creates a course from a draft, including its sections, lessons and quizzes
	CreateCourse(ctx context.Context, sess *session.Session, draft *editor.Draft) (*models.Course, error)
	// Students lists the students enrolled in a course
	Students(ctx context.Context, sess *session.Session, courseID string) (*services.StudentsView, error)
	// Editor loads a course and the starting draft of an edit session
	Editor(ctx context.Context, sess *session.Session, courseID string) (*services.EditorView, error)
	// Plan computes the steps a save of the draft would run, without running them
	Plan(ctx context.Context, sess *session.Session, courseID string, draft *editor.Draft) (*editor.SyncPlan, error)
	// Save converges the persisted course with the draft
	//
	// A failed step stops the run, the returned error is an *editor.ApplyError telling how
	// many steps were applied before it.
	Save(ctx context.Context, sess *session.Session, courseID string, draft *editor.Draft) (*services.SaveResult, error)
	// Publish publishes a course
	Publish(ctx context.Context, sess *session.Session, courseID string) (*models.Course, error)
	// Delete deletes a course
	Delete(ctx context.Context, sess *session.Session, courseID string) error
	// QuizBuilder starts the quiz builder of a section
	QuizBuilder(ctx context.Context, sess *session.Session, sectionID, sectionTitle string) (*quizbuilder.Builder, error)
	// SaveQuiz persists the quiz of a section, deferred for sections not saved yet
	SaveQuiz(ctx context.Context, sess *session.Session, sectionID string, builder *quizbuilder.Builder) (*quizbuilder.Outcome, error)
	// DeleteQuiz deletes the quiz of a section
	DeleteQuiz(ctx context.Context, sess *session.Session, sectionID string) error
}

// UploadService is the interface that wraps the lesson video upload
type UploadService interface {
	// UploadVideo uploads a lesson video and returns its URL
	UploadVideo(ctx context.Context, sess *session.Session, filename string, content io.Reader) (string, error)
}

// InstructorHandler handles HTTP requests for the instructor dashboard, course editor and quiz builder
type InstructorHandler struct {
	BaseHandler
	service  InstructorService
	uploader UploadService
}

// NewInstructorHandler creates a new instructor handler
func NewInstructorHandler(svc InstructorService, uploader UploadService, cookieSecure bool, logger *zap.Logger) *InstructorHandler {
	return &InstructorHandler{
		BaseHandler: newBaseHandler(logger, cookieSecure),
		service:     svc,
		uploader:    uploader,
	}
}

// RegisterRoutes registers all instructor handler routes
func (h *InstructorHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Group(func(r chi.Router) {
		r.Use(guards.Auth, guards.Instructor)

		r.Route("/instructor", func(r chi.Router) {
			r.Get("/courses", h.Dashboard)
			r.Post("/courses", h.CreateCourse)
			r.Route("/courses/{id}", func(r chi.Router) {
				r.Get("/students", h.Students)
				r.Get("/editor", h.Editor)
				r.Put("/", h.Save)
				r.Post("/plan", h.Plan)
				r.Post("/publish", h.Publish)
				r.Delete("/", h.Delete)
			})
			r.Route("/sections/{sectionId}/quiz", func(r chi.Router) {
				r.Get("/", h.QuizBuilder)
				r.Put("/", h.SaveQuiz)
				r.Delete("/", h.DeleteQuiz)
			})
		})

		r.Post("/files/upload", h.UploadVideo)
	})
}

// Dashboard handles GET /views/instructor/courses
// @Summary Instructor dashboard
// @Tags instructor
// @Produce json
// @Success 200 {array} models.Course "Courses of the instructor"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /views/instructor/courses [get]
func (h *InstructorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	courses, err := h.service.Dashboard(r.Context(), sess)
	if err != nil {
		h.respondServiceError(w, r, err, "instructor dashboard")
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// CreateCourse handles POST /views/instructor/courses
// @Summary Create a course
// @Description Create a course with its sections, lessons and pending quizzes
// @Tags instructor
// @Accept json
// @Produce json
// @Param request body editor.Draft true "Course draft"
// @Success 201 {object} models.Course "Created course"
// @Failure 400 {object} map[string]any "Validation failed"
// @Router /views/instructor/courses [post]
func (h *InstructorHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var draft editor.Draft
	if !h.decodeJSON(w, r, &draft) {
		return
	}

	course, err := h.service.CreateCourse(r.Context(), sess, &draft)
	if err != nil {
		h.respondServiceError(w, r, err, "create course")
		return
	}

	h.RespondJSON(w, http.StatusCreated, course)
}

// Students handles GET /views/instructor/courses/{id}/students
// @Summary Students of a course
// @Tags instructor
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} services.StudentsView "Students"
// @Router /views/instructor/courses/{id}/students [get]
func (h *InstructorHandler) Students(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.service.Students(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "course students")
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// Editor handles GET /views/instructor/courses/{id}/editor
// @Summary Course editor
// @Tags instructor
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} services.EditorView "Course and starting draft"
// @Router /views/instructor/courses/{id}/editor [get]
func (h *InstructorHandler) Editor(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.service.Editor(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "course editor")
		return
	}

	h.RespondJSON(w, http.StatusOK, view)
}

// Plan handles POST /views/instructor/courses/{id}/plan
// @Summary Preview a save
// @Description List the platform calls a save of the draft would run
// @Tags instructor
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param request body editor.Draft true "Course draft"
// @Success 200 {object} editor.SyncPlan "Planned steps"
// @Router /views/instructor/courses/{id}/plan [post]
func (h *InstructorHandler) Plan(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var draft editor.Draft
	if !h.decodeJSON(w, r, &draft) {
		return
	}

	plan, err := h.service.Plan(r.Context(), sess, chi.URLParam(r, "id"), &draft)
	if err != nil {
		h.respondServiceError(w, r, err, "plan course save")
		return
	}

	h.RespondJSON(w, http.StatusOK, plan)
}

// Save handles PUT /views/instructor/courses/{id}
// @Summary Save a course
// @Description Converge the persisted course with the draft, stopping at the first failed step. Only entities in the draft base are deleted.
// @Tags instructor
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param request body editor.Draft true "Course draft"
// @Success 200 {object} services.SaveResult "Applied steps and reloaded course"
// @Failure 409 {object} map[string]any "Section could not be resolved"
// @Failure 502 {object} map[string]any "Save stopped part way"
// @Router /views/instructor/courses/{id} [put]
func (h *InstructorHandler) Save(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var draft editor.Draft
	if !h.decodeJSON(w, r, &draft) {
		return
	}

	result, err := h.service.Save(r.Context(), sess, chi.URLParam(r, "id"), &draft)
	if err != nil {
		h.respondServiceError(w, r, err, "save course")
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// Publish handles POST /views/instructor/courses/{id}/publish
// @Summary Publish a course
// @Tags instructor
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.Course "Published course"
// @Router /views/instructor/courses/{id}/publish [post]
func (h *InstructorHandler) Publish(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	course, err := h.service.Publish(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "publish course")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// Delete handles DELETE /views/instructor/courses/{id}
// @Summary Delete a course
// @Tags instructor
// @Param id path string true "Course ID"
// @Success 204 "No Content"
// @Router /views/instructor/courses/{id} [delete]
func (h *InstructorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, err, "delete course")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// QuizBuilder handles GET /views/instructor/sections/{sectionId}/quiz
// @Summary Quiz builder
// @Description Start the quiz builder of a section, empty when the section has no quiz yet
// @Tags instructor
// @Produce json
// @Param sectionId path string true "Section ID, temporary for unsaved sections"
// @Param title query string false "Section title, names a new quiz"
// @Success 200 {object} quizbuilder.Builder "Quiz being edited"
// @Router /views/instructor/sections/{sectionId}/quiz [get]
func (h *InstructorHandler) QuizBuilder(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	builder, err := h.service.QuizBuilder(r.Context(), sess, chi.URLParam(r, "sectionId"), r.URL.Query().Get("title"))
	if err != nil {
		h.respondServiceError(w, r, err, "quiz builder")
		return
	}

	h.RespondJSON(w, http.StatusOK, builder)
}

// SaveQuiz handles PUT /views/instructor/sections/{sectionId}/quiz
// @Summary Save a quiz
// @Description Replace the quiz of a section. For unsaved sections the payload is returned to travel with the draft.
// @Tags instructor
// @Accept json
// @Produce json
// @Param sectionId path string true "Section ID"
// @Param request body quizbuilder.Builder true "Quiz"
// @Success 200 {object} quizbuilder.Outcome "Outcome"
// @Failure 400 {object} map[string]any "Validation failed"
// @Router /views/instructor/sections/{sectionId}/quiz [put]
func (h *InstructorHandler) SaveQuiz(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var builder quizbuilder.Builder
	if !h.decodeJSON(w, r, &builder) {
		return
	}

	outcome, err := h.service.SaveQuiz(r.Context(), sess, chi.URLParam(r, "sectionId"), &builder)
	if err != nil {
		h.respondServiceError(w, r, err, "save quiz")
		return
	}

	h.RespondJSON(w, http.StatusOK, outcome)
}

// DeleteQuiz handles DELETE /views/instructor/sections/{sectionId}/quiz
// @Summary Delete a quiz
// @Tags instructor
// @Param sectionId path string true "Section ID"
// @Success 204 "No Content"
// @Router /views/instructor/sections/{sectionId}/quiz [delete]
func (h *InstructorHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteQuiz(r.Context(), sess, chi.URLParam(r, "sectionId")); err != nil {
		h.respondServiceError(w, r, err, "delete quiz")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadVideo handles POST /views/files/upload
// @Summary Upload a lesson video
// @Tags instructor
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Video file"
// @Success 201 {object} map[string]string "URL of the uploaded video"
// @Failure 400 {object} map[string]string "File missing or unsupported"
// @Router /views/files/upload [post]
func (h *InstructorHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	file, filename, ok := h.formFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	url, err := h.uploader.UploadVideo(r.Context(), sess, filename, file)
	if err != nil {
		h.respondServiceError(w, r, err, "upload video")
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]string{"url": url})
}
