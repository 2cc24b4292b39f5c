package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/olp/portal/internal/models"
	"github.com/olp/portal/libs/handlers"
	"go.uber.org/zap"
)

// JournalService is the interface that wraps the sync journal queries for operators
type JournalService interface {
	// CourseJournal retrieves the latest journal entries of a course, newest first
	//
	// "limit" of zero uses the default, larger values are capped.
	//
	// Returns the entries and an error if any.
	CourseJournal(ctx context.Context, courseID string, limit int) ([]models.SyncEntry, error)
	// FailedRuns retrieves the latest failed steps over all courses
	FailedRuns(ctx context.Context, limit int) ([]models.SyncEntry, error)
}

// JournalHandler handles operator HTTP requests for the sync journal
type JournalHandler struct {
	handlers.BaseHandler
	service JournalService
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(svc JournalService, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all journal handler routes
func (h *JournalHandler) RegisterRoutes(r chi.Router, apiKeyMiddleware func(http.Handler) http.Handler) {
	r.Route("/ops/sync-journal", func(r chi.Router) {
		r.Use(apiKeyMiddleware)
		r.Get("/", h.CourseJournal)
		r.Get("/failed", h.FailedRuns)
	})
}

// CourseJournal handles GET /ops/sync-journal
// @Summary Sync journal of a course
// @Tags ops
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query string true "Course ID"
// @Param limit query int false "Maximum number of entries"
// @Success 200 {array} models.SyncEntry "Journal entries"
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 401 {object} map[string]string "Invalid API key"
// @Router /ops/sync-journal [get]
func (h *JournalHandler) CourseJournal(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("courseId")
	if courseID == "" {
		h.RespondError(w, http.StatusBadRequest, "courseId is required")
		return
	}
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}

	entries, err := h.service.CourseJournal(r.Context(), courseID, limit)
	if err != nil {
		h.Logger.Error("failed to get sync journal", zap.String("course_id", courseID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get sync journal")
		return
	}

	h.RespondJSON(w, http.StatusOK, entries)
}

// FailedRuns handles GET /ops/sync-journal/failed
// @Summary Failed sync steps
// @Tags ops
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Maximum number of entries"
// @Success 200 {array} models.SyncEntry "Failed steps"
// @Router /ops/sync-journal/failed [get]
func (h *JournalHandler) FailedRuns(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}

	entries, err := h.service.FailedRuns(r.Context(), limit)
	if err != nil {
		h.Logger.Error("failed to get failed sync runs", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to get failed sync runs")
		return
	}

	h.RespondJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		h.RespondError(w, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	return limit, true
}
