package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olp/portal/internal/apiclient"
	authMiddleware "github.com/olp/portal/internal/auth/middleware"
	"github.com/olp/portal/internal/certimage"
	"github.com/olp/portal/internal/editor"
	"github.com/olp/portal/internal/services"
	"github.com/olp/portal/libs/validation"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBaseHandler_RespondServiceError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
		validate        func(t *testing.T, w *httptest.ResponseRecorder, body map[string]any)
	}{
		{
			name:            "session expired clears the cookie",
			err:             fmt.Errorf("failed to get course: %w", apiclient.ErrSessionExpired),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Your session has expired. Please log in again.",
			validate: func(t *testing.T, w *httptest.ResponseRecorder, body map[string]any) {
				assert.Equal(t, "/login", body["redirect"])
				cookies := w.Result().Cookies()
				if assert.Len(t, cookies, 1) {
					assert.Equal(t, authMiddleware.SessionCookieName, cookies[0].Name)
					assert.True(t, cookies[0].MaxAge < 0)
				}
			},
		},
		{
			name:            "validation error lists fields",
			err:             &validation.Error{Fields: []validation.FieldError{{Field: "Draft.Title", Message: "title is required"}}},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "validation failed",
			validate: func(t *testing.T, w *httptest.ResponseRecorder, body map[string]any) {
				assert.Equal(t, []any{map[string]any{"field": "Draft.Title", "message": "title is required"}}, body["fields"])
			},
		},
		{
			name: "partial save reports the failed step",
			err: &editor.ApplyError{
				RunID:   "run-1",
				Index:   2,
				Step:    editor.Step{Action: editor.ActionUpdateLesson, EntityID: "l1"},
				Applied: 2,
				Err:     &apiclient.APIError{Status: http.StatusBadRequest, Message: "Title too long"},
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Failed to save changes: Title too long",
			validate: func(t *testing.T, w *httptest.ResponseRecorder, body map[string]any) {
				assert.Equal(t, "run-1", body["runId"])
				assert.Equal(t, float64(2), body["applied"])
				assert.Equal(t, string(editor.ActionUpdateLesson), body["failedStep"])
			},
		},
		{
			name:           "partial save over a transport failure",
			err:            &editor.ApplyError{RunID: "run-2", Err: &apiclient.TransportError{Method: "PUT", Path: "/lessons/l1", Err: errors.New("refused")}},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "unresolved section",
			err:            &editor.ApplyError{RunID: "run-3", Err: editor.ErrSectionUnresolved},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "course not open for enrollment",
			err:            services.ErrNotEnrollable,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "quiz without answers",
			err:            services.ErrNoAnswers,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unsupported upload",
			err:            fmt.Errorf("%w: .exe", services.ErrUnsupportedFile),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "certificate not earned",
			err:            certimage.ErrNotEligible,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "platform unreachable",
			err:            &apiclient.TransportError{Method: "GET", Path: "/courses", Err: errors.New("refused")},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:            "client error keeps the platform message",
			err:             fmt.Errorf("failed to enroll: %w", &apiclient.APIError{Status: http.StatusNotFound, Message: "Course not found"}),
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Course not found",
		},
		{
			name:            "unknown error",
			err:             errors.New("boom"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: apiclient.GenericMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newBaseHandler(zap.NewNop(), false)
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			h.respondServiceError(w, r, tt.err, "test")

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedMessage != "" {
				assert.Equal(t, tt.expectedMessage, body["error"])
			}
			if tt.validate != nil {
				tt.validate(t, w, body)
			}
		})
	}
}

func TestBaseHandler_Session(t *testing.T) {
	h := newBaseHandler(zap.NewNop(), false)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, ok := h.session(w, r)

	assert.False(t, ok)
	assert.Nil(t, sess)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", decodeBody(t, w)["redirect"])
}
