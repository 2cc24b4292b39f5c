package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/olp/portal/internal/apiclient"
	authMiddleware "github.com/olp/portal/internal/auth/middleware"
	"github.com/olp/portal/internal/certimage"
	"github.com/olp/portal/internal/editor"
	"github.com/olp/portal/internal/services"
	"github.com/olp/portal/internal/session"
	"github.com/olp/portal/libs/handlers"
	"github.com/olp/portal/libs/validation"
	"go.uber.org/zap"
)

// Guards holds the route guards of the portal
// Auth requires a signed in session, the role guards must be applied after it
type Guards struct {
	Auth       func(http.Handler) http.Handler
	Student    func(http.Handler) http.Handler
	Instructor func(http.Handler) http.Handler
	Admin      func(http.Handler) http.Handler
}

// BaseHandler extends the shared handler with the portal error mapping
type BaseHandler struct {
	handlers.BaseHandler
	cookieSecure bool
}

func newBaseHandler(logger *zap.Logger, cookieSecure bool) BaseHandler {
	return BaseHandler{
		BaseHandler:  handlers.BaseHandler{Logger: logger},
		cookieSecure: cookieSecure,
	}
}

// session retrieves the session attached by the auth guard
func (h *BaseHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := authMiddleware.GetSession(r.Context())
	if !ok {
		h.RespondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    "authentication required",
			"redirect": "/login",
		})
		return nil, false
	}
	return sess, true
}

// decodeJSON decodes the request body, answering 400 on malformed input
func (h *BaseHandler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// maxUploadMemory is the part of a multipart upload kept in memory, the rest spills to disk
const maxUploadMemory = 32 << 20 // 32MB

// formFile reads the "file" part of a multipart upload, answering 400 when it is missing
// The caller must close the returned file
func (h *BaseHandler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, string, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.Logger.Warn("failed to parse multipart form", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "file is required")
		return nil, "", false
	}
	if header.Size == 0 {
		file.Close()
		h.RespondError(w, http.StatusBadRequest, "file is empty")
		return nil, "", false
	}
	return file, header.Filename, true
}

// respondServiceError maps a service error to its status and user message
func (h *BaseHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var (
		validationErr *validation.Error
		applyErr      *editor.ApplyError
		transportErr  *apiclient.TransportError
	)

	switch {
	case errors.Is(err, apiclient.ErrSessionExpired):
		authMiddleware.ClearSessionCookie(w, h.cookieSecure)
		h.RespondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    apiclient.UserMessage(err),
			"redirect": "/login",
		})
		return

	case errors.As(err, &validationErr):
		h.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return

	case errors.As(err, &applyErr):
		h.Logger.Error(action+" failed",
			zap.String("run_id", applyErr.RunID),
			zap.String("action", string(applyErr.Step.Action)),
			zap.Int("applied", applyErr.Applied),
			zap.Error(err),
		)
		h.RespondJSON(w, applyStatus(applyErr), map[string]any{
			"error":      applyErr.UserMessage(),
			"runId":      applyErr.RunID,
			"failedStep": applyErr.Step.Action,
			"applied":    applyErr.Applied,
		})
		return

	case errors.Is(err, editor.ErrSectionUnresolved):
		h.Logger.Error(action+" failed", zap.Error(err))
		h.RespondError(w, http.StatusConflict, err.Error())
		return

	case errors.Is(err, services.ErrNotEnrollable):
		h.RespondError(w, http.StatusConflict, err.Error())
		return

	case errors.Is(err, services.ErrNoAnswers), errors.Is(err, services.ErrUnsupportedFile):
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return

	case errors.Is(err, certimage.ErrNotEligible):
		h.RespondError(w, http.StatusForbidden, err.Error())
		return

	case errors.As(err, &transportErr):
		h.Logger.Error(action+" failed", zap.Error(err))
		h.RespondError(w, http.StatusBadGateway, apiclient.UserMessage(err))
		return
	}

	if status := apiclient.StatusOf(err); status != 0 {
		if status >= http.StatusInternalServerError {
			h.Logger.Error(action+" failed", zap.Error(err))
		}
		h.RespondError(w, status, apiclient.UserMessage(err))
		return
	}

	h.Logger.Error(action+" failed", zap.Error(err))
	h.RespondError(w, http.StatusInternalServerError, apiclient.GenericMessage)
}

// applyStatus is the status of a partially applied save
func applyStatus(err *editor.ApplyError) int {
	if errors.Is(err, editor.ErrSectionUnresolved) {
		return http.StatusConflict
	}
	if status := apiclient.StatusOf(err); status != 0 {
		return status
	}
	return http.StatusBadGateway
}
