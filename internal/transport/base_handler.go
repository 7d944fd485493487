package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.L()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResp := map[string]interface{}{
		"code":    status,
		"message": message,
	}

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		h.Logger.Error("failed to encode error response", "error", err)
	}
}

// WriteBusinessRule writes the soft-failure body used for rule violations:
// HTTP 200 with success=false and a human-readable message.
func (h *BaseHandler) WriteBusinessRule(w http.ResponseWriter, message string) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// HandleServiceError translates service-layer errors into HTTP responses.
// AppError carries its own status code; business-rule violations become the
// soft success=false body, everything else is a generic 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		if appErr.Type == internal.ErrorTypeBusinessRule {
			h.WriteBusinessRule(w, appErr.Message)
			return
		}

		h.Logger.Warn("service error",
			"type", appErr.Type,
			"code", appErr.Code,
			"status", appErr.StatusCode,
			"message", appErr.Message)
		h.WriteJSON(w, appErr.StatusCode, map[string]interface{}{
			"success": false,
			"error":   string(appErr.Code),
			"message": appErr.Message,
		})
		return
	}

	h.Logger.Error("unhandled service error", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
