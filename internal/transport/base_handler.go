package transport

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/pkg/logger"
	"github.com/rs/zerolog"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger zerolog.Logger
}

// NewBaseHandler creates a base handler with logger. A nil logger falls
// back to the process logger.
func NewBaseHandler(lg *zerolog.Logger) *BaseHandler {
	if lg == nil {
		l := logger.LoggerWrapper()
		lg = &l
	}
	return &BaseHandler{Logger: *lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Warn().Int("status", status).Str("message", message).Msg("http error")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResp := map[string]interface{}{
		"code":    status,
		"message": message,
	}

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		h.Logger.Error().Err(err).Msg("failed to encode error response")
	}
}

// HandleServiceError writes typed application errors as-is. Anything else
// is logged in full and collapses to a generic 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		switch {
		case appErr.StatusCode >= http.StatusInternalServerError:
			h.Logger.Error().Err(err).Str("code", string(appErr.Code)).Msg("service error")
		case appErr.Type == internal.ErrorTypeValidation:
			h.Logger.Warn().Str("code", string(appErr.Code)).Str("detail", appErr.GetDetailedMessage()).Msg("request rejected")
		}
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}

	h.Logger.Error().Err(err).Msg("unhandled service error")
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}

// DecodeJSON decodes the request body into dst and writes a 400 on failure.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid request body")
		h.WriteJSON(w, http.StatusBadRequest, internal.Response{
			Error: internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed),
		})
		return false
	}
	return true
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
