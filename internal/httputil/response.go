package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Vishwas132/university-admin-panel/internal/apperr"
)

// ErrorBody is the uniform error envelope.
type ErrorBody struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// RespondWithError writes an error response in JSON format
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorBody{Status: "error", Message: message})
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithMessage writes {"message": message}.
func RespondWithMessage(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"message": message})
}

// ErrorWriter maps service errors onto HTTP responses.
type ErrorWriter struct {
	logger       *slog.Logger
	hideInternal bool
}

// NewErrorWriter creates an ErrorWriter. When hideInternal is set, messages of
// unexpected errors are replaced with a generic one.
func NewErrorWriter(logger *slog.Logger, hideInternal bool) *ErrorWriter {
	return &ErrorWriter{logger: logger, hideInternal: hideInternal}
}

func (e *ErrorWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, apperr.ErrValidation):
		RespondWithJSON(w, http.StatusBadRequest, ErrorBody{
			Status:  "error",
			Message: apperr.Message(err, "Validation error"),
			Errors:  apperr.Fields(err),
		})
	case errors.Is(err, apperr.ErrConflict):
		e.logger.InfoContext(ctx, "conflict", "path", r.URL.Path, "error", err)
		RespondWithError(w, http.StatusConflict, apperr.Message(err, "Duplicate entry found"))
	case errors.Is(err, apperr.ErrAuthentication):
		e.logger.InfoContext(ctx, "authentication failed", "path", r.URL.Path)
		RespondWithError(w, http.StatusUnauthorized, apperr.Message(err, "Not authorized"))
	case errors.Is(err, apperr.ErrAuthorization):
		e.logger.InfoContext(ctx, "access denied", "path", r.URL.Path)
		RespondWithError(w, http.StatusForbidden, apperr.Message(err, "Access denied"))
	case errors.Is(err, apperr.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, apperr.Message(err, "Not found"))
	default:
		e.logger.ErrorContext(ctx, "internal error", "method", r.Method, "path", r.URL.Path, "error", err)
		message := "Internal server error"
		if !e.hideInternal {
			message = err.Error()
		}
		RespondWithError(w, http.StatusInternalServerError, message)
	}
}
