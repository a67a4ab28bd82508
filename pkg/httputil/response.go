package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/Sagar-1103/taskify/pkg/errors"
	"github.com/Sagar-1103/taskify/pkg/logger"
)

// Envelope is the uniform body of every response. Success mirrors
// StatusCode < 400. Data is omitted on errors.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// Respond writes a successful envelope.
func Respond(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{
		StatusCode: status,
		Success:    status < http.StatusBadRequest,
		Message:    message,
		Data:       data,
	})
}

// Fail writes an error envelope with no data.
func Fail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{
		StatusCode: status,
		Success:    false,
		Message:    message,
	})
}

// WriteError renders err as an error envelope. AppErrors keep their status and
// message; sentinels map to a status and a generic message; anything else is a
// 500 and is logged with the request method and path. The request-scoped logger
// is preferred over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		var appErr *apperrors.AppError
		code := "INTERNAL_ERROR"
		if errors.As(err, &appErr) {
			code = appErr.Code
		}
		l.ErrorContext(r.Context(), "internal error",
			slog.String("code", code),
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	Fail(w, status, apperrors.Message(err))
}
