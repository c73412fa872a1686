package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// JSON writes payload as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// ErrorBody is the error response shape: a human-readable message, plus
// per-field details when the failure is a validation one.
type ErrorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Error writes a JSON error response and logs it from the request's context
// logger: 5xx at error level, 4xx at warn.
func Error(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	ErrorWithFields(w, r, status, message, err, nil)
}

func ErrorWithFields(w http.ResponseWriter, r *http.Request, status int, message string, err error, fields map[string]string) {
	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	JSON(w, status, ErrorBody{Message: message, Fields: fields})
}

// Internal writes a generic 500. The underlying error goes to the log, never
// to the client.
func Internal(w http.ResponseWriter, r *http.Request, err error) {
	Error(w, r, http.StatusInternalServerError, "internal server error", err)
}

// IsBodyTooLarge reports whether err came from http.MaxBytesReader.
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
