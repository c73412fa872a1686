package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestCorrelationIDGenerated(t *testing.T) {
	var captured string
	handler := CorrelationID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/events", nil))

	if captured == "" {
		t.Error("expected a generated request id in context")
	}
	if rec.Header().Get("X-Request-ID") != captured {
		t.Errorf("response header %q does not match context id %q", rec.Header().Get("X-Request-ID"), captured)
	}
}

func TestCorrelationIDHonorsHeader(t *testing.T) {
	var captured string
	handler := CorrelationID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/events", nil)
	req.Header.Set("X-Request-ID", "proxy-assigned-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if captured != "proxy-assigned-id" {
		t.Errorf("expected proxy id to be kept, got %q", captured)
	}
}

func TestCorrelationIDInContextLogger(t *testing.T) {
	var buf strings.Builder
	logger := zerolog.New(&buf)

	handler := CorrelationID(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside handler")
	}))

	req := httptest.NewRequest("GET", "/api/events", nil)
	req.Header.Set("X-Request-ID", "corr-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(buf.String(), `"request_id":"corr-123"`) {
		t.Errorf("expected request_id on context logger output, got %q", buf.String())
	}
}
