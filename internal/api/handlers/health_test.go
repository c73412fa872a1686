package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthz(t *testing.T) {
	handler := NewHealthHandler(nil, "test")

	rec, body := doJSON(t, handler.Healthz, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("expected version test, got %q", body["version"])
	}
}

func TestReadyzWithoutDatabase(t *testing.T) {
	handler := NewHealthHandler(nil, "test")

	rec, _ := doJSON(t, handler.Readyz, httptest.NewRequest("GET", "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a database, got %d", rec.Code)
	}
}
