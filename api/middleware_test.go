package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestLoggingPassesThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := RequestLogging()(inner)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recommend/genre", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected inner status to pass through, got %d", rec.Code)
	}
}

func TestStatusWriterDefaultsToOK(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	sw.Write([]byte("ok"))
	if sw.status != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", sw.status)
	}
}
