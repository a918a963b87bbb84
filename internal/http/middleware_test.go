package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuditRecoversFromPanic(t *testing.T) {
	handler := audit(newLogger(), newRequestMetrics("auth"), "/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if decodeBody(t, rec)["message"] != "Internal server error" {
		t.Fatalf("panic detail leaked: %s", rec.Body)
	}
}

func TestAuditLeavesResponseAlone(t *testing.T) {
	handler := audit(newLogger(), newRequestMetrics("auth"), "/ok", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusTeapot, map[string]string{"hello": "world"})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Forwarded-For", "10.1.2.3, 192.168.0.1")
	handler(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if decodeBody(t, rec)["hello"] != "world" {
		t.Fatalf("unexpected body: %s", rec.Body)
	}
}
