package httptransport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type flusherRecorder struct {
	*httptest.ResponseRecorder
	flushed bool
}

func (f *flusherRecorder) Flush() {
	f.flushed = true
}

func TestBodyCaptureMiddlewarePreservesFlusher(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "no flusher", http.StatusInternalServerError)
			return
		}
		flusher.Flush()
		w.WriteHeader(http.StatusOK)
	})

	rec := &flusherRecorder{ResponseRecorder: httptest.NewRecorder()}
	req := httptest.NewRequest(http.MethodGet, "/api/admin/outbox", nil)
	BodyCaptureMiddleware(4096)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !rec.flushed {
		t.Fatal("expected flusher to be called")
	}
}

func TestBodyCaptureMiddlewareKeepsRequestBody(t *testing.T) {
	var got string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		_, _ = w.Write([]byte(strings.Repeat("x", 32)))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/admin/balances/1", strings.NewReader(`{"balance":5}`))
	BodyCaptureMiddleware(8)(handler).ServeHTTP(rec, req)

	if got != `{"balance":5}` {
		t.Fatalf("handler saw body %q", got)
	}
	if rec.Body.Len() != 32 {
		t.Fatalf("response truncated for client: %d bytes", rec.Body.Len())
	}
}

func TestBodyCaptureMiddlewareSkipsSSE(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, wrapped := w.(*captureWriter); wrapped {
			t.Fatalf("sse response should not be captured")
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.Header.Set("Accept", "text/event-stream")
	BodyCaptureMiddleware(4096)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestCheckAdminAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if CheckAdminAuth(req, "k") {
		t.Fatalf("missing key accepted")
	}
	req.Header.Set("Authorization", "Bearer wrong")
	if CheckAdminAuth(req, "k") {
		t.Fatalf("wrong bearer accepted")
	}
	req.Header.Set("X-Admin-Key", "k")
	if !CheckAdminAuth(req, "k") {
		t.Fatalf("header key rejected")
	}
}
