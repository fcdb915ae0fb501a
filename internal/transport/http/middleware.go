package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"chat-casino/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

// APILogMiddleware writes one JSON access line per request to the shared
// log sink, keyed by the chi route pattern.
func APILogMiddleware() func(http.Handler) http.Handler {
	logger := slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{}))
	return httplog.RequestLogger(logger, &httplog.Options{
		Level:              slog.LevelInfo,
		Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
		LogRequestBody:     func(*http.Request) bool { return false },
		LogResponseBody:    func(*http.Request) bool { return false },
		LogRequestHeaders:  []string{},
		LogResponseHeaders: []string{},
		LogExtraAttrs:      routeAttrs,
	})
}

func routeAttrs(req *http.Request, _ string, _ int) []slog.Attr {
	route := req.URL.Path
	if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
		route = rc.RoutePattern()
	}
	return []slog.Attr{
		slog.String("request_id", chimw.GetReqID(req.Context())),
		slog.String("method", req.Method),
		slog.String("route", route),
		slog.String("path", req.URL.Path),
	}
}

// passthrough stands in for a disabled middleware.
func passthrough(next http.Handler) http.Handler { return next }

// BodyCaptureMiddleware attaches up to maxCaptureBytes of the request and
// response bodies to the access log line. Event streams are left alone.
func BodyCaptureMiddleware(maxCaptureBytes int) func(http.Handler) http.Handler {
	if maxCaptureBytes <= 0 {
		maxCaptureBytes = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSSERequest(r) {
				next.ServeHTTP(w, r)
				return
			}
			reqBody, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(reqBody))

			cw := &captureWriter{ResponseWriter: w, maxBytes: maxCaptureBytes}
			next.ServeHTTP(cw, r)

			reqLog, reqTruncated := clip(reqBody, maxCaptureBytes)
			httplog.SetAttrs(r.Context(),
				slog.Any("request_body", parseMaybeJSON(reqLog)),
				slog.Any("response_body", parseMaybeJSON(cw.body.Bytes())),
				slog.Bool("request_body_truncated", reqTruncated),
				slog.Bool("response_body_truncated", cw.truncated),
			)
		})
	}
}

func clip(b []byte, max int) ([]byte, bool) {
	if len(b) > max {
		return b[:max], true
	}
	return b, false
}

type captureWriter struct {
	http.ResponseWriter
	body      bytes.Buffer
	maxBytes  int
	truncated bool
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if !c.truncated {
		remain := c.maxBytes - c.body.Len()
		switch {
		case remain <= 0:
			c.truncated = true
		case len(p) <= remain:
			_, _ = c.body.Write(p)
		default:
			_, _ = c.body.Write(p[:remain])
			c.truncated = true
		}
	}
	return c.ResponseWriter.Write(p)
}

func (c *captureWriter) Flush() {
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func parseMaybeJSON(b []byte) any {
	if len(b) == 0 {
		return ""
	}
	var out any
	if err := json.Unmarshal(b, &out); err == nil {
		return out
	}
	return string(b)
}

func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func AdminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey != "" && !CheckAdminAuth(r, adminKey) {
				metricAdminUnauthorized.Add(1)
				WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CheckAdminAuth(r *http.Request, adminKey string) bool {
	if v := r.Header.Get("X-Admin-Key"); v == adminKey {
		return true
	}
	auth := r.Header.Get("Authorization")
	prefix := "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):] == adminKey
	}
	return false
}

// ParseLimit reads ?limit=, falling back to def and capping at max.
func ParseLimit(r *http.Request, def, max int) int {
	limit := def
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > max {
		limit = max
	}
	return limit
}

func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func isSSERequest(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return true
	}
	return r.URL.Path == "/api/events"
}
