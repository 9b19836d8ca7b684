package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogging_RecordsStatusAndScrubsQuery(t *testing.T) {
	var buf bytes.Buffer
	handler := Logging(bufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Name is required"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/upload-metadata?api_key=hunter2&x=1", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, "status=400") {
		t.Errorf("missing status: %s", out)
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("secret leaked into log: %s", out)
	}
	if !strings.Contains(out, "api_key=REDACTED&x=1") {
		t.Errorf("query not scrubbed as expected: %s", out)
	}
}

func TestScrubQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a=1&b=2", "a=1&b=2"},
		{"token=abc", "token=REDACTED"},
		{"Password=x&flag", "Password=REDACTED&flag"},
	}
	for _, tt := range tests {
		if got := scrubQuery(tt.in); got != tt.want {
			t.Errorf("scrubQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecovery_Returns500(t *testing.T) {
	var buf bytes.Buffer
	handler := Recovery(bufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("disk on fire")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mint", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "disk on fire") {
		t.Error("panic value leaked to client")
	}
	if !strings.Contains(buf.String(), "disk on fire") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	var buf bytes.Buffer
	handler := CORS([]string{"*"}, bufferLogger(&buf))(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/upload-metadata", nil)
	req.Header.Set("Origin", "http://wallet.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	var buf bytes.Buffer
	called := false
	handler := CORS([]string{"http://wallet.example"}, bufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/upload-metadata", nil)
	req.Header.Set("Origin", "http://wallet.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if called {
		t.Error("preflight should not reach the route handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://wallet.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
}

func TestCORS_RejectsUnknownOrigin(t *testing.T) {
	var buf bytes.Buffer
	handler := CORS([]string{"http://wallet.example"}, bufferLogger(&buf))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}
