package log

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHTTPMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	tests := []struct {
		name    string
		status  int
		level   string
		message string
	}{
		{"ok", http.StatusOK, "info", "request"},
		{"not found", http.StatusNotFound, "info", "request"},
		{"server error", http.StatusInternalServerError, "error", "request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set(RequestIDHeader, "abc")
				w.WriteHeader(tt.status)
				w.Write([]byte("hello"))
			}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

			entries := logs.TakeAll()
			if len(entries) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(entries))
			}
			e := entries[0]
			if e.Level.String() != tt.level || e.Message != tt.message {
				t.Errorf("expected %s %q, got %s %q", tt.level, tt.message, e.Level, e.Message)
			}
			fields := e.ContextMap()
			if fields["status"] != int64(tt.status) {
				t.Errorf("expected status %d, got %v", tt.status, fields["status"])
			}
			if fields["size"] != int64(5) {
				t.Errorf("expected size 5, got %v", fields["size"])
			}
			if fields["request_id"] != "abc" {
				t.Errorf("expected request id abc, got %v", fields["request_id"])
			}
		})
	}
}

func TestNamed(t *testing.T) {
	if Named("storage") == nil {
		t.Errorf("expected a logger")
	}
}

func TestPackageHelpers(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	saved, savedBase := log, baseLogger
	baseLogger = zap.New(core)
	log = baseLogger.Sugar()
	t.Cleanup(func() { log, baseLogger = saved, savedBase })

	Debugf("reading %s", "config.yaml")
	Infof("serving on %d", 8080)
	Infow("wrote report", "pages", 2)
	Warnf("no %s given", "--config")
	Errorf("failed: %v", "boom")

	expected := []struct {
		level   string
		message string
	}{
		{"debug", "reading config.yaml"},
		{"info", "serving on 8080"},
		{"info", "wrote report"},
		{"warn", "no --config given"},
		{"error", "failed: boom"},
	}

	entries := logs.AllUntimed()
	if len(entries) != len(expected) {
		t.Fatalf("expected %d log entries, got %d", len(expected), len(entries))
	}
	for i, e := range expected {
		if entries[i].Level.String() != e.level || entries[i].Message != e.message {
			t.Errorf("entry %d: expected %s %q, got %s %q", i, e.level, e.message, entries[i].Level, entries[i].Message)
		}
	}
	if got := logs.FilterField(zap.Int("pages", 2)).Len(); got != 1 {
		t.Errorf("expected the pages field on one entry, got %d", got)
	}
}
