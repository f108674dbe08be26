package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/rbac"
)

// logRecord - разобранная JSON-запись slog.
type logRecord struct {
	Level     string `json:"level"`
	Msg       string `json:"msg"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Status    int    `json:"status"`
	Bytes     int64  `json:"bytes"`
	RequestID string `json:"request_id"`
	UserID    int64  `json:"user_id"`
}

func captureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) logRecord {
	t.Helper()
	var rec logRecord
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("не удалось разобрать лог %q: %v", buf.String(), err)
	}
	return rec
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusCreated, "INFO"},
		{http.StatusBadRequest, "WARN"},
		{http.StatusUnauthorized, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			handler := RequestLogger(captureLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("тело"))
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/citizens", nil))

			rec := decodeRecord(t, &buf)
			if rec.Level != tt.level {
				t.Errorf("level = %q, ожидается %q", rec.Level, tt.level)
			}
			if rec.Status != tt.status {
				t.Errorf("status = %d, ожидается %d", rec.Status, tt.status)
			}
			if rec.Bytes != int64(len("тело")) {
				t.Errorf("bytes = %d, ожидается %d", rec.Bytes, len("тело"))
			}
			if rec.Path != "/api/citizens" || rec.Method != http.MethodGet {
				t.Errorf("неожиданные method/path: %s %s", rec.Method, rec.Path)
			}
		})
	}
}

// TestRequestLogger_RequestAndUser - в записи есть request_id и id
// пользователя, аутентифицированного внутри цепочки.
func TestRequestLogger_RequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	auth := NewHMACAuth(testSecret, testIssuer, 0, testLogger())
	inner := auth.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler := RequestID()(RequestLogger(captureLogger(&buf))(inner))

	req := httptest.NewRequest(http.MethodGet, "/api/citizens", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	req.Header.Set("Authorization", "Bearer "+hmacToken(t, testSecret,
		userClaims(testIssuer, 42, "editor@voenkomat.ru", rbac.RoleEditor, false)))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := decodeRecord(t, &buf)
	if rec.RequestID != "req-123" {
		t.Errorf("request_id = %q, ожидается req-123", rec.RequestID)
	}
	if rec.UserID != 42 {
		t.Errorf("user_id = %d, ожидается 42", rec.UserID)
	}
}
