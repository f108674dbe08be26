package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/metrics", "/metrics"},
		{"/api/auth", "/api/auth"},
		{"/api/citizens", "/api/citizens"},
		{"/api/citizens/42", "/api/citizens/{id}"},
		{"/api/militaries/7", "/api/militaries/{id}"},
		{"/api/records/100500", "/api/records/{id}"},
		{"/api/citizens/", "other"},
		{"/api/citizens/42/extra", "other"},
		{"/api/unknown", "other"},
		{"/", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestMetricsMiddleware_PassesStatus(t *testing.T) {
	handler := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/citizens", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("ожидался статус 201, получен %d", rec.Code)
	}
}
