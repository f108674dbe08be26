package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/voenkomat/dossier-module/internal/api/handlers"
	"github.com/bigkaa/voenkomat/dossier-module/internal/api/middleware"
)

const testSecret = "server-test-secret"

type okChecker struct{}

func (okChecker) CheckReady() (string, string) { return "ok", "" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testHandlers собирает обработчики без сервисов: тесты проверяют
// только маршрутизацию и доступ, до вызова сервисного слоя.
func testHandlers(withAuth bool) Handlers {
	logger := testLogger()
	h := Handlers{
		Health:     handlers.NewHealthHandler(okChecker{}, nil),
		Citizens:   handlers.NewCitizenHandler(nil, logger),
		Militaries: handlers.NewMilitaryHandler(nil, logger),
		Records:    handlers.NewRecordHandler(nil, logger),
		Reference:  handlers.NewReferenceHandler(nil, logger),
	}
	if withAuth {
		h.Auth = handlers.NewAuthHandler(nil, logger)
	}
	return h
}

func newTestRouter(withAuth bool) http.Handler {
	jwtAuth := middleware.NewHMACAuth(testSecret, "dossier-module", 0, testLogger())
	return NewRouter(testLogger(), testHandlers(withAuth), jwtAuth)
}

func serve(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPublicEndpoints(t *testing.T) {
	router := newTestRouter(true)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			if rec := serve(router, http.MethodGet, path, ""); rec.Code != http.StatusOK {
				t.Errorf("ожидался статус 200, получен %d", rec.Code)
			}
		})
	}
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	router := newTestRouter(true)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/departments"},
		{http.MethodGet, "/api/citizens"},
		{http.MethodGet, "/api/citizens/1"},
		{http.MethodPost, "/api/citizens"},
		{http.MethodPut, "/api/citizens/1"},
		{http.MethodDelete, "/api/citizens/1"},
		{http.MethodPost, "/api/militaries"},
		{http.MethodPut, "/api/militaries/1"},
		{http.MethodDelete, "/api/militaries/1"},
		{http.MethodPost, "/api/records"},
		{http.MethodPut, "/api/records/1"},
		{http.MethodDelete, "/api/records/1"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			if rec := serve(router, rt.method, rt.path, ""); rec.Code != http.StatusUnauthorized {
				t.Errorf("ожидался статус 401, получен %d", rec.Code)
			}
		})
	}
}

// TestAuthenticatedRequestReachesHandler - с валидным токеном запрос доходит
// до обработчика (пустое тело отклоняется им как 400).
func TestAuthenticatedRequestReachesHandler(t *testing.T) {
	router := newTestRouter(true)

	claims := jwt.MapClaims{
		"id":    1,
		"email": "editor@voenkomat.ru",
		"role":  "editor",
		"iss":   "dossier-module",
		"exp":   jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	rec := serve(router, http.MethodPost, "/api/citizens", token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("ожидался статус 400, получен %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("ожидался заголовок X-Request-ID")
	}
}

func TestLoginRoute(t *testing.T) {
	// Локальный выпуск токенов: маршрут открыт, пустое тело - 400.
	if rec := serve(newTestRouter(true), http.MethodPost, "/api/auth", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("ожидался статус 400, получен %d", rec.Code)
	}

	// Режим внешнего IdP: маршрута нет.
	rec := serve(newTestRouter(false), http.MethodPost, "/api/auth", "")
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("ожидался статус 404, получен %d", rec.Code)
	}
}
