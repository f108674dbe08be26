package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"DM_DB_HOST":     "localhost",
		"DM_DB_NAME":     "voenkomat",
		"DM_DB_USER":     "voenkomat",
		"DM_DB_PASSWORD": "secret",
		"DM_JWT_SECRET":  "jwt-secret",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, ожидается 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, ожидается 5432", cfg.DBPort)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, ожидается disable", cfg.DBSSLMode)
	}
	if cfg.DBMaxConns != 10 {
		t.Errorf("DBMaxConns = %d, ожидается 10", cfg.DBMaxConns)
	}
	if cfg.JWTTTL != 2*time.Minute {
		t.Errorf("JWTTTL = %v, ожидается 2m", cfg.JWTTTL)
	}
	if cfg.JWTIssuer != "dossier-module" {
		t.Errorf("JWTIssuer = %q, ожидается dossier-module", cfg.JWTIssuer)
	}
	if cfg.JWKSMode() {
		t.Error("JWKSMode() = true без DM_JWT_JWKS_URL")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	envs := minimalEnvs()
	envs["DM_PORT"] = "9090"
	envs["DM_LOG_LEVEL"] = "debug"
	envs["DM_LOG_FORMAT"] = "text"
	envs["DM_DB_PORT"] = "5433"
	envs["DM_DB_SSL_MODE"] = "require"
	envs["DM_DB_MAX_CONNS"] = "25"
	envs["DM_JWT_TTL"] = "10m"
	envs["DM_BOOTSTRAP_EDITOR_EMAIL"] = "editor@voenkomat.ru"
	envs["DM_BOOTSTRAP_EDITOR_PASSWORD"] = "editor-password"
	envs["DM_SHUTDOWN_TIMEOUT"] = "10s"
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, ожидается 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидается Debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, ожидается text", cfg.LogFormat)
	}
	if cfg.DBPort != 5433 {
		t.Errorf("DBPort = %d, ожидается 5433", cfg.DBPort)
	}
	if cfg.DBMaxConns != 25 {
		t.Errorf("DBMaxConns = %d, ожидается 25", cfg.DBMaxConns)
	}
	if cfg.JWTTTL != 10*time.Minute {
		t.Errorf("JWTTTL = %v, ожидается 10m", cfg.JWTTTL)
	}
	if cfg.BootstrapEditorEmail != "editor@voenkomat.ru" {
		t.Errorf("BootstrapEditorEmail = %q", cfg.BootstrapEditorEmail)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	requiredVars := []string{"DM_DB_HOST", "DM_DB_NAME", "DM_DB_USER", "DM_DB_PASSWORD", "DM_JWT_SECRET"}

	for _, missing := range requiredVars {
		t.Run(missing, func(t *testing.T) {
			setEnvs(t, minimalEnvs())
			t.Setenv(missing, "")

			if _, err := Load(); err == nil {
				t.Errorf("Load() не вернул ошибку при отсутствии %s", missing)
			}
		})
	}
}

func TestLoad_JWKSModeWithoutSecret(t *testing.T) {
	setEnvs(t, minimalEnvs())
	t.Setenv("DM_JWT_SECRET", "")
	t.Setenv("DM_JWT_JWKS_URL", "https://idp.example.com/certs")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	if !cfg.JWKSMode() {
		t.Error("JWKSMode() = false при заданном DM_JWT_JWKS_URL")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"порт ниже диапазона", "DM_PORT", "0"},
		{"порт не число", "DM_PORT", "abc"},
		{"уровень логов", "DM_LOG_LEVEL", "verbose"},
		{"формат логов", "DM_LOG_FORMAT", "xml"},
		{"ssl mode", "DM_DB_SSL_MODE", "maybe"},
		{"пул соединений", "DM_DB_MAX_CONNS", "0"},
		{"ttl токена", "DM_JWT_TTL", "-1m"},
		{"длительность", "DM_SHUTDOWN_TIMEOUT", "пять секунд"},
		{"редактор без пароля", "DM_BOOTSTRAP_EDITOR_EMAIL", "editor@voenkomat.ru"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, minimalEnvs())
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() не вернул ошибку при %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{
		DBHost: "db", DBPort: 5432, DBName: "voenkomat",
		DBUser: "user", DBPassword: "p@ss", DBSSLMode: "disable",
	}

	got := cfg.DatabaseURL("pgx5")
	if !strings.HasPrefix(got, "pgx5://user:p%40ss@db:5432/voenkomat") {
		t.Errorf("DatabaseURL() = %q", got)
	}
	if !strings.HasSuffix(got, "sslmode=disable") {
		t.Errorf("DatabaseURL() = %q, ожидается sslmode=disable", got)
	}
}
