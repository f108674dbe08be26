// auth.go - JWT middleware: проверка Bearer-токена и извлечение субъекта
// {id, email, role}. Токены проверяются по секрету HS256 (выпущены самим
// сервисом) или по JWKS внешнего IdP (RS256).
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/bigkaa/voenkomat/dossier-module/internal/api/errors"
	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/rbac"
)

// contextKey - тип для ключей контекста (избегаем коллизий).
type contextKey string

const (
	// ContextKeyCaller - субъект запроса в контексте.
	ContextKeyCaller contextKey = "caller"
)

// accessClaims - raw claims токена для парсинга.
type accessClaims struct {
	jwt.RegisteredClaims
	// UserID - id пользователя в таблице users.
	UserID int64 `json:"id"`
	// Email - электронная почта.
	Email string `json:"email"`
	// Role - роль (editor, viewer).
	Role string `json:"role"`
	// RealmAccess - роли IdP, если role не задан.
	RealmAccess *realmAccess `json:"realm_access,omitempty"`
}

// realmAccess - вложенная структура realm_access в JWT внешнего IdP.
type realmAccess struct {
	Roles []string `json:"roles"`
}

// JWTAuth - middleware для JWT-аутентификации.
type JWTAuth struct {
	keyFor    func(ctx context.Context) jwt.Keyfunc
	methods   []string
	issuer    string
	jwtLeeway time.Duration
	logger    *slog.Logger
}

// NewHMACAuth создаёт middleware для токенов, подписанных секретом HS256.
func NewHMACAuth(secret, issuer string, jwtLeeway time.Duration, logger *slog.Logger) *JWTAuth {
	key := []byte(secret)
	return &JWTAuth{
		keyFor: func(context.Context) jwt.Keyfunc {
			return func(*jwt.Token) (any, error) { return key, nil }
		},
		methods:   []string{"HS256"},
		issuer:    issuer,
		jwtLeeway: jwtLeeway,
		logger:    logger.With(slog.String("component", "jwt_auth")),
	}
}

// NewJWKSAuth создаёт middleware с JWKS внешнего IdP.
// jwksRefreshInterval - интервал обновления ключей (DM_JWKS_REFRESH_INTERVAL).
func NewJWKSAuth(
	jwksURL string,
	issuer string,
	jwksRefreshInterval time.Duration,
	jwtLeeway time.Duration,
	logger *slog.Logger,
) (*JWTAuth, error) {
	// NoErrorReturnFirstHTTPReq - стартуем даже если IdP ещё недоступен.
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: 10 * time.Second},
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return NewJWTAuthWithKeyfunc(k, issuer, jwtLeeway, logger), nil
}

// NewJWTAuthWithKeyfunc создаёт JWT middleware (RS256) с предоставленной keyfunc.
// Используется JWKS-режимом и тестами.
func NewJWTAuthWithKeyfunc(kf keyfunc.Keyfunc, issuer string, jwtLeeway time.Duration, logger *slog.Logger) *JWTAuth {
	return &JWTAuth{
		keyFor:    kf.KeyfuncCtx,
		methods:   []string{"RS256"},
		issuer:    issuer,
		jwtLeeway: jwtLeeway,
		logger:    logger.With(slog.String("component", "jwt_auth")),
	}
}

// Middleware возвращает HTTP middleware для JWT-аутентификации.
// Извлекает Bearer token, проверяет подпись и срок действия,
// помещает субъекта в контекст.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierrors.Unauthorized(w, "Доступ запрещён: отсутствует токен.")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				apierrors.Unauthorized(w, "Неверный формат Authorization: ожидается Bearer <token>")
				return
			}

			caller, err := j.parse(r.Context(), parts[1])
			if err != nil {
				j.logger.Debug("JWT валидация не пройдена",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Невалидный или просроченный токен.")
				return
			}

			reportCaller(r.Context(), caller.ID)
			ctx := context.WithValue(r.Context(), ContextKeyCaller, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parse проверяет токен и формирует субъекта.
func (j *JWTAuth) parse(ctx context.Context, tokenString string) (*rbac.Caller, error) {
	raw := &accessClaims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(j.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.jwtLeeway),
	}
	if j.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(j.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, raw, j.keyFor(ctx), parserOpts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("невалидный токен")
	}
	if raw.UserID <= 0 {
		return nil, fmt.Errorf("отсутствует id в токене")
	}

	role := raw.Role
	if role == "" && raw.RealmAccess != nil {
		role = rbac.HighestRole(raw.RealmAccess.Roles)
	}

	return &rbac.Caller{
		ID:    raw.UserID,
		Email: raw.Email,
		Role:  role,
	}, nil
}

// --- Context helpers ---

// CallerFromContext извлекает субъекта из контекста запроса.
// Возвращает nil, если субъект не найден.
func CallerFromContext(ctx context.Context) *rbac.Caller {
	caller, _ := ctx.Value(ContextKeyCaller).(*rbac.Caller)
	return caller
}

// WithCaller возвращает контекст с субъектом.
func WithCaller(ctx context.Context, caller *rbac.Caller) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// --- ReadinessChecker для JWKS ---

// JWKSReadinessChecker - проверка доступности JWKS endpoint внешнего IdP.
type JWKSReadinessChecker struct {
	jwksURL string
	client  *http.Client
}

// NewJWKSReadinessChecker создаёт checker доступности JWKS.
func NewJWKSReadinessChecker(jwksURL string, timeout time.Duration) *JWKSReadinessChecker {
	return &JWKSReadinessChecker{
		jwksURL: jwksURL,
		client:  &http.Client{Timeout: timeout},
	}
}

const statusFail = "fail"

// CheckReady проверяет доступность JWKS endpoint.
func (k *JWKSReadinessChecker) CheckReady() (status, message string) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, k.jwksURL, http.NoBody)
	if err != nil {
		return statusFail, "ошибка создания запроса: " + err.Error()
	}
	resp, err := k.client.Do(req) //nolint:gosec // URL из конфигурации
	if err != nil {
		return statusFail, fmt.Sprintf("JWKS недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusFail, fmt.Sprintf("JWKS вернул статус %d", resp.StatusCode)
	}

	var jwksResp struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwksResp); err != nil {
		return "degraded", fmt.Sprintf("JWKS: невалидный JSON: %v", err)
	}
	if len(jwksResp.Keys) == 0 {
		return "degraded", "JWKS: нет ключей"
	}

	return "ok", fmt.Sprintf("JWKS доступен, ключей: %d", len(jwksResp.Keys))
}
