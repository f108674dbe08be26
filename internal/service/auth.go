// auth.go - вход по email и паролю, выпуск JWT (HS256)
// и создание начального редактора.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
	"github.com/bigkaa/voenkomat/dossier-module/internal/repository"
)

// TokenClaims - claims выпускаемого токена: {id, email, role}.
type TokenClaims struct {
	jwt.RegisteredClaims
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthService - аутентификация сотрудников.
type AuthService struct {
	users  repository.UserRepository
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
// secret - ключ HS256, ttl - время жизни токена.
func NewAuthService(users repository.UserRepository, secret, issuer string, ttl time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With(slog.String("component", "auth_service")),
	}
}

// Login проверяет email и пароль и выпускает токен.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email и password обязательны", ErrValidation)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%w: %w", ErrStore, err) //nolint:errorlint // намеренный двойной wrap
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Неудачная попытка входа", slog.String("email", email))
		return "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return "", err
	}

	s.logger.Info("Пользователь вошёл",
		slog.Int64("user_id", u.ID),
		slog.String("role", u.Role),
	)
	return token, nil
}

// IssueToken подписывает токен для пользователя.
func (s *AuthService) IssueToken(u *model.User) (string, error) {
	now := s.now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// BootstrapEditor создаёт редактора или обновляет его пароль.
func (s *AuthService) BootstrapEditor(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка хэширования пароля: %w", err)
	}

	u, err := s.users.UpsertEditor(ctx, strings.TrimSpace(strings.ToLower(email)), string(hash))
	if err != nil {
		return err
	}

	s.logger.Info("Начальный редактор готов",
		slog.Int64("user_id", u.ID),
		slog.String("email", u.Email),
	)
	return nil
}
