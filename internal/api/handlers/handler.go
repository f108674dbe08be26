// handler.go - HTTP-обработчики Dossier Module.
// Разбирают и валидируют запрос, делегируют в сервисный слой и переводят
// ошибки сервиса в HTTP-статусы.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/voenkomat/dossier-module/internal/api/errors"
	"github.com/bigkaa/voenkomat/dossier-module/internal/api/middleware"
	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/rbac"
	"github.com/bigkaa/voenkomat/dossier-module/internal/service"
)

// maxBodyBytes - ограничение размера тела запроса.
const maxBodyBytes = 1 << 20

// CitizenService - операции над гражданами и личными делами.
type CitizenService interface {
	Create(ctx context.Context, caller *rbac.Caller, in service.CitizenInput) (int64, error)
	Edit(ctx context.Context, caller *rbac.Caller, id int64, in service.CitizenInput) error
	Delete(ctx context.Context, caller *rbac.Caller, id int64) error
	List(ctx context.Context) ([]model.CitizenSummary, error)
	Dossier(ctx context.Context, id int64) (*model.Dossier, error)
}

// MilitaryService - операции над записями о военной службе.
type MilitaryService interface {
	Add(ctx context.Context, caller *rbac.Caller, in service.MilitaryInput) (int64, error)
	Edit(ctx context.Context, caller *rbac.Caller, id int64, in service.MilitaryInput) (*model.Military, error)
	Delete(ctx context.Context, caller *rbac.Caller, id int64) error
}

// RecordService - операции над историей учёта.
type RecordService interface {
	Add(ctx context.Context, caller *rbac.Caller, in service.RecordInput) (int64, error)
	Edit(ctx context.Context, caller *rbac.Caller, id int64, in service.RecordInput) (*model.Record, error)
	Delete(ctx context.Context, caller *rbac.Caller, id int64) error
}

// ReferenceService - справочники.
type ReferenceService interface {
	Departments(ctx context.Context) ([]model.Department, error)
	Users(ctx context.Context) ([]model.User, error)
}

// AuthService - выпуск токенов.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// mutationResponse - ответ на успешное изменение: {message, <entity>Id}.
type mutationResponse map[string]any

func created(message, idKey string, id int64) mutationResponse {
	return mutationResponse{"message": message, idKey: id}
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst и проверяет теги validate.
// При ошибке сам пишет ответ 400 и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		apierrors.ValidationError(w, formatValidationError(err))
		return false
	}
	return true
}

// pathID извлекает положительный числовой {id} из пути.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		apierrors.ValidationError(w, fmt.Sprintf("Некорректный id: %q", raw))
		return 0, false
	}
	return id, true
}

// caller возвращает субъекта запроса. Отсутствие субъекта означает,
// что маршрут не закрыт JWT middleware, и запрос отклоняется.
func caller(w http.ResponseWriter, r *http.Request) (*rbac.Caller, bool) {
	c := middleware.CallerFromContext(r.Context())
	if c == nil {
		apierrors.Unauthorized(w, "Доступ запрещён: отсутствует токен.")
		return nil, false
	}
	return c, true
}

// writeServiceError переводит ошибку сервиса в HTTP-ответ.
// Детали сбоя хранилища клиенту не отдаются.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		apierrors.Unauthorized(w, "Доступ запрещён.")
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidCredentials):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrConflict):
		apierrors.BadRequest(w, err.Error())
	default:
		logger.Error("Ошибка обработки запроса", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Внутренняя ошибка сервера.")
	}
}

// isNotFound сообщает, что запрошенный ресурс отсутствует.
func isNotFound(err error) bool {
	return errors.Is(err, service.ErrNotFound)
}
