// coordinator.go - координатор изменений личных дел.
// Каждое изменение - одна транзакция: проверки, зависимые записи
// в порядке родитель → потомок, запись журнала действий, фиксация.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/rbac"
	"github.com/bigkaa/voenkomat/dossier-module/internal/repository"
)

// MutationKind - вид изменения (лейбл метрик и логов).
type MutationKind string

const (
	KindCreateCitizen  MutationKind = "create_citizen"
	KindEditCitizen    MutationKind = "edit_citizen"
	KindDeleteCitizen  MutationKind = "delete_citizen"
	KindAddMilitary    MutationKind = "add_military"
	KindEditMilitary   MutationKind = "edit_military"
	KindDeleteMilitary MutationKind = "delete_military"
	KindAddRecord      MutationKind = "add_record"
	KindEditRecord     MutationKind = "edit_record"
	KindDeleteRecord   MutationKind = "delete_record"
)

// Исходы изменения.
const (
	outcomeCommitted = "committed"
	outcomeRejected  = "rejected"
	outcomeForbidden = "forbidden"
	outcomeFailed    = "failed"
)

// MilitariesRegion - область взаимного исключения для проверки и вставки
// серии военного билета.
const MilitariesRegion = "militaries"

var mutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dm_mutations_total",
		Help: "Количество изменений личных дел по виду и исходу",
	},
	[]string{"kind", "outcome"},
)

// StoreRunner выполняет функцию в транзакции с набором репозиториев.
// Реализуется repository.TxRunner.
type StoreRunner interface {
	RunInStore(ctx context.Context, fn func(s *repository.Store) error) error
}

// Audit - запись журнала, которую нужно добавить после изменения.
// Пустой Type - изменение без записи в журнал.
type Audit struct {
	CitizenID int64
	Type      string
}

// Unit - зависимые записи одного изменения.
type Unit func(ctx context.Context, s *repository.Store) (Audit, error)

// Coordinator - координатор транзакционных изменений.
type Coordinator struct {
	runner StoreRunner
	direct *repository.Store
	logger *slog.Logger
}

// NewCoordinator создаёт координатор.
// direct - репозитории вне транзакции для одиночных операторов.
func NewCoordinator(runner StoreRunner, direct *repository.Store, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		runner: runner,
		direct: direct,
		logger: logger.With(slog.String("component", "coordinator")),
	}
}

// Mutate выполняет изменение kind атомарно.
// Права проверяются до начала транзакции. Запись журнала добавляется
// в той же транзакции. Ошибки ErrNotFound, ErrConflict и ErrValidation
// из fn возвращаются как есть, остальные - как ErrStore.
func (c *Coordinator) Mutate(ctx context.Context, caller *rbac.Caller, kind MutationKind, fn Unit) error {
	if err := c.authorize(caller, kind); err != nil {
		return err
	}

	err := c.runner.RunInStore(ctx, func(s *repository.Store) error {
		audit, err := fn(ctx, s)
		if err != nil {
			return err
		}
		if audit.Type == "" {
			return nil
		}
		return s.Actions.Append(ctx, &model.Action{
			UserID:    caller.ID,
			CitizenID: audit.CitizenID,
			Type:      audit.Type,
		})
	})
	return c.finish(caller, kind, err)
}

// Exec выполняет одиночный оператор kind вне транзакции и без записи
// в журнал. Используется удалениями записей о службе и истории учёта.
func (c *Coordinator) Exec(ctx context.Context, caller *rbac.Caller, kind MutationKind, fn func(ctx context.Context, s *repository.Store) error) error {
	if err := c.authorize(caller, kind); err != nil {
		return err
	}
	return c.finish(caller, kind, fn(ctx, c.direct))
}

func (c *Coordinator) authorize(caller *rbac.Caller, kind MutationKind) error {
	if caller.CanMutate() {
		return nil
	}
	mutationsTotal.WithLabelValues(string(kind), outcomeForbidden).Inc()
	return fmt.Errorf("%w: изменения разрешены только роли %s", ErrForbidden, rbac.RoleEditor)
}

func (c *Coordinator) finish(caller *rbac.Caller, kind MutationKind, err error) error {
	if err == nil {
		mutationsTotal.WithLabelValues(string(kind), outcomeCommitted).Inc()
		c.logger.Debug("Изменение зафиксировано",
			slog.String("kind", string(kind)),
			slog.Int64("user_id", caller.ID),
		)
		return nil
	}

	if isPrecondition(err) {
		mutationsTotal.WithLabelValues(string(kind), outcomeRejected).Inc()
		return err
	}

	mutationsTotal.WithLabelValues(string(kind), outcomeFailed).Inc()
	c.logger.Error("Изменение откачено",
		slog.String("kind", string(kind)),
		slog.Int64("user_id", caller.ID),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %s", ErrStore, kind)
}

// isPrecondition - ошибка проверки, а не сбой хранилища.
func isPrecondition(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation)
}

// notFound переводит отсутствие записи в ErrNotFound, остальное возвращает как есть.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrReference) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

// conflict - нарушение уникальности в хранилище.
func conflict(err error) bool {
	return errors.Is(err, repository.ErrConflict)
}
