package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
)

// ActionRepository - журнал действий (только добавление).
type ActionRepository interface {
	// Append добавляет запись журнала в рамках текущего DBTX
	// и заполняет a.ID и a.CreatedAt.
	Append(ctx context.Context, a *model.Action) error
	// ListByCitizen возвращает журнал гражданина в порядке добавления.
	ListByCitizen(ctx context.Context, citizenID int64) ([]model.Action, error)
}

type actionRepo struct {
	db DBTX
}

// NewActionRepository создаёт репозиторий журнала действий.
func NewActionRepository(db DBTX) ActionRepository {
	return &actionRepo{db: db}
}

func (r *actionRepo) Append(ctx context.Context, a *model.Action) error {
	query := `
		INSERT INTO actions (user_id, citizen_id, type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, a.UserID, a.CitizenID, a.Type).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: пользователь %d или гражданин %d", ErrReference, a.UserID, a.CitizenID)
		}
		return fmt.Errorf("ошибка записи в журнал действий: %w", err)
	}
	return nil
}

func (r *actionRepo) ListByCitizen(ctx context.Context, citizenID int64) ([]model.Action, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, citizen_id, type, created_at
		FROM actions
		WHERE citizen_id = $1
		ORDER BY id`, citizenID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения журнала действий: %w", err)
	}
	defer rows.Close()

	result := []model.Action{}
	for rows.Next() {
		var a model.Action
		if err := rows.Scan(&a.ID, &a.UserID, &a.CitizenID, &a.Type, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
