package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
)

// PersonalFileRepository - интерфейс для таблицы personal_files.
type PersonalFileRepository interface {
	// Create создаёт личное дело и заполняет pf.ID.
	Create(ctx context.Context, pf *model.PersonalFile) error
	// Update обновляет категорию годности и срок отсрочки.
	Update(ctx context.Context, pf *model.PersonalFile) error
	// Delete удаляет личное дело; гражданин и его данные удаляются каскадно.
	Delete(ctx context.Context, id int64) error
}

type personalFileRepo struct {
	db DBTX
}

// NewPersonalFileRepository создаёт репозиторий личных дел.
func NewPersonalFileRepository(db DBTX) PersonalFileRepository {
	return &personalFileRepo{db: db}
}

func (r *personalFileRepo) Create(ctx context.Context, pf *model.PersonalFile) error {
	query := `
		INSERT INTO personal_files (feasibility_category, deferment_end_date)
		VALUES ($1, $2)
		RETURNING id`

	err := r.db.QueryRow(ctx, query, pf.FeasibilityCategory, pf.DefermentEndDate.TimePtr()).Scan(&pf.ID)
	if err != nil {
		return fmt.Errorf("ошибка создания личного дела: %w", err)
	}
	return nil
}

func (r *personalFileRepo) Update(ctx context.Context, pf *model.PersonalFile) error {
	query := `
		UPDATE personal_files SET feasibility_category = $1, deferment_end_date = $2
		WHERE id = $3
		RETURNING deferment_end_date`

	var deferment *time.Time
	err := r.db.QueryRow(ctx, query, pf.FeasibilityCategory, pf.DefermentEndDate.TimePtr(), pf.ID).Scan(&deferment)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления личного дела: %w", err)
	}
	pf.DefermentEndDate = model.DatePtr(deferment)
	return nil
}

func (r *personalFileRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM personal_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления личного дела: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
