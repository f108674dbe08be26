package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
)

// RecordRepository - интерфейс для таблицы record_history.
type RecordRepository interface {
	// Create создаёт запись истории учёта и заполняет rec.ID.
	Create(ctx context.Context, rec *model.Record) error
	// Update обновляет тип, военкомат и дату записи.
	// rec заполняется строкой после обновления (включая personal_file_id).
	Update(ctx context.Context, rec *model.Record) error
	// Delete удаляет запись истории учёта.
	Delete(ctx context.Context, id int64) error
}

type recordRepo struct {
	db DBTX
}

// NewRecordRepository создаёт репозиторий истории учёта.
func NewRecordRepository(db DBTX) RecordRepository {
	return &recordRepo{db: db}
}

func (r *recordRepo) Create(ctx context.Context, rec *model.Record) error {
	query := `
		INSERT INTO record_history (personal_file_id, department_id, type, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		rec.PersonalFileID, rec.DepartmentID, rec.Type, rec.Date.Time,
	).Scan(&rec.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: военкомат %d или личное дело %d", ErrReference, rec.DepartmentID, rec.PersonalFileID)
		}
		return fmt.Errorf("ошибка создания записи истории учёта: %w", err)
	}
	return nil
}

func (r *recordRepo) Update(ctx context.Context, rec *model.Record) error {
	query := `
		UPDATE record_history SET type = $1, department_id = $2, date = $3
		WHERE id = $4
		RETURNING id, personal_file_id, department_id, type, date`

	var date time.Time
	err := r.db.QueryRow(ctx, query,
		rec.Type, rec.DepartmentID, rec.Date.Time, rec.ID,
	).Scan(&rec.ID, &rec.PersonalFileID, &rec.DepartmentID, &rec.Type, &date)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: военкомат %d", ErrReference, rec.DepartmentID)
		}
		return fmt.Errorf("ошибка обновления записи истории учёта: %w", err)
	}
	rec.Date = model.NewDate(date)
	return nil
}

func (r *recordRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM record_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления записи истории учёта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
