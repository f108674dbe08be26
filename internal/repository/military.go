package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
)

// MilitaryRepository - интерфейс для таблицы militaries.
type MilitaryRepository interface {
	// Create создаёт запись о службе и заполняет m.ID.
	// ErrConflict - серия уже занята, ErrReference - гражданина нет.
	Create(ctx context.Context, m *model.Military) error
	// Update обновляет серию, комментарий и дату увольнения.
	// m заполняется строкой после обновления (включая citizen_id).
	Update(ctx context.Context, m *model.Military) error
	// Delete удаляет запись о службе.
	Delete(ctx context.Context, id int64) error
	// ExistsSerial проверяет, занята ли серия военного билета
	// записью, отличной от excludeID (0 - без исключения).
	ExistsSerial(ctx context.Context, serial string, excludeID int64) (bool, error)
}

type militaryRepo struct {
	db DBTX
}

// NewMilitaryRepository создаёт репозиторий записей о службе.
func NewMilitaryRepository(db DBTX) MilitaryRepository {
	return &militaryRepo{db: db}
}

func (r *militaryRepo) Create(ctx context.Context, m *model.Military) error {
	query := `
		INSERT INTO militaries (citizen_id, military_serial, comment, release_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		m.CitizenID, m.MilitarySerial, m.Comment, m.ReleaseDate.Time,
	).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: серия %s", ErrConflict, m.MilitarySerial)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: гражданин %d", ErrReference, m.CitizenID)
		}
		return fmt.Errorf("ошибка создания записи о службе: %w", err)
	}
	return nil
}

func (r *militaryRepo) Update(ctx context.Context, m *model.Military) error {
	query := `
		UPDATE militaries SET military_serial = $1, comment = $2, release_date = $3
		WHERE id = $4
		RETURNING id, citizen_id, military_serial, comment, release_date`

	var releaseDate time.Time
	err := r.db.QueryRow(ctx, query,
		m.MilitarySerial, m.Comment, m.ReleaseDate.Time, m.ID,
	).Scan(&m.ID, &m.CitizenID, &m.MilitarySerial, &m.Comment, &releaseDate)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: серия %s", ErrConflict, m.MilitarySerial)
		}
		return fmt.Errorf("ошибка обновления записи о службе: %w", err)
	}
	m.ReleaseDate = model.NewDate(releaseDate)
	return nil
}

func (r *militaryRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM militaries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления записи о службе: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *militaryRepo) ExistsSerial(ctx context.Context, serial string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM militaries WHERE military_serial = $1 AND id <> $2)`,
		serial, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки серии военного билета: %w", err)
	}
	return exists, nil
}
