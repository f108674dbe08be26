package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
)

// CitizenRepository - интерфейс для таблицы citizens.
type CitizenRepository interface {
	// Create создаёт гражданина и заполняет c.ID.
	// c.PersonalFileID должен ссылаться на уже созданное личное дело.
	Create(ctx context.Context, c *model.Citizen) error
	// Update обновляет ФИО и паспорт гражданина.
	Update(ctx context.Context, c *model.Citizen) error
	// GetByID возвращает гражданина по ID.
	GetByID(ctx context.Context, id int64) (*model.Citizen, error)
	// GetByPersonalFileID возвращает владельца личного дела.
	GetByPersonalFileID(ctx context.Context, personalFileID int64) (*model.Citizen, error)
}

type citizenRepo struct {
	db DBTX
}

// NewCitizenRepository создаёт репозиторий граждан.
func NewCitizenRepository(db DBTX) CitizenRepository {
	return &citizenRepo{db: db}
}

const citizenColumns = `id, first_name, middle_name, last_name, passport, personal_file_id`

func (r *citizenRepo) Create(ctx context.Context, c *model.Citizen) error {
	query := `
		INSERT INTO citizens (first_name, middle_name, last_name, passport, personal_file_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		c.FirstName, c.MiddleName, c.LastName, c.Passport, c.PersonalFileID,
	).Scan(&c.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: личное дело %d", ErrReference, c.PersonalFileID)
		}
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания гражданина: %w", err)
	}
	return nil
}

func (r *citizenRepo) Update(ctx context.Context, c *model.Citizen) error {
	query := `
		UPDATE citizens SET first_name = $1, middle_name = $2, last_name = $3, passport = $4
		WHERE id = $5
		RETURNING personal_file_id`

	err := r.db.QueryRow(ctx, query,
		c.FirstName, c.MiddleName, c.LastName, c.Passport, c.ID,
	).Scan(&c.PersonalFileID)
	if err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления гражданина: %w", err)
	}
	return nil
}

func (r *citizenRepo) GetByID(ctx context.Context, id int64) (*model.Citizen, error) {
	query := fmt.Sprintf(`SELECT %s FROM citizens WHERE id = $1`, citizenColumns)
	return r.getOne(ctx, query, id)
}

func (r *citizenRepo) GetByPersonalFileID(ctx context.Context, personalFileID int64) (*model.Citizen, error) {
	query := fmt.Sprintf(`SELECT %s FROM citizens WHERE personal_file_id = $1`, citizenColumns)
	return r.getOne(ctx, query, personalFileID)
}

func (r *citizenRepo) getOne(ctx context.Context, query string, arg int64) (*model.Citizen, error) {
	c := &model.Citizen{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.FirstName, &c.MiddleName, &c.LastName, &c.Passport, &c.PersonalFileID,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения гражданина: %w", err)
	}
	return c, nil
}
