package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
)

// UserRepository - интерфейс для таблицы users.
type UserRepository interface {
	// GetByEmail возвращает пользователя вместе с хэшем пароля.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// List возвращает всех пользователей (хэш пароля не заполняется).
	List(ctx context.Context) ([]model.User, error)
	// UpsertEditor создаёт редактора или обновляет пароль и роль существующего.
	UpsertEditor(ctx context.Context, email, passwordHash string) (*model.User, error)
}

type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password, role FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, email, role FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	defer rows.Close()

	result := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Role); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *userRepo) UpsertEditor(ctx context.Context, email, passwordHash string) (*model.User, error) {
	query := `
		INSERT INTO users (email, password, role)
		VALUES ($1, $2, 'editor')
		ON CONFLICT (email) DO UPDATE SET
			password = EXCLUDED.password,
			role = EXCLUDED.role
		RETURNING id, email, role`

	u := &model.User{PasswordHash: passwordHash}
	if err := r.db.QueryRow(ctx, query, email, passwordHash).Scan(&u.ID, &u.Email, &u.Role); err != nil {
		return nil, fmt.Errorf("ошибка upsert редактора: %w", err)
	}
	return u, nil
}
