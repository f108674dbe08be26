package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
)

// DepartmentRepository - справочник военкоматов (только чтение).
type DepartmentRepository interface {
	List(ctx context.Context) ([]model.Department, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type departmentRepo struct {
	db DBTX
}

// NewDepartmentRepository создаёт репозиторий справочника военкоматов.
func NewDepartmentRepository(db DBTX) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) List(ctx context.Context) ([]model.Department, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, address FROM departments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка военкоматов: %w", err)
	}
	defer rows.Close()

	result := []model.Department{}
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Address); err != nil {
			return nil, fmt.Errorf("ошибка сканирования военкомата: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *departmentRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM departments WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки военкомата: %w", err)
	}
	return exists, nil
}
