// reference.go - справочные данные: военкоматы и пользователи.
package service

import (
	"context"
	"fmt"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
	"github.com/bigkaa/voenkomat/dossier-module/internal/repository"
)

// ReferenceService - чтение справочников.
type ReferenceService struct {
	departments repository.DepartmentRepository
	users       repository.UserRepository
}

// NewReferenceService создаёт сервис справочников.
func NewReferenceService(departments repository.DepartmentRepository, users repository.UserRepository) *ReferenceService {
	return &ReferenceService{departments: departments, users: users}
}

// Departments возвращает список военкоматов.
func (s *ReferenceService) Departments(ctx context.Context) ([]model.Department, error) {
	list, err := s.departments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err) //nolint:errorlint // намеренный двойной wrap
	}
	return list, nil
}

// Users возвращает список пользователей без хэшей паролей.
func (s *ReferenceService) Users(ctx context.Context) ([]model.User, error) {
	list, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err) //nolint:errorlint // намеренный двойной wrap
	}
	return list, nil
}
