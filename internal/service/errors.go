// errors.go - ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrValidation - ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrForbidden - у субъекта нет права на изменение данных.
	ErrForbidden = errors.New("доступ запрещён")
	// ErrNotFound - ресурс или родительская запись не найдены.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict - конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт: ресурс уже существует")
	// ErrStore - сбой хранилища внутри изменения; изменение откачено.
	ErrStore = errors.New("ошибка хранилища")
	// ErrInvalidCredentials - неверный email или пароль.
	ErrInvalidCredentials = errors.New("неверный email или пароль")
)
