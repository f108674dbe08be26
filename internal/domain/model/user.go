// Пакет model - доменные модели Dossier Module.
package model

// User - сотрудник военкомата, от имени которого выполняются изменения.
// Хранится в таблице users.
type User struct {
	// ID - идентификатор пользователя
	ID int64 `json:"id"`
	// Email - адрес электронной почты (логин)
	Email string `json:"email"`
	// PasswordHash - bcrypt-хэш пароля, наружу не отдаётся
	PasswordHash string `json:"-"`
	// Role - роль (editor, viewer)
	Role string `json:"role"`
}
