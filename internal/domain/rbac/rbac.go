// Пакет rbac - роли сотрудников и права на изменение личных дел.
// Изменять данные может только редактор, остальные роли работают на чтение.
package rbac

// Роли в порядке возрастания привилегий.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
)

// roleWeight - вес роли для сравнения.
// Чем выше вес, тем больше привилегий.
var roleWeight = map[string]int{
	RoleViewer: 1,
	RoleEditor: 2,
}

// Caller - аутентифицированный субъект запроса {id, email, role}.
// Кладётся в контекст middleware аутентификации.
type Caller struct {
	ID    int64
	Email string
	Role  string
}

// CanMutate сообщает, может ли субъект выполнять изменения.
func (c *Caller) CanMutate() bool {
	return c != nil && CanMutate(c.Role)
}

// CanMutate проверяет, разрешены ли роли изменения данных.
func CanMutate(role string) bool {
	return role == RoleEditor
}

// maxRole возвращает роль с максимальными привилегиями из двух.
func maxRole(a, b string) string {
	if roleWeight[a] >= roleWeight[b] {
		return a
	}
	return b
}

// HighestRole возвращает максимальную роль из набора.
// Неизвестные роли пропускаются. Если подходящих нет - пустая строка.
func HighestRole(roles []string) string {
	highest := ""
	for _, r := range roles {
		if !IsValidRole(r) {
			continue
		}
		if highest == "" {
			highest = r
			continue
		}
		highest = maxRole(highest, r)
	}
	return highest
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}
