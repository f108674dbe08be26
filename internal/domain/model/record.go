package model

// Типы записей истории учёта.
const (
	RecordRegistered = "registered"
	RecordRemoved    = "removed"
)

// IsValidRecordType проверяет тип записи истории учёта.
func IsValidRecordType(t string) bool {
	return t == RecordRegistered || t == RecordRemoved
}

// Record - событие постановки на учёт или снятия с учёта в военкомате.
// Хранится в таблице record_history.
type Record struct {
	ID             int64  `json:"id"`
	PersonalFileID int64  `json:"personal_file_id"`
	DepartmentID   int64  `json:"department_id"`
	Type           string `json:"type"`
	Date           Date   `json:"date"`
}

// Department - военный комиссариат (справочник, только чтение).
type Department struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}
