package model

// Military - запись о прохождении военной службы (военный билет).
// Хранится в таблице militaries.
type Military struct {
	ID        int64 `json:"id"`
	CitizenID int64 `json:"citizen_id"`
	// MilitarySerial - серия и номер военного билета: 2 заглавные буквы + 7 цифр
	MilitarySerial string  `json:"military_serial"`
	Comment        *string `json:"comment"`
	ReleaseDate    Date    `json:"release_date"`
}
