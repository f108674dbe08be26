package model

// Категории годности к военной службе.
const (
	CategoryA = "А"
	CategoryB = "Б"
	CategoryV = "В"
	CategoryG = "Г"
	CategoryD = "Д"
)

// FeasibilityCategories - допустимые категории годности.
var FeasibilityCategories = []string{CategoryA, CategoryB, CategoryV, CategoryG, CategoryD}

// IsValidCategory проверяет, входит ли код в перечень категорий годности.
func IsValidCategory(category string) bool {
	for _, c := range FeasibilityCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Citizen - гражданин, состоящий на воинском учёте.
// Хранится в таблице citizens, ровно одно личное дело на гражданина.
type Citizen struct {
	ID         int64
	FirstName  string
	MiddleName *string
	LastName   string
	// Passport - серия и номер паспорта, 10 цифр
	Passport       string
	PersonalFileID int64
}

// PersonalFile - личное дело: категория годности и срок отсрочки.
// Принадлежит ровно одному гражданину.
type PersonalFile struct {
	ID                  int64
	FeasibilityCategory string
	// DefermentEndDate - окончание отсрочки (nil, если отсрочки нет)
	DefermentEndDate *Date
}

// CitizenSummary - строка плоского списка граждан (гражданин + личное дело).
type CitizenSummary struct {
	ID                  int64   `json:"id"`
	FirstName           string  `json:"first_name"`
	MiddleName          *string `json:"middle_name"`
	LastName            string  `json:"last_name"`
	Passport            string  `json:"passport"`
	FeasibilityCategory string  `json:"feasibility_category"`
	DefermentEndDate    *Date   `json:"deferment_end_date"`
}
