package model

import "time"

// Dossier - собранное личное дело гражданина: данные, категория годности,
// военная служба, история учёта и журнал действий.
// Ветви Militaries, Records и Actions всегда непустые срезы ([] при отсутствии строк).
type Dossier struct {
	ID                  int64             `json:"id"`
	FirstName           string            `json:"first_name"`
	MiddleName          *string           `json:"middle_name"`
	LastName            string            `json:"last_name"`
	Passport            string            `json:"passport"`
	FeasibilityCategory string            `json:"feasibility_category"`
	DefermentEndDate    *Date             `json:"deferment_end_date"`
	Militaries          []DossierMilitary `json:"militaries"`
	Records             []DossierRecord   `json:"records"`
	Actions             []DossierAction   `json:"actions"`
}

// DossierMilitary - элемент ветви militaries.
type DossierMilitary struct {
	ID             int64   `json:"id"`
	CitizenID      int64   `json:"citizen_id"`
	MilitarySerial string  `json:"military_serial"`
	Comment        *string `json:"comment"`
	ReleaseDate    Date    `json:"release_date"`
}

// DossierRecord - элемент ветви records с данными военкомата.
type DossierRecord struct {
	ID         int64      `json:"id"`
	Type       string     `json:"type"`
	Date       Date       `json:"date"`
	Department Department `json:"department"`
}

// DossierAction - элемент ветви actions.
type DossierAction struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	UserEmail string    `json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
}
