// militaries.go - /api/militaries: записи о военной службе.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
	"github.com/bigkaa/voenkomat/dossier-module/internal/service"
)

// militaryCreateRequest - тело POST /api/militaries.
type militaryCreateRequest struct {
	CitizenID      int64      `json:"citizen_id" validate:"required,gt=0"`
	MilitarySerial string     `json:"military_serial" validate:"required,len=9"`
	Comment        *string    `json:"comment" validate:"omitempty,min=1,max=1000"`
	ReleaseDate    model.Date `json:"release_date"`
}

// militaryUpdateRequest - тело PUT /api/militaries/{id}. Владелец записи не меняется.
type militaryUpdateRequest struct {
	MilitarySerial string     `json:"military_serial" validate:"required,len=9"`
	Comment        *string    `json:"comment" validate:"omitempty,min=1,max=1000"`
	ReleaseDate    model.Date `json:"release_date"`
}

func (req *militaryCreateRequest) input() service.MilitaryInput {
	return service.MilitaryInput{
		CitizenID:      req.CitizenID,
		MilitarySerial: req.MilitarySerial,
		Comment:        req.Comment,
		ReleaseDate:    req.ReleaseDate,
	}
}

func (req *militaryUpdateRequest) input() service.MilitaryInput {
	return service.MilitaryInput{
		MilitarySerial: req.MilitarySerial,
		Comment:        req.Comment,
		ReleaseDate:    req.ReleaseDate,
	}
}

// MilitaryHandler - обработчик записей о службе.
type MilitaryHandler struct {
	militaries MilitaryService
	logger     *slog.Logger
}

// NewMilitaryHandler создаёт обработчик записей о службе.
func NewMilitaryHandler(militaries MilitaryService, logger *slog.Logger) *MilitaryHandler {
	return &MilitaryHandler{
		militaries: militaries,
		logger:     logger.With(slog.String("component", "military_handler")),
	}
}

// Create - POST /api/militaries.
func (h *MilitaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req militaryCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.militaries.Add(r.Context(), c, req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created("Запись о службе добавлена", "militaryId", id))
}

// Update - PUT /api/militaries/{id}. Возвращает обновлённую запись.
func (h *MilitaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req militaryUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.militaries.Edit(r.Context(), c, id, req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Delete - DELETE /api/militaries/{id}.
func (h *MilitaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.militaries.Delete(r.Context(), c, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created("Запись о службе удалена", "militaryId", id))
}
