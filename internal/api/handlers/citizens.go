// citizens.go - /api/citizens: список, личное дело, создание,
// изменение и удаление гражданина.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/voenkomat/dossier-module/internal/api/errors"
	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
	"github.com/bigkaa/voenkomat/dossier-module/internal/service"
)

// citizenRequest - тело POST/PUT /api/citizens.
type citizenRequest struct {
	FirstName           string      `json:"first_name" validate:"required,max=255"`
	MiddleName          *string     `json:"middle_name" validate:"omitempty,min=1,max=255"`
	LastName            string      `json:"last_name" validate:"required,max=255"`
	Passport            string      `json:"passport" validate:"required,len=10,numeric"`
	FeasibilityCategory string      `json:"feasibility_category" validate:"required,oneof=А Б В Г Д"`
	DefermentEndDate    *model.Date `json:"deferment_end_date"`
}

func (req *citizenRequest) input() service.CitizenInput {
	return service.CitizenInput{
		FirstName:           req.FirstName,
		MiddleName:          req.MiddleName,
		LastName:            req.LastName,
		Passport:            req.Passport,
		FeasibilityCategory: req.FeasibilityCategory,
		DefermentEndDate:    req.DefermentEndDate,
	}
}

// CitizenHandler - обработчик граждан.
type CitizenHandler struct {
	citizens CitizenService
	logger   *slog.Logger
}

// NewCitizenHandler создаёт обработчик граждан.
func NewCitizenHandler(citizens CitizenService, logger *slog.Logger) *CitizenHandler {
	return &CitizenHandler{
		citizens: citizens,
		logger:   logger.With(slog.String("component", "citizen_handler")),
	}
}

// List - GET /api/citizens.
func (h *CitizenHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.citizens.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if list == nil {
		list = []model.CitizenSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get - GET /api/citizens/{id}. Отсутствующий гражданин - 404.
func (h *CitizenHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	d, err := h.citizens.Dossier(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			apierrors.NotFound(w, "Гражданин не найден.")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Create - POST /api/citizens.
func (h *CitizenHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req citizenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.citizens.Create(r.Context(), c, req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created("Гражданин добавлен", "citizenId", id))
}

// Update - PUT /api/citizens/{id}.
func (h *CitizenHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req citizenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.citizens.Edit(r.Context(), c, id, req.input()); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created("Гражданин изменён", "citizenId", id))
}

// Delete - DELETE /api/citizens/{id}.
func (h *CitizenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.citizens.Delete(r.Context(), c, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created("Гражданин удалён", "citizenId", id))
}
