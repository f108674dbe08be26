// records.go - /api/records: история воинского учёта.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
	"github.com/bigkaa/voenkomat/dossier-module/internal/service"
)

// recordCreateRequest - тело POST /api/records.
type recordCreateRequest struct {
	CitizenID    int64      `json:"citizen_id" validate:"required,gt=0"`
	DepartmentID int64      `json:"department_id" validate:"required,gt=0"`
	Type         string     `json:"type" validate:"required,oneof=registered removed"`
	Date         model.Date `json:"date"`
}

// recordUpdateRequest - тело PUT /api/records/{id}.
type recordUpdateRequest struct {
	DepartmentID int64      `json:"department_id" validate:"required,gt=0"`
	Type         string     `json:"type" validate:"required,oneof=registered removed"`
	Date         model.Date `json:"date"`
}

func (req *recordCreateRequest) input() service.RecordInput {
	return service.RecordInput{
		CitizenID:    req.CitizenID,
		DepartmentID: req.DepartmentID,
		Type:         req.Type,
		Date:         req.Date,
	}
}

func (req *recordUpdateRequest) input() service.RecordInput {
	return service.RecordInput{
		DepartmentID: req.DepartmentID,
		Type:         req.Type,
		Date:         req.Date,
	}
}

// RecordHandler - обработчик истории учёта.
type RecordHandler struct {
	records RecordService
	logger  *slog.Logger
}

// NewRecordHandler создаёт обработчик истории учёта.
func NewRecordHandler(records RecordService, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		records: records,
		logger:  logger.With(slog.String("component", "record_handler")),
	}
}

// Create - POST /api/records.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	var req recordCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.records.Add(r.Context(), c, req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created("Запись учёта добавлена", "recordId", id))
}

// Update - PUT /api/records/{id}. Возвращает обновлённую запись.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req recordUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.records.Edit(r.Context(), c, id, req.input())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Delete - DELETE /api/records/{id}.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.records.Delete(r.Context(), c, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created("Запись учёта удалена", "recordId", id))
}
