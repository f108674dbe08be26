// reference.go - справочники: подразделения и пользователи.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
)

// ReferenceHandler - обработчик справочников.
type ReferenceHandler struct {
	reference ReferenceService
	logger    *slog.Logger
}

// NewReferenceHandler создаёт обработчик справочников.
func NewReferenceHandler(reference ReferenceService, logger *slog.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		reference: reference,
		logger:    logger.With(slog.String("component", "reference_handler")),
	}
}

// Departments - GET /api/departments.
func (h *ReferenceHandler) Departments(w http.ResponseWriter, r *http.Request) {
	list, err := h.reference.Departments(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if list == nil {
		list = []model.Department{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Users - GET /api/users. Хеши паролей не отдаются.
func (h *ReferenceHandler) Users(w http.ResponseWriter, r *http.Request) {
	list, err := h.reference.Users(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if list == nil {
		list = []model.User{}
	}
	writeJSON(w, http.StatusOK, list)
}
