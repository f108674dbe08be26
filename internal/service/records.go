// records.go - сервис истории постановки на учёт и снятия с учёта.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/rbac"
	"github.com/bigkaa/voenkomat/dossier-module/internal/repository"
)

// RecordInput - данные записи истории учёта.
// CitizenID используется только при добавлении.
type RecordInput struct {
	CitizenID    int64
	DepartmentID int64
	Type         string
	Date         model.Date
}

// Validate проверяет формат полей.
func (in *RecordInput) Validate() error {
	if !model.IsValidRecordType(in.Type) {
		return fmt.Errorf("%w: type: %s или %s", ErrValidation, model.RecordRegistered, model.RecordRemoved)
	}
	if in.DepartmentID <= 0 {
		return fmt.Errorf("%w: department_id обязателен", ErrValidation)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date обязательна", ErrValidation)
	}
	return nil
}

// RecordService - сервис истории учёта.
type RecordService struct {
	coord  *Coordinator
	logger *slog.Logger
}

// NewRecordService создаёт сервис истории учёта.
func NewRecordService(coord *Coordinator, logger *slog.Logger) *RecordService {
	return &RecordService{
		coord:  coord,
		logger: logger.With(slog.String("component", "record_service")),
	}
}

// Add добавляет запись в историю учёта личного дела гражданина.
func (s *RecordService) Add(ctx context.Context, caller *rbac.Caller, in RecordInput) (int64, error) {
	if in.CitizenID <= 0 {
		return 0, fmt.Errorf("%w: citizen_id обязателен", ErrValidation)
	}
	if err := in.Validate(); err != nil {
		return 0, err
	}

	var recordID int64
	err := s.coord.Mutate(ctx, caller, KindAddRecord, func(ctx context.Context, st *repository.Store) (Audit, error) {
		c, err := st.Citizens.GetByID(ctx, in.CitizenID)
		if err != nil {
			return Audit{}, notFound(err, "гражданин %d", in.CitizenID)
		}
		if err := requireDepartment(ctx, st, in.DepartmentID); err != nil {
			return Audit{}, err
		}

		rec := &model.Record{
			PersonalFileID: c.PersonalFileID,
			DepartmentID:   in.DepartmentID,
			Type:           in.Type,
			Date:           in.Date,
		}
		if err := st.Records.Create(ctx, rec); err != nil {
			return Audit{}, notFound(err, "военкомат %d", in.DepartmentID)
		}

		recordID = rec.ID
		return Audit{CitizenID: c.ID, Type: model.ActionEdit}, nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Запись истории учёта добавлена",
		slog.Int64("record_id", recordID),
		slog.Int64("citizen_id", in.CitizenID),
	)
	return recordID, nil
}

// Edit обновляет запись истории учёта. Гражданин для журнала
// определяется через личное дело обновлённой записи.
func (s *RecordService) Edit(ctx context.Context, caller *rbac.Caller, id int64, in RecordInput) (*model.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rec := &model.Record{
		ID:           id,
		DepartmentID: in.DepartmentID,
		Type:         in.Type,
		Date:         in.Date,
	}
	err := s.coord.Mutate(ctx, caller, KindEditRecord, func(ctx context.Context, st *repository.Store) (Audit, error) {
		if err := requireDepartment(ctx, st, in.DepartmentID); err != nil {
			return Audit{}, err
		}
		if err := st.Records.Update(ctx, rec); err != nil {
			return Audit{}, notFound(err, "запись истории учёта %d", id)
		}

		c, err := st.Citizens.GetByPersonalFileID(ctx, rec.PersonalFileID)
		if err != nil {
			return Audit{}, notFound(err, "владелец личного дела %d", rec.PersonalFileID)
		}
		return Audit{CitizenID: c.ID, Type: model.ActionEdit}, nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete удаляет запись истории учёта одним оператором, без записи в журнал.
func (s *RecordService) Delete(ctx context.Context, caller *rbac.Caller, id int64) error {
	return s.coord.Exec(ctx, caller, KindDeleteRecord, func(ctx context.Context, st *repository.Store) error {
		return notFound(st.Records.Delete(ctx, id), "запись истории учёта %d", id)
	})
}

func requireDepartment(ctx context.Context, st *repository.Store, id int64) error {
	ok, err := st.Departments.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: военкомат %d", ErrNotFound, id)
	}
	return nil
}
