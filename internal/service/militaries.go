// militaries.go - сервис записей о военной службе.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/rbac"
	"github.com/bigkaa/voenkomat/dossier-module/internal/repository"
)

// serialPattern - две заглавные кириллические буквы и семь цифр.
var serialPattern = regexp.MustCompile(`^[А-Я]{2}[0-9]{7}$`)

// MilitaryInput - данные записи о службе.
// CitizenID используется только при добавлении.
type MilitaryInput struct {
	CitizenID      int64
	MilitarySerial string
	Comment        *string
	ReleaseDate    model.Date
}

// Validate проверяет формат полей.
func (in *MilitaryInput) Validate() error {
	if !serialPattern.MatchString(in.MilitarySerial) {
		return fmt.Errorf("%w: military_serial: 2 заглавные буквы и 7 цифр", ErrValidation)
	}
	if in.Comment != nil && *in.Comment == "" {
		return fmt.Errorf("%w: comment не может быть пустым", ErrValidation)
	}
	if in.ReleaseDate.IsZero() {
		return fmt.Errorf("%w: release_date обязательна", ErrValidation)
	}
	return nil
}

// MilitaryService - сервис записей о военной службе.
type MilitaryService struct {
	coord  *Coordinator
	logger *slog.Logger
}

// NewMilitaryService создаёт сервис записей о службе.
func NewMilitaryService(coord *Coordinator, logger *slog.Logger) *MilitaryService {
	return &MilitaryService{
		coord:  coord,
		logger: logger.With(slog.String("component", "military_service")),
	}
}

// Add добавляет запись о службе гражданину.
// Проверка серии и вставка выполняются под блокировкой MilitariesRegion,
// поэтому два одновременных запроса с одной серией не проходят оба.
func (s *MilitaryService) Add(ctx context.Context, caller *rbac.Caller, in MilitaryInput) (int64, error) {
	if in.CitizenID <= 0 {
		return 0, fmt.Errorf("%w: citizen_id обязателен", ErrValidation)
	}
	if err := in.Validate(); err != nil {
		return 0, err
	}

	var militaryID int64
	err := s.coord.Mutate(ctx, caller, KindAddMilitary, func(ctx context.Context, st *repository.Store) (Audit, error) {
		if err := st.Regions.Lock(ctx, MilitariesRegion); err != nil {
			return Audit{}, err
		}

		if _, err := st.Citizens.GetByID(ctx, in.CitizenID); err != nil {
			return Audit{}, notFound(err, "гражданин %d", in.CitizenID)
		}

		taken, err := st.Militaries.ExistsSerial(ctx, in.MilitarySerial, 0)
		if err != nil {
			return Audit{}, err
		}
		if taken {
			return Audit{}, fmt.Errorf("%w: серия %s уже зарегистрирована", ErrConflict, in.MilitarySerial)
		}

		m := &model.Military{
			CitizenID:      in.CitizenID,
			MilitarySerial: in.MilitarySerial,
			Comment:        in.Comment,
			ReleaseDate:    in.ReleaseDate,
		}
		if err := st.Militaries.Create(ctx, m); err != nil {
			if conflict(err) {
				return Audit{}, fmt.Errorf("%w: серия %s уже зарегистрирована", ErrConflict, in.MilitarySerial)
			}
			return Audit{}, notFound(err, "гражданин %d", in.CitizenID)
		}

		militaryID = m.ID
		return Audit{CitizenID: in.CitizenID, Type: model.ActionEdit}, nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Запись о службе добавлена",
		slog.Int64("military_id", militaryID),
		slog.Int64("citizen_id", in.CitizenID),
	)
	return militaryID, nil
}

// Edit обновляет запись о службе. Журнал пишется на гражданина,
// которому принадлежит обновлённая строка.
func (s *MilitaryService) Edit(ctx context.Context, caller *rbac.Caller, id int64, in MilitaryInput) (*model.Military, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	m := &model.Military{
		ID:             id,
		MilitarySerial: in.MilitarySerial,
		Comment:        in.Comment,
		ReleaseDate:    in.ReleaseDate,
	}
	err := s.coord.Mutate(ctx, caller, KindEditMilitary, func(ctx context.Context, st *repository.Store) (Audit, error) {
		if err := st.Militaries.Update(ctx, m); err != nil {
			if conflict(err) {
				return Audit{}, fmt.Errorf("%w: серия %s уже зарегистрирована", ErrConflict, in.MilitarySerial)
			}
			return Audit{}, notFound(err, "запись о службе %d", id)
		}
		return Audit{CitizenID: m.CitizenID, Type: model.ActionEdit}, nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Delete удаляет запись о службе одним оператором, без записи в журнал.
func (s *MilitaryService) Delete(ctx context.Context, caller *rbac.Caller, id int64) error {
	return s.coord.Exec(ctx, caller, KindDeleteMilitary, func(ctx context.Context, st *repository.Store) error {
		return notFound(st.Militaries.Delete(ctx, id), "запись о службе %d", id)
	})
}
