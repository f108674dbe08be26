// citizens.go - сервис граждан: создание, изменение и удаление
// вместе с личным делом, список и сборка личного дела.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/rbac"
	"github.com/bigkaa/voenkomat/dossier-module/internal/repository"
)

var passportPattern = regexp.MustCompile(`^[0-9]{10}$`)

const maxNameLength = 255

var dossierAssemblyDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "dm_dossier_assembly_duration_seconds",
		Help:    "Длительность сборки личного дела в секундах",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"result"},
)

// CitizenInput - данные гражданина и его личного дела.
type CitizenInput struct {
	FirstName           string
	MiddleName          *string
	LastName            string
	Passport            string
	FeasibilityCategory string
	DefermentEndDate    *model.Date
}

// Validate проверяет формат полей.
func (in *CitizenInput) Validate() error {
	if err := validateName("first_name", in.FirstName); err != nil {
		return err
	}
	if err := validateName("last_name", in.LastName); err != nil {
		return err
	}
	if in.MiddleName != nil {
		if err := validateName("middle_name", *in.MiddleName); err != nil {
			return err
		}
	}
	if !passportPattern.MatchString(in.Passport) {
		return fmt.Errorf("%w: passport: 10 цифр", ErrValidation)
	}
	if !model.IsValidCategory(in.FeasibilityCategory) {
		return fmt.Errorf("%w: feasibility_category: одно из %s",
			ErrValidation, strings.Join(model.FeasibilityCategories, ", "))
	}
	return nil
}

func validateName(field, value string) error {
	n := utf8.RuneCountInString(value)
	if n == 0 || n > maxNameLength {
		return fmt.Errorf("%w: %s: от 1 до %d символов", ErrValidation, field, maxNameLength)
	}
	return nil
}

func (in *CitizenInput) personalFile() *model.PersonalFile {
	return &model.PersonalFile{
		FeasibilityCategory: in.FeasibilityCategory,
		DefermentEndDate:    in.DefermentEndDate,
	}
}

func (in *CitizenInput) citizen() *model.Citizen {
	return &model.Citizen{
		FirstName:  in.FirstName,
		MiddleName: in.MiddleName,
		LastName:   in.LastName,
		Passport:   in.Passport,
	}
}

// CitizenService - сервис граждан и личных дел.
type CitizenService struct {
	coord    *Coordinator
	dossiers repository.DossierRepository
	logger   *slog.Logger
}

// NewCitizenService создаёт сервис граждан.
func NewCitizenService(coord *Coordinator, dossiers repository.DossierRepository, logger *slog.Logger) *CitizenService {
	return &CitizenService{
		coord:    coord,
		dossiers: dossiers,
		logger:   logger.With(slog.String("component", "citizen_service")),
	}
}

// Create создаёт личное дело, гражданина и запись журнала "add".
func (s *CitizenService) Create(ctx context.Context, caller *rbac.Caller, in CitizenInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}

	var citizenID int64
	err := s.coord.Mutate(ctx, caller, KindCreateCitizen, func(ctx context.Context, st *repository.Store) (Audit, error) {
		pf := in.personalFile()
		if err := st.PersonalFiles.Create(ctx, pf); err != nil {
			return Audit{}, err
		}

		c := in.citizen()
		c.PersonalFileID = pf.ID
		if err := st.Citizens.Create(ctx, c); err != nil {
			return Audit{}, err
		}

		citizenID = c.ID
		return Audit{CitizenID: c.ID, Type: model.ActionAdd}, nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Гражданин создан",
		slog.Int64("citizen_id", citizenID),
		slog.Int64("user_id", caller.ID),
	)
	return citizenID, nil
}

// Edit обновляет личное дело и данные гражданина, пишет "edit".
func (s *CitizenService) Edit(ctx context.Context, caller *rbac.Caller, id int64, in CitizenInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	return s.coord.Mutate(ctx, caller, KindEditCitizen, func(ctx context.Context, st *repository.Store) (Audit, error) {
		existing, err := st.Citizens.GetByID(ctx, id)
		if err != nil {
			return Audit{}, notFound(err, "гражданин %d", id)
		}

		pf := in.personalFile()
		pf.ID = existing.PersonalFileID
		if err := st.PersonalFiles.Update(ctx, pf); err != nil {
			return Audit{}, err
		}

		c := in.citizen()
		c.ID = id
		if err := st.Citizens.Update(ctx, c); err != nil {
			return Audit{}, notFound(err, "гражданин %d", id)
		}

		return Audit{CitizenID: id, Type: model.ActionEdit}, nil
	})
}

// Delete удаляет личное дело гражданина; гражданин, записи о службе,
// история учёта и журнал удаляются каскадно. Запись журнала не создаётся.
func (s *CitizenService) Delete(ctx context.Context, caller *rbac.Caller, id int64) error {
	err := s.coord.Mutate(ctx, caller, KindDeleteCitizen, func(ctx context.Context, st *repository.Store) (Audit, error) {
		existing, err := st.Citizens.GetByID(ctx, id)
		if err != nil {
			return Audit{}, notFound(err, "гражданин %d", id)
		}
		if err := st.PersonalFiles.Delete(ctx, existing.PersonalFileID); err != nil {
			return Audit{}, notFound(err, "личное дело %d", existing.PersonalFileID)
		}
		return Audit{}, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Гражданин удалён",
		slog.Int64("citizen_id", id),
		slog.Int64("user_id", caller.ID),
	)
	return nil
}

// List возвращает плоский список граждан.
func (s *CitizenService) List(ctx context.Context) ([]model.CitizenSummary, error) {
	list, err := s.dossiers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err) //nolint:errorlint // намеренный двойной wrap
	}
	return list, nil
}

// Dossier собирает личное дело гражданина.
// Если гражданина нет - ErrNotFound.
func (s *CitizenService) Dossier(ctx context.Context, id int64) (*model.Dossier, error) {
	start := time.Now()
	d, err := s.dossiers.Get(ctx, id)
	elapsed := time.Since(start).Seconds()

	switch {
	case err != nil:
		dossierAssemblyDuration.WithLabelValues("error").Observe(elapsed)
		s.logger.Error("Ошибка сборки личного дела",
			slog.Int64("citizen_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrStore, err) //nolint:errorlint // намеренный двойной wrap
	case d == nil:
		dossierAssemblyDuration.WithLabelValues("not_found").Observe(elapsed)
		return nil, fmt.Errorf("%w: гражданин %d", ErrNotFound, id)
	default:
		dossierAssemblyDuration.WithLabelValues("ok").Observe(elapsed)
		return d, nil
	}
}
