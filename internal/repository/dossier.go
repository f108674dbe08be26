package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
)

// DossierRepository - сборка личного дела из нормализованных таблиц.
// Только чтение, без блокировок.
type DossierRepository interface {
	// Get собирает личное дело гражданина одним запросом.
	// Если гражданина нет, возвращает nil, nil.
	Get(ctx context.Context, citizenID int64) (*model.Dossier, error)
	// List возвращает плоский список граждан с данными личных дел.
	List(ctx context.Context) ([]model.CitizenSummary, error)
}

type dossierRepo struct {
	db DBTX
}

// NewDossierRepository создаёт репозиторий личных дел.
func NewDossierRepository(db DBTX) DossierRepository {
	return &dossierRepo{db: db}
}

// dossierQuery - LEFT JOIN трёх независимых ветвей от одной строки гражданина.
// Каждая ветвь сворачивается отдельно с DISTINCT, иначе декартово
// произведение ветвей размножает элементы. FILTER убирает NULL-строку
// ветви без потомков, COALESCE даёт пустой массив.
// GROUP BY перечисляет все неагрегированные колонки SELECT.
const dossierQuery = `
	SELECT
		c.id,
		c.first_name,
		c.middle_name,
		c.last_name,
		c.passport,
		pf.feasibility_category,
		pf.deferment_end_date,
		COALESCE(
			jsonb_agg(DISTINCT jsonb_build_object(
				'id', m.id,
				'citizen_id', m.citizen_id,
				'military_serial', m.military_serial,
				'comment', m.comment,
				'release_date', m.release_date
			)) FILTER (WHERE m.id IS NOT NULL),
			'[]'::jsonb
		) AS militaries,
		COALESCE(
			jsonb_agg(DISTINCT jsonb_build_object(
				'id', rh.id,
				'type', rh.type,
				'date', rh.date,
				'department', jsonb_build_object('id', d.id, 'name', d.name, 'address', d.address)
			)) FILTER (WHERE rh.id IS NOT NULL),
			'[]'::jsonb
		) AS records,
		COALESCE(
			jsonb_agg(DISTINCT jsonb_build_object(
				'id', a.id,
				'type', a.type,
				'user_email', u.email,
				'created_at', a.created_at
			)) FILTER (WHERE a.id IS NOT NULL),
			'[]'::jsonb
		) AS actions
	FROM citizens c
	JOIN personal_files pf ON pf.id = c.personal_file_id
	LEFT JOIN militaries m ON m.citizen_id = c.id
	LEFT JOIN record_history rh ON rh.personal_file_id = pf.id
	LEFT JOIN departments d ON d.id = rh.department_id
	LEFT JOIN actions a ON a.citizen_id = c.id
	LEFT JOIN users u ON u.id = a.user_id
	WHERE c.id = $1
	GROUP BY
		c.id, c.first_name, c.middle_name, c.last_name, c.passport,
		pf.feasibility_category, pf.deferment_end_date`

func (r *dossierRepo) Get(ctx context.Context, citizenID int64) (*model.Dossier, error) {
	var (
		d                                     model.Dossier
		deferment                             *time.Time
		rawMilitaries, rawRecords, rawActions []byte
	)

	err := r.db.QueryRow(ctx, dossierQuery, citizenID).Scan(
		&d.ID, &d.FirstName, &d.MiddleName, &d.LastName, &d.Passport,
		&d.FeasibilityCategory, &deferment,
		&rawMilitaries, &rawRecords, &rawActions,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка сборки личного дела: %w", err)
	}
	d.DefermentEndDate = model.DatePtr(deferment)

	if d.Militaries, err = decodeBranch(rawMilitaries, func(m *model.DossierMilitary) int64 { return m.ID }); err != nil {
		return nil, fmt.Errorf("ветвь militaries: %w", err)
	}
	if d.Records, err = decodeBranch(rawRecords, func(rec *model.DossierRecord) int64 { return rec.ID }); err != nil {
		return nil, fmt.Errorf("ветвь records: %w", err)
	}
	if d.Actions, err = decodeBranch(rawActions, func(a *model.DossierAction) int64 { return a.ID }); err != nil {
		return nil, fmt.Errorf("ветвь actions: %w", err)
	}

	return &d, nil
}

// decodeBranch разбирает jsonb-массив ветви в срез, отсортированный по id.
// Элементы null отбрасываются: ветвь без потомков всегда пустой срез, не nil.
func decodeBranch[T any](raw []byte, id func(*T) int64) ([]T, error) {
	var items []*T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("ошибка разбора агрегата: %w", err)
		}
	}

	result := make([]T, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		result = append(result, *item)
	}
	slices.SortFunc(result, func(a, b T) int {
		ia, ib := id(&a), id(&b)
		switch {
		case ia < ib:
			return -1
		case ia > ib:
			return 1
		default:
			return 0
		}
	})
	return result, nil
}

func (r *dossierRepo) List(ctx context.Context) ([]model.CitizenSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.first_name, c.middle_name, c.last_name, c.passport,
			pf.feasibility_category, pf.deferment_end_date
		FROM citizens c
		JOIN personal_files pf ON pf.id = c.personal_file_id
		ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка граждан: %w", err)
	}
	defer rows.Close()

	result := []model.CitizenSummary{}
	for rows.Next() {
		var (
			s         model.CitizenSummary
			deferment *time.Time
		)
		if err := rows.Scan(
			&s.ID, &s.FirstName, &s.MiddleName, &s.LastName, &s.Passport,
			&s.FeasibilityCategory, &deferment,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования гражданина: %w", err)
		}
		s.DefermentEndDate = model.DatePtr(deferment)
		result = append(result, s)
	}
	return result, rows.Err()
}
