package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/bigkaa/voenkomat/dossier-module/internal/domain/model"
	"github.com/bigkaa/voenkomat/dossier-module/internal/repository"
)

// errInjected - сбой хранилища, подставляемый в тестах.
var errInjected = errors.New("сбой хранилища")

// memDB - хранилище в памяти с семантикой транзакций:
// RunInStore выполняет fn под мьютексом и откатывает состояние при ошибке.
type memDB struct {
	mu sync.Mutex

	nextID        int64
	personalFiles map[int64]model.PersonalFile
	citizens      map[int64]model.Citizen
	militaries    map[int64]model.Military
	records       map[int64]model.Record
	departments   map[int64]model.Department
	users         map[int64]model.User
	actions       []model.Action

	// failOn - операция, на которой возвращается errInjected.
	failOn string
	// locked - захваченные именованные области.
	locked []string
	// txCount - количество начатых транзакций.
	txCount int
}

func newMemDB() *memDB {
	db := &memDB{
		nextID:        100,
		personalFiles: map[int64]model.PersonalFile{},
		citizens:      map[int64]model.Citizen{},
		militaries:    map[int64]model.Military{},
		records:       map[int64]model.Record{},
		departments: map[int64]model.Department{
			1: {ID: 1, Name: "Военный комиссариат Центрального района", Address: "ул. Садовая, 12"},
			2: {ID: 2, Name: "Военный комиссариат Северного района", Address: "пр. Ленина, 45"},
		},
		users: map[int64]model.User{
			1: {ID: 1, Email: "editor@voenkomat.ru", Role: "editor"},
			2: {ID: 2, Email: "viewer@voenkomat.ru", Role: "viewer"},
		},
	}
	return db
}

type memSnapshot struct {
	nextID        int64
	personalFiles map[int64]model.PersonalFile
	citizens      map[int64]model.Citizen
	militaries    map[int64]model.Military
	records       map[int64]model.Record
	actions       []model.Action
}

func (db *memDB) snapshot() memSnapshot {
	return memSnapshot{
		nextID:        db.nextID,
		personalFiles: maps.Clone(db.personalFiles),
		citizens:      maps.Clone(db.citizens),
		militaries:    maps.Clone(db.militaries),
		records:       maps.Clone(db.records),
		actions:       append([]model.Action(nil), db.actions...),
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.nextID = s.nextID
	db.personalFiles = s.personalFiles
	db.citizens = s.citizens
	db.militaries = s.militaries
	db.records = s.records
	db.actions = s.actions
}

// RunInStore реализует StoreRunner.
func (db *memDB) RunInStore(_ context.Context, fn func(s *repository.Store) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.txCount++
	snap := db.snapshot()
	if err := fn(db.store(false)); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

// direct - репозитории вне транзакции, каждый вызов под мьютексом.
func (db *memDB) direct() *repository.Store {
	return db.store(true)
}

func (db *memDB) store(auto bool) *repository.Store {
	v := &memView{db: db, auto: auto}
	return &repository.Store{
		Citizens:      (*memCitizens)(v),
		PersonalFiles: (*memPersonalFiles)(v),
		Militaries:    (*memMilitaries)(v),
		Records:       (*memRecords)(v),
		Departments:   (*memDepartments)(v),
		Users:         (*memUsers)(v),
		Actions:       (*memActions)(v),
		Dossiers:      (*memDossiers)(v),
		Regions:       (*memRegions)(v),
	}
}

type memView struct {
	db   *memDB
	auto bool
}

func (v *memView) begin(op string) error {
	if v.auto {
		v.db.mu.Lock()
	}
	if v.db.failOn == op {
		return errInjected
	}
	return nil
}

func (v *memView) end() {
	if v.auto {
		v.db.mu.Unlock()
	}
}

func (v *memView) id() int64 {
	v.db.nextID++
	return v.db.nextID
}

// --- Счётчики для проверок ---

func (db *memDB) counts() (pf, citizens, militaries, records, actions int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.personalFiles), len(db.citizens), len(db.militaries), len(db.records), len(db.actions)
}

func (db *memDB) actionsFor(citizenID int64) []model.Action {
	db.mu.Lock()
	defer db.mu.Unlock()
	var result []model.Action
	for _, a := range db.actions {
		if a.CitizenID == citizenID {
			result = append(result, a)
		}
	}
	return result
}

// --- PersonalFiles ---

type memPersonalFiles memView

func (r *memPersonalFiles) Create(_ context.Context, pf *model.PersonalFile) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("personal_files.create"); err != nil {
		return err
	}
	pf.ID = v.id()
	v.db.personalFiles[pf.ID] = *pf
	return nil
}

func (r *memPersonalFiles) Update(_ context.Context, pf *model.PersonalFile) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("personal_files.update"); err != nil {
		return err
	}
	if _, ok := v.db.personalFiles[pf.ID]; !ok {
		return repository.ErrNotFound
	}
	v.db.personalFiles[pf.ID] = *pf
	return nil
}

func (r *memPersonalFiles) Delete(_ context.Context, id int64) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("personal_files.delete"); err != nil {
		return err
	}
	if _, ok := v.db.personalFiles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(v.db.personalFiles, id)

	// ON DELETE CASCADE
	for cid, c := range v.db.citizens {
		if c.PersonalFileID != id {
			continue
		}
		delete(v.db.citizens, cid)
		for mid, m := range v.db.militaries {
			if m.CitizenID == cid {
				delete(v.db.militaries, mid)
			}
		}
		kept := v.db.actions[:0:0]
		for _, a := range v.db.actions {
			if a.CitizenID != cid {
				kept = append(kept, a)
			}
		}
		v.db.actions = kept
	}
	for rid, rec := range v.db.records {
		if rec.PersonalFileID == id {
			delete(v.db.records, rid)
		}
	}
	return nil
}

// --- Citizens ---

type memCitizens memView

func (r *memCitizens) Create(_ context.Context, c *model.Citizen) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("citizens.create"); err != nil {
		return err
	}
	if _, ok := v.db.personalFiles[c.PersonalFileID]; !ok {
		return repository.ErrReference
	}
	c.ID = v.id()
	v.db.citizens[c.ID] = *c
	return nil
}

func (r *memCitizens) Update(_ context.Context, c *model.Citizen) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("citizens.update"); err != nil {
		return err
	}
	existing, ok := v.db.citizens[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.PersonalFileID = existing.PersonalFileID
	v.db.citizens[c.ID] = *c
	return nil
}

func (r *memCitizens) GetByID(_ context.Context, id int64) (*model.Citizen, error) {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("citizens.get"); err != nil {
		return nil, err
	}
	c, ok := v.db.citizens[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *memCitizens) GetByPersonalFileID(_ context.Context, personalFileID int64) (*model.Citizen, error) {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("citizens.get_by_pf"); err != nil {
		return nil, err
	}
	for _, c := range v.db.citizens {
		if c.PersonalFileID == personalFileID {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- Militaries ---

type memMilitaries memView

func (r *memMilitaries) Create(_ context.Context, m *model.Military) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("militaries.create"); err != nil {
		return err
	}
	if _, ok := v.db.citizens[m.CitizenID]; !ok {
		return repository.ErrReference
	}
	for _, existing := range v.db.militaries {
		if existing.MilitarySerial == m.MilitarySerial {
			return repository.ErrConflict
		}
	}
	m.ID = v.id()
	v.db.militaries[m.ID] = *m
	return nil
}

func (r *memMilitaries) Update(_ context.Context, m *model.Military) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("militaries.update"); err != nil {
		return err
	}
	existing, ok := v.db.militaries[m.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range v.db.militaries {
		if id != m.ID && other.MilitarySerial == m.MilitarySerial {
			return repository.ErrConflict
		}
	}
	m.CitizenID = existing.CitizenID
	v.db.militaries[m.ID] = *m
	return nil
}

func (r *memMilitaries) Delete(_ context.Context, id int64) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("militaries.delete"); err != nil {
		return err
	}
	if _, ok := v.db.militaries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(v.db.militaries, id)
	return nil
}

func (r *memMilitaries) ExistsSerial(_ context.Context, serial string, excludeID int64) (bool, error) {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("militaries.exists_serial"); err != nil {
		return false, err
	}
	for id, m := range v.db.militaries {
		if id != excludeID && m.MilitarySerial == serial {
			return true, nil
		}
	}
	return false, nil
}

// --- Records ---

type memRecords memView

func (r *memRecords) Create(_ context.Context, rec *model.Record) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("records.create"); err != nil {
		return err
	}
	if _, ok := v.db.departments[rec.DepartmentID]; !ok {
		return repository.ErrReference
	}
	rec.ID = v.id()
	v.db.records[rec.ID] = *rec
	return nil
}

func (r *memRecords) Update(_ context.Context, rec *model.Record) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("records.update"); err != nil {
		return err
	}
	existing, ok := v.db.records[rec.ID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.PersonalFileID = existing.PersonalFileID
	v.db.records[rec.ID] = *rec
	return nil
}

func (r *memRecords) Delete(_ context.Context, id int64) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("records.delete"); err != nil {
		return err
	}
	if _, ok := v.db.records[id]; !ok {
		return repository.ErrNotFound
	}
	delete(v.db.records, id)
	return nil
}

// --- Departments ---

type memDepartments memView

func (r *memDepartments) List(_ context.Context) ([]model.Department, error) {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("departments.list"); err != nil {
		return nil, err
	}
	result := make([]model.Department, 0, len(v.db.departments))
	for _, d := range v.db.departments {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memDepartments) Exists(_ context.Context, id int64) (bool, error) {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("departments.exists"); err != nil {
		return false, err
	}
	_, ok := v.db.departments[id]
	return ok, nil
}

// --- Users ---

type memUsers memView

func (r *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("users.get_by_email"); err != nil {
		return nil, err
	}
	for _, u := range v.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUsers) List(_ context.Context) ([]model.User, error) {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("users.list"); err != nil {
		return nil, err
	}
	result := make([]model.User, 0, len(v.db.users))
	for _, u := range v.db.users {
		u.PasswordHash = ""
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memUsers) UpsertEditor(_ context.Context, email, passwordHash string) (*model.User, error) {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("users.upsert_editor"); err != nil {
		return nil, err
	}
	for id, u := range v.db.users {
		if u.Email == email {
			u.PasswordHash = passwordHash
			u.Role = "editor"
			v.db.users[id] = u
			return &u, nil
		}
	}
	u := model.User{ID: v.id(), Email: email, PasswordHash: passwordHash, Role: "editor"}
	v.db.users[u.ID] = u
	return &u, nil
}

// --- Actions ---

type memActions memView

func (r *memActions) Append(_ context.Context, a *model.Action) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("actions.append"); err != nil {
		return err
	}
	if _, ok := v.db.users[a.UserID]; !ok {
		return repository.ErrReference
	}
	if _, ok := v.db.citizens[a.CitizenID]; !ok {
		return repository.ErrReference
	}
	a.ID = v.id()
	a.CreatedAt = time.Now().UTC()
	v.db.actions = append(v.db.actions, *a)
	return nil
}

func (r *memActions) ListByCitizen(_ context.Context, citizenID int64) ([]model.Action, error) {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("actions.list"); err != nil {
		return nil, err
	}
	result := []model.Action{}
	for _, a := range v.db.actions {
		if a.CitizenID == citizenID {
			result = append(result, a)
		}
	}
	return result, nil
}

// --- Dossiers ---

type memDossiers memView

func (r *memDossiers) Get(_ context.Context, citizenID int64) (*model.Dossier, error) {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("dossiers.get"); err != nil {
		return nil, err
	}
	c, ok := v.db.citizens[citizenID]
	if !ok {
		return nil, nil
	}
	pf := v.db.personalFiles[c.PersonalFileID]
	d := &model.Dossier{
		ID: c.ID, FirstName: c.FirstName, MiddleName: c.MiddleName, LastName: c.LastName,
		Passport: c.Passport, FeasibilityCategory: pf.FeasibilityCategory, DefermentEndDate: pf.DefermentEndDate,
		Militaries: []model.DossierMilitary{}, Records: []model.DossierRecord{}, Actions: []model.DossierAction{},
	}
	for _, m := range v.db.militaries {
		if m.CitizenID == c.ID {
			d.Militaries = append(d.Militaries, model.DossierMilitary(m))
		}
	}
	for _, rec := range v.db.records {
		if rec.PersonalFileID == c.PersonalFileID {
			d.Records = append(d.Records, model.DossierRecord{
				ID: rec.ID, Type: rec.Type, Date: rec.Date, Department: v.db.departments[rec.DepartmentID],
			})
		}
	}
	for _, a := range v.db.actions {
		if a.CitizenID == c.ID {
			d.Actions = append(d.Actions, model.DossierAction{
				ID: a.ID, Type: a.Type, UserEmail: v.db.users[a.UserID].Email, CreatedAt: a.CreatedAt,
			})
		}
	}
	sort.Slice(d.Militaries, func(i, j int) bool { return d.Militaries[i].ID < d.Militaries[j].ID })
	sort.Slice(d.Records, func(i, j int) bool { return d.Records[i].ID < d.Records[j].ID })
	return d, nil
}

func (r *memDossiers) List(_ context.Context) ([]model.CitizenSummary, error) {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("dossiers.list"); err != nil {
		return nil, err
	}
	result := []model.CitizenSummary{}
	for _, c := range v.db.citizens {
		pf := v.db.personalFiles[c.PersonalFileID]
		result = append(result, model.CitizenSummary{
			ID: c.ID, FirstName: c.FirstName, MiddleName: c.MiddleName, LastName: c.LastName,
			Passport: c.Passport, FeasibilityCategory: pf.FeasibilityCategory, DefermentEndDate: pf.DefermentEndDate,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// --- Regions ---

type memRegions memView

func (r *memRegions) Lock(_ context.Context, name string) error {
	v := (*memView)(r)
	defer v.end()
	if err := v.begin("regions.lock"); err != nil {
		return err
	}
	v.db.locked = append(v.db.locked, name)
	return nil
}

// --- Общие помощники ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServices - сервисы поверх memDB.
type testServices struct {
	db         *memDB
	citizens   *CitizenService
	militaries *MilitaryService
	records    *RecordService
}

func newTestServices() *testServices {
	db := newMemDB()
	logger := testLogger()
	direct := db.direct()
	coord := NewCoordinator(db, direct, logger)
	return &testServices{
		db:         db,
		citizens:   NewCitizenService(coord, direct.Dossiers, logger),
		militaries: NewMilitaryService(coord, logger),
		records:    NewRecordService(coord, logger),
	}
}
