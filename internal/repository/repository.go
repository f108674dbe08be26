// Пакет repository - слой доступа к данным PostgreSQL.
// Все запросы - чистый SQL через pgx, без ORM.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound - запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict - конфликт уникальности (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт: запись уже существует")
	// ErrReference - ссылка на несуществующую родительскую запись.
	ErrReference = errors.New("ссылка на несуществующую запись")
)

// DBTX - интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store - набор репозиториев поверх одного DBTX (пула или транзакции).
type Store struct {
	Citizens      CitizenRepository
	PersonalFiles PersonalFileRepository
	Militaries    MilitaryRepository
	Records       RecordRepository
	Departments   DepartmentRepository
	Users         UserRepository
	Actions       ActionRepository
	Dossiers      DossierRepository
	Regions       RegionLocker
}

// NewStore создаёт набор репозиториев поверх db.
func NewStore(db DBTX) *Store {
	return &Store{
		Citizens:      NewCitizenRepository(db),
		PersonalFiles: NewPersonalFileRepository(db),
		Militaries:    NewMilitaryRepository(db),
		Records:       NewRecordRepository(db),
		Departments:   NewDepartmentRepository(db),
		Users:         NewUserRepository(db),
		Actions:       NewActionRepository(db),
		Dossiers:      NewDossierRepository(db),
		Regions:       NewRegionLocker(db),
	}
}

// TxRunner позволяет выполнять операции в транзакции.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner создаёт TxRunner для управления транзакциями.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInTx выполняет fn внутри транзакции.
// При ошибке fn - транзакция откатывается.
// При успехе - коммитится.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // откат после коммита - no-op

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// RunInStore выполняет fn внутри транзакции с набором репозиториев,
// привязанных к этой транзакции.
func (r *TxRunner) RunInStore(ctx context.Context, fn func(s *Store) error) error {
	return r.RunInTx(ctx, func(tx pgx.Tx) error {
		return fn(NewStore(tx))
	})
}

// RegionLocker - именованные области взаимного исключения.
type RegionLocker interface {
	// Lock захватывает область name до конца текущей транзакции.
	// Вне транзакции блокировка снимается сразу после запроса.
	Lock(ctx context.Context, name string) error
}

type regionLocker struct {
	db DBTX
}

// NewRegionLocker создаёт RegionLocker на advisory-блокировках PostgreSQL.
func NewRegionLocker(db DBTX) RegionLocker {
	return &regionLocker{db: db}
}

func (l *regionLocker) Lock(ctx context.Context, name string) error {
	if _, err := l.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, name); err != nil {
		return fmt.Errorf("ошибка захвата области %q: %w", name, err)
	}
	return nil
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// isForeignKeyViolation проверяет, является ли ошибка нарушением внешнего ключа.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}

// isNoRows проверяет, что запрос не вернул строк.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
