package database

import (
	"context"
	"testing"

	"github.com/bigkaa/voenkomat/dossier-module/internal/database/dbtest"
)

// TestConnect проверяет подключение к PostgreSQL через pgxpool.
func TestConnect(t *testing.T) {
	cfg := dbtest.StartPostgres(t)
	ctx := context.Background()

	pool, err := Connect(ctx, cfg, dbtest.Logger())
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("pool.Ping() вернул ошибку: %v", err)
	}
}

// TestMigrate проверяет применение миграций и ограничения схемы.
func TestMigrate(t *testing.T) {
	cfg := dbtest.StartPostgres(t)
	logger := dbtest.Logger()

	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}
	// Повторное применение - без ошибки (ErrNoChange)
	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Повторный Migrate() вернул ошибку: %v", err)
	}

	ctx := context.Background()
	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	tables := []string{
		"users", "departments", "personal_files", "citizens",
		"militaries", "record_history", "actions",
	}
	for _, table := range tables {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		if err != nil {
			t.Fatalf("Ошибка проверки таблицы %s: %v", table, err)
		}
		if !exists {
			t.Errorf("Таблица %s не создана", table)
		}
	}

	var departments int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&departments); err != nil {
		t.Fatalf("Подсчёт departments: %v", err)
	}
	if departments == 0 {
		t.Error("Справочник departments пуст после миграций")
	}

	// Ограничения схемы
	invalid := []struct {
		name  string
		query string
	}{
		{"категория вне перечня", `INSERT INTO personal_files (feasibility_category) VALUES ('Е')`},
		{"паспорт из 9 цифр", `WITH pf AS (INSERT INTO personal_files (feasibility_category) VALUES ('А') RETURNING id)
			INSERT INTO citizens (first_name, last_name, passport, personal_file_id)
			SELECT 'Иван', 'Иванов', '123456789', id FROM pf`},
		{"тип записи вне перечня", `INSERT INTO record_history (personal_file_id, department_id, type, date) VALUES (1, 1, 'moved', '2024-01-01')`},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := pool.Exec(ctx, tt.query); err == nil {
				t.Errorf("ожидалось нарушение ограничения")
			}
		})
	}
}

// TestReadinessChecker проверяет ReadinessChecker.
func TestReadinessChecker(t *testing.T) {
	cfg := dbtest.StartPostgres(t)
	ctx := context.Background()

	pool, err := Connect(ctx, cfg, dbtest.Logger())
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	status, msg := NewReadinessChecker(pool).CheckReady()
	if status != "ok" {
		t.Errorf("CheckReady() status = %q, message = %q; ожидали ok", status, msg)
	}
}
