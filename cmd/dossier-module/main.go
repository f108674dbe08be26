// Точка входа Dossier Module - слой согласованности личных дел призывников.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// создаёт репозитории, координатор изменений и сервисы, запускает
// topologymetrics и HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/voenkomat/dossier-module/internal/api/handlers"
	"github.com/bigkaa/voenkomat/dossier-module/internal/api/middleware"
	"github.com/bigkaa/voenkomat/dossier-module/internal/config"
	"github.com/bigkaa/voenkomat/dossier-module/internal/database"
	"github.com/bigkaa/voenkomat/dossier-module/internal/repository"
	"github.com/bigkaa/voenkomat/dossier-module/internal/server"
	"github.com/bigkaa/voenkomat/dossier-module/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Dossier Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.Bool("jwks_mode", cfg.JWKSMode()),
	)

	if os.Getenv("DM_DEPHEALTH_GROUP") == "" {
		logger.Warn("DM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories и координатор изменений
	store := repository.NewStore(pool)
	coord := service.NewCoordinator(repository.NewTxRunner(pool), store, logger)

	// 6. Services
	citizenSvc := service.NewCitizenService(coord, store.Dossiers, logger)
	militarySvc := service.NewMilitaryService(coord, logger)
	recordSvc := service.NewRecordService(coord, logger)
	referenceSvc := service.NewReferenceService(store.Departments, store.Users)

	// 7. JWT: локальные токены (HS256) или внешний IdP (JWKS)
	var (
		jwtAuth     *middleware.JWTAuth
		authHandler *handlers.AuthHandler
		jwksChecker handlers.ReadinessChecker
	)
	if cfg.JWKSMode() {
		jwtAuth, err = middleware.NewJWKSAuth(cfg.JWTJWKSURL, cfg.JWTIssuer, cfg.JWKSRefreshInterval, cfg.JWTLeeway, logger)
		if err != nil {
			logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
			os.Exit(1)
		}
		jwksChecker = middleware.NewJWKSReadinessChecker(cfg.JWTJWKSURL, 5*time.Second)
		logger.Info("JWT middleware инициализирован (JWKS)",
			slog.String("jwks_url", cfg.JWTJWKSURL),
			slog.String("issuer", cfg.JWTIssuer),
		)
	} else {
		authSvc := service.NewAuthService(store.Users, cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, logger)

		// 7.1 Начальный редактор
		if cfg.BootstrapEditorEmail != "" {
			if err := authSvc.BootstrapEditor(ctx, cfg.BootstrapEditorEmail, cfg.BootstrapEditorPassword); err != nil {
				logger.Error("Ошибка создания начального редактора", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}

		jwtAuth = middleware.NewHMACAuth(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTLeeway, logger)
		authHandler = handlers.NewAuthHandler(authSvc, logger)
		logger.Info("JWT middleware инициализирован (HS256)",
			slog.String("issuer", cfg.JWTIssuer),
			slog.String("ttl", cfg.JWTTTL.String()),
		)
	}

	// 8. topologymetrics - мониторинг зависимостей (PostgreSQL + JWKS)
	var dephealthSvc *service.DephealthService
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthConfig{
		ServiceID:     "dossier-module",
		Group:         cfg.DephealthGroup,
		PgConnURL:     cfg.DatabaseURL("postgres"),
		JWKSURL:       cfg.JWTJWKSURL,
		CheckInterval: cfg.DephealthCheckInterval,
	}, pgDB, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
		dephealthSvc = nil
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
		dephealthSvc = nil
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 9. Handlers
	h := server.Handlers{
		Health:     handlers.NewHealthHandler(database.NewReadinessChecker(pool), jwksChecker),
		Auth:       authHandler,
		Citizens:   handlers.NewCitizenHandler(citizenSvc, logger),
		Militaries: handlers.NewMilitaryHandler(militarySvc, logger),
		Records:    handlers.NewRecordHandler(recordSvc, logger),
		Reference:  handlers.NewReferenceHandler(referenceSvc, logger),
	}

	// 10. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, h, jwtAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 11. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Dossier Module остановлен")
}
