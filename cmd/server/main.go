package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"NicoQuitService/config"
	"NicoQuitService/internal/catalog"
	"NicoQuitService/internal/database/seed"
	"NicoQuitService/internal/delivery/grpc"
	"NicoQuitService/internal/repository/postgres"
	"NicoQuitService/internal/repository/redis"
	"NicoQuitService/internal/service"
	"NicoQuitService/pkg/database"
	"NicoQuitService/pkg/logger"
	"NicoQuitService/pkg/server"

	"go.uber.org/zap"
)

// Версия сервиса
const (
	ServiceVersion = "1.0.0"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Не удалось загрузить конфигурацию", zap.Error(err))
	}

	// Инициализация логгера
	log := logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File}, os.Stdout)
	defer func() { _ = log.Sync() }()
	log.Info("Запуск сервиса NicoQuit", zap.String("version", ServiceVersion))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gracefulShutdown := server.NewGracefulShutdown(log, 30*time.Second)

	items, err := catalog.Load()
	if err != nil {
		log.Fatal("Не удалось загрузить каталог предметов", zap.Error(err))
	}

	// Подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Не удалось выполнить миграции", zap.Error(err))
	}
	log.Info("Подключение к PostgreSQL установлено")

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Не удалось получить экземпляр SQL DB", zap.Error(err))
	}
	gracefulShutdown.AddShutdownFunc("postgres", func(ctx context.Context) error {
		return sqlDB.Close()
	})

	if err := seed.NewDevEnvironmentSeeder(db, items, log).SeedAll(ctx); err != nil {
		log.Fatal("Не удалось заполнить начальные данные", zap.Error(err))
	}

	// Подключение к Redis
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Не удалось подключиться к Redis", zap.Error(err))
	}
	log.Info("Подключение к Redis установлено")
	gracefulShutdown.AddShutdownFunc("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	healthChecker := database.NewHealthChecker(db, redisClient, cfg.Resilience, log)

	// Отказоустойчивые репозитории
	profileRepo := postgres.NewResilientProfileRepository(db, healthChecker)
	petRepo := postgres.NewResilientPetRepository(db, healthChecker)
	inventoryRepo := postgres.NewResilientInventoryRepository(db, healthChecker)
	checkinRepo := postgres.NewResilientCheckinRepository(db, healthChecker)
	crisisRepo := postgres.NewResilientCrisisRepository(db, healthChecker)
	communityRepo := postgres.NewResilientCommunityRepository(db, healthChecker)
	achievementRepo := postgres.NewResilientAchievementRepository(db, healthChecker)
	cacheRepo := redis.NewResilientCacheRepository(redisClient, healthChecker)

	// Сервисы
	petService := service.NewPetService(petRepo, inventoryRepo, cacheRepo, items, log)
	services := grpc.Services{
		Profiles:  service.NewProfileService(profileRepo, checkinRepo, crisisRepo, cacheRepo, cfg.Pet.DefaultName, log),
		Pets:      petService,
		Inventory: service.NewInventoryService(inventoryRepo, cacheRepo, items, log),
		Checkins:  service.NewCheckinService(checkinRepo, inventoryRepo, cacheRepo, items, log),
		Crisis:    service.NewCrisisService(crisisRepo, petService, log),
		Community: service.NewCommunityService(communityRepo, cacheRepo, cfg.Community.HideThreshold, cfg.Community.FeedLimit, log),
		Achievements: service.NewAchievementService(
			achievementRepo, profileRepo, checkinRepo, petRepo, inventoryRepo, cacheRepo, items, log,
		),
	}

	// Служебный HTTP сервер: проверки здоровья и метрики
	healthCheck := server.NewHealthCheck(healthChecker, log, ServiceVersion)
	go healthCheck.Run(ctx)

	opsServer := server.NewOpsServer(cfg.Metrics.Port, server.NewOpsRouter(healthCheck, log))
	go func() {
		log.Info("Запуск служебного HTTP сервера", zap.Int("port", cfg.Metrics.Port))
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Служебный HTTP сервер остановлен с ошибкой", zap.Error(err))
			_ = gracefulShutdown.Shutdown()
		}
	}()
	gracefulShutdown.AddShutdownFunc("ops-http", opsServer.Shutdown)

	// gRPC сервер
	if cfg.Auth.Enabled() {
		log.Info("Проверка токенов включена")
	}
	grpcServer := grpc.NewServer(grpc.NewQuitHandler(services, log), log, cfg.GRPC.Port, cfg.Auth.JWTSecret)
	go func() {
		if err := grpcServer.Run(); err != nil {
			log.Error("gRPC сервер остановлен с ошибкой", zap.Error(err))
			_ = gracefulShutdown.Shutdown()
		}
	}()
	gracefulShutdown.AddShutdownFunc("grpc", func(ctx context.Context) error {
		grpcServer.Stop()
		return nil
	})

	hostname, _ := os.Hostname()
	log.Info("Сервис успешно запущен",
		zap.Int("grpc_port", cfg.GRPC.Port),
		zap.Int("metrics_port", cfg.Metrics.Port),
		zap.String("version", ServiceVersion),
		zap.Int("pid", os.Getpid()),
		zap.String("hostname", hostname))

	// Ожидаем сигнала остановки
	if err := gracefulShutdown.Wait(ctx); err != nil {
		log.Error("Завершение работы выполнено с ошибками", zap.Error(err))
		return
	}
	log.Info("Завершение работы сервиса выполнено")
}
