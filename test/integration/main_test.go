//go:build integration

package integration

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"NicoQuitService/config"
	"NicoQuitService/internal/catalog"
	quitgrpc "NicoQuitService/internal/delivery/grpc"
	"NicoQuitService/internal/repository/postgres"
	"NicoQuitService/internal/repository/redis"
	"NicoQuitService/internal/service"
	"NicoQuitService/pkg/database"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gorm.io/gorm"
)

var (
	client        *quitgrpc.QuitServiceClient
	conn          *grpc.ClientConn
	db            *gorm.DB
	redisClient   *goredis.Client
	healthChecker *database.HealthChecker
	pgResource    *dockertest.Resource
	rdResource    *dockertest.Resource
	pool          *dockertest.Pool
)

// Настройка тестового окружения: PostgreSQL и Redis в контейнерах, сервис на случайном порту
func TestMain(m *testing.M) {
	var err error
	pool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}
	pool.MaxWait = 2 * time.Minute

	autoRemove := func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	}

	pgResource, err = pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=nico_test",
		},
	}, autoRemove)
	if err != nil {
		log.Fatalf("Could not start PostgreSQL: %s", err)
	}

	rdResource, err = pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7",
	}, autoRemove)
	if err != nil {
		log.Fatalf("Could not start Redis: %s", err)
	}

	logger := zap.NewNop()

	pgPort, _ := strconv.Atoi(pgResource.GetPort("5432/tcp"))
	pgConfig := config.PostgresConfig{
		Host:     pgResource.GetBoundIP("5432/tcp"),
		Port:     pgPort,
		Username: "postgres",
		Password: "postgres",
		DBName:   "nico_test",
		SSLMode:  "disable",
	}
	if err := pool.Retry(func() error {
		var err error
		db, err = database.NewPostgresDB(pgConfig, logger)
		return err
	}); err != nil {
		log.Fatalf("Could not connect to PostgreSQL: %s", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Could not migrate: %s", err)
	}

	redisConfig := config.RedisConfig{
		Addr: fmt.Sprintf("%s:%s", rdResource.GetBoundIP("6379/tcp"), rdResource.GetPort("6379/tcp")),
	}
	if err := pool.Retry(func() error {
		var err error
		redisClient, err = database.NewRedisClient(context.Background(), redisConfig)
		return err
	}); err != nil {
		log.Fatalf("Could not connect to Redis: %s", err)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := quitgrpc.NewServer(newHandler(logger), logger, 0, "")
	go func() { _ = grpcServer.Serve(lis) }()

	conn, err = grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to connect to server: %v", err)
	}
	client = quitgrpc.NewQuitServiceClient(conn)

	code := m.Run()

	_ = conn.Close()
	grpcServer.Stop()
	_ = pool.Purge(pgResource)
	_ = pool.Purge(rdResource)

	os.Exit(code)
}

// newHandler собирает сервисы так же, как cmd/server
func newHandler(logger *zap.Logger) *quitgrpc.QuitHandler {
	items, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	resilience := config.DefaultResilienceConfig()
	resilience.RedisTimeout = time.Second
	healthChecker = database.NewHealthChecker(db, redisClient, resilience, logger)

	profileRepo := postgres.NewResilientProfileRepository(db, healthChecker)
	petRepo := postgres.NewResilientPetRepository(db, healthChecker)
	inventoryRepo := postgres.NewResilientInventoryRepository(db, healthChecker)
	checkinRepo := postgres.NewResilientCheckinRepository(db, healthChecker)
	crisisRepo := postgres.NewResilientCrisisRepository(db, healthChecker)
	communityRepo := postgres.NewResilientCommunityRepository(db, healthChecker)
	achievementRepo := postgres.NewResilientAchievementRepository(db, healthChecker)
	cacheRepo := redis.NewResilientCacheRepository(redisClient, healthChecker)

	achievements := service.NewAchievementService(
		achievementRepo, profileRepo, checkinRepo, petRepo, inventoryRepo, cacheRepo, items, logger,
	)
	if err := achievements.SeedCatalog(context.Background()); err != nil {
		log.Fatalf("Failed to seed achievements: %v", err)
	}

	pets := service.NewPetService(petRepo, inventoryRepo, cacheRepo, items, logger)
	return quitgrpc.NewQuitHandler(quitgrpc.Services{
		Profiles:     service.NewProfileService(profileRepo, checkinRepo, crisisRepo, cacheRepo, "Nico", logger),
		Pets:         pets,
		Inventory:    service.NewInventoryService(inventoryRepo, cacheRepo, items, logger),
		Checkins:     service.NewCheckinService(checkinRepo, inventoryRepo, cacheRepo, items, logger),
		Crisis:       service.NewCrisisService(crisisRepo, pets, logger),
		Community:    service.NewCommunityService(communityRepo, cacheRepo, 3, 50, logger),
		Achievements: achievements,
	}, logger)
}

func callCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}
