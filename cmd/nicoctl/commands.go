package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"NicoQuitService/config"
	"NicoQuitService/internal/catalog"
	"NicoQuitService/internal/database/seed"
	quitgrpc "NicoQuitService/internal/delivery/grpc"
	"NicoQuitService/internal/models"
	"NicoQuitService/pkg/database"
	"NicoQuitService/pkg/server"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"gorm.io/gorm"
)

// Context общие зависимости команд
type Context struct {
	Logger *zap.Logger
	Out    io.Writer
}

func openDatabase(appCtx *Context) (*gorm.DB, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.NewPostgresDB(cfg.Postgres, appCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(appCtx *Context) error {
	_, closeFn, err := openDatabase(appCtx)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Fprintln(appCtx.Out, "migrations applied")
	return nil
}

type SeedCmd struct {
	Timeout time.Duration `help:"Seeding deadline." default:"30s"`
}

func (c *SeedCmd) Run(appCtx *Context) error {
	items, err := catalog.Load()
	if err != nil {
		return err
	}

	db, closeFn, err := openDatabase(appCtx)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	if err := seed.NewDevEnvironmentSeeder(db, items, appCtx.Logger).SeedAll(ctx); err != nil {
		return err
	}

	fmt.Fprintln(appCtx.Out, "seed completed")
	return nil
}

type TokenCmd struct {
	User string        `help:"User ID to issue the token for." required:""`
	TTL  time.Duration `help:"Token lifetime." default:"24h"`
}

func (c *TokenCmd) Run(appCtx *Context) error {
	userID, err := uuid.Parse(c.User)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.Auth.Enabled() {
		return errors.New("auth.jwt_secret is not set")
	}

	token, err := server.GenerateToken([]byte(cfg.Auth.JWTSecret), userID.String(), c.TTL)
	if err != nil {
		return err
	}

	fmt.Fprintln(appCtx.Out, token)
	return nil
}

// RemoteFlags параметры подключения к запущенному сервису
type RemoteFlags struct {
	Addr    string        `help:"Service gRPC address." default:"localhost:50051"`
	Token   string        `help:"Bearer token, required when the service checks tokens." env:"NICO_TOKEN"`
	Timeout time.Duration `help:"Call deadline." default:"10s"`
	User    string        `help:"User ID." required:""`
}

func (f *RemoteFlags) call(appCtx *Context, fn func(ctx context.Context, client *quitgrpc.QuitServiceClient, req *models.UserRequest) (any, error)) error {
	userID, err := uuid.Parse(f.User)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	conn, err := grpc.NewClient(f.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", f.Addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), f.Timeout)
	defer cancel()
	if f.Token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+f.Token)
	}

	appCtx.Logger.Debug("Calling service", zap.String("addr", f.Addr), zap.String("user_id", f.User))

	resp, err := fn(ctx, quitgrpc.NewQuitServiceClient(conn), &models.UserRequest{UserID: userID})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(appCtx.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

type StatsCmd struct {
	RemoteFlags `embed:""`
}

func (c *StatsCmd) Run(appCtx *Context) error {
	return c.call(appCtx, func(ctx context.Context, client *quitgrpc.QuitServiceClient, req *models.UserRequest) (any, error) {
		return client.GetStats(ctx, req)
	})
}

type PetCmd struct {
	RemoteFlags `embed:""`
}

func (c *PetCmd) Run(appCtx *Context) error {
	return c.call(appCtx, func(ctx context.Context, client *quitgrpc.QuitServiceClient, req *models.UserRequest) (any, error) {
		return client.GetPet(ctx, req)
	})
}
