// Package app wires configuration into the store, repositories and services
// shared by the API server and the admin CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tienda-api/internal/core/auth"
	"tienda-api/internal/core/config"
	"tienda-api/internal/core/database"
	"tienda-api/internal/domain"
	"tienda-api/internal/repo"
	"tienda-api/internal/service"
)

type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	Store *database.Store
	JWT   *auth.JWTer

	Categories *repo.CategoryRepo
	Users      *service.UserService
	Products   *service.ProductService
	Stats      *service.StatsService
	Auth       *service.AuthService
}

// New 打开数据库并组装依赖；images 为空时商品图片上传不可用
func New(cfg *config.Config, log *zap.Logger, images service.ImageStore) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             log,
	})
	if err != nil {
		return nil, fmt.Errorf("open db (%s %s): %w", cfg.DB.Driver, database.MaskDSN(cfg.DB.DSN), err)
	}
	store := database.NewStore(db)

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		Leeway: time.Duration(cfg.JWT.LeewaySec) * time.Second,
	}
	userRepo := repo.NewUserRepo(store)

	return &App{
		Cfg:        cfg,
		Log:        log,
		Store:      store,
		JWT:        jwter,
		Categories: repo.NewCategoryRepo(store),
		Users:      service.NewUserService(userRepo, cfg.Security.BcryptCost),
		Products:   service.NewProductService(repo.NewProductRepo(store), images),
		Stats:      service.NewStatsService(repo.NewStatsRepo(store)),
		Auth:       service.NewAuthService(userRepo, jwter),
	}, nil
}

// Migrate 建表（开发环境引导用）
func (a *App) Migrate(ctx context.Context) error {
	return a.Store.DB(ctx).AutoMigrate(domain.Models()...)
}

func (a *App) Close() error { return a.Store.Close() }
