package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appuser "github.com/xiebiao/usercenter/internal/application/user"
	"github.com/xiebiao/usercenter/internal/domain/user"
	"github.com/xiebiao/usercenter/internal/infrastructure/config"
	"github.com/xiebiao/usercenter/internal/infrastructure/persistence/database"
	"github.com/xiebiao/usercenter/internal/infrastructure/persistence/jsonfile"
	"github.com/xiebiao/usercenter/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/usercenter/pkg/mq"
)

// App 组装完成的HTTP服务
type App struct {
	cfg    *config.Config
	server *http.Server
}

func newApp(cfg *config.Config, server *http.Server) *App {
	return &App{cfg: cfg, server: server}
}

// Run 启动服务，ctx取消后在shutdown_timeout内优雅关闭
// 正在处理的请求会被处理完，关闭前的写入不会丢失
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		zap.L().Info("服务启动", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("正在关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	zap.L().Info("服务已关闭")
	return nil
}

// ========================================
// Providers
// ========================================

// provideRepository 按storage.driver创建用户集合存储
// storage.seed开启时，从未写入过的存储写入初始数据
func provideRepository(cfg *config.Config) (user.Repository, func(), error) {
	var (
		repo    user.Repository
		cleanup = func() {}
	)

	switch cfg.Storage.Driver {
	case config.DriverFile:
		repo = jsonfile.NewStore(cfg.Storage.DataFile)
	case config.DriverMySQL, config.DriverSQLite:
		db, err := database.NewDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		repo = database.NewStore(db, database.NewTxManager(db))
		cleanup = func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	case config.DriverRedis:
		client, err := redis.NewClient(context.Background(), cfg)
		if err != nil {
			return nil, nil, err
		}
		repo = redis.NewStore(client, cfg.Redis.Key, cfg.Redis.MaxRetries)
		cleanup = func() { _ = client.Close() }
	default:
		return nil, nil, fmt.Errorf("不支持的存储驱动: %q", cfg.Storage.Driver)
	}

	if cfg.Storage.Seed {
		if err := repo.Initialize(context.Background()); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("初始化用户数据失败: %w", err)
		}
	}

	zap.L().Info("存储已就绪", zap.String("driver", cfg.Storage.Driver))
	return repo, cleanup, nil
}

// provideEventPublisher 创建用户事件发布者
// 消息队列连不上时只记录日志，服务照常启动，事件不再发布
func provideEventPublisher(cfg *config.Config) (appuser.EventPublisher, func()) {
	if !cfg.MQ.Enabled {
		return appuser.NopPublisher{}, func() {}
	}

	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType)
	if err != nil {
		zap.L().Warn("连接消息队列失败，用户事件将不会发布", zap.Error(err))
		return appuser.NopPublisher{}, func() {}
	}
	return appuser.NewBreakerPublisher(pub, appuser.NewEventBreaker()), func() { _ = pub.Close() }
}

// provideServer 创建HTTP Server
func provideServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
