package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/usercenter/internal/infrastructure/config"
	"github.com/xiebiao/usercenter/pkg/logger"
	"github.com/xiebiao/usercenter/pkg/metrics"
	"github.com/xiebiao/usercenter/pkg/tracing"
)

// @title        用户中心 API
// @version      1.0
// @description  用户记录管理服务：增删改查、搜索、分页、排序和导出
// @host         localhost:5000
// @BasePath     /
func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找./config/config.yaml）")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("服务异常退出: %v", err)
	}
}

func run(configPath string) error {
	// 1. 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// 2. 日志，之后统一使用zap.L()
	l, err := logger.New(logger.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	zap.L().Info("配置加载成功",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("mq", cfg.MQ.Enabled),
	)

	// 3. 链路追踪
	shutdownTracer, err := tracing.InitTracer(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			zap.L().Warn("关闭链路追踪失败", zap.Error(err))
		}
	}()

	// 4. 指标
	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	// 5. 依赖注入（wire_gen.go）
	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// 6. 收到SIGINT/SIGTERM后优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}
