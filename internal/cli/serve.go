package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ops-panel/internal/api/handler"
	"ops-panel/internal/api/router"
	"ops-panel/internal/repository"
	"ops-panel/internal/scheduler"
	"ops-panel/internal/service"
	"ops-panel/pkg/database"
	"ops-panel/pkg/jwt"
	"ops-panel/pkg/redis"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务与定时任务",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "启动时不执行数据库迁移")
}

func serve() error {
	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 1. 连接数据库
	db, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	// 1.1 执行数据库迁移
	if !skipMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			return err
		}
	}

	// 2. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	deps := router.Deps{JWT: jwt.NewManager(&cfg.Auth)}
	var (
		revoker handler.TokenRevoker
		locker  scheduler.Locker
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、限流与任务锁将不可用", zap.Error(err))
	} else {
		defer rdb.Close()
		deps.Blacklist, deps.Limiter = rdb, rdb
		revoker, locker = rdb, rdb
	}

	// 3. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, logger)
	h := handler.NewHandler(svc, revoker, logger)

	// 4. 定时任务
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(&cfg.Scheduler, svc.Depreciation, locker, logger)
		if err := sched.Start(); err != nil {
			return err
		}
	}

	// 5. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.Setup(cfg, h, deps, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 6. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			logger.Error("HTTP 服务器异常", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	if sched != nil {
		sched.Stop()
	}

	logger.Info("服务器已关闭")
	return nil
}
