// Package cli 实现 opspanel 命令行：服务启动、数据库迁移、基础资料导入与折旧批处理
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ops-panel/config"
	"ops-panel/pkg/database"
	applogger "ops-panel/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "opspanel",
	Short:         "采石场运营面板",
	Long:          `采石场运营面板：产量记录审批、过路费对账与固定资产折旧。`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		logger, err = applogger.NewLogger(&cfg.Log)
		if err != nil {
			return fmt.Errorf("初始化日志失败: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径（默认 ./config.yaml）")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(depreciationCmd)
	rootCmd.AddCommand(tokenCmd)
}

// openDB 连接数据库，返回的 close 函数负责释放连接池
func openDB() (*gorm.DB, func(), error) {
	db, err := database.NewDB(&cfg.Database, logger, cfg.Log.Level == "debug")
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, closeFn, nil
}
