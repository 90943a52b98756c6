package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"ops-panel/pkg/database"
)

var rollbackSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "数据库迁移",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "应用所有未执行的迁移",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQLDB(func(db *sql.DB) error {
			return database.RunMigrations(db, logger)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "回滚迁移",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQLDB(func(db *sql.DB) error {
			return database.RollbackMigrations(db, rollbackSteps, logger)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "查看当前迁移版本",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQLDB(func(db *sql.DB) error {
			version, dirty, err := database.MigrationVersion(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
			return nil
		})
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&rollbackSteps, "steps", 1, "回滚的版本数")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func withSQLDB(fn func(db *sql.DB) error) error {
	db, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	raw, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return fn(raw)
}
