package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator 基于内嵌 SQL 文件的 schema 迁移器
// 推荐码唯一约束 uni_users_referral_code 在此定义，是并发分配推荐码的最终保障
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// NewMigrator 创建迁移器
func NewMigrator(db *sql.DB, logger *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	return &Migrator{m: m, logger: logger}, nil
}

// Up 应用所有未执行的迁移
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}
	mg.logVersion()
	return nil
}

// Down 回滚全部迁移（集成测试清库使用）
func (mg *Migrator) Down() error {
	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("回滚迁移失败: %w", err)
	}
	return nil
}

func (mg *Migrator) logVersion() {
	version, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		mg.logger.Info("数据库尚无迁移版本")
	case err != nil:
		mg.logger.Warn("读取迁移版本失败", zap.Error(err))
	case dirty:
		mg.logger.Warn("数据库迁移处于 dirty 状态", zap.Uint("version", version))
	default:
		mg.logger.Info("数据库迁移完成", zap.Uint("version", version))
	}
}

// RunMigrations 启动时执行迁移的便捷入口
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	mg, err := NewMigrator(db, logger)
	if err != nil {
		return err
	}
	return mg.Up()
}
