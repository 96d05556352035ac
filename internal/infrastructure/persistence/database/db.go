package database

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/usercenter/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2，storage.driver决定方言（mysql | sqlite）
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	if cfg.Storage.Driver == config.DriverSQLite {
		// SQLite同一时间只允许一个写连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	zap.L().Info("数据库连接成功", zap.String("driver", cfg.Storage.Driver))

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return db, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.Storage.Driver {
	case config.DriverMySQL:
		return mysql.Open(cfg.Database.DSN()), nil
	case config.DriverSQLite:
		path := cfg.Database.SQLitePath
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("创建SQLite目录失败: %w", err)
			}
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("存储驱动%q不是数据库驱动", cfg.Storage.Driver)
	}
}

// autoMigrate 自动迁移表结构
// 注意：生产环境应使用版本化的迁移脚本
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{}, &MetaModel{})
}

// UserModel GORM用户模型
// 设计说明：
// 1. Position保存集合顺序，Load按Position升序返回
// 2. ID、EmailKey（小写邮箱）有唯一索引，数据库层兜底ID和邮箱唯一
// 3. 不使用软删除，集合整体替换时旧行直接删除
type UserModel struct {
	Position int    `gorm:"primaryKey;autoIncrement:false;comment:集合内顺序"`
	ID       int    `gorm:"column:user_id;uniqueIndex:idx_users_user_id;not null;comment:用户ID"`
	Name     string `gorm:"size:200;not null;comment:姓名"`
	Email    string `gorm:"size:255;not null;comment:邮箱"`
	EmailKey string `gorm:"size:255;uniqueIndex:idx_users_email_key;not null;comment:小写邮箱（唯一约束）"`
	Role     string `gorm:"size:100;not null;comment:角色"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// MetaModel 记录集合是否已经初始化过
// 区分"从未写入"和"写入了空集合"
type MetaModel struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"size:255"`
}

// TableName 指定表名
func (MetaModel) TableName() string {
	return "collection_meta"
}
