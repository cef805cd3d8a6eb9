package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mara-shop/internal/logger"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// DB 全局数据库连接
var DB *gorm.DB

// DBPoolConfig 数据库连接池配置，非正数字段保持驱动默认值
type DBPoolConfig struct {
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeSeconds int
	ConnMaxIdleTimeSeconds int
}

// dialectorFor sqlite 使用纯 Go 驱动，无需 cgo
func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// OpenDB 按驱动名打开数据库连接，SQL 日志经由 zap 输出
func OpenDB(driver, dsn string, pool DBPoolConfig, level gormlogger.LogLevel) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(logger.StdLogger(), gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	pool.apply(sqlDB)
	return db, nil
}

// InitDB 初始化全局数据库连接
func InitDB(driver, dsn string, pool DBPoolConfig) error {
	db, err := OpenDB(driver, dsn, pool, gormlogger.Warn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

func (p DBPoolConfig) apply(sqlDB *sql.DB) {
	if p.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(p.MaxOpenConns)
	}
	if p.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(p.MaxIdleConns)
	}
	if p.ConnMaxLifetimeSeconds > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(p.ConnMaxLifetimeSeconds) * time.Second)
	}
	if p.ConnMaxIdleTimeSeconds > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(p.ConnMaxIdleTimeSeconds) * time.Second)
	}
}

// AutoMigrate 迁移商品、购物车快照与订单表；db 为空时使用全局连接
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		db = DB
	}
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return db.AutoMigrate(&Product{}, &CartSnapshot{}, &Order{}, &OrderItem{})
}
