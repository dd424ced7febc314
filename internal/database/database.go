package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cardioalert/internal/config"
	"cardioalert/internal/models"
	"cardioalert/pkg/logger"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect initializes a GORM connection for the configured driver and migrates the schema
func Connect(cfg *config.Config) (*gorm.DB, error) {
	// Configure GORM logger
	logLevel := gormlogger.Info
	if cfg.Server.GinMode == "release" {
		logLevel = gormlogger.Error
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Database.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		db, err = OpenSQLite(cfg.Database.SQLitePath, logLevel)
	default:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Database,
		)
		db, err = gorm.Open(mysql.Open(dsn), gormConfig(logLevel))
		if err == nil {
			err = configurePool(db, 10, 100)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to database", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

// OpenSQLite opens a sqlite database. ":memory:" or "file::memory:" give a private in-memory db.
func OpenSQLite(path string, level gormlogger.LogLevel) (*gorm.DB, error) {
	if path == "" {
		path = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig(level))
	if err != nil {
		return nil, err
	}
	// a sqlite file (or memory db) must be shared through one connection
	if err := configurePool(db, 1, 1); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetConnMaxLifetime(0)
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates all tables
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Hospital{},
		&models.HospitalStaff{},
		&models.Alert{},
		&models.Payment{},
		&models.AlertHospital{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func gormConfig(level gormlogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func configurePool(db *gorm.DB, idle, open int) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(idle)
	sqlDB.SetMaxOpenConns(open)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
