package database

import (
	"fmt"

	"smartcare/config"
	"smartcare/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens the store selected by cfg.Driver
func NewConnection(cfg config.DBConfig, env string) (*gorm.DB, error) {
	logLevel := logger.Warn
	if env == "development" {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	switch cfg.Driver {
	case config.DriverPostgres, "":
		return NewPostgresConnection(cfg, gormCfg)
	case config.DriverSQLite:
		return NewSQLiteConnection(cfg, gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// AutoMigrate creates or updates the schema
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Patient{},
		&entity.Bed{},
		&entity.RecordSequence{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
