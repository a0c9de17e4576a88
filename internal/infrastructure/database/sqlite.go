package database

import (
	"fmt"

	"smartcare/config"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewSQLiteConnection opens a single-file (or ":memory:") database. The pool
// is capped at one connection: SQLite has a single writer, and an in-memory
// database only exists on the connection that created it.
func NewSQLiteConnection(cfg config.DBConfig, gormCfg *gorm.Config) (*gorm.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "hospital_data.db"
	}

	db, err := gorm.Open(sqlite.Open(path), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	logrus.Infof("Successfully opened SQLite database %s", path)

	return db, nil
}
