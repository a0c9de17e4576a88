// Package testutil builds the in-memory store and loggers used by package tests.
package testutil

import (
	"io"
	"testing"

	"smartcare/config"
	"smartcare/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with the full schema
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewSQLiteConnection(
		config.DBConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true},
	)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewTestLogger returns a silent logger and a hook recording every entry
func NewTestLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}
