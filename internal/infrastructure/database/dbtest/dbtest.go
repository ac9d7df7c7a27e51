// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"testing"

	"stockex-backend/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory SQLite database private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
