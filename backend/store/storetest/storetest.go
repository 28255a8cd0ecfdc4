// Package storetest opens throwaway SQLite databases for tests.
package storetest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"promptmarket/backend/models"
	"promptmarket/backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var seq atomic.Int64

// NewDB returns a migrated in-memory database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:storetest_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, utils.Migrate(db))
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Role:     role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateTemplate(t testing.TB, db *gorm.DB, ownerID uint, status models.TemplateStatus) *models.Template {
	t.Helper()
	tpl := &models.Template{
		Title:   fmt.Sprintf("template-%d", seq.Add(1)),
		OwnerID: ownerID,
		Status:  status,
	}
	require.NoError(t, db.Create(tpl).Error)
	return tpl
}
