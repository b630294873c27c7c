package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"places-go/internal/models"
	"places-go/internal/storage"
)

// setupTestDB 为每个测试打开独立的内存数据库并建表。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrateTables(db))
	return db
}

// createTestUser 插入一个用户并返回其 ID。
func createTestUser(t *testing.T, db *gorm.DB, email, firstName, lastName string) uint {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    firstName,
		LastName:     lastName,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user.ID
}
