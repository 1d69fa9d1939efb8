package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/db"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.NewSQLiteMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, username string) *types.User {
	t.Helper()
	user := &types.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func seedDocument(t *testing.T, gdb *gorm.DB, user *types.User, title string) *types.Document {
	t.Helper()
	doc := &types.Document{
		UserID:      user.ID,
		Title:       title,
		FilePath:    "documents/" + title + ".txt",
		Language:    "en",
		TextContent: "the quick brown fox jumps over the lazy dog near the river",
		Processed:   true,
	}
	require.NoError(t, gdb.Create(doc).Error)
	return doc
}
