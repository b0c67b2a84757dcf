package repository

import (
	"fmt"
	"testing"
	"tsubame/internal/db"
	"tsubame/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory database with the migrated schema.
// Connections are capped at one so gorm's pool cannot hand out a second,
// empty :memory: database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func createTestUser(t *testing.T, gdb *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "$2a$10$notatestablehashbutfine1234567890123456789012345678901",
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func createTestPost(t *testing.T, gdb *gorm.DB, authorID uint, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:    title,
		Content:  "content of " + title,
		AuthorID: authorID,
	}
	require.NoError(t, gdb.Create(post).Error)
	return post
}

func createTestReply(t *testing.T, gdb *gorm.DB, authorID, parentID uint, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:    title,
		Content:  "reply content",
		AuthorID: authorID,
		ParentID: &parentID,
	}
	require.NoError(t, gdb.Create(post).Error)
	return post
}

func createTestPosts(t *testing.T, gdb *gorm.DB, authorID uint, n int) []models.Post {
	t.Helper()
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, *createTestPost(t, gdb, authorID, fmt.Sprintf("post %d", i)))
	}
	return posts
}
