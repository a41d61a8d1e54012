package models

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "models.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestColumnMismatches(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(All()...))

	t.Run("fresh schema has no mismatches", func(t *testing.T) {
		report, err := ColumnMismatches(db)
		require.NoError(t, err)
		assert.Len(t, report, 5)
		for table, missing := range report {
			assert.Empty(t, missing, table)
		}
	})

	t.Run("hand-added column is reported", func(t *testing.T) {
		require.NoError(t, db.Exec("ALTER TABLE posts ADD COLUMN legacy_guid text").Error)

		report, err := ColumnMismatches(db)
		require.NoError(t, err)
		assert.Equal(t, []string{"legacy_guid"}, report["posts"])

		var buf bytes.Buffer
		require.NoError(t, WriteColumnMismatchReport(db, &buf))
		assert.Contains(t, buf.String(), "--- Table: posts ---")
		assert.Contains(t, buf.String(), "  - legacy_guid")
		assert.Contains(t, buf.String(), "Total mismatched columns across all tables: 1")
	})
}

func TestColumnMismatchesSkipsMissingTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&User{}))

	report, err := ColumnMismatches(db)
	require.NoError(t, err)
	assert.Contains(t, report, "users")
	assert.NotContains(t, report, "posts")
}

func TestBeforeCreateAssignsIDs(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(All()...))

	blog := &Blog{UserID: 1, FeedURL: "http://example.com/rss", URL: "http://example.com/", Created: time.Now().UTC()}
	require.NoError(t, db.Create(blog).Error)
	assert.NotEmpty(t, blog.ID.String())

	post := &Post{BlogID: blog.ID, URL: "http://example.com/p1", Title: "P1", DateUpdated: time.Now().UTC(), Slug: "AAAAAA"}
	require.NoError(t, db.Create(post).Error)

	var stored Post
	require.NoError(t, db.First(&stored, "slug = ?", "AAAAAA").Error)
	assert.Equal(t, post.ID, stored.ID)
	assert.Equal(t, blog.ID, stored.BlogID)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace"}.DisplayName())
}
