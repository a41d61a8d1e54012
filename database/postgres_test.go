package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rpupo63/blogroll/errs"
	"github.com/rpupo63/blogroll/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm/logger"
)

// TestPostgresRepos runs the repositories against a real PostgreSQL. It needs
// Docker and is skipped with -short.
func TestPostgresRepos(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "blog",
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_DB":       "blogroll",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := Open(Config{
		Type:     "postgres",
		DSN:      fmt.Sprintf("postgres://blog:password@%s:%s/blogroll?sslmode=disable", host, port.Port()),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)

	d := New(db)
	require.NoError(t, d.Migrate(ctx))

	user := seedUser(t, d, 100, "Barbara", "Liskov")
	blog := seedBlog(t, d, user.ID)

	t.Run("recent posts carry the author", func(t *testing.T) {
		post := &models.Post{
			BlogID:      blog.ID,
			URL:         "http://example.com/pg",
			Title:       "Data abstraction",
			DateUpdated: time.Now().UTC(),
			Slug:        "PGPOST",
		}
		require.NoError(t, d.PostRepo().Add(ctx, post))

		posts, err := d.PostRepo().FindRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, "Barbara Liskov", posts[0].Author)
	})

	t.Run("unique violation is translated", func(t *testing.T) {
		err := d.UserRepo().Add(ctx, &models.User{
			ID: 101, Username: "other", Email: user.Email, PasswordHash: "x", IsActive: true, DateJoined: time.Now().UTC(),
		})
		require.Error(t, err)
		assert.True(t, errs.IsDuplicateKey(err))
	})
}
