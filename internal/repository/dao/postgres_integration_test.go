package dao

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Spins up a throwaway postgres container and runs the paths whose
// behavior differs from sqlite, most importantly the unique-violation
// mapping. Gated because it needs a docker daemon.
func TestPostgres_Integration(t *testing.T) {
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("set TEST_INTEGRATION=1 to run the dockertest postgres suite")
	}

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.Run("postgres", "16-alpine", []string{
		"POSTGRES_PASSWORD=secret",
		"POSTGRES_DB=foosball",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pool.Purge(resource)
	})

	var db *gorm.DB
	err = pool.Retry(func() error {
		dsn := fmt.Sprintf("host=localhost port=%v user=postgres password=secret dbname=foosball sslmode=disable",
			resource.GetPort("5432/tcp"))

		var openErr error
		db, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if openErr != nil {
			return openErr
		}

		sqlDB, openErr := db.DB()
		if openErr != nil {
			return openErr
		}

		return sqlDB.Ping()
	})
	require.NoError(t, err)
	require.NoError(t, InitTables(db))

	ctx := context.Background()
	users := NewUserDAO(db)
	games := NewGameDAO(db)

	t.Run("duplicate name maps to ErrUserNameExists", func(t *testing.T) {
		_, err := users.Insert(ctx, User{Name: "danny"})
		require.NoError(t, err)

		_, err = users.Insert(ctx, User{Name: "danny"})
		assert.ErrorIs(t, err, ErrUserNameExists)
	})

	t.Run("aggregate round-trip", func(t *testing.T) {
		seeded := seedUsers(t, users, "a", "b", "c", "d", "e", "f", "g", "h")

		start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		saved, err := games.Save(ctx, twoTeamGame(start, seeded))
		require.NoError(t, err)

		found, err := games.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		require.Len(t, found.Teams, 2)
		assert.Len(t, found.Teams[0].Players, 4)

		require.NoError(t, games.Delete(ctx, saved.ID))
		_, err = games.FindByID(ctx, saved.ID)
		assert.ErrorIs(t, err, ErrGameNotFound)
	})
}
