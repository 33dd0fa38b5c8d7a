package repository_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hatzaot-app/quotes-api/internal/database"
	"github.com/hatzaot-app/quotes-api/internal/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	return db
}

func TestQuoteSequenceRepository_NextNumber(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewQuoteSequenceRepository(db)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.NextNumber(ctx, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestQuoteSequenceRepository_NextNumber_PerOwner(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewQuoteSequenceRepository(db)
	ctx := context.Background()

	first, err := repo.NextNumber(ctx, "owner-1")
	require.NoError(t, err)
	second, err := repo.NextNumber(ctx, "owner-2")
	require.NoError(t, err)

	// Numbering runs independently per account.
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(1), second)
}

func TestQuoteSequenceRepository_Current(t *testing.T) {
	db := openTestDB(t)
	repo := repository.NewQuoteSequenceRepository(db)
	ctx := context.Background()

	current, err := repo.Current(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), current)

	_, err = repo.NextNumber(ctx, "owner-1")
	require.NoError(t, err)

	current, err = repo.Current(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), current)
}
