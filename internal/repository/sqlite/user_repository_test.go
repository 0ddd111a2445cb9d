package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funding-dashboard/internal/domain"
	"funding-dashboard/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserRepositoryCreateAndGet(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	user := &domain.User{Username: "alice", PasswordHash: "hash-1"}
	id, err := repo.Create(ctx, user)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)
	assert.Equal(t, "hash-1", byName.PasswordHash)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestUserRepositoryDuplicateUsername(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	_, err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "hash-1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "hash-2"})
	assert.ErrorIs(t, err, repository.ErrUserExists)

	// exactly one row survived
	row, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", row.PasswordHash)
}

func TestUserRepositoryUsernameIsExactMatch(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	_, err := repo.Create(ctx, &domain.User{Username: "alice", PasswordHash: "hash-1"})
	require.NoError(t, err)

	_, err = repo.GetByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepositoryNotFound(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	_, err := repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
