package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couponhub/internal/models"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user := &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         models.UserRoleUser,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, repo.Create(testCtx(), user))
	assert.NotEmpty(t, user.ID)

	got, err := repo.GetByEmail(testCtx(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = repo.GetByUsername(testCtx(), "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	first := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, repo.Create(testCtx(), first))

	dup := &models.User{Username: "alice2", Email: "alice@example.com", PasswordHash: "x"}
	err := repo.Create(testCtx(), dup)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	first := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, repo.Create(testCtx(), first))

	dup := &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"}
	err := repo.Create(testCtx(), dup)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserRepository_GetMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(testCtx(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByEmail(testCtx(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_AddPoints(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := newTestUser(t, db, "bob", "bob@example.com")

	require.NoError(t, repo.AddPoints(testCtx(), user.ID, 10))
	require.NoError(t, repo.AddPoints(testCtx(), user.ID, 5))

	got, err := repo.GetByID(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Points)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	user := newTestUser(t, db, "carol", "carol@example.com")

	err := repo.UpdateFields(testCtx(), user.ID, map[string]interface{}{
		"status":     models.UserStatusSuspended,
		"is_premium": true,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(testCtx(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, got.Status)
	assert.True(t, got.IsPremium)

	err = repo.UpdateFields(testCtx(), "missing-id", map[string]interface{}{"status": models.UserStatusActive})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefreshTokenRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewRefreshTokenRepository(db)
	user := newTestUser(t, db, "dave", "dave@example.com")

	token := &models.RefreshToken{
		UserID:    user.ID,
		Token:     "opaque-token-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(testCtx(), token))

	got, err := repo.GetByToken(testCtx(), "opaque-token-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, repo.Delete(testCtx(), "opaque-token-1"))
	_, err = repo.GetByToken(testCtx(), "opaque-token-1")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRefreshTokenRepository_DeleteExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewRefreshTokenRepository(db)
	user := newTestUser(t, db, "erin", "erin@example.com")

	stale := &models.RefreshToken{UserID: user.ID, Token: "stale", ExpiresAt: time.Now().Add(-time.Hour)}
	fresh := &models.RefreshToken{UserID: user.ID, Token: "fresh", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(testCtx(), stale))
	require.NoError(t, repo.Create(testCtx(), fresh))

	n, err := repo.DeleteExpired(testCtx(), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.GetByToken(testCtx(), "fresh")
	assert.NoError(t, err)
}
