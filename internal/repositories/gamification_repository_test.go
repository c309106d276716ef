package repositories

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"couponhub/internal/models"
)

func newTestBadge(t *testing.T, repo GamificationRepository, slug string, metric string, threshold int64) *models.Badge {
	t.Helper()
	criteria, err := json.Marshal(models.BadgeCriteria{Metric: metric, Threshold: threshold})
	require.NoError(t, err)

	badge := &models.Badge{
		Slug:     slug,
		Name:     slug,
		Criteria: datatypes.JSON(criteria),
		IsActive: true,
	}
	require.NoError(t, repo.CreateBadge(testCtx(), badge))
	return badge
}

func TestGamificationRepository_PointEvents(t *testing.T) {
	db := newTestDB(t)
	repo := NewGamificationRepository(db)
	user := newTestUser(t, db, "alice", "alice@example.com")

	require.NoError(t, repo.CreatePointEvent(testCtx(), &models.PointEvent{
		UserID: user.ID, Delta: 10, Reason: models.PointReasonUpload,
	}))
	require.NoError(t, repo.CreatePointEvent(testCtx(), &models.PointEvent{
		UserID: user.ID, Delta: 2, Reason: models.PointReasonClaim,
	}))

	events, total, err := repo.ListPointEvents(testCtx(), user.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, events, 2)
}

func TestGamificationRepository_AwardBadgeIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewGamificationRepository(db)
	user := newTestUser(t, db, "bob", "bob@example.com")
	badge := newTestBadge(t, repo, "first-share", models.MetricUploads, 1)

	awarded, err := repo.AwardBadge(testCtx(), &models.UserBadge{UserID: user.ID, BadgeID: badge.ID})
	require.NoError(t, err)
	assert.True(t, awarded)

	again, err := repo.AwardBadge(testCtx(), &models.UserBadge{UserID: user.ID, BadgeID: badge.ID})
	require.NoError(t, err)
	assert.False(t, again)

	badges, err := repo.ListUserBadges(testCtx(), user.ID)
	require.NoError(t, err)
	require.Len(t, badges, 1)
	require.NotNil(t, badges[0].Badge)
	assert.Equal(t, "first-share", badges[0].Badge.Slug)
}

func TestGamificationRepository_Leaderboard(t *testing.T) {
	db := newTestDB(t)
	repo := NewGamificationRepository(db)

	alice := newTestUser(t, db, "alice", "alice@example.com")
	bob := newTestUser(t, db, "bob", "bob@example.com")
	carol := newTestUser(t, db, "carol", "carol@example.com")
	require.NoError(t, db.Model(alice).Update("points", 50).Error)
	require.NoError(t, db.Model(bob).Update("points", 200).Error)
	require.NoError(t, db.Model(carol).Update("points", 100).Error)

	// Suspended users stay off the board.
	suspended := newTestUser(t, db, "mallory", "mallory@example.com")
	require.NoError(t, db.Model(suspended).Updates(map[string]interface{}{
		"points": 999, "status": models.UserStatusSuspended,
	}).Error)

	entries, err := repo.Leaderboard(testCtx(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Username)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "carol", entries[1].Username)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestGamificationRepository_Badges(t *testing.T) {
	db := newTestDB(t)
	repo := NewGamificationRepository(db)

	active := newTestBadge(t, repo, "active-badge", models.MetricClaims, 5)
	retired := newTestBadge(t, repo, "retired-badge", models.MetricClaims, 50)
	require.NoError(t, db.Model(&models.Badge{}).Where("id = ?", retired.ID).Update("is_active", false).Error)

	all, err := repo.ListBadges(testCtx(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	activeOnly, err := repo.ListBadges(testCtx(), true)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, active.Slug, activeOnly[0].Slug)

	bySlug, err := repo.GetBadgeBySlug(testCtx(), "active-badge")
	require.NoError(t, err)
	assert.Equal(t, active.ID, bySlug.ID)

	require.NoError(t, repo.DeleteBadge(testCtx(), active.ID))
	_, err = repo.GetBadgeByID(testCtx(), active.ID)
	assert.ErrorIs(t, err, ErrBadgeNotFound)
}
