package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couponhub/internal/models"
)

func TestCouponRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewCouponRepository(db)
	user := newTestUser(t, db, "alice", "alice@example.com")

	coupon := &models.Coupon{
		Title:         "20% off everything",
		Code:          "SAVE20",
		Store:         "TestMart",
		DiscountType:  models.DiscountPercent,
		DiscountValue: 20,
		Tags:          models.TagList{"electronics", "sale"},
		Status:        models.CouponStatusActive,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		UploaderID:    user.ID,
	}
	require.NoError(t, repo.Create(testCtx(), coupon))

	got, err := repo.GetByID(testCtx(), coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, "20% off everything", got.Title)
	assert.Equal(t, models.TagList{"electronics", "sale"}, got.Tags)
	require.NotNil(t, got.Uploader)
	assert.Equal(t, "alice", got.Uploader.Username)
}

func TestCouponRepository_GetMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewCouponRepository(db)

	_, err := repo.GetByID(testCtx(), "missing")
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCouponRepository_ListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewCouponRepository(db)
	user := newTestUser(t, db, "bob", "bob@example.com")

	a := newTestCoupon(t, db, user.ID, "Deal A")
	b := newTestCoupon(t, db, user.ID, "Deal B")
	exclusive := newTestCoupon(t, db, user.ID, "Premium Deal")
	require.NoError(t, db.Model(exclusive).Update("is_exclusive", true).Error)
	_ = a
	_ = b

	t.Run("excludes exclusive for free viewers", func(t *testing.T) {
		coupons, total, err := repo.List(testCtx(), CouponFilter{Status: models.CouponStatusActive})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, coupons, 2)
	})

	t.Run("includes exclusive for premium viewers", func(t *testing.T) {
		_, total, err := repo.List(testCtx(), CouponFilter{
			Status:           models.CouponStatusActive,
			IncludeExclusive: true,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})

	t.Run("filters by uploader", func(t *testing.T) {
		other := newTestUser(t, db, "carol", "carol@example.com")
		newTestCoupon(t, db, other.ID, "Carol Deal")

		_, total, err := repo.List(testCtx(), CouponFilter{
			UploaderID:       other.ID,
			IncludeExclusive: true,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})
}

func TestCouponRepository_MarkExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewCouponRepository(db)
	user := newTestUser(t, db, "dave", "dave@example.com")

	stale := newTestCoupon(t, db, user.ID, "Old Deal")
	require.NoError(t, db.Model(stale).Update("expires_at", time.Now().Add(-time.Hour)).Error)
	newTestCoupon(t, db, user.ID, "Fresh Deal")

	n, err := repo.MarkExpired(testCtx(), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.GetByID(testCtx(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CouponStatusExpired, got.Status)
}

func TestCouponRepository_Claims(t *testing.T) {
	db := newTestDB(t)
	repo := NewCouponRepository(db)
	uploader := newTestUser(t, db, "erin", "erin@example.com")
	claimer := newTestUser(t, db, "frank", "frank@example.com")
	coupon := newTestCoupon(t, db, uploader.ID, "Claimable Deal")

	claim := &models.CouponClaim{UserID: claimer.ID, CouponID: coupon.ID}
	require.NoError(t, repo.CreateClaim(testCtx(), claim))

	t.Run("claim increments the counter", func(t *testing.T) {
		got, err := repo.GetByID(testCtx(), coupon.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, got.ClaimCount)
	})

	t.Run("second claim is rejected", func(t *testing.T) {
		dup := &models.CouponClaim{UserID: claimer.ID, CouponID: coupon.ID}
		err := repo.CreateClaim(testCtx(), dup)
		assert.ErrorIs(t, err, ErrClaimExists)
	})

	t.Run("duplicate does not bump the counter", func(t *testing.T) {
		got, err := repo.GetByID(testCtx(), coupon.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, got.ClaimCount)
	})

	t.Run("lookup round trips", func(t *testing.T) {
		got, err := repo.GetClaim(testCtx(), claimer.ID, coupon.ID)
		require.NoError(t, err)
		require.NotNil(t, got)

		none, err := repo.GetClaim(testCtx(), uploader.ID, coupon.ID)
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("counts since midnight", func(t *testing.T) {
		midnight := time.Now().UTC().Truncate(24 * time.Hour)
		n, err := repo.CountClaimsByUserSince(testCtx(), claimer.ID, midnight)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("lists with coupon preloaded", func(t *testing.T) {
		claims, total, err := repo.ListClaimsByUser(testCtx(), claimer.ID, 0, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, claims, 1)
		require.NotNil(t, claims[0].Coupon)
		assert.Equal(t, coupon.ID, claims[0].Coupon.ID)
	})
}
