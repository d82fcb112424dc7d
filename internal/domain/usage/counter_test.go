package usage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tomaai-api/database"
	"tomaai-api/internal/domain/access"
	"tomaai-api/internal/domain/images"
	"tomaai-api/internal/domain/plans"
	"tomaai-api/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, u users.User) users.User {
	t.Helper()
	if u.Tier == "" {
		u.Tier = plans.TierFree
	}
	if u.SubscriptionStatus == "" {
		u.SubscriptionStatus = users.StatusInactive
	}
	u.EmailCollected = true
	require.NoError(t, db.Create(&u).Error)
	return u
}

func addImage(t *testing.T, db *gorm.DB, userID uint, createdAt time.Time, fallback bool) {
	t.Helper()
	img := images.GeneratedImage{
		UserID:    userID,
		Prompt:    "a lighthouse",
		ImageURL:  "https://img.example/x.png",
		Fallback:  fallback,
		CreatedAt: createdAt,
	}
	if fallback {
		img.Status = images.StatusFailed
	}
	require.NoError(t, db.Create(&img).Error)
}

func TestPeriodStart(t *testing.T) {
	assert.True(t, PeriodStart(plans.TierFree, now).IsZero())
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), PeriodStart(plans.TierPro, now))
	assert.True(t, PeriodStart("unknown-tier", now).IsZero(), "unknown tier is free")
}

func TestCountUsed(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, db, users.User{})
	other := createUser(t, db, users.User{})

	addImage(t, db, u.ID, now.Add(-time.Hour), false)
	addImage(t, db, u.ID, now.AddDate(0, -2, 0), false)
	addImage(t, db, u.ID, now.Add(-time.Minute), true)
	addImage(t, db, other.ID, now, false)

	n, err := CountUsed(context.Background(), db, u.ID, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "fallback and foreign rows excluded")

	n, err = CountUsed(context.Background(), db, u.ID, PeriodStart(plans.TierStarter, now))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "monthly window excludes older rows")
}

func TestCountUsedIncludesDeletedImages(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, db, users.User{})
	addImage(t, db, u.ID, now.Add(-time.Hour), false)

	require.NoError(t, db.Where("user_id = ?", u.ID).Delete(&images.GeneratedImage{}).Error)

	var visible int64
	require.NoError(t, db.Model(&images.GeneratedImage{}).Where("user_id = ?", u.ID).Count(&visible).Error)
	assert.EqualValues(t, 0, visible)

	n, err := CountUsed(context.Background(), db, u.ID, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCountUsedSeesOwnWrite(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, db, users.User{})

	n, err := CountUsed(context.Background(), db, u.ID, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	require.NoError(t, RecordGeneration(context.Background(), db, &images.GeneratedImage{
		UserID: u.ID, Prompt: "p", ImageURL: "u",
	}, now))

	n, err = CountUsed(context.Background(), db, u.ID, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestEvaluate(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, db, users.User{})
	addImage(t, db, u.ID, now.Add(-time.Hour), false)
	addImage(t, db, u.ID, now.Add(-time.Hour), false)

	d, _, err := Evaluate(context.Background(), db, u.ID, now)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining.Count)

	addImage(t, db, u.ID, now.Add(-time.Minute), false)
	d, _, err = Evaluate(context.Background(), db, u.ID, now)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, access.ReasonLimitReached, d.Reason)
}

func TestEvaluateMissingUserFailsClosed(t *testing.T) {
	db := setupDB(t)
	d, _, err := Evaluate(context.Background(), db, 999, now)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, d.Allowed)
}

func TestEvaluateStoreFailureFailsClosed(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, db, users.User{})
	require.NoError(t, db.Migrator().DropTable(&images.GeneratedImage{}))

	d, _, err := Evaluate(context.Background(), db, u.ID, now)
	assert.Error(t, err)
	assert.False(t, d.Allowed)
}

func TestRecordGenerationRefusesPastCap(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, db, users.User{})
	for i := 0; i < 3; i++ {
		addImage(t, db, u.ID, now.Add(-time.Hour), false)
	}

	err := RecordGeneration(context.Background(), db, &images.GeneratedImage{
		UserID: u.ID, Prompt: "p", ImageURL: "u",
	}, now)
	assert.ErrorIs(t, err, ErrAllowanceExhausted)

	n, err := CountUsed(context.Background(), db, u.ID, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestRecordGenerationConcurrentLastSlot(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, db, users.User{})
	for i := 0; i < 2; i++ {
		addImage(t, db, u.ID, now.Add(-time.Hour), false)
	}

	const workers = 20
	errs := make(chan error, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- RecordGeneration(context.Background(), db, &images.GeneratedImage{
				UserID: u.ID, Prompt: "p", ImageURL: "u",
			}, now)
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var ok, exhausted int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAllowanceExhausted):
			exhausted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, exhausted)

	n, err := CountUsed(context.Background(), db, u.ID, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestRecordGenerationTrialOverridesCap(t *testing.T) {
	db := setupDB(t)
	trialEnd := now.Add(48 * time.Hour)
	u := createUser(t, db, users.User{Tier: plans.TierStarter, TrialEndsAt: &trialEnd})
	for i := 0; i < 50; i++ {
		addImage(t, db, u.ID, now.Add(-time.Hour), false)
	}

	require.NoError(t, RecordGeneration(context.Background(), db, &images.GeneratedImage{
		UserID: u.ID, Prompt: "p", ImageURL: "u",
	}, now))
}

func TestRecordGenerationFallbackNeverCounted(t *testing.T) {
	db := setupDB(t)
	u := createUser(t, db, users.User{})
	for i := 0; i < 3; i++ {
		addImage(t, db, u.ID, now.Add(-time.Hour), false)
	}

	img := &images.GeneratedImage{UserID: u.ID, Prompt: "p", ImageURL: "sample", Fallback: true, Status: images.StatusFailed}
	require.NoError(t, RecordGeneration(context.Background(), db, img, now))
	assert.NotEmpty(t, img.ID)

	n, err := CountUsed(context.Background(), db, u.ID, time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestRecordGenerationUnknownUser(t *testing.T) {
	db := setupDB(t)
	err := RecordGeneration(context.Background(), db, &images.GeneratedImage{UserID: 42, Prompt: "p", ImageURL: "u"}, now)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
