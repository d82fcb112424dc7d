package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tomaai-api/internal/domain/access"
	"tomaai-api/internal/domain/images"
	"tomaai-api/internal/domain/plans"
	"tomaai-api/internal/domain/users"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAllowanceExhausted = errors.New("image allowance exhausted")
	ErrUserNotFound       = errors.New("user not found")
)

// PeriodStart is the first instant that counts toward the tier's allowance:
// the zero time for lifetime tiers, the start of the UTC month otherwise.
func PeriodStart(tier string, now time.Time) time.Time {
	if plans.Lookup(tier).Period == plans.PeriodLifetime {
		return time.Time{}
	}
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CountUsed counts the successful generations of userID since periodStart.
// Fallback rows never count; images removed from the gallery still do.
func CountUsed(ctx context.Context, db *gorm.DB, userID uint, periodStart time.Time) (int64, error) {
	q := db.WithContext(ctx).
		Unscoped().
		Model(&images.GeneratedImage{}).
		Where("user_id = ? AND fallback = ? AND status = ?", userID, false, images.StatusSucceeded)
	if !periodStart.IsZero() {
		q = q.Where("created_at >= ?", periodStart)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count generated images: %w", err)
	}
	return n, nil
}

// Evaluate loads the account and its usage and decides. On any read failure
// it returns the denied decision together with the error.
func Evaluate(ctx context.Context, db *gorm.DB, userID uint, now time.Time) (access.Decision, users.User, error) {
	var u users.User
	if err := db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Denied(), u, ErrUserNotFound
		}
		return access.Denied(), u, fmt.Errorf("load user %d: %w", userID, err)
	}

	used, err := CountUsed(ctx, db, u.ID, PeriodStart(u.Tier, now))
	if err != nil {
		return access.Denied(), u, err
	}
	return access.Evaluate(now, u, used), u, nil
}

// RecordGeneration persists img. Counting images are checked against the cap
// and inserted in one transaction with the account row locked, so concurrent
// requests of the same account cannot both take the last slot.
func RecordGeneration(ctx context.Context, db *gorm.DB, img *images.GeneratedImage, now time.Time) error {
	if img.CreatedAt.IsZero() {
		img.CreatedAt = now
	}
	if img.Status == "" {
		img.Status = images.StatusSucceeded
	}

	if !img.Counts() {
		if err := db.WithContext(ctx).Create(img).Error; err != nil {
			return fmt.Errorf("insert fallback image: %w", err)
		}
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var u users.User
		if err := q.First(&u, img.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("lock user %d: %w", img.UserID, err)
		}

		used, err := CountUsed(ctx, tx, u.ID, PeriodStart(u.Tier, now))
		if err != nil {
			return err
		}
		if !access.CanGenerate(u.Tier, used, u.TrialEndsAt, now) {
			return ErrAllowanceExhausted
		}

		if err := tx.Create(img).Error; err != nil {
			return fmt.Errorf("insert generated image: %w", err)
		}
		return nil
	})
}
