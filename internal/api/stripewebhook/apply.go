package stripewebhooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tomaai-api/internal/domain/billing"
	"tomaai-api/internal/domain/users"
	stripeinfra "tomaai-api/internal/infra/stripe"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func alreadyProcessed(ctx context.Context, db *gorm.DB, eventID string) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&billing.ProcessedEvent{}).Where("event_id = ?", eventID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("lookup processed event: %w", err)
	}
	return n > 0, nil
}

// apply reconciles the account and marks the event processed in one
// transaction. Events for accounts that cannot be found are acknowledged:
// a retry would not find them either.
func apply(ctx context.Context, db *gorm.DB, p parsedEvent, now time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findAccount(tx, p.Event)
		if err != nil {
			return err
		}

		logger := log.With().Str("event_id", p.StripeID).Str("event_type", p.StripeType).Logger()

		if user == nil {
			logger.Warn().
				Uint("user_id", p.Event.UserID).
				Str("customer_id", p.Event.CustomerID).
				Msg("no account for billing event, acknowledging")
			return markProcessed(tx, p, now)
		}
		logger = logger.With().Uint("user_id", user.ID).Logger()

		if p.Event.Type == billing.EventSubscriptionDeleted && staleSubscription(user, p.Event.SubscriptionID) {
			logger.Info().Str("subscription_id", p.Event.SubscriptionID).Msg("deleted subscription is not the current one, ignoring")
			return markProcessed(tx, p, now)
		}

		cur := billing.EntitlementOf(*user)
		next, changed := billing.Reconcile(cur, p.Event, now)
		if changed {
			next.ApplyTo(user)
			if err := tx.Model(user).
				Select("tier", "subscription_status", "trial_ends_at", "stripe_customer_id", "subscription_id").
				Updates(user).Error; err != nil {
				return fmt.Errorf("update entitlement: %w", err)
			}
			logger.Info().
				Str("tier", next.Tier).
				Str("status", next.Status).
				Msg("entitlement updated")
		} else {
			logger.Info().
				Str("stripe_status", p.StripeStatus).
				Str("normalized_status", stripeinfra.NormalizeStripeStatus(p.StripeStatus)).
				Msg("billing event recorded, no entitlement change")
		}

		if p.Payment != nil {
			p.Payment.UserID = user.ID
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(p.Payment).Error; err != nil {
				return fmt.Errorf("record payment: %w", err)
			}
		}

		return markProcessed(tx, p, now)
	})
}

func findAccount(tx *gorm.DB, ev billing.Event) (*users.User, error) {
	lookups := []struct {
		query string
		arg   interface{}
		ok    bool
	}{
		{"id = ?", ev.UserID, ev.UserID != 0},
		{"stripe_customer_id = ?", ev.CustomerID, ev.CustomerID != ""},
		{"subscription_id = ?", ev.SubscriptionID, ev.SubscriptionID != ""},
	}

	for _, l := range lookups {
		if !l.ok {
			continue
		}
		var u users.User
		err := tx.Where(l.query, l.arg).First(&u).Error
		if err == nil {
			return &u, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find account: %w", err)
		}
	}
	return nil, nil
}

func staleSubscription(u *users.User, subscriptionID string) bool {
	return subscriptionID != "" && u.SubscriptionID != nil && *u.SubscriptionID != "" && *u.SubscriptionID != subscriptionID
}

func markProcessed(tx *gorm.DB, p parsedEvent, now time.Time) error {
	row := billing.ProcessedEvent{EventID: p.StripeID, Type: p.StripeType, ProcessedAt: now}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("record processed event: %w", err)
	}
	return nil
}
