package billing

import "time"

// ProcessedEvent records a Stripe event id once its effects are committed,
// so redeliveries are acknowledged without being applied twice.
type ProcessedEvent struct {
	EventID     string    `gorm:"primaryKey;type:varchar(255)"`
	Type        string    `gorm:"type:varchar(100);not null"`
	ProcessedAt time.Time `gorm:"not null;index"`
}
