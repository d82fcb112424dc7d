package images

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Generation outcome. Only succeeded rows consume allowance.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type GeneratedImage struct {
	ID             string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         uint   `gorm:"not null;index:idx_images_user_created,priority:1" json:"user_id"`
	Prompt         string `gorm:"type:text;not null" json:"prompt"`
	NegativePrompt string `gorm:"type:text" json:"negative_prompt,omitempty"`
	Style          string `gorm:"type:varchar(40)" json:"style"`
	AspectRatio    string `gorm:"type:varchar(10)" json:"aspect_ratio"`
	Quality        string `gorm:"type:varchar(20)" json:"quality"`
	ImageURL       string `gorm:"type:text;not null" json:"image_url"`
	Status         Status `gorm:"type:varchar(20);not null;default:'succeeded'" json:"status"`
	// Fallback rows hold a sample image served after a provider failure.
	Fallback bool `gorm:"not null;default:false" json:"fallback"`

	CreatedAt time.Time      `gorm:"index:idx_images_user_created,priority:2" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (img *GeneratedImage) BeforeCreate(tx *gorm.DB) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	if img.Status == "" {
		img.Status = StatusSucceeded
	}
	return nil
}

// Counts reports whether the record consumes allowance.
func (img GeneratedImage) Counts() bool {
	return !img.Fallback && img.Status == StatusSucceeded
}
