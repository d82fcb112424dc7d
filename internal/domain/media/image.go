package media

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image is the durable copy of a generated image. Provider URLs expire
// within hours; PublicURL points at our own storage.
type Image struct {
	ID               string `gorm:"type:varchar(36);primaryKey" json:"id"`
	GeneratedImageID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"generated_image_id"`
	ObjectKey        string `gorm:"not null" json:"object_key"`
	PublicURL        string `gorm:"type:text;not null" json:"public_url"`
	SourceURL        string `gorm:"type:text" json:"-"`
	ContentType      string `gorm:"type:varchar(40)" json:"content_type"`
	SizeBytes        int64  `json:"size_bytes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (img *Image) BeforeCreate(tx *gorm.DB) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	return nil
}
