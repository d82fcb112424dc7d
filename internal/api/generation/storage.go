package generation

import (
	"context"
	"errors"
	"fmt"

	"tomaai-api/database"
	"tomaai-api/internal/domain/images"
	"tomaai-api/internal/domain/media"
	"tomaai-api/internal/infra/storage"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Storage keeps durable copies of provider images; nil keeps provider URLs.
var Storage *storage.Mirror

// keepCopy copies a freshly generated image into our storage and points the
// gallery row at it. On failure the provider URL stays in place.
func keepCopy(ctx context.Context, img *images.GeneratedImage) {
	if Storage == nil || img.Fallback {
		return
	}

	obj, err := Storage.Copy(ctx, img.ImageURL, fmt.Sprintf("generated/%d/%s", img.UserID, img.ID))
	if err != nil {
		log.Warn().Err(err).Str("image_id", img.ID).Msg("could not store image copy, keeping provider url")
		return
	}

	row := media.Image{
		GeneratedImageID: img.ID,
		ObjectKey:        obj.Key,
		PublicURL:        obj.PublicURL,
		SourceURL:        img.ImageURL,
		ContentType:      obj.ContentType,
		SizeBytes:        obj.Size,
	}
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Model(&images.GeneratedImage{}).
			Where("id = ?", img.ID).
			Update("image_url", obj.PublicURL).Error
	})
	if err != nil {
		log.Error().Err(err).Str("image_id", img.ID).Msg("failed to save image copy")
		if rmErr := Storage.Remove(ctx, obj.Key); rmErr != nil {
			log.Warn().Err(rmErr).Str("key", obj.Key).Msg("orphaned stored image")
		}
		return
	}
	img.ImageURL = obj.PublicURL
}

// dropCopy removes the stored copy of a deleted gallery image.
func dropCopy(ctx context.Context, imageID string) {
	var row media.Image
	err := database.DB.WithContext(ctx).Where("generated_image_id = ?", imageID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	if err != nil {
		log.Error().Err(err).Str("image_id", imageID).Msg("load stored image failed")
		return
	}

	if Storage != nil {
		if err := Storage.Remove(ctx, row.ObjectKey); err != nil {
			log.Warn().Err(err).Str("key", row.ObjectKey).Msg("remove stored image failed")
			return
		}
	}
	if err := database.DB.WithContext(ctx).Delete(&row).Error; err != nil {
		log.Error().Err(err).Str("image_id", imageID).Msg("delete stored image row failed")
	}
}
