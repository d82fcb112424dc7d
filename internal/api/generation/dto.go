package generation

import (
	"time"

	"tomaai-api/internal/domain/access"
	"tomaai-api/internal/domain/images"
)

type GenerateRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
	Style          string `json:"style"`
	AspectRatio    string `json:"aspect_ratio"`
	Quality        string `json:"quality"`
}

type ImageDTO struct {
	ID             string    `json:"id"`
	Prompt         string    `json:"prompt"`
	NegativePrompt string    `json:"negative_prompt,omitempty"`
	Style          string    `json:"style"`
	AspectRatio    string    `json:"aspect_ratio"`
	Quality        string    `json:"quality"`
	ImageURL       string    `json:"image_url"`
	Status         string    `json:"status"`
	Fallback       bool      `json:"fallback"`
	CreatedAt      time.Time `json:"created_at"`
}

type GenerateResponse struct {
	Image       ImageDTO         `json:"image"`
	Status      string           `json:"status"`
	Fallback    bool             `json:"fallback"`
	Entitlement *access.Decision `json:"entitlement,omitempty"`
}

func toImageDTO(img images.GeneratedImage) ImageDTO {
	return ImageDTO{
		ID:             img.ID,
		Prompt:         img.Prompt,
		NegativePrompt: img.NegativePrompt,
		Style:          img.Style,
		AspectRatio:    img.AspectRatio,
		Quality:        img.Quality,
		ImageURL:       img.ImageURL,
		Status:         string(img.Status),
		Fallback:       img.Fallback,
		CreatedAt:      img.CreatedAt,
	}
}
