package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultMaxBytes caps one downloaded image.
const DefaultMaxBytes = 10 << 20

var (
	ErrNotImage = errors.New("downloaded content is not an image")
	ErrTooLarge = errors.New("downloaded image too large")
)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Object describes one stored copy.
type Object struct {
	Key         string
	PublicURL   string
	ContentType string
	Size        int64
}

// Mirror downloads remote images into a Store.
type Mirror struct {
	store    Store
	client   *http.Client
	maxBytes int64
}

func NewMirror(store Store) *Mirror {
	return &Mirror{
		store:    store,
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: DefaultMaxBytes,
	}
}

// Copy fetches sourceURL and stores it under keyPrefix plus an extension
// derived from the content type.
func (m *Mirror) Copy(ctx context.Context, sourceURL, keyPrefix string) (Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return Object{}, fmt.Errorf("build download request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return Object{}, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Object{}, fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, m.maxBytes+1))
	if err != nil {
		return Object{}, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > m.maxBytes {
		return Object{}, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	ext, ok := extensions[contentType]
	if !ok {
		return Object{}, fmt.Errorf("%w: %s", ErrNotImage, contentType)
	}

	key := keyPrefix + ext
	url, err := m.store.Put(ctx, key, contentType, data)
	if err != nil {
		return Object{}, err
	}
	return Object{Key: key, PublicURL: url, ContentType: contentType, Size: int64(len(data))}, nil
}

func (m *Mirror) Remove(ctx context.Context, key string) error {
	return m.store.Delete(ctx, key)
}
