package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"cabbook/internal/integration/blobstore"
	"cabbook/internal/logger"
)

const defaultImageContentType = "image/jpeg"

var imageExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/jpg":       "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"image/gif":       "gif",
	"application/pdf": "pdf",
}

// BlobStore persists binary objects and returns their public URL.
type BlobStore interface {
	Upload(ctx context.Context, container, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, container, name string) error
}

// BlobService uploads and removes document images.
type BlobService struct {
	store BlobStore
	log   logger.ILogger

	now   func() time.Time
	newID func() string
}

// NewBlobService creates a new BlobService. A nil store disables uploads.
func NewBlobService(store BlobStore, log logger.ILogger) *BlobService {
	return &BlobService{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Upload decodes a base64 image, optionally wrapped in a data URL, and stores it
// in container.
func (s *BlobService) Upload(ctx context.Context, base64Image, container string) (string, error) {
	if strings.TrimSpace(base64Image) == "" || strings.TrimSpace(container) == "" {
		return "", ErrImageRequired
	}
	if s.store == nil {
		return "", ErrBlobStorageDisabled
	}

	contentType, data, err := decodeImage(base64Image)
	if err != nil {
		return "", err
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		ext = "jpg"
	}
	name := fmt.Sprintf("cardocument-%d-%s.%s", s.now().UnixMilli(), s.newID()[:8], ext)

	blobURL, err := s.store.Upload(ctx, container, name, contentType, data)
	if err != nil {
		s.log.Error("blob upload failed",
			logger.String("container", container),
			logger.String("blob", name),
			logger.Error(err),
		)
		return "", ErrBlobUploadFailed
	}

	s.log.Info("blob uploaded",
		logger.String("container", container),
		logger.String("blob", name),
		logger.Int("bytes", len(data)),
	)
	return blobURL, nil
}

// Delete removes the blob addressed by blobURL. The first path segment names
// the container.
func (s *BlobService) Delete(ctx context.Context, blobURL string) error {
	if strings.TrimSpace(blobURL) == "" {
		return ErrBlobURLRequired
	}
	if s.store == nil {
		return ErrBlobStorageDisabled
	}

	container, name, err := splitBlobURL(blobURL)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, container, name); err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("delete blob: %w", err)
	}

	s.log.Info("blob deleted", logger.String("container", container), logger.String("blob", name))
	return nil
}

func decodeImage(raw string) (contentType string, data []byte, err error) {
	contentType = defaultImageContentType
	payload := strings.TrimSpace(raw)

	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return "", nil, ErrInvalidImage
		}
		header := payload[len("data:"):comma]
		if mediaType, _, _ := strings.Cut(header, ";"); mediaType != "" {
			contentType = strings.ToLower(mediaType)
		}
		payload = payload[comma+1:]
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil || len(data) == 0 {
		return "", nil, ErrInvalidImage
	}
	return contentType, data, nil
}

func splitBlobURL(raw string) (container, name string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", "", ErrInvalidBlobURL
	}

	parts := make([]string, 0)
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return "", "", ErrInvalidBlobURL
	}
	return parts[0], strings.Join(parts[1:], "/"), nil
}
