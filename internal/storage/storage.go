// Package storage places CMS thumbnail uploads where the news form can
// reference them: inline in the form itself, on the backend's /upload
// endpoint, or in a Cloudflare R2 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bilgisen/khobor/internal/config"
	"github.com/bilgisen/khobor/internal/models"
)

var (
	ErrTooLarge = errors.New("image is larger than the allowed size")
	ErrNotImage = errors.New("file is not an image")
)

// Uploader attaches a submitted thumbnail to a news form.
type Uploader interface {
	Attach(ctx context.Context, token string, in *models.NewsInput, file *models.Upload) error
	Mode() string
}

// UploadAPI is the part of the API client used by Backend.
type UploadAPI interface {
	Upload(ctx context.Context, token string, file models.Upload) (string, error)
}

// New builds the uploader selected by UPLOAD_MODE.
func New(ctx context.Context, cfg *config.Config, api UploadAPI) (Uploader, error) {
	switch cfg.UploadMode {
	case config.UploadInline, "":
		return Inline{}, nil
	case config.UploadBackend:
		return &Backend{api: api}, nil
	case config.UploadR2:
		return NewR2(ctx, R2Config{
			Endpoint:  cfg.R2Endpoint,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
			PublicURL: cfg.R2PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown upload mode %q", cfg.UploadMode)
	}
}

// CheckImage rejects files that are not images or exceed maxSize bytes.
func CheckImage(file *models.Upload, maxSize int64) error {
	if !strings.HasPrefix(file.ContentType, "image/") {
		return ErrNotImage
	}
	if maxSize > 0 && file.Size > maxSize {
		return ErrTooLarge
	}
	return nil
}

// ObjectKey returns a unique dated key such as news/2026/10/18/<uuid>.jpg.
func ObjectKey(filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("news", now.UTC().Format("2006/01/02"), uuid.NewString()+ext)
}

// Inline sends the file as the thumbnail part of the news form.
type Inline struct{}

func (Inline) Mode() string { return config.UploadInline }

func (Inline) Attach(_ context.Context, _ string, in *models.NewsInput, file *models.Upload) error {
	in.ThumbnailFile = file
	in.Thumbnail = ""
	return nil
}

// Backend stores the file through POST /upload and sends its URL.
type Backend struct {
	api UploadAPI
}

func NewBackend(api UploadAPI) *Backend {
	return &Backend{api: api}
}

func (b *Backend) Mode() string { return config.UploadBackend }

func (b *Backend) Attach(ctx context.Context, token string, in *models.NewsInput, file *models.Upload) error {
	url, err := b.api.Upload(ctx, token, *file)
	if err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}
	in.Thumbnail = url
	in.ThumbnailFile = nil
	return nil
}
