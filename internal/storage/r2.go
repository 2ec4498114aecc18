package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/bilgisen/khobor/internal/config"
	"github.com/bilgisen/khobor/internal/logger"
	"github.com/bilgisen/khobor/internal/models"
)

// R2Config holds the Cloudflare R2 settings.
type R2Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2 writes thumbnails to an R2 bucket and sends their public URL.
type R2 struct {
	client    objectPutter
	bucket    string
	publicURL string
	now       func() time.Time
	log       zerolog.Logger
}

func NewR2(ctx context.Context, cfg R2Config) (*R2, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return newR2(client, cfg), nil
}

func newR2(client objectPutter, cfg R2Config) *R2 {
	return &R2{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		now:       time.Now,
		log:       logger.Component("storage"),
	}
}

func (r *R2) Mode() string { return config.UploadR2 }

func (r *R2) Attach(ctx context.Context, _ string, in *models.NewsInput, file *models.Upload) error {
	key := ObjectKey(file.Filename, r.now())

	input := &s3.PutObjectInput{
		Bucket:       aws.String(r.bucket),
		Key:          aws.String(key),
		Body:         file.Reader,
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}
	if file.Size > 0 {
		input.ContentLength = aws.Int64(file.Size)
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	r.log.Info().Str("key", key).Int64("size", file.Size).Msg("thumbnail stored")
	in.Thumbnail = r.publicURL + "/" + key
	in.ThumbnailFile = nil
	return nil
}
