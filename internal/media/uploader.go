package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"fantasy-ai/backend/internal/model"
)

var ErrNotConfigured = errors.New("media storage is not configured")

// Uploader stores an attachment and returns the URL clients can load it from.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type S3Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string
}

type S3Uploader struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	region   string
	endpoint string
}

func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrNotConfigured
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	slog.Info("S3 media uploader configured", "bucket", cfg.Bucket, "region", cfg.Region)
	return newS3Uploader(client, cfg), nil
}

func newS3Uploader(client *s3.Client, cfg S3Config) *S3Uploader {
	return &S3Uploader{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}
}

// Upload puts the object and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err := u.uploader.Upload(ctxUpload, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	return u.publicURL(key), nil
}

func (u *S3Uploader) publicURL(key string) string {
	if u.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", u.endpoint, u.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}

// Attacher turns staged images into persisted references.
type Attacher struct {
	uploader Uploader
	prefix   string
}

// NewAttacher accepts a nil uploader; attachments then keep their client-supplied URI.
func NewAttacher(uploader Uploader) *Attacher {
	return &Attacher{uploader: uploader, prefix: "chat-images"}
}

// Attach uploads the staged bytes and returns the reference to store on the message.
// Without bytes or without an uploader the staged URI is used as is.
func (a *Attacher) Attach(ctx context.Context, owner string, characterID int64, staged *model.StagedMedia) (string, error) {
	if staged == nil {
		return "", nil
	}
	if len(staged.Data) == 0 || a == nil || a.uploader == nil {
		return staged.URI, nil
	}

	key := ObjectKey(a.prefix, owner, characterID, staged.MimeType)
	url, err := a.uploader.Upload(ctx, key, staged.Data, contentType(staged.MimeType))
	if err != nil {
		return "", err
	}
	return url, nil
}

// ObjectKey builds a unique object key for an attachment.
func ObjectKey(prefix, owner string, characterID int64, mimeType string) string {
	owner = strings.NewReplacer(":", "-", "/", "-").Replace(owner)
	return fmt.Sprintf("%s/%s/%d/%s%s", prefix, owner, characterID, uuid.NewString(), extension(mimeType))
}

func contentType(mimeType string) string {
	if mimeType == "" {
		return "image/jpeg"
	}
	return mimeType
}

func extension(mimeType string) string {
	switch contentType(mimeType) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}
