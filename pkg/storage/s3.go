// Package storage uploads files to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"aptcare/backend/config"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage stores images and documents in one bucket
type S3Storage struct {
	client      objectPutter
	bucket      string
	baseURL     string
	imageFolder string
	logger      *zap.Logger
}

// NewS3Storage builds an S3 client from static credentials.
// A non-empty endpoint targets MinIO or another S3-compatible server.
func NewS3Storage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Storage(client, cfg, logger), nil
}

func newS3Storage(client objectPutter, cfg *config.StorageConfig, logger *zap.Logger) *S3Storage {
	base := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	folder := cfg.ImageFolder
	if folder == "" {
		folder = "images"
	}
	return &S3Storage{
		client:      client,
		bucket:      cfg.Bucket,
		baseURL:     base,
		imageFolder: folder,
		logger:      logger,
	}
}

// UploadImage stores an image under the image folder and returns its public url
func (s *S3Storage) UploadImage(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("upload image %q: content type %q is not an image", name, contentType)
	}
	return s.UploadFile(ctx, s.imageFolder, name, contentType, data)
}

// UploadFile stores data under folder and returns its public url
func (s *S3Storage) UploadFile(ctx context.Context, folder, name, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("upload %q: empty file", name)
	}

	key := objectKey(folder, name, time.Now())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.logger.Error("s3 upload failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return s.baseURL + "/" + key, nil
}

// objectKey builds folder/yyyy/mm/<uuid><ext>
func objectKey(folder, name string, now time.Time) string {
	ext := strings.ToLower(path.Ext(name))
	return path.Join(strings.Trim(folder, "/"), now.Format("2006/01"), uuid.NewString()+ext)
}
