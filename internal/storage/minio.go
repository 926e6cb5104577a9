package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/internal/config"
)

// MinioStore uploads item images to an S3-compatible bucket.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

// NewMinioStore connects to MinIO and makes sure the bucket exists with
// public read access.
func NewMinioStore(ctx context.Context, cfg config.MinioConfig, logger *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	publicURL := strings.TrimSuffix(strings.TrimSpace(cfg.PublicURL), "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint
	}

	store := &MinioStore{client: client, bucket: cfg.Bucket, publicURL: publicURL, logger: logger}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		logger.Warn("minio bucket check failed", zap.String("bucket", cfg.Bucket), zap.Error(err))
		return store, nil
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Action":["s3:GetObject"],"Effect":"Allow","Principal":{"AWS":["*"]},"Resource":["arn:aws:s3:::%s/*"]}]}`, cfg.Bucket)
		if err := client.SetBucketPolicy(ctx, cfg.Bucket, policy); err != nil {
			logger.Warn("set bucket policy", zap.Error(err))
		}
		logger.Info("minio bucket created", zap.String("bucket", cfg.Bucket))
	}
	return store, nil
}

// Upload stores the image under a fresh key and returns its public URL.
func (s *MinioStore) Upload(ctx context.Context, r io.Reader, filename, contentType string, size int64) (string, error) {
	if err := ValidateImage(contentType, size); err != nil {
		return "", err
	}
	key := ObjectKey(filename, contentType, time.Now())
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	url := s.ImageURL(key)
	s.logger.Info("image uploaded", zap.String("key", key), zap.String("url", url))
	return url, nil
}

// ImageURL returns the public URL of an object key.
func (s *MinioStore) ImageURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key)
}

// HealthCheck verifies the bucket is reachable.
func (s *MinioStore) HealthCheck(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("minio health check: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}
