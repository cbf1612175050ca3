package minio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"restaurant-menu/internal/config"
	"restaurant-menu/internal/core/port"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const publicReadACL = "public-read"

// Adapter is an adapter for S3-compatible buckets (AWS S3, DigitalOcean Spaces, MinIO)
type Adapter struct {
	client *minio.Client
	config config.S3Config
	acl    string
	logger *slog.Logger
}

// Option configures an Adapter
type Option func(*Adapter)

// WithACL overrides the canned ACL sent with every object, empty disables it
func WithACL(acl string) Option {
	return func(a *Adapter) { a.acl = acl }
}

// NewAdapter returns Adapter
func NewAdapter(ctx context.Context, cfg config.S3Config, logger *slog.Logger, opts ...Option) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	adapter := &Adapter{client: client, config: cfg, acl: publicReadACL, logger: logger}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter, nil
}

// Put uploads an object and returns its public URL
func (a *Adapter) Put(ctx context.Context, object port.PutObject) (string, error) {
	opts := minio.PutObjectOptions{
		ContentType: object.ContentType,
	}
	if a.acl != "" {
		opts.UserMetadata = map[string]string{"x-amz-acl": a.acl}
	}

	info, err := a.client.PutObject(ctx, a.config.Bucket, object.Key, bytes.NewReader(object.Bytes), int64(len(object.Bytes)), opts)
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	location := a.publicURL(object.Key)
	a.logger.Info("object stored",
		slog.String("fileKey", object.Key),
		slog.String("bucket", a.config.Bucket),
		slog.Int64("size", info.Size))

	return location, nil
}

func (a *Adapter) publicURL(key string) string {
	if a.config.PublicURL != "" {
		return strings.TrimSuffix(a.config.PublicURL, "/") + "/" + url.PathEscape(key)
	}
	return a.client.EndpointURL().JoinPath(a.config.Bucket, key).String()
}
