package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"restaurant-menu/internal/config"
	"restaurant-menu/internal/core/port"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const uploadTimeout = 2 * time.Minute

// Adapter stores objects in a Google Cloud Storage bucket
type Adapter struct {
	client *storage.Client
	config config.GCSConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter
func NewAdapter(ctx context.Context, cfg config.GCSConfig, logger *slog.Logger) (*Adapter, error) {
	var opts []option.ClientOption
	switch {
	case cfg.EmulatorHost != "":
		// the client library only reads the emulator address from the environment
		if err := os.Setenv("STORAGE_EMULATOR_HOST", strings.TrimRight(cfg.EmulatorHost, "/")); err != nil {
			return nil, fmt.Errorf("failed to set emulator host: %w", err)
		}
		opts = append(opts, option.WithoutAuthentication())
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile), option.WithScopes(storage.ScopeReadWrite))
	default:
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcs client: %w", err)
	}

	logger.Info("gcs storage initialized",
		slog.String("bucket", cfg.Bucket),
		slog.String("cdnDomain", cfg.CDNDomain),
		slog.String("emulatorHost", cfg.EmulatorHost))

	return &Adapter{client: client, config: cfg, logger: logger}, nil
}

// Put uploads an object and returns its public URL
func (a *Adapter) Put(ctx context.Context, object port.PutObject) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := a.client.Bucket(a.config.Bucket).Object(object.Key).NewWriter(ctx)
	w.ContentType = object.ContentType
	if _, err := io.Copy(w, bytes.NewReader(object.Bytes)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to gcs: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close gcs writer: %w", err)
	}

	a.logger.Info("object stored",
		slog.String("fileKey", object.Key),
		slog.String("bucket", a.config.Bucket),
		slog.Int("size", len(object.Bytes)))

	return PublicURL(a.config, object.Key), nil
}

// Close releases the underlying client
func (a *Adapter) Close() error {
	return a.client.Close()
}

// PublicURL returns the URL an object of the bucket is served at
func PublicURL(cfg config.GCSConfig, key string) string {
	key = url.PathEscape(strings.TrimLeft(key, "/"))
	switch {
	case cfg.CDNDomain != "":
		return fmt.Sprintf("https://%s/%s", cfg.CDNDomain, key)
	case cfg.EmulatorHost != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(cfg.EmulatorHost, "/"), cfg.Bucket, key)
	default:
		return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.Bucket, key)
	}
}
