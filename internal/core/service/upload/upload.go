package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultContentType is sent when a file carries no usable MIME type
const DefaultContentType = "image/jpeg"

const (
	nonceAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	nonceLength   = 8
)

type uploadRouter struct {
	providers       map[domain.Provider]port.StorageProvider
	defaultProvider domain.Provider
	metrics         port.Metrics
	logger          *slog.Logger
	now             func() time.Time
	nonce           func() (string, error)
}

// Option configures the upload router
type Option func(*uploadRouter)

// WithMetrics records every upload
func WithMetrics(metrics port.Metrics) Option {
	return func(r *uploadRouter) { r.metrics = metrics }
}

// WithClock replaces the clock used to key objects
func WithClock(now func() time.Time) Option {
	return func(r *uploadRouter) { r.now = now }
}

// WithKeyNonce replaces the generator of the random part of object keys
func WithKeyNonce(nonce func() (string, error)) Option {
	return func(r *uploadRouter) { r.nonce = nonce }
}

func randomNonce() (string, error) {
	return gonanoid.Generate(nonceAlphabet, nonceLength)
}

// NewUploadRouter creates a new upload router. defaultProvider is used when a
// request carries no override and must be registered in providers.
func NewUploadRouter(providers map[domain.Provider]port.StorageProvider, defaultProvider domain.Provider, logger *slog.Logger, opts ...Option) (port.UploadRouter, error) {
	if _, ok := providers[defaultProvider]; !ok {
		return nil, fmt.Errorf("%w: default provider %q is not configured", domain.ErrUnknownProvider, defaultProvider)
	}

	r := &uploadRouter{
		providers:       providers,
		defaultProvider: defaultProvider,
		logger:          logger,
		now:             time.Now,
		nonce:           randomNonce,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Upload stores one file on the override provider, or the default one
func (r *uploadRouter) Upload(ctx context.Context, file domain.UploadFile, override domain.Provider) (domain.StorageDescriptor, error) {
	name := r.defaultProvider
	if override != "" {
		name = override
	}

	provider, ok := r.providers[name]
	if !ok {
		return domain.StorageDescriptor{}, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}

	nonce, err := r.nonce()
	if err != nil {
		return domain.StorageDescriptor{}, fmt.Errorf("%w: object key: %w", domain.ErrUploadFailed, err)
	}
	object := port.PutObject{
		Key:         ObjectKey(r.now(), nonce, file.OriginalName),
		Bytes:       file.Bytes,
		ContentType: ContentType(file.MimeType),
	}

	start := time.Now()
	location, err := provider.Put(ctx, object)
	if err == nil && location == "" {
		err = errors.New("provider returned an empty location")
	}
	if r.metrics != nil {
		r.metrics.ObserveUpload(name, time.Since(start), err)
	}
	if err != nil {
		r.logger.Error("upload failed", "provider", name, "fileKey", object.Key, "error", err)
		return domain.StorageDescriptor{}, fmt.Errorf("%w: %s: %w", domain.ErrUploadFailed, name, err)
	}

	return domain.StorageDescriptor{Location: location, Provider: name}, nil
}

// UploadMany stores files concurrently, results follow the order of files
func (r *uploadRouter) UploadMany(ctx context.Context, files []domain.UploadFile, override domain.Provider) ([]domain.StorageDescriptor, error) {
	descriptors := make([]domain.StorageDescriptor, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			descriptor, err := r.Upload(ctx, file, override)
			if err != nil {
				return err
			}
			descriptors[i] = descriptor
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return descriptors, nil
}

// ObjectKey returns the storage key of a file uploaded at t. nonce keeps keys
// of same-name files uploaded within one millisecond apart.
func ObjectKey(t time.Time, nonce, originalName string) string {
	name := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return strconv.FormatInt(t.UnixMilli(), 10) + "-" + nonce + "-" + name
}

// ContentType returns the MIME type to store a file with
func ContentType(mimeType string) string {
	parsed, _, err := mime.ParseMediaType(mimeType)
	if err != nil || parsed == "" {
		return DefaultContentType
	}
	return parsed
}
