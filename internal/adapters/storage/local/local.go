package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"restaurant-menu/internal/config"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"strings"
)

// PathPrefix is the public route serving locally stored files
const PathPrefix = "/file/local/"

// ErrInvalidKey is returned for keys escaping the storage directory
var ErrInvalidKey = errors.New("invalid object key")

// Adapter stores objects on the local filesystem
type Adapter struct {
	dir      string
	baseHost string
	logger   *slog.Logger
}

// NewAdapter returns Adapter, creating the storage directory when missing
func NewAdapter(cfg config.StorageConfig, logger *slog.Logger) (*Adapter, error) {
	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Adapter{
		dir:      cfg.LocalDir,
		baseHost: strings.TrimSuffix(cfg.BaseHost, "/"),
		logger:   logger,
	}, nil
}

// Put writes the object to disk and returns the URI it is served at
func (a *Adapter) Put(ctx context.Context, object port.PutObject) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := a.path(object.Key)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create object %q: %w", object.Key, err)
	}
	if _, err := f.Write(object.Bytes); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}

	a.logger.Info("object stored",
		slog.String("fileKey", object.Key),
		slog.String("dir", a.dir),
		slog.Int("size", len(object.Bytes)))

	return a.baseHost + PathPrefix + url.PathEscape(object.Key), nil
}

// Open opens a stored object for reading
func (a *Adapter) Open(key string) (*os.File, error) {
	path, err := a.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrEntityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return f, nil
}

func (a *Adapter) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(a.dir, key), nil
}
