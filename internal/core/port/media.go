package port

import (
	"context"
	"restaurant-menu/internal/core/domain"
)

// PutObject is a payload handed to a storage backend
type PutObject struct {
	Key         string
	Bytes       []byte
	ContentType string
}

// StorageProvider is an interface to define a storage backend (disk, S3, ...)
type StorageProvider interface {
	// Put stores the object and returns an absolute, publicly resolvable URI
	Put(ctx context.Context, object PutObject) (string, error)
}

// UploadRouter is an interface to dispatch uploads to a storage provider
type UploadRouter interface {
	Upload(ctx context.Context, file domain.UploadFile, override domain.Provider) (domain.StorageDescriptor, error)
	UploadMany(ctx context.Context, files []domain.UploadFile, override domain.Provider) ([]domain.StorageDescriptor, error)
}
