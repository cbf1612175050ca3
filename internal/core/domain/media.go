package domain

import (
	"fmt"
	"strings"
)

// MediaKind represents the kind of uploaded asset
type MediaKind string

const (
	MediaKindDocument MediaKind = "DOC"
	MediaKindImage    MediaKind = "IMAGE"
	MediaKindVideo    MediaKind = "VIDEO"
)

// Provider names a storage backend
type Provider string

const (
	ProviderLocal       Provider = "LOCAL"
	ProviderAWSS3       Provider = "AWS_S3"
	ProviderDOSpace     Provider = "DO_SPACE"
	ProviderGoogleCloud Provider = "GOOGLE_CLOUD"
)

// ParseProvider normalizes a provider name coming from config or a request
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToUpper(strings.TrimSpace(name)))
	switch p {
	case ProviderLocal, ProviderAWSS3, ProviderDOSpace, ProviderGoogleCloud:
		return p, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
}

// MediaRef describes one uploaded asset as stored inside an entity
type MediaRef struct {
	ID        string    `json:"id,omitempty"`
	URI       string    `json:"uri"`
	MimeType  string    `json:"mimeType,omitempty"`
	Kind      MediaKind `json:"type,omitempty"`
	IsDeleted bool      `json:"isDeleted,omitempty"`
}

// Document returns the MediaRef in the shape the reconciler works on
func (m MediaRef) Document() Document {
	doc := Document{"uri": m.URI}
	if m.ID != "" {
		doc["id"] = m.ID
	}
	if m.MimeType != "" {
		doc["mimeType"] = m.MimeType
	}
	if m.Kind != "" {
		doc["type"] = string(m.Kind)
	}
	if m.IsDeleted {
		doc["isDeleted"] = true
	}
	return doc
}

// MediaKindFromMime guesses the kind of an asset from its MIME type
func MediaKindFromMime(mimeType string) MediaKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return MediaKindImage
	case strings.HasPrefix(mimeType, "video/"):
		return MediaKindVideo
	default:
		return MediaKindDocument
	}
}

// UploadFile is a raw file payload received from a client
type UploadFile struct {
	Bytes        []byte
	OriginalName string
	MimeType     string
}

// StorageDescriptor is the normalized result of an upload
type StorageDescriptor struct {
	Location string   `json:"location"`
	Provider Provider `json:"provider"`
}
