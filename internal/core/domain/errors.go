package domain

import "errors"

// ErrEntityNotFound is an error thrown when the entity to load does not exist
var ErrEntityNotFound = errors.New("entity not found")

// ErrUnknownKind is an error thrown when an entity kind is not registered
var ErrUnknownKind = errors.New("unknown entity kind")

// ErrValidationMismatch is an error thrown when a stored value contradicts its declared shape
var ErrValidationMismatch = errors.New("validation mismatch")

// ErrUploadFailed is an error thrown when a storage provider rejects an upload
var ErrUploadFailed = errors.New("file upload failed")

// ErrUnknownProvider is an error thrown when no storage provider is registered under a name
var ErrUnknownProvider = errors.New("unknown storage provider")

// ErrMalformedCode is an error thrown when a domain code cannot be parsed
var ErrMalformedCode = errors.New("malformed domain code")

// ErrCodeSpaceExhausted is an error thrown when a prefix has no numbers left
var ErrCodeSpaceExhausted = errors.New("domain code space exhausted")

// ErrCodeConflict is an error thrown when a domain code is already taken
var ErrCodeConflict = errors.New("domain code already taken")

// ErrAlreadyExists is an error thrown when entity already exists
var ErrAlreadyExists = errors.New("already exists")

// ErrNotAcceptable is an error thrown when an update breaks a business rule of the entity
var ErrNotAcceptable = errors.New("not acceptable")
