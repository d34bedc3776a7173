package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Catalog Errors
// ============================================================================

// Not found errors
var (
	ErrModelNotFound   = errors.New("model not found")
	ErrVersionNotFound = errors.New("model version not found")
	ErrFileNotFound    = errors.New("file not found in model version")
)

// Conflict errors
var (
	ErrDuplicateModelName = errors.New("model already exists, name must be unique")
	ErrDuplicateVersion   = errors.New("version already exists, tag and model id must be unique")
)

// ============================================================================
// Validation Errors
// ============================================================================

// ErrValidation is the kind shared by every request validation failure.
var ErrValidation = errors.New("validation failed")

var (
	ErrInvalidModelID    = fmt.Errorf("%w: model id must be a positive integer", ErrValidation)
	ErrInvalidModelName  = fmt.Errorf("%w: model name is required", ErrValidation)
	ErrInvalidTag        = fmt.Errorf("%w: version tag is required", ErrValidation)
	ErrNoFiles           = fmt.Errorf("%w: at least one file is required", ErrValidation)
	ErrInvalidFileName   = fmt.Errorf("%w: file name must be a plain base name", ErrValidation)
	ErrDuplicateFileName = fmt.Errorf("%w: file name appears twice in the upload", ErrValidation)
	ErrFieldAfterFiles   = fmt.Errorf("%w: form fields must precede file parts", ErrValidation)
)

// ============================================================================
// Ingest / Storage Errors
// ============================================================================

var (
	// ErrIngest covers I/O failures while streaming and hashing an upload.
	ErrIngest = errors.New("ingest failed")

	// ErrStorage covers publish failures not explained by dedup.
	ErrStorage = errors.New("content storage failed")

	// ErrContentCollision means two different byte sets reduced to the same
	// content hash.
	ErrContentCollision = fmt.Errorf("%w: content hash collision", ErrStorage)
)
