package domain

import "errors"

var (
	ErrAssetNotFound       = errors.New("asset not found")
	ErrTooLarge            = errors.New("image exceeds maximum size")
	ErrUndecodable         = errors.New("image cannot be decoded")
	ErrUnsupportedFormat   = errors.New("image format not supported")
	ErrDimensionOutOfRange = errors.New("image dimensions out of range")
	ErrGenerationFailed    = errors.New("rendition generation failed")
	ErrStorageWriteFailed  = errors.New("storage write failed")
	ErrStorageDeleteFailed = errors.New("storage delete failed")
	ErrRepositoryConflict  = errors.New("concurrent modification detected")
	ErrBatchTooLarge       = errors.New("batch exceeds maximum size")
)
