package entity

import (
	"time"

	"github.com/google/uuid"
)

// Rendition names produced for every stored asset.
const (
	RenditionThumbnail = "thumbnail"
	RenditionMedium    = "medium"
)

type Asset struct {
	ID            uuid.UUID
	ParentID      uuid.UUID
	OriginalKey   string
	RenditionKeys map[string]string
	AltText       string
	Caption       string
	IsPrimary     bool
	SortOrder     int
	Format        string
	Size          int64
	Width         int
	Height        int
	CreatedAt     time.Time
}

func NewAsset(parentID uuid.UUID, originalKey, format string, size int64, width, height int) *Asset {
	return &Asset{
		ID:            uuid.New(),
		ParentID:      parentID,
		OriginalKey:   originalKey,
		RenditionKeys: make(map[string]string),
		Format:        format,
		Size:          size,
		Width:         width,
		Height:        height,
		CreatedAt:     time.Now().UTC(),
	}
}

// StorageKeys returns the original key followed by every rendition key.
func (a *Asset) StorageKeys() []string {
	keys := make([]string, 0, len(a.RenditionKeys)+1)
	keys = append(keys, a.OriginalKey)
	for _, k := range a.RenditionKeys {
		keys = append(keys, k)
	}
	return keys
}
