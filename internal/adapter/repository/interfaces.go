package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/marcos-nsantos/media-assets/internal/domain/entity"
)

type AssetRepository interface {
	Create(ctx context.Context, asset *entity.Asset) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Asset, error)
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]entity.Asset, error)
	GetPrimary(ctx context.Context, parentID uuid.UUID) (*entity.Asset, error)
	UpdateMetadata(ctx context.Context, id uuid.UUID, fields MetadataUpdate) (*entity.Asset, error)

	// SetPrimary atomically unsets is_primary on every other asset of the
	// parent and sets it on the target, in one transaction. Returns
	// domain.ErrAssetNotFound when the asset does not belong to the parent.
	SetPrimary(ctx context.Context, parentID, id uuid.UUID) (*entity.Asset, error)

	// Reorder assigns sort order by position in orderedIDs, in one
	// transaction. Every ID must belong to the parent.
	Reorder(ctx context.Context, parentID uuid.UUID, orderedIDs []uuid.UUID) ([]entity.Asset, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

// MetadataUpdate carries the mutable descriptive fields. Nil means leave
// unchanged. Storage keys are immutable after creation and have no place here.
type MetadataUpdate struct {
	AltText   *string
	Caption   *string
	SortOrder *int
}
