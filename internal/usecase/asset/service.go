package asset

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/marcos-nsantos/media-assets/internal/adapter/repository"
	"github.com/marcos-nsantos/media-assets/internal/adapter/storage"
	"github.com/marcos-nsantos/media-assets/internal/domain"
	"github.com/marcos-nsantos/media-assets/internal/domain/entity"
	"github.com/marcos-nsantos/media-assets/internal/infrastructure/config"
	"github.com/marcos-nsantos/media-assets/internal/infrastructure/imaging"
	"github.com/marcos-nsantos/media-assets/internal/pkg/objectkey"
)

const (
	categoryOriginals  = "originals"
	categoryRenditions = "renditions"
)

// Service orchestrates the lifecycle of a single asset: validate, store,
// derive renditions, commit metadata. Rendition generation is CPU-bound and
// runs under a semaphore so concurrent uploads do not serialize on resampling.
type Service struct {
	repo      repository.AssetRepository
	blobs     storage.BlobStorage
	validator *imaging.Validator
	generator *imaging.Generator
	keys      *objectkey.Generator
	specs     []imaging.RenditionSpec
	sem       *semaphore.Weighted
	logger    *zap.Logger
}

func NewService(
	repo repository.AssetRepository,
	blobs storage.BlobStorage,
	validator *imaging.Validator,
	generator *imaging.Generator,
	keys *objectkey.Generator,
	specs []imaging.RenditionSpec,
	workers int,
	logger *zap.Logger,
) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		repo:      repo,
		blobs:     blobs,
		validator: validator,
		generator: generator,
		keys:      keys,
		specs:     specs,
		sem:       semaphore.NewWeighted(int64(workers)),
		logger:    logger,
	}
}

// SpecsFromConfig builds the standard rendition set from configuration.
func SpecsFromConfig(cfg config.MediaConfig) []imaging.RenditionSpec {
	return []imaging.RenditionSpec{
		{Name: entity.RenditionThumbnail, MaxWidth: cfg.ThumbnailSize, MaxHeight: cfg.ThumbnailSize, Quality: cfg.ThumbnailQuality},
		{Name: entity.RenditionMedium, MaxWidth: cfg.MediumSize, MaxHeight: cfg.MediumSize, Quality: cfg.MediumQuality},
	}
}

type Metadata struct {
	AltText   string
	Caption   string
	SortOrder int
}

// Create runs the full ingestion pipeline for one upload. Any failure after
// the first storage write rolls the written objects back; storage never holds
// bytes no committed record references.
func (s *Service) Create(ctx context.Context, parentID uuid.UUID, raw []byte, meta Metadata) (*entity.Asset, error) {
	if meta.SortOrder < 0 {
		return nil, fmt.Errorf("sort order must be non-negative")
	}

	width, height, format, err := s.validator.Validate(raw)
	if err != nil {
		return nil, err
	}

	originalKey := s.keys.NewKey(categoryOriginals, extFor(format))
	if err := s.blobs.Put(ctx, originalKey, raw); err != nil {
		return nil, fmt.Errorf("%w: putting original: %v", domain.ErrStorageWriteFailed, err)
	}
	written := []string{originalKey}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.rollback(ctx, written)
		return nil, fmt.Errorf("acquiring rendition worker: %w", err)
	}
	renditions, err := s.generator.Generate(raw, s.specs)
	s.sem.Release(1)
	if err != nil {
		s.rollback(ctx, written)
		return nil, err
	}

	asset := entity.NewAsset(parentID, originalKey, format, int64(len(raw)), width, height)
	asset.AltText = meta.AltText
	asset.Caption = meta.Caption
	asset.SortOrder = meta.SortOrder

	for name, data := range renditions {
		key := s.keys.NewKey(categoryRenditions+"/"+name, ".jpg")
		if err := s.blobs.Put(ctx, key, data); err != nil {
			s.rollback(ctx, written)
			return nil, fmt.Errorf("%w: putting rendition %s: %v", domain.ErrStorageWriteFailed, name, err)
		}
		written = append(written, key)
		asset.RenditionKeys[name] = key
	}

	if err := s.repo.Create(ctx, asset); err != nil {
		s.rollback(ctx, written)
		return nil, fmt.Errorf("committing asset record: %w", err)
	}

	return asset, nil
}

func (s *Service) UpdateMetadata(ctx context.Context, assetID uuid.UUID, fields repository.MetadataUpdate) (*entity.Asset, error) {
	if fields.SortOrder != nil && *fields.SortOrder < 0 {
		return nil, fmt.Errorf("sort order must be non-negative")
	}
	return s.repo.UpdateMetadata(ctx, assetID, fields)
}

func (s *Service) SetPrimary(ctx context.Context, parentID, assetID uuid.UUID) (*entity.Asset, error) {
	return s.repo.SetPrimary(ctx, parentID, assetID)
}

func (s *Service) Reorder(ctx context.Context, parentID uuid.UUID, orderedIDs []uuid.UUID) ([]entity.Asset, error) {
	return s.repo.Reorder(ctx, parentID, orderedIDs)
}

func (s *Service) ListForParent(ctx context.Context, parentID uuid.UUID) ([]entity.Asset, error) {
	return s.repo.ListByParent(ctx, parentID)
}

func (s *Service) GetPrimary(ctx context.Context, parentID uuid.UUID) (*entity.Asset, error) {
	return s.repo.GetPrimary(ctx, parentID)
}

// Delete removes the metadata record first, then the stored bytes. Blob
// failures are logged and do not resurrect the record; a non-nil return of
// ErrStorageDeleteFailed means the record is gone but some bytes linger.
func (s *Service) Delete(ctx context.Context, assetID uuid.UUID) error {
	asset, err := s.repo.GetByID(ctx, assetID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, asset.ID); err != nil {
		return err
	}

	var failed []string
	for _, key := range asset.StorageKeys() {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Warn("blob delete failed, continuing cleanup",
				zap.String("asset_id", asset.ID.String()),
				zap.String("key", key),
				zap.Error(err),
			)
			failed = append(failed, key)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d keys not removed", domain.ErrStorageDeleteFailed, len(failed), len(asset.StorageKeys()))
	}
	return nil
}

// DeleteAllForParent deletes every asset of the parent, collecting per-asset
// failures instead of stopping at the first one.
func (s *Service) DeleteAllForParent(ctx context.Context, parentID uuid.UUID) []error {
	assets, err := s.repo.ListByParent(ctx, parentID)
	if err != nil {
		return []error{err}
	}

	var errs []error
	for _, a := range assets {
		if err := s.Delete(ctx, a.ID); err != nil {
			errs = append(errs, fmt.Errorf("asset %s: %w", a.ID, err))
		}
	}
	return errs
}

// rollback removes objects written earlier in a failed pipeline. It runs
// detached from the caller's cancellation so an aborted request cannot
// strand orphans.
func (s *Service) rollback(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Error("rollback of stored object failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}

func extFor(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	default:
		return "." + format
	}
}
