package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marcos-nsantos/media-assets/internal/domain"
	"github.com/marcos-nsantos/media-assets/internal/domain/entity"
	"github.com/marcos-nsantos/media-assets/internal/usecase/asset"
)

// Creator is the slice of the asset service bulk ingestion needs.
type Creator interface {
	Create(ctx context.Context, parentID uuid.UUID, raw []byte, meta asset.Metadata) (*entity.Asset, error)
}

// ItemError ties a failure back to the index of the input that caused it.
type ItemError struct {
	Index int
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Item is one upload in a batch. A nil Meta gets the default metadata with
// sort order assigned from the batch position.
type Item struct {
	Data []byte
	Meta *asset.Metadata
}

// Service ingests batches of uploads. Items are independent: each runs the
// full single-asset pipeline and one failure never aborts the rest. The batch
// is deliberately not one transaction; callers get successes and failures
// side by side.
type Service struct {
	creator     Creator
	maxBatch    int
	concurrency int
	logger      *zap.Logger
}

func NewService(creator Creator, maxBatch, concurrency int, logger *zap.Logger) *Service {
	if maxBatch < 1 {
		maxBatch = 1
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		creator:     creator,
		maxBatch:    maxBatch,
		concurrency: concurrency,
		logger:      logger,
	}
}

// BulkCreate ingests raw payloads, assigning sort order baseOrder+index.
func (s *Service) BulkCreate(ctx context.Context, parentID uuid.UUID, payloads [][]byte, baseOrder int) ([]entity.Asset, []ItemError, error) {
	items := make([]Item, len(payloads))
	for i, data := range payloads {
		items[i] = Item{Data: data}
	}
	return s.BulkCreateItems(ctx, parentID, items, baseOrder)
}

// BulkCreateItems is BulkCreate with per-item metadata overrides. The batch
// cap is checked before any work; cancellation stops dispatching further
// items but lets in-flight pipelines finish, so storage and metadata stay
// consistent per item.
func (s *Service) BulkCreateItems(ctx context.Context, parentID uuid.UUID, items []Item, baseOrder int) ([]entity.Asset, []ItemError, error) {
	if len(items) > s.maxBatch {
		return nil, nil, fmt.Errorf("%w: %d items, limit %d", domain.ErrBatchTooLarge, len(items), s.maxBatch)
	}

	results := make([]*entity.Asset, len(items))
	failures := make([]error, len(items))

	// In-flight items must not be interrupted mid-pipeline.
	detached := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			failures[i] = fmt.Errorf("not attempted: %w", err)
			continue
		}

		meta := asset.Metadata{SortOrder: baseOrder + i}
		if item.Meta != nil {
			meta = *item.Meta
		}
		data := item.Data

		g.Go(func() error {
			created, err := s.creator.Create(detached, parentID, data, meta)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = created
			return nil
		})
	}
	_ = g.Wait()

	var assets []entity.Asset
	var itemErrs []ItemError
	for i := range items {
		switch {
		case failures[i] != nil:
			itemErrs = append(itemErrs, ItemError{Index: i, Err: failures[i]})
		case results[i] != nil:
			assets = append(assets, *results[i])
		}
	}

	if len(itemErrs) > 0 {
		s.logger.Info("bulk ingestion finished with failures",
			zap.String("parent_id", parentID.String()),
			zap.Int("created", len(assets)),
			zap.Int("failed", len(itemErrs)),
		)
	}

	return assets, itemErrs, nil
}
