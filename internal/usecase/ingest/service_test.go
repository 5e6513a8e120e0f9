package ingest_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/marcos-nsantos/media-assets/internal/adapter/repository/memory"
	"github.com/marcos-nsantos/media-assets/internal/domain"
	"github.com/marcos-nsantos/media-assets/internal/domain/entity"
	"github.com/marcos-nsantos/media-assets/internal/infrastructure/imaging"
	infrastorage "github.com/marcos-nsantos/media-assets/internal/infrastructure/storage"
	"github.com/marcos-nsantos/media-assets/internal/pkg/objectkey"
	"github.com/marcos-nsantos/media-assets/internal/usecase/asset"
	"github.com/marcos-nsantos/media-assets/internal/usecase/ingest"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 50, B: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newFixture(t *testing.T, maxBatch int) (*ingest.Service, *memory.AssetRepo, *infrastorage.MemoryStorage) {
	t.Helper()
	repo := memory.NewAssetRepo()
	blobs := infrastorage.NewMemoryStorage()
	specs := []imaging.RenditionSpec{
		{Name: entity.RenditionThumbnail, MaxWidth: 200, MaxHeight: 200, Quality: 80},
		{Name: entity.RenditionMedium, MaxWidth: 800, MaxHeight: 800, Quality: 85},
	}
	assetSvc := asset.NewService(repo, blobs, imaging.NewValidator(5<<20, 1, 5000),
		imaging.NewGenerator(), objectkey.NewGenerator(), specs, 2, zap.NewNop())
	return ingest.NewService(assetSvc, maxBatch, 4, zap.NewNop()), repo, blobs
}

func TestService_BulkCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates every valid item with positional order", func(t *testing.T) {
		svc, _, _ := newFixture(t, 10)
		parentID := uuid.New()

		payloads := [][]byte{
			pngBytes(t, 400, 300),
			pngBytes(t, 300, 400),
			pngBytes(t, 250, 250),
		}

		created, itemErrs, err := svc.BulkCreate(ctx, parentID, payloads, 5)

		require.NoError(t, err)
		assert.Empty(t, itemErrs)
		require.Len(t, created, 3)
		orders := map[int]bool{}
		for _, a := range created {
			orders[a.SortOrder] = true
		}
		assert.Equal(t, map[int]bool{5: true, 6: true, 7: true}, orders)
	})

	t.Run("invalid items fail individually, counts sum to the input size", func(t *testing.T) {
		svc, _, _ := newFixture(t, 10)

		payloads := [][]byte{
			pngBytes(t, 400, 300),
			[]byte("not an image"),
			pngBytes(t, 300, 400),
			make([]byte, 6<<20),
			pngBytes(t, 250, 250),
		}

		created, itemErrs, err := svc.BulkCreate(ctx, uuid.New(), payloads, 0)

		require.NoError(t, err)
		assert.Len(t, created, 3)
		require.Len(t, itemErrs, 2)
		assert.Equal(t, len(payloads), len(created)+len(itemErrs))

		assert.Equal(t, 1, itemErrs[0].Index)
		assert.ErrorIs(t, itemErrs[0].Err, domain.ErrUndecodable)
		assert.Equal(t, 3, itemErrs[1].Index)
		assert.ErrorIs(t, itemErrs[1].Err, domain.ErrTooLarge)
	})

	t.Run("rejects oversized batches before doing any work", func(t *testing.T) {
		svc, repo, blobs := newFixture(t, 2)

		payloads := [][]byte{
			pngBytes(t, 400, 300),
			pngBytes(t, 400, 300),
			pngBytes(t, 400, 300),
		}

		created, itemErrs, err := svc.BulkCreate(ctx, uuid.New(), payloads, 0)

		assert.ErrorIs(t, err, domain.ErrBatchTooLarge)
		assert.Nil(t, created)
		assert.Nil(t, itemErrs)
		assert.Equal(t, 0, blobs.Len())
		assets, listErr := repo.ListByParent(ctx, uuid.Nil)
		require.NoError(t, listErr)
		assert.Empty(t, assets)
	})

	t.Run("cancelled context stops scheduling items", func(t *testing.T) {
		svc, _, blobs := newFixture(t, 10)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		payloads := [][]byte{pngBytes(t, 400, 300), pngBytes(t, 400, 300)}

		created, itemErrs, err := svc.BulkCreate(cancelled, uuid.New(), payloads, 0)

		require.NoError(t, err)
		assert.Empty(t, created)
		require.Len(t, itemErrs, 2)
		for _, ie := range itemErrs {
			assert.ErrorIs(t, ie.Err, context.Canceled)
		}
		assert.Equal(t, 0, blobs.Len())
	})

	t.Run("per-item metadata overrides the positional default", func(t *testing.T) {
		svc, _, _ := newFixture(t, 10)
		parentID := uuid.New()

		items := []ingest.Item{
			{Data: pngBytes(t, 400, 300)},
			{Data: pngBytes(t, 300, 400), Meta: &asset.Metadata{AltText: "sunset", SortOrder: 42}},
		}

		created, itemErrs, err := svc.BulkCreateItems(ctx, parentID, items, 0)

		require.NoError(t, err)
		assert.Empty(t, itemErrs)
		require.Len(t, created, 2)

		byOrder := map[int]entity.Asset{}
		for _, a := range created {
			byOrder[a.SortOrder] = a
		}
		require.Contains(t, byOrder, 42)
		assert.Equal(t, "sunset", byOrder[42].AltText)
		require.Contains(t, byOrder, 0)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		svc, _, _ := newFixture(t, 10)

		created, itemErrs, err := svc.BulkCreate(ctx, uuid.New(), nil, 0)

		require.NoError(t, err)
		assert.Empty(t, created)
		assert.Empty(t, itemErrs)
	})
}
