// Package memory provides a mutex-guarded AssetRepository. The single lock
// serializes every mutation, which gives the same commit-level guarantees the
// postgres implementation gets from transactions.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/marcos-nsantos/media-assets/internal/adapter/repository"
	"github.com/marcos-nsantos/media-assets/internal/domain"
	"github.com/marcos-nsantos/media-assets/internal/domain/entity"
)

type AssetRepo struct {
	mu     sync.RWMutex
	assets map[uuid.UUID]*entity.Asset

	failCreate bool
}

func NewAssetRepo() *AssetRepo {
	return &AssetRepo{assets: make(map[uuid.UUID]*entity.Asset)}
}

func (r *AssetRepo) Create(_ context.Context, asset *entity.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return domain.ErrRepositoryConflict
	}
	if _, ok := r.assets[asset.ID]; ok {
		return domain.ErrRepositoryConflict
	}
	r.assets[asset.ID] = clone(asset)
	return nil
}

func (r *AssetRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asset, ok := r.assets[id]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	return clone(asset), nil
}

func (r *AssetRepo) ListByParent(_ context.Context, parentID uuid.UUID) ([]entity.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(parentID), nil
}

func (r *AssetRepo) GetPrimary(_ context.Context, parentID uuid.UUID) (*entity.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, asset := range r.assets {
		if asset.ParentID == parentID && asset.IsPrimary {
			return clone(asset), nil
		}
	}
	return nil, domain.ErrAssetNotFound
}

func (r *AssetRepo) UpdateMetadata(_ context.Context, id uuid.UUID, fields repository.MetadataUpdate) (*entity.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	asset, ok := r.assets[id]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	if fields.AltText != nil {
		asset.AltText = *fields.AltText
	}
	if fields.Caption != nil {
		asset.Caption = *fields.Caption
	}
	if fields.SortOrder != nil {
		asset.SortOrder = *fields.SortOrder
	}
	return clone(asset), nil
}

func (r *AssetRepo) SetPrimary(_ context.Context, parentID, id uuid.UUID) (*entity.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.assets[id]
	if !ok || target.ParentID != parentID {
		return nil, domain.ErrAssetNotFound
	}
	for _, asset := range r.assets {
		if asset.ParentID == parentID {
			asset.IsPrimary = asset.ID == id
		}
	}
	return clone(target), nil
}

func (r *AssetRepo) Reorder(_ context.Context, parentID uuid.UUID, orderedIDs []uuid.UUID) ([]entity.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range orderedIDs {
		asset, ok := r.assets[id]
		if !ok || asset.ParentID != parentID {
			return nil, domain.ErrAssetNotFound
		}
	}
	for i, id := range orderedIDs {
		r.assets[id].SortOrder = i
	}
	return r.listLocked(parentID), nil
}

func (r *AssetRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assets[id]; !ok {
		return domain.ErrAssetNotFound
	}
	delete(r.assets, id)
	return nil
}

// FailNextCreates makes every subsequent Create return a conflict. Tests use
// it to drive the compensating-rollback path.
func (r *AssetRepo) FailNextCreates(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failCreate = fail
}

// PrimaryCount reports how many assets of the parent are marked primary.
func (r *AssetRepo) PrimaryCount(parentID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, asset := range r.assets {
		if asset.ParentID == parentID && asset.IsPrimary {
			n++
		}
	}
	return n
}

func (r *AssetRepo) listLocked(parentID uuid.UUID) []entity.Asset {
	var assets []entity.Asset
	for _, asset := range r.assets {
		if asset.ParentID == parentID {
			assets = append(assets, *clone(asset))
		}
	}
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].SortOrder != assets[j].SortOrder {
			return assets[i].SortOrder < assets[j].SortOrder
		}
		return assets[i].CreatedAt.Before(assets[j].CreatedAt)
	})
	return assets
}

func clone(a *entity.Asset) *entity.Asset {
	cp := *a
	cp.RenditionKeys = make(map[string]string, len(a.RenditionKeys))
	for k, v := range a.RenditionKeys {
		cp.RenditionKeys[k] = v
	}
	return &cp
}
