package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marcos-nsantos/media-assets/internal/adapter/repository"
	"github.com/marcos-nsantos/media-assets/internal/domain"
	"github.com/marcos-nsantos/media-assets/internal/domain/entity"
)

const assetColumns = `id, parent_id, original_key, rendition_keys, alt_text, caption,
	is_primary, sort_order, format, size, width, height, created_at`

type AssetRepo struct {
	pool *pgxpool.Pool
}

func NewAssetRepo(pool *pgxpool.Pool) *AssetRepo {
	return &AssetRepo{pool: pool}
}

func (r *AssetRepo) Create(ctx context.Context, asset *entity.Asset) error {
	query := `
		INSERT INTO assets (id, parent_id, original_key, rendition_keys, alt_text, caption,
			is_primary, sort_order, format, size, width, height, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		asset.ID, asset.ParentID, asset.OriginalKey, asset.RenditionKeys,
		asset.AltText, asset.Caption, asset.IsPrimary, asset.SortOrder,
		asset.Format, asset.Size, asset.Width, asset.Height, asset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting asset: %w", translateConflict(err))
	}
	return nil
}

func (r *AssetRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`
	return r.queryOne(ctx, r.pool, query, id)
}

func (r *AssetRepo) ListByParent(ctx context.Context, parentID uuid.UUID) ([]entity.Asset, error) {
	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE parent_id = $1
		ORDER BY sort_order ASC, created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	var assets []entity.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}

	return assets, rows.Err()
}

func (r *AssetRepo) GetPrimary(ctx context.Context, parentID uuid.UUID) (*entity.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE parent_id = $1 AND is_primary`
	return r.queryOne(ctx, r.pool, query, parentID)
}

func (r *AssetRepo) UpdateMetadata(ctx context.Context, id uuid.UUID, fields repository.MetadataUpdate) (*entity.Asset, error) {
	query := `
		UPDATE assets
		SET alt_text = COALESCE($2, alt_text),
			caption = COALESCE($3, caption),
			sort_order = COALESCE($4, sort_order)
		WHERE id = $1
		RETURNING ` + assetColumns
	return r.queryOne(ctx, r.pool, query, id, fields.AltText, fields.Caption, fields.SortOrder)
}

// SetPrimary demotes every other asset of the parent and promotes the target
// inside one transaction. The partial unique index on (parent_id) WHERE
// is_primary makes a double-primary commit impossible even under concurrent
// callers; a violation surfaces as domain.ErrRepositoryConflict.
func (r *AssetRepo) SetPrimary(ctx context.Context, parentID, id uuid.UUID) (*entity.Asset, error) {
	var asset *entity.Asset
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		demote := `UPDATE assets SET is_primary = FALSE WHERE parent_id = $1 AND is_primary AND id <> $2`
		if _, err := tx.Exec(ctx, demote, parentID, id); err != nil {
			return fmt.Errorf("demoting current primary: %w", err)
		}

		promote := `
			UPDATE assets SET is_primary = TRUE
			WHERE id = $1 AND parent_id = $2
			RETURNING ` + assetColumns
		var err error
		asset, err = r.queryOne(ctx, tx, promote, id, parentID)
		return err
	})
	if err != nil {
		return nil, translateConflict(err)
	}
	return asset, nil
}

func (r *AssetRepo) Reorder(ctx context.Context, parentID uuid.UUID, orderedIDs []uuid.UUID) ([]entity.Asset, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `UPDATE assets SET sort_order = $3 WHERE id = $1 AND parent_id = $2`
		for i, id := range orderedIDs {
			tag, err := tx.Exec(ctx, query, id, parentID, i)
			if err != nil {
				return fmt.Errorf("updating sort order: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("asset %s: %w", id, domain.ErrAssetNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.ListByParent(ctx, parentID)
}

func (r *AssetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *AssetRepo) queryOne(ctx context.Context, q rowQuerier, query string, args ...any) (*entity.Asset, error) {
	asset, err := scanAsset(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, err
	}
	return asset, nil
}

func scanAsset(row pgx.Row) (*entity.Asset, error) {
	var asset entity.Asset
	asset.RenditionKeys = make(map[string]string)
	err := row.Scan(
		&asset.ID, &asset.ParentID, &asset.OriginalKey, &asset.RenditionKeys,
		&asset.AltText, &asset.Caption, &asset.IsPrimary, &asset.SortOrder,
		&asset.Format, &asset.Size, &asset.Width, &asset.Height, &asset.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning asset: %w", err)
	}
	return &asset, nil
}

// translateConflict maps unique violations and serialization failures onto
// the domain conflict error so callers can retry.
func translateConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "40001") {
		return fmt.Errorf("%w: %s", domain.ErrRepositoryConflict, pgErr.Message)
	}
	return err
}
