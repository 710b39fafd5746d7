package regions

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"
)

// BunRegionRepository implements RegionRepository with optional caching.
type BunRegionRepository struct {
	repo repository.Repository[*Region]
}

func NewBunRegionRepository(db *bun.DB) *BunRegionRepository {
	return NewBunRegionRepositoryWithCache(db, nil, nil)
}

// NewBunRegionRepositoryWithCache wraps the repository with go-repository-cache
// when both cache collaborators are supplied.
func NewBunRegionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRegionRepository {
	base := NewRegionRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunRegionRepository{repo: base}
}

func (r *BunRegionRepository) Create(ctx context.Context, region *Region) (*Region, error) {
	return r.repo.Create(ctx, region)
}

func (r *BunRegionRepository) Update(ctx context.Context, region *Region) (*Region, error) {
	record, err := r.repo.Update(ctx, region,
		repository.UpdateByID(region.ID.String()),
		repository.UpdateColumns("title", "inherited", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "region", region.Key)
	}
	return record, nil
}

func (r *BunRegionRepository) GetByKey(ctx context.Context, key string) (*Region, error) {
	record, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, "region", key)
	}
	return record, nil
}

func (r *BunRegionRepository) List(ctx context.Context) ([]*Region, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.key ASC")
	}))
	return records, err
}

// BunTemplateRepository implements TemplateRepository with optional caching.
type BunTemplateRepository struct {
	repo repository.Repository[*Template]
}

func NewBunTemplateRepository(db *bun.DB) *BunTemplateRepository {
	return NewBunTemplateRepositoryWithCache(db, nil, nil)
}

func NewBunTemplateRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunTemplateRepository {
	base := NewTemplateRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunTemplateRepository{repo: base}
}

func (r *BunTemplateRepository) Create(ctx context.Context, template *Template) (*Template, error) {
	return r.repo.Create(ctx, template)
}

func (r *BunTemplateRepository) Update(ctx context.Context, template *Template) (*Template, error) {
	record, err := r.repo.Update(ctx, template,
		repository.UpdateByID(template.ID.String()),
		repository.UpdateColumns("title", "path", "region_keys", "singleton", "enforce_leaf", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "template", template.Key)
	}
	return record, nil
}

func (r *BunTemplateRepository) GetByKey(ctx context.Context, key string) (*Template, error) {
	record, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, "template", key)
	}
	return record, nil
}

func (r *BunTemplateRepository) List(ctx context.Context) ([]*Template, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.key ASC")
	}))
	return records, err
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
