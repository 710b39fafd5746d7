package pages

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var pageColumns = []string{
	"parent_id",
	"title",
	"slug",
	"active",
	"in_navigation",
	"override_url",
	"redirect_to",
	"cached_url",
	"template_key",
	"position",
	"level",
	"language",
	"meta_title",
	"meta_description",
	"publish_at",
	"unpublish_at",
	"updated_at",
}

const getByIDCacheMethod = "pages:get_by_id"

// BunRepository stores pages through go-repository-bun for reads and a bun
// transaction for tree writes. GetByID, used by the inherited region walk,
// can be served from a go-repository-cache service; tree writes drop the
// cached entries of every page they touch once committed.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Page]

	cache cache.CacheService
	keys  cache.KeySerializer
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache caches GetByID when both cache collaborators are
// supplied.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	r := &BunRepository{db: db, repo: NewPageRepository(db)}
	if cacheService != nil && serializer != nil {
		r.cache = cacheService
		r.keys = serializer
	}
	return r
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	if r.cache == nil {
		return r.load(ctx, id)
	}
	page, err := cache.GetOrFetch(ctx, r.cache, r.cacheKey(id), func(ctx context.Context) (*Page, error) {
		return r.load(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return clonePage(page), nil
}

func (r *BunRepository) load(ctx context.Context, id uuid.UUID) (*Page, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return result, nil
}

func (r *BunRepository) cacheKey(id uuid.UUID) string {
	return r.keys.SerializeKey(getByIDCacheMethod, id.String())
}

// forget drops the cached entries of ids. Cache failures only delay
// freshness until the TTL expires.
func (r *BunRepository) forget(ctx context.Context, ids ...uuid.UUID) {
	if r.cache == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.cacheKey(id))
	}
	_ = r.cache.InvalidateKeys(ctx, keys)
}

func (r *BunRepository) List(ctx context.Context) ([]*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.level ASC").
				OrderExpr("?TableAlias.position ASC").
				OrderExpr("?TableAlias.id ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "list")
	}
	return records, nil
}

func (r *BunRepository) ListByCachedURLs(ctx context.Context, urls []string) ([]*Page, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.cached_url IN (?)", bun.In(urls))
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "cached_url")
	}
	return records, nil
}

// SaveTree writes the created page and every updated page in one
// transaction.
func (r *BunRepository) SaveTree(ctx context.Context, change TreeChange) error {
	if r.db == nil {
		return ErrRepositoryUnavailable
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if change.Created != nil {
			if _, err := tx.NewInsert().Model(change.Created).Exec(ctx); err != nil {
				return fmt.Errorf("insert page: %w", err)
			}
		}
		for _, page := range change.Updated {
			result, err := tx.NewUpdate().
				Model(page).
				Column(pageColumns...).
				WherePK().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("update page %s: %w", page.ID, err)
			}
			if affected, err := result.RowsAffected(); err == nil && affected == 0 {
				return &NotFoundError{Key: page.ID.String()}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	touched := make([]uuid.UUID, 0, len(change.Updated)+1)
	if change.Created != nil {
		touched = append(touched, change.Created.ID)
	}
	for _, page := range change.Updated {
		touched = append(touched, page.ID)
	}
	r.forget(ctx, touched...)
	return nil
}

func (r *BunRepository) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if r.db == nil {
		return ErrRepositoryUnavailable
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewDelete().
			Model((*Page)(nil)).
			Where("?TableAlias.id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete pages: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("page delete rows affected: %w", err)
		}
		if int(affected) != len(ids) {
			return fmt.Errorf("%w: deleted %d of %d pages", ErrPageNotFound, affected, len(ids))
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.forget(ctx, ids...)
	return nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("page repository error: %w", err)
}
