package pages

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TreeChange is a single write of the tree: an optional new page and the
// existing pages whose columns changed. It is applied atomically.
type TreeChange struct {
	Created *Page
	Updated []*Page
}

// Repository persists pages.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	ListByCachedURLs(ctx context.Context, urls []string) ([]*Page, error)
	SaveTree(ctx context.Context, change TreeChange) error
	Delete(ctx context.Context, ids []uuid.UUID) error
}

func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "cached_url"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.CachedURL
		},
	})
}
