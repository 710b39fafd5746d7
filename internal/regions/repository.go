package regions

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RegionRepository persists region definitions.
type RegionRepository interface {
	Create(ctx context.Context, region *Region) (*Region, error)
	Update(ctx context.Context, region *Region) (*Region, error)
	GetByKey(ctx context.Context, key string) (*Region, error)
	List(ctx context.Context) ([]*Region, error)
}

// TemplateRepository persists template definitions.
type TemplateRepository interface {
	Create(ctx context.Context, template *Template) (*Template, error)
	Update(ctx context.Context, template *Template) (*Template, error)
	GetByKey(ctx context.Context, key string) (*Template, error)
	List(ctx context.Context) ([]*Template, error)
}

func NewRegionRepository(db *bun.DB) repository.Repository[*Region] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Region]{
		NewRecord:          func() *Region { return &Region{} },
		GetID:              func(r *Region) uuid.UUID { return r.ID },
		SetID:              func(r *Region, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "key" },
		GetIdentifierValue: func(r *Region) string { return r.Key },
	})
}

func NewTemplateRepository(db *bun.DB) repository.Repository[*Template] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Template]{
		NewRecord:          func() *Template { return &Template{} },
		GetID:              func(t *Template) uuid.UUID { return t.ID },
		SetID:              func(t *Template, id uuid.UUID) { t.ID = id },
		GetIdentifier:      func() string { return "key" },
		GetIdentifierValue: func(t *Template) string { return t.Key },
	})
}
