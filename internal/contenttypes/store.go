package contenttypes

import (
	"context"

	"github.com/google/uuid"
)

// Store persists content items, one table per Type.
type Store interface {
	EnsureSchema(ctx context.Context, t *Type) error
	List(ctx context.Context, t *Type, pageID uuid.UUID, region string) ([]Content, error)
	ListByPage(ctx context.Context, t *Type, pageID uuid.UUID) ([]Content, error)
	Get(ctx context.Context, t *Type, id uuid.UUID) (Content, error)
	Create(ctx context.Context, t *Type, record Content) (Content, error)
	Update(ctx context.Context, t *Type, record Content) (Content, error)
	Delete(ctx context.Context, t *Type, id uuid.UUID) error
	DeleteByPages(ctx context.Context, t *Type, pageIDs []uuid.UUID) (int, error)
}
