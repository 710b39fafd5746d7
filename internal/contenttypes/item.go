package contenttypes

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Item holds the columns every content kind shares: the owning page, the
// region key and the ordering within that region. Kinds embed it.
type Item struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	Region    string    `bun:"region,notnull" json:"region"`
	Ordering  int       `bun:"ordering,notnull,default:0" json:"ordering"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// ContentItem exposes the shared columns of an embedding kind.
func (i *Item) ContentItem() *Item { return i }

// RenderContext is handed to every Render call.
type RenderContext struct {
	Type    *Type
	PageID  uuid.UUID
	PageURL string
	Region  string
	Request *http.Request
	Values  map[string]any
}

// Content is implemented by every registered kind.
type Content interface {
	ContentItem() *Item
	Render(ctx context.Context, rc RenderContext) (string, error)
}

// Processor is implemented by kinds that act on the request before the page
// renders. A non-nil handler takes over the response.
type Processor interface {
	Process(ctx context.Context, r *http.Request) (http.Handler, error)
}

// Finalizer is implemented by kinds that adjust the response headers after
// the page rendered.
type Finalizer interface {
	Finalize(ctx context.Context, r *http.Request, header http.Header) error
}

// Validator is implemented by kinds that check their own fields against the
// options their type was registered with.
type Validator interface {
	Validate(t *Type) error
}
