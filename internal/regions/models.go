package regions

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Region is a named content slot inside a template. Inherited regions fall
// back to the nearest ancestor page that has content for them.
type Region struct {
	bun.BaseModel `bun:"table:regions,alias:rg"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Key       string    `bun:"key,notnull,unique" json:"key"`
	Title     string    `bun:"title,notnull" json:"title"`
	Inherited bool      `bun:"inherited,notnull" json:"inherited"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Template groups an ordered list of regions with a render target.
type Template struct {
	bun.BaseModel `bun:"table:templates,alias:tp"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Key         string    `bun:"key,notnull,unique" json:"key"`
	Title       string    `bun:"title,notnull" json:"title"`
	Path        string    `bun:"path" json:"path"`
	RegionKeys  []string  `bun:"region_keys,type:jsonb" json:"region_keys"`
	Singleton   bool      `bun:"singleton,notnull" json:"singleton"`
	EnforceLeaf bool      `bun:"enforce_leaf,notnull" json:"enforce_leaf"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Regions []*Region `bun:"-" json:"regions,omitempty"`
}

// HasRegion reports whether key is one of the template regions.
func (t *Template) HasRegion(key string) bool {
	if t == nil {
		return false
	}
	for _, region := range t.Regions {
		if region.Key == key {
			return true
		}
	}
	return false
}

// RegionSpec declares a region while registering templates.
type RegionSpec struct {
	Key       string
	Title     string
	Inherited bool
}

// TemplateSpec declares a template and its regions in display order.
type TemplateSpec struct {
	Key         string
	Title       string
	Path        string
	Regions     []RegionSpec
	Singleton   bool
	EnforceLeaf bool
}
