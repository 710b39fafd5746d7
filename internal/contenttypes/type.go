package contenttypes

import (
	"maps"
	"strings"

	"github.com/goliatone/go-pagetree/internal/regions"
)

// Base is a page-like entity content types attach to. Its templates define
// which regions content may be placed in.
type Base struct {
	Name      string
	Templates *regions.Registry
}

// NewBase builds a base named name over templates.
func NewBase(name string, templates *regions.Registry) *Base {
	return &Base{Name: normalizeName(name), Templates: templates}
}

func (b *Base) hasTemplates() bool {
	return b != nil && b.Templates != nil && !b.Templates.Empty()
}

// Type is a class bound to a base. It owns its own table and its position in
// the base's registration order, which breaks ordering ties.
type Type struct {
	base    *Base
	class   Class
	name    string
	table   string
	index   int
	options Options
}

func (t *Type) Name() string     { return t.name }
func (t *Type) Base() *Base      { return t.base }
func (t *Type) Class() Class     { return t.class }
func (t *Type) Table() string    { return t.table }
func (t *Type) Index() int       { return t.index }
func (t *Type) Options() Options { return maps.Clone(t.options) }

// Option returns a single registration option.
func (t *Type) Option(key string) (any, bool) {
	value, ok := t.options[key]
	return value, ok
}

// StringsOption returns a string list option, accepting []string and []any.
func (t *Type) StringsOption(key string) []string {
	switch v := t.options[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// NewRecord returns an empty record of the type's class.
func (t *Type) NewRecord() Content { return t.class.NewRecord() }

// NewRecordSet returns an empty typed slice for scans.
func (t *Type) NewRecordSet() RecordSet { return t.class.NewRecordSet() }

// Owns reports whether record was produced by this type's class.
func (t *Type) Owns(record Content) bool {
	if record == nil {
		return false
	}
	return sameRecordType(t.class.NewRecord(), record)
}

func tableName(base, class string) string {
	return strings.Trim(base+"_"+class, "_")
}
