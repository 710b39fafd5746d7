package kinds

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-pagetree/internal/contenttypes"
)

var catalog = map[string]func() contenttypes.Class{
	RichTextName: RichTextClass,
	MarkdownName: MarkdownClass,
	RawHTMLName:  RawHTMLClass,
	SectionName:  SectionClass,
}

// Names lists the shipped kinds.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the class for a shipped kind.
func Lookup(name string) (contenttypes.Class, bool) {
	build, ok := catalog[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// Registration selects a kind and the options to bind it with.
type Registration struct {
	Name    string
	Options contenttypes.Options
}

// Register binds each selected kind to base in the given order.
func Register(registry *contenttypes.Registry, base *contenttypes.Base, selected ...Registration) ([]*contenttypes.Type, error) {
	types := make([]*contenttypes.Type, 0, len(selected))
	for _, sel := range selected {
		class, ok := Lookup(sel.Name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown kind %q", contenttypes.ErrTypeNotFound, sel.Name)
		}
		t, err := registry.CreateContentType(base, class, sel.Options)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}
