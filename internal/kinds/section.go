package kinds

import (
	"context"
	"errors"
	"fmt"
	"html"
	"slices"
	"strings"

	bm "github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-pagetree/internal/contenttypes"
)

const SectionName = "section"

var ErrSectionType = errors.New("kinds: section type is not one of the registered type_choices")

// Section is a titled block whose presentation variant is picked from the
// type_choices its content type was registered with.
type Section struct {
	contenttypes.Item
	Title string `bun:"title" json:"title"`
	Body  string `bun:"body" json:"body"`
	Type  string `bun:"type" json:"type"`
}

func (s *Section) Validate(t *contenttypes.Type) error {
	choices := t.StringsOption("type_choices")
	if !slices.Contains(choices, s.Type) {
		return fmt.Errorf("%w: %q not in %v", ErrSectionType, s.Type, choices)
	}
	return nil
}

func (s *Section) Render(_ context.Context, _ contenttypes.RenderContext) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `<section class="section section-%s">`, html.EscapeString(s.Type))
	if s.Title != "" {
		fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(s.Title))
	}
	b.WriteString(bm.UGCPolicy().Sanitize(s.Body))
	b.WriteString("</section>")
	return b.String(), nil
}

func SectionClass() contenttypes.Class {
	return contenttypes.Define[Section](SectionName,
		contenttypes.WithOptionsSchema(map[string]any{
			"type":     "object",
			"required": []any{"type_choices"},
			"properties": map[string]any{
				"type_choices": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items":    map[string]any{"type": "string"},
				},
			},
		}),
		contenttypes.WithInitializer(func(opts contenttypes.Options) error {
			if _, ok := opts["type_choices"]; !ok {
				return contenttypes.MissingOption("type_choices")
			}
			return nil
		}),
	)
}
