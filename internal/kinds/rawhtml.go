package kinds

import (
	"context"

	"github.com/goliatone/go-pagetree/internal/contenttypes"
)

const RawHTMLName = "rawhtml"

// RawHTML is emitted verbatim.
type RawHTML struct {
	contenttypes.Item
	HTML string `bun:"html" json:"html"`
}

func (r *RawHTML) Render(context.Context, contenttypes.RenderContext) (string, error) {
	return r.HTML, nil
}

func RawHTMLClass() contenttypes.Class {
	return contenttypes.Define[RawHTML](RawHTMLName)
}
