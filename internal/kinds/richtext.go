package kinds

import (
	"context"

	bm "github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-pagetree/internal/contenttypes"
)

const RichTextName = "richtext"

// RichText is editor produced HTML. It is sanitised on render unless the type
// was registered with cleanse set to false.
type RichText struct {
	contenttypes.Item
	Text string `bun:"text" json:"text"`
}

func (r *RichText) Render(_ context.Context, rc contenttypes.RenderContext) (string, error) {
	if rc.Type != nil {
		if cleanse, ok := rc.Type.Option("cleanse"); ok && cleanse == false {
			return r.Text, nil
		}
	}
	return bm.UGCPolicy().Sanitize(r.Text), nil
}

func RichTextClass() contenttypes.Class {
	return contenttypes.Define[RichText](RichTextName, contenttypes.WithOptionsSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"cleanse": map[string]any{"type": "boolean"},
		},
	}))
}
