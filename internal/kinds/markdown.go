package kinds

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-pagetree/internal/contenttypes"
)

const MarkdownName = "markdown"

// Markdown holds Markdown source with an optional YAML front matter block.
type Markdown struct {
	contenttypes.Item
	Source string `bun:"source" json:"source"`
}

var (
	safeMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	unsafeMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
)

// Split separates the front matter from the Markdown body.
func (m *Markdown) Split() (map[string]any, []byte, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(strings.NewReader(m.Source), &meta)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, body, nil
}

// Render converts the body to HTML. Raw HTML in the source is only emitted
// when the type was registered with unsafe set to true. Front matter values
// are copied into rc.Values when the caller supplied a map.
func (m *Markdown) Render(_ context.Context, rc contenttypes.RenderContext) (string, error) {
	meta, body, err := m.Split()
	if err != nil {
		return "", err
	}
	if rc.Values != nil {
		for key, value := range meta {
			rc.Values[key] = value
		}
	}

	engine := safeMarkdown
	if rc.Type != nil {
		if unsafe, ok := rc.Type.Option("unsafe"); ok && unsafe == true {
			engine = unsafeMarkdown
		}
	}
	var buf bytes.Buffer
	if err := engine.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), nil
}

// Validate rejects sources whose front matter does not parse.
func (m *Markdown) Validate(*contenttypes.Type) error {
	_, _, err := m.Split()
	return err
}

func MarkdownClass() contenttypes.Class {
	return contenttypes.Define[Markdown](MarkdownName, contenttypes.WithOptionsSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"unsafe": map[string]any{"type": "boolean"},
		},
	}))
}
