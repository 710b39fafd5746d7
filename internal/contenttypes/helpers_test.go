package contenttypes

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagetree/internal/regions"
)

type noteRecord struct {
	Item
	Text string `bun:"text" json:"text"`
}

func (n *noteRecord) Render(context.Context, RenderContext) (string, error) {
	return n.Text, nil
}

func (n *noteRecord) Validate(*Type) error {
	if n.Text == "" {
		return errors.New("text is required")
	}
	return nil
}

type bannerRecord struct {
	Item
	Image string `bun:"image" json:"image"`
}

func (b *bannerRecord) Render(context.Context, RenderContext) (string, error) {
	return `<img src="` + b.Image + `">`, nil
}

func testTemplates(t *testing.T) *regions.Registry {
	t.Helper()
	reg := regions.NewRegistry()
	err := reg.RegisterTemplates(
		regions.TemplateSpec{
			Key:   "base",
			Title: "Base",
			Regions: []regions.RegionSpec{
				{Key: "main", Title: "Main"},
				{Key: "sidebar", Title: "Sidebar", Inherited: true},
			},
		},
		regions.TemplateSpec{
			Key:     "landing",
			Title:   "Landing",
			Regions: []regions.RegionSpec{{Key: "main", Title: "Main"}},
		},
	)
	if err != nil {
		t.Fatalf("register templates: %v", err)
	}
	return reg
}

type stubPages map[uuid.UUID]string

func (s stubPages) PageTemplate(_ context.Context, id uuid.UUID) (string, error) {
	key, ok := s[id]
	if !ok {
		return "", errors.New("page not found")
	}
	return key, nil
}

type recordingInvalidator struct {
	calls [][]uuid.UUID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, ids ...uuid.UUID) error {
	r.calls = append(r.calls, ids)
	return nil
}
