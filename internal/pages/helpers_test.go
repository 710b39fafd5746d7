package pages_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/goliatone/go-pagetree/internal/regions"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testTemplates(t testing.TB) *regions.Registry {
	t.Helper()
	reg := regions.NewRegistry()
	err := reg.RegisterTemplates(
		regions.TemplateSpec{
			Key: "standard", Title: "Standard",
			Regions: []regions.RegionSpec{{Key: "main", Title: "Main"}, {Key: "sidebar", Title: "Sidebar", Inherited: true}},
		},
		regions.TemplateSpec{
			Key: "home", Title: "Home", Singleton: true,
			Regions: []regions.RegionSpec{{Key: "main", Title: "Main"}},
		},
		regions.TemplateSpec{
			Key: "article", Title: "Article", EnforceLeaf: true,
			Regions: []regions.RegionSpec{{Key: "main", Title: "Main"}},
		},
	)
	if err != nil {
		t.Fatalf("register templates: %v", err)
	}
	return reg
}

type fixture struct {
	repo *pages.MemoryRepository
	svc  *pages.Service
}

func newFixture(t testing.TB, opts ...pages.ServiceOption) fixture {
	t.Helper()
	repo := pages.NewMemoryRepository()
	opts = append([]pages.ServiceOption{pages.WithClock(func() time.Time { return fixedNow })}, opts...)
	return fixture{repo: repo, svc: pages.NewService(repo, testTemplates(t), opts...)}
}

func (f fixture) create(t testing.TB, parent *uuid.UUID, slug string, mutate ...func(*pages.PageInput)) *pages.Page {
	t.Helper()
	in := pages.PageInput{
		ParentID:     parent,
		Title:        slug,
		Slug:         slug,
		Active:       true,
		InNavigation: true,
		TemplateKey:  "standard",
	}
	for _, fn := range mutate {
		fn(&in)
	}
	result, err := f.svc.Create(context.Background(), pages.CreatePageRequest{PageInput: in})
	if err != nil {
		t.Fatalf("create %s: %v", slug, err)
	}
	return result.Page
}

func ptr[T any](v T) *T { return &v }

type recordingInvalidator struct {
	ids []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(_ context.Context, ids ...uuid.UUID) error {
	r.ids = append(r.ids, ids...)
	return nil
}

type recordingCleaner struct {
	ids []uuid.UUID
}

func (r *recordingCleaner) DeletePageContent(_ context.Context, ids []uuid.UUID) (int, error) {
	r.ids = append(r.ids, ids...)
	return len(ids) * 2, nil
}

func fixedUUID(n byte) uuid.UUID {
	var id uuid.UUID
	id[15] = n
	id[6] = 0x40
	id[8] = 0x80
	return id
}
