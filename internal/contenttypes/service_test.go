package contenttypes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type serviceFixture struct {
	svc     *Service
	store   *MemoryStore
	note    *Type
	banner  *Type
	pageID  uuid.UUID
	landing uuid.UUID
	inv     *recordingInvalidator
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	reg := NewRegistry()
	base := NewBase("page", testTemplates(t))
	note, err := reg.CreateContentType(base, Define[noteRecord]("note"), nil)
	if err != nil {
		t.Fatalf("note: %v", err)
	}
	banner, err := reg.CreateContentType(base, Define[bannerRecord]("banner"), nil)
	if err != nil {
		t.Fatalf("banner: %v", err)
	}

	pageID, landing := uuid.New(), uuid.New()
	store := NewMemoryStore()
	inv := &recordingInvalidator{}
	svc := NewService(reg, base, store, stubPages{pageID: "base", landing: "landing"},
		WithInvalidator(inv),
		WithNow(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }),
	)
	if err := svc.EnsureSchemas(context.Background()); err != nil {
		t.Fatalf("ensure schemas: %v", err)
	}
	return serviceFixture{svc: svc, store: store, note: note, banner: banner, pageID: pageID, landing: landing, inv: inv}
}

func TestAddContentAppendsAcrossTypes(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.svc.AddContent(ctx, AddContentRequest{Type: "note", PageID: f.pageID, Region: "main", Record: &noteRecord{Text: "a"}})
	if err != nil {
		t.Fatalf("add note: %v", err)
	}
	second, err := f.svc.AddContent(ctx, AddContentRequest{Type: "banner", PageID: f.pageID, Region: "main", Record: &bannerRecord{Image: "x.png"}})
	if err != nil {
		t.Fatalf("add banner: %v", err)
	}

	if first.ContentItem().ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if first.ContentItem().Ordering != 0 || second.ContentItem().Ordering != 1 {
		t.Fatalf("unexpected orderings %d %d", first.ContentItem().Ordering, second.ContentItem().Ordering)
	}
	if len(f.inv.calls) != 2 || f.inv.calls[0][0] != f.pageID {
		t.Fatalf("expected inventory invalidation per write, got %v", f.inv.calls)
	}

	all, err := f.svc.ListPageContent(ctx, f.pageID)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected two records, got %d (%v)", len(all), err)
	}
}

func TestAddContentValidatesRegionAndRecord(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddContent(ctx, AddContentRequest{Type: "note", PageID: f.landing, Region: "sidebar", Record: &noteRecord{Text: "a"}})
	if !errors.Is(err, ErrUnknownRegion) {
		t.Fatalf("expected ErrUnknownRegion for landing sidebar, got %v", err)
	}

	_, err = f.svc.AddContent(ctx, AddContentRequest{Type: "note", PageID: f.pageID, Region: "main", Record: &noteRecord{}})
	if err == nil {
		t.Fatal("expected record validation error")
	}

	_, err = f.svc.AddContent(ctx, AddContentRequest{Type: "note", PageID: f.pageID, Region: "main", Record: &bannerRecord{}})
	if !errors.Is(err, ErrItemTypeMismatch) {
		t.Fatalf("expected ErrItemTypeMismatch, got %v", err)
	}

	_, err = f.svc.AddContent(ctx, AddContentRequest{Type: "video", PageID: f.pageID, Region: "main", Record: &noteRecord{Text: "a"}})
	if !errors.Is(err, ErrTypeNotFound) {
		t.Fatalf("expected ErrTypeNotFound, got %v", err)
	}
}

func TestUpdateMoveDeleteContent(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ordering := 5

	added, err := f.svc.AddContent(ctx, AddContentRequest{Type: "note", PageID: f.pageID, Region: "main", Ordering: &ordering, Record: &noteRecord{Text: "a"}})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	id := added.ContentItem().ID

	updated, err := f.svc.UpdateContent(ctx, UpdateContentRequest{Type: "note", Record: &noteRecord{Item: Item{ID: id, Region: "ignored"}, Text: "b"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ContentItem().Region != "main" || updated.ContentItem().Ordering != 5 {
		t.Fatalf("update must keep placement, got %+v", updated.ContentItem())
	}

	moved, err := f.svc.MoveContent(ctx, MoveContentRequest{Type: "note", ID: id, Region: "sidebar", Ordering: 1})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.ContentItem().Region != "sidebar" || moved.(*noteRecord).Text != "b" {
		t.Fatalf("unexpected moved record %+v", moved)
	}
	if _, err := f.svc.MoveContent(ctx, MoveContentRequest{Type: "note", ID: id, Region: "footer"}); !errors.Is(err, ErrUnknownRegion) {
		t.Fatalf("expected ErrUnknownRegion, got %v", err)
	}

	if err := f.svc.DeleteContent(ctx, DeleteContentRequest{Type: "note", ID: id}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.DeleteContent(ctx, DeleteContentRequest{Type: "note", ID: id}); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestDeletePageContentClearsEveryType(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	for _, req := range []AddContentRequest{
		{Type: "note", PageID: f.pageID, Region: "main", Record: &noteRecord{Text: "a"}},
		{Type: "banner", PageID: f.pageID, Region: "sidebar", Record: &bannerRecord{Image: "b"}},
		{Type: "note", PageID: f.landing, Region: "main", Record: &noteRecord{Text: "c"}},
	} {
		if _, err := f.svc.AddContent(ctx, req); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	removed, err := f.svc.DeletePageContent(ctx, []uuid.UUID{f.pageID})
	if err != nil || removed != 2 {
		t.Fatalf("expected 2 removed, got %d (%v)", removed, err)
	}
	left, err := f.svc.ListPageContent(ctx, f.landing)
	if err != nil || len(left) != 1 {
		t.Fatalf("landing content must survive, got %d (%v)", len(left), err)
	}
}
