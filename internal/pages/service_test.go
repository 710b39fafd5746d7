package pages_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagetree/internal/pages"
)

func TestCreateDerivesCachedURLAndLevel(t *testing.T) {
	f := newFixture(t)
	about := f.create(t, nil, "About Us")
	team := f.create(t, &about.ID, "team")

	if about.Slug != "about-us" || about.CachedURL != "/about-us/" || about.Level != 0 {
		t.Fatalf("unexpected root %+v", about)
	}
	if team.CachedURL != "/about-us/team/" || team.Level != 1 {
		t.Fatalf("unexpected child %s level %d", team.CachedURL, team.Level)
	}
}

func TestUpdateCascadesToDescendants(t *testing.T) {
	inv := &recordingInvalidator{}
	f := newFixture(t, pages.WithInvalidator(inv))
	a := f.create(t, nil, "a")
	b := f.create(t, &a.ID, "b")
	c := f.create(t, &b.ID, "c")
	inv.ids = nil

	result, err := f.svc.Update(context.Background(), pages.UpdatePageRequest{
		ID: a.ID,
		PageInput: pages.PageInput{
			Title: "A", Slug: "x", Active: true, TemplateKey: "standard",
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(result.Cascaded) != 2 {
		t.Fatalf("expected 2 cascaded pages, got %d", len(result.Cascaded))
	}

	stored, err := f.repo.GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get c: %v", err)
	}
	if stored.CachedURL != "/x/b/c/" {
		t.Fatalf("expected descendant url to be persisted, got %s", stored.CachedURL)
	}
	if len(inv.ids) != 3 {
		t.Fatalf("expected invalidation of page and descendants, got %v", inv.ids)
	}
}

func TestOverrideURLWinsAndPropagates(t *testing.T) {
	f := newFixture(t)
	home := f.create(t, nil, "home", func(in *pages.PageInput) { in.OverrideURL = "/" })
	news := f.create(t, &home.ID, "news")

	if home.CachedURL != "/" || news.CachedURL != "/news/" {
		t.Fatalf("unexpected urls %s %s", home.CachedURL, news.CachedURL)
	}
}

func TestURLCollisionIsFieldError(t *testing.T) {
	f := newFixture(t)
	f.create(t, nil, "a")
	b := f.create(t, nil, "b")

	_, err := f.svc.Create(context.Background(), pages.CreatePageRequest{PageInput: pages.PageInput{
		Title: "dup", Slug: "a", Active: true, TemplateKey: "standard",
	}})
	var vErr *pages.ValidationError
	if !errors.As(err, &vErr) || !errors.Is(err, pages.ErrURLCollision) {
		t.Fatalf("expected collision validation error, got %v", err)
	}
	if _, ok := vErr.Field("slug"); !ok {
		t.Fatalf("expected slug field error, got %v", vErr.Fields)
	}

	_, err = f.svc.Update(context.Background(), pages.UpdatePageRequest{ID: b.ID, PageInput: pages.PageInput{
		Title: "b", Slug: "b", OverrideURL: "/a/", Active: true, TemplateKey: "standard",
	}})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := vErr.Field("override_url"); !ok {
		t.Fatalf("expected override_url field error, got %v", vErr.Fields)
	}

	// inactive pages may share a url
	if _, err := f.svc.Create(context.Background(), pages.CreatePageRequest{PageInput: pages.PageInput{
		Title: "draft", Slug: "a", TemplateKey: "standard",
	}}); err != nil {
		t.Fatalf("inactive duplicate should be allowed: %v", err)
	}
}

func TestCascadeCollisionLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, nil, "a")
	f.create(t, &a.ID, "c")
	x := f.create(t, nil, "x")
	f.create(t, &x.ID, "c")

	_, err := f.svc.Update(context.Background(), pages.UpdatePageRequest{ID: a.ID, PageInput: pages.PageInput{
		Title: "a", Slug: "x", Active: false, TemplateKey: "standard",
	}})
	if !errors.Is(err, pages.ErrURLCollision) {
		t.Fatalf("expected descendant collision, got %v", err)
	}
	stored, _ := f.repo.GetByID(context.Background(), a.ID)
	if stored.Slug != "a" || stored.CachedURL != "/a/" {
		t.Fatalf("store must be untouched, got %+v", stored)
	}
}

func TestStructuralRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.create(t, nil, "a")
	b := f.create(t, &a.ID, "b")
	post := f.create(t, nil, "post", func(in *pages.PageInput) { in.TemplateKey = "article" })

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"move under self", func() error {
			_, err := f.svc.Move(ctx, pages.MovePageRequest{ID: a.ID, ParentID: &a.ID})
			return err
		}, pages.ErrInvalidMove},
		{"move under descendant", func() error {
			_, err := f.svc.Move(ctx, pages.MovePageRequest{ID: a.ID, ParentID: &b.ID})
			return err
		}, pages.ErrInvalidMove},
		{"missing parent", func() error {
			_, err := f.svc.Move(ctx, pages.MovePageRequest{ID: b.ID, ParentID: ptr(uuid.New())})
			return err
		}, pages.ErrParentNotFound},
		{"child of leaf", func() error {
			_, err := f.svc.Move(ctx, pages.MovePageRequest{ID: b.ID, ParentID: &post.ID})
			return err
		}, pages.ErrParentIsLeaf},
		{"leaf with children", func() error {
			_, err := f.svc.Update(ctx, pages.UpdatePageRequest{ID: a.ID, PageInput: pages.PageInput{
				Title: "a", Slug: "a", Active: true, TemplateKey: "article",
			}})
			return err
		}, pages.ErrLeafHasChildren},
		{"unknown template", func() error {
			_, err := f.svc.Create(ctx, pages.CreatePageRequest{PageInput: pages.PageInput{Title: "z", Slug: "z", TemplateKey: "nope"}})
			return err
		}, pages.ErrTemplateUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	stored, _ := f.repo.GetByID(ctx, b.ID)
	if stored.CachedURL != "/a/b/" {
		t.Fatalf("rejected operations must not write, got %s", stored.CachedURL)
	}
}

func TestSingletonTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	home := f.create(t, nil, "home", func(in *pages.PageInput) { in.TemplateKey = "home" })

	second := pages.PageInput{Title: "other", Slug: "other", Active: true, TemplateKey: "home"}
	_, err := f.svc.Create(ctx, pages.CreatePageRequest{PageInput: second})
	var vErr *pages.ValidationError
	if !errors.As(err, &vErr) || !errors.Is(err, pages.ErrSingletonTemplate) {
		t.Fatalf("expected singleton error, got %v", err)
	}
	if _, ok := vErr.Field("template"); !ok {
		t.Fatalf("expected template field error, got %v", vErr.Fields)
	}

	inactive := second
	inactive.Active = false
	if _, err := f.svc.Create(ctx, pages.CreatePageRequest{PageInput: inactive}); err != nil {
		t.Fatalf("inactive page may share a singleton template: %v", err)
	}

	if _, err := f.svc.Update(ctx, pages.UpdatePageRequest{ID: home.ID, PageInput: pages.PageInput{
		Title: "home", Slug: "home", Active: false, TemplateKey: "home",
	}}); err != nil {
		t.Fatalf("deactivate home: %v", err)
	}
	second.Slug = "replacement"
	created, err := f.svc.Create(ctx, pages.CreatePageRequest{PageInput: second})
	if err != nil {
		t.Fatalf("expected a second live page after deactivating the first, got %v", err)
	}
	if !created.Page.Active {
		t.Fatalf("expected the replacement to be live")
	}
}

func TestOverrideURLMustEndWithSlash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Create(ctx, pages.CreatePageRequest{PageInput: pages.PageInput{
		Title: "foo", OverrideURL: "/foo", Active: true, TemplateKey: "standard",
	}})
	var vErr *pages.ValidationError
	if !errors.As(err, &vErr) || !errors.Is(err, pages.ErrInvalidPage) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if _, ok := vErr.Field("override_url"); !ok {
		t.Fatalf("expected override_url error in %v", vErr.Fields)
	}

	page := f.create(t, nil, "foo", func(in *pages.PageInput) { in.OverrideURL = "/foo/" })
	match, err := pages.NewResolver(f.repo).Resolve(ctx, "/foo")
	if err != nil {
		t.Fatalf("resolve override: %v", err)
	}
	if match.Page.ID != page.ID || !match.Exact() {
		t.Fatalf("expected exact match on %s, got %+v", page.ID, match)
	}
}

func TestFieldValidation(t *testing.T) {
	f := newFixture(t)
	publish := fixedNow.AddDate(0, 1, 0)
	_, err := f.svc.Create(context.Background(), pages.CreatePageRequest{PageInput: pages.PageInput{
		OverrideURL: "relative/",
		PublishAt:   &publish,
		UnpublishAt: &fixedNow,
	}})
	var vErr *pages.ValidationError
	if !errors.As(err, &vErr) || !errors.Is(err, pages.ErrInvalidPage) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	for _, field := range []string{"title", "template", "override_url", "unpublish_at"} {
		if _, ok := vErr.Field(field); !ok {
			t.Fatalf("expected %s error in %v", field, vErr.Fields)
		}
	}
}

func TestDeletePage(t *testing.T) {
	ctx := context.Background()
	cleaner := &recordingCleaner{}
	f := newFixture(t, pages.WithContentCleaner(cleaner))
	a := f.create(t, nil, "a")
	b := f.create(t, &a.ID, "b")
	f.create(t, &b.ID, "c")
	other := f.create(t, nil, "other")

	if _, err := f.svc.Delete(ctx, pages.DeletePageRequest{ID: a.ID}); !errors.Is(err, pages.ErrPageHasChildren) {
		t.Fatalf("expected ErrPageHasChildren, got %v", err)
	}

	result, err := f.svc.Delete(ctx, pages.DeletePageRequest{ID: a.ID, Cascade: true})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(result.Pages) != 3 || result.ContentItems != 6 || len(cleaner.ids) != 3 {
		t.Fatalf("unexpected delete result %+v cleaner=%v", result, cleaner.ids)
	}
	remaining, _ := f.svc.List(ctx)
	if len(remaining) != 1 || remaining[0].ID != other.ID {
		t.Fatalf("expected only other page to remain, got %v", remaining)
	}
	if _, err := f.svc.Get(ctx, b.ID); !errors.Is(err, pages.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestPageTemplateLookup(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, nil, "a", func(in *pages.PageInput) { in.TemplateKey = "article" })

	key, err := f.svc.PageTemplate(context.Background(), a.ID)
	if err != nil || key != "article" {
		t.Fatalf("expected article, got %q (%v)", key, err)
	}
	if _, err := f.svc.PageTemplate(context.Background(), uuid.New()); !errors.Is(err, pages.ErrPageNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
