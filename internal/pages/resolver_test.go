package pages_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-pagetree/internal/pages"
)

func TestCandidatePaths(t *testing.T) {
	got := pages.CandidatePaths("//a/b//c")
	want := []string{"/a/b/c/", "/a/b/", "/a/", "/"}
	if len(got) != len(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v got %v", want, got)
		}
	}
	if root := pages.CandidatePaths("/"); len(root) != 1 || root[0] != "/" {
		t.Fatalf("unexpected root candidates %v", root)
	}
	if pages.NormalizePath("a/b") != "/a/b/" {
		t.Fatalf("unexpected normalized path %s", pages.NormalizePath("a/b"))
	}
}

func TestResolveExactAndBestMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.create(t, nil, "a")
	b := f.create(t, &a.ID, "b")
	resolver := pages.NewResolver(f.repo, pages.WithResolverClock(func() time.Time { return fixedNow }))

	match, err := resolver.Resolve(ctx, "/a/b/")
	if err != nil {
		t.Fatalf("resolve exact: %v", err)
	}
	if match.Page.ID != b.ID || !match.Exact() {
		t.Fatalf("expected exact match on b, got %+v", match)
	}

	match, err = resolver.Resolve(ctx, "/a/b/c")
	if err != nil {
		t.Fatalf("resolve best: %v", err)
	}
	if match.Page.ID != b.ID || match.ExtraPath != "c/" {
		t.Fatalf("expected b with extra path c/, got %s %q", match.Page.CachedURL, match.ExtraPath)
	}

	match, err = resolver.Resolve(ctx, "/a/x/y/")
	if err != nil || match.Page.ID != a.ID || match.ExtraPath != "x/y/" {
		t.Fatalf("expected a with x/y/, got %+v (%v)", match, err)
	}

	_, err = resolver.Resolve(ctx, "/zzz/")
	var nf *pages.NotFoundError
	if !errors.As(err, &nf) || !errors.Is(err, pages.ErrPageNotFound) || nf.Key != "/zzz/" {
		t.Fatalf("expected not found for /zzz/, got %v", err)
	}

	if _, err := resolver.ResolveExact(ctx, "/a/b/c/"); !errors.Is(err, pages.ErrPageNotFound) {
		t.Fatalf("exact lookup must not fall back, got %v", err)
	}
}

func TestResolveSkipsInactiveAndUnpublished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.create(t, nil, "a")
	f.create(t, &a.ID, "hidden", func(in *pages.PageInput) { in.Active = false })
	later := fixedNow.Add(time.Hour)
	f.create(t, &a.ID, "soon", func(in *pages.PageInput) { in.PublishAt = &later })
	earlier := fixedNow.Add(-time.Hour)
	f.create(t, &a.ID, "gone", func(in *pages.PageInput) { in.UnpublishAt = &earlier })

	resolver := pages.NewResolver(f.repo, pages.WithResolverClock(func() time.Time { return fixedNow }))
	for _, path := range []string{"/a/hidden/", "/a/soon/", "/a/gone/"} {
		match, err := resolver.Resolve(ctx, path)
		if err != nil {
			t.Fatalf("resolve %s: %v", path, err)
		}
		if match.Page.ID != a.ID || match.ExtraPath == "" {
			t.Fatalf("expected %s to fall back to /a/, got %+v", path, match)
		}
	}
}

func TestResolveRequiresLiveAncestors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	root := f.create(t, nil, "root", func(in *pages.PageInput) { in.OverrideURL = "/" })
	section := f.create(t, &root.ID, "section", func(in *pages.PageInput) { in.Active = false })
	child := f.create(t, &section.ID, "child")
	later := fixedNow.Add(time.Hour)
	draft := f.create(t, &root.ID, "draft", func(in *pages.PageInput) { in.PublishAt = &later })
	f.create(t, &draft.ID, "leaf")

	resolver := pages.NewResolver(f.repo, pages.WithResolverClock(func() time.Time { return fixedNow }))
	match, err := resolver.Resolve(ctx, "/section/child/")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if match.Page.ID != root.ID || match.ExtraPath != "section/child/" {
		t.Fatalf("expected fallback to the root page, got %s %q", match.Page.CachedURL, match.ExtraPath)
	}
	if match, err := resolver.Resolve(ctx, "/draft/leaf/"); err != nil || match.Page.ID != root.ID {
		t.Fatalf("expected unpublished ancestor to hide leaf, got %+v (%v)", match, err)
	}
	if _, err := resolver.ResolveExact(ctx, "/section/child/"); !errors.Is(err, pages.ErrPageNotFound) {
		t.Fatalf("expected exact lookup to miss, got %v", err)
	}

	if _, err := f.svc.Update(ctx, pages.UpdatePageRequest{ID: section.ID, PageInput: pages.PageInput{
		Title: "section", Slug: "section", Active: true, TemplateKey: "standard",
	}}); err != nil {
		t.Fatalf("activate section: %v", err)
	}
	match, err = resolver.Resolve(ctx, "/section/child/")
	if err != nil || match.Page.ID != child.ID || !match.Exact() {
		t.Fatalf("expected child once its ancestor is live, got %+v (%v)", match, err)
	}
}

func TestRedirectOnlyOnExactMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	target := f.create(t, nil, "target")
	f.create(t, nil, "old", func(in *pages.PageInput) { in.RedirectTo = "page:" + target.ID.String() })
	f.create(t, nil, "ext", func(in *pages.PageInput) { in.RedirectTo = "https://example.com/" })
	f.create(t, nil, "dangling", func(in *pages.PageInput) { in.RedirectTo = "page:not-a-uuid" })
	resolver := pages.NewResolver(f.repo, pages.WithResolverClock(func() time.Time { return fixedNow }))

	match, err := resolver.Resolve(ctx, "/old/")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if to, ok := match.Redirect(); !ok || to != "/target/" {
		t.Fatalf("expected redirect to /target/, got %q %v", to, ok)
	}

	match, err = resolver.Resolve(ctx, "/ext/")
	if to, ok := match.Redirect(); err != nil || !ok || to != "https://example.com/" {
		t.Fatalf("expected external redirect, got %q %v (%v)", to, ok, err)
	}

	match, err = resolver.Resolve(ctx, "/old/sub/")
	if err != nil {
		t.Fatalf("resolve best: %v", err)
	}
	if _, ok := match.Redirect(); ok {
		t.Fatal("best matches must not redirect")
	}

	match, err = resolver.Resolve(ctx, "/dangling/")
	if err != nil {
		t.Fatalf("dangling reference should still resolve: %v", err)
	}
	if _, ok := match.Redirect(); ok {
		t.Fatal("dangling reference must not redirect")
	}
}
