package proxy_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-pagetree/internal/contenttypes"
	"github.com/goliatone/go-pagetree/internal/inventory"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/goliatone/go-pagetree/internal/proxy"
	"github.com/goliatone/go-pagetree/internal/regions"
)

type textItem struct {
	contenttypes.Item
	Text string
}

func (t *textItem) Render(context.Context, contenttypes.RenderContext) (string, error) {
	return "<p>" + t.Text + "</p>", nil
}

type formItem struct {
	contenttypes.Item
	Name string
}

func (f *formItem) Render(_ context.Context, rc contenttypes.RenderContext) (string, error) {
	return "<form data-region=" + rc.Region + ">" + f.Name + "</form>", nil
}

func (f *formItem) Process(_ context.Context, r *http.Request) (http.Handler, error) {
	if r.Method != http.MethodPost {
		return nil, nil
	}
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	}), nil
}

func (f *formItem) Finalize(_ context.Context, _ *http.Request, header http.Header) error {
	header.Set("Cache-Control", "no-store")
	return nil
}

type env struct {
	pages    *pages.Service
	repo     *pages.MemoryRepository
	registry *contenttypes.Registry
	store    *contenttypes.MemoryStore
	content  *contenttypes.Service
	base     *contenttypes.Base
	text     *contenttypes.Type
	form     *contenttypes.Type
}

func newEnv(t *testing.T) env {
	t.Helper()
	templates := regions.NewRegistry()
	if err := templates.RegisterTemplates(regions.TemplateSpec{
		Key:   "standard",
		Title: "Standard",
		Regions: []regions.RegionSpec{
			{Key: "main", Title: "Main"},
			{Key: "sidebar", Title: "Sidebar", Inherited: true},
		},
	}); err != nil {
		t.Fatalf("templates: %v", err)
	}

	registry := contenttypes.NewRegistry()
	base := contenttypes.NewBase("page", templates)
	text, err := registry.CreateContentType(base, contenttypes.Define[textItem]("text"), nil)
	if err != nil {
		t.Fatalf("text type: %v", err)
	}
	form, err := registry.CreateContentType(base, contenttypes.Define[formItem]("form"), nil)
	if err != nil {
		t.Fatalf("form type: %v", err)
	}
	registry.Seal()

	repo := pages.NewMemoryRepository()
	pageSvc := pages.NewService(repo, templates)
	store := contenttypes.NewMemoryStore()
	contentSvc := contenttypes.NewService(registry, base, store, pageSvc)
	return env{pages: pageSvc, repo: repo, registry: registry, store: store, content: contentSvc, base: base, text: text, form: form}
}

func (e env) page(t *testing.T, parent *pages.Page, slug string) *pages.Page {
	t.Helper()
	in := pages.PageInput{Title: slug, Slug: slug, Active: true, TemplateKey: "standard"}
	if parent != nil {
		in.ParentID = &parent.ID
	}
	result, err := e.pages.Create(context.Background(), pages.CreatePageRequest{PageInput: in})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	return result.Page
}

func (e env) add(t *testing.T, page *pages.Page, typeName, region string, ordering int, record contenttypes.Content) contenttypes.Content {
	t.Helper()
	created, err := e.content.AddContent(context.Background(), contenttypes.AddContentRequest{
		Type: typeName, PageID: page.ID, Region: region, Ordering: &ordering, Record: record,
	})
	if err != nil {
		t.Fatalf("add content: %v", err)
	}
	return created
}

func (e env) factory(opts ...proxy.Option) *proxy.Factory {
	return proxy.NewFactory(e.registry, e.base, e.store, e.repo, opts...)
}

func TestRegionUnknownKeyIsEmpty(t *testing.T) {
	e := newEnv(t)
	p := e.factory().New(e.page(t, nil, "a"))

	items, err := p.Region(context.Background(), "footer")
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty result, got %v (%v)", items, err)
	}
}

func TestRegionOrdersAcrossTypes(t *testing.T) {
	e := newEnv(t)
	a := e.page(t, nil, "a")
	e.add(t, a, "form", "main", 1, &formItem{Name: "f1"})
	e.add(t, a, "text", "main", 2, &textItem{Text: "t2"})
	e.add(t, a, "text", "main", 1, &textItem{Text: "t1"})
	e.add(t, a, "form", "main", 0, &formItem{Name: "f0"})

	items, err := e.factory().New(a).Region(context.Background(), "main")
	if err != nil {
		t.Fatalf("region: %v", err)
	}
	var got []string
	for _, item := range items {
		switch v := item.(type) {
		case *textItem:
			got = append(got, v.Text)
		case *formItem:
			got = append(got, v.Name)
		}
	}
	want := []string{"f0", "t1", "f1", "t2"}
	if len(got) != len(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v got %v", want, got)
		}
	}
}

func TestEqualOrderingIsStableAcrossProxies(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.page(t, nil, "a")
	for _, text := range []string{"x", "y", "z"} {
		e.add(t, a, "text", "main", 4, &textItem{Text: text})
	}
	e.add(t, a, "form", "main", 4, &formItem{Name: "f"})

	ids := func() []string {
		items, err := e.factory().New(a).Region(ctx, "main")
		if err != nil {
			t.Fatalf("region: %v", err)
		}
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = item.ContentItem().ID.String()
		}
		return out
	}

	first := ids()
	if len(first) != 4 {
		t.Fatalf("expected 4 items, got %v", first)
	}
	for i := 1; i < 3; i++ {
		if first[i-1] > first[i] {
			t.Fatalf("equal ordering within a type must follow item id, got %v", first)
		}
	}
	for run := 0; run < 5; run++ {
		again := ids()
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("run %d: expected %v got %v", run, first, again)
			}
		}
	}
}

func TestInheritedRegionFallsBackWithoutMerging(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	root := e.page(t, nil, "root")
	mid := e.page(t, root, "mid")
	leaf := e.page(t, mid, "leaf")
	e.add(t, root, "text", "sidebar", 0, &textItem{Text: "root-side"})
	e.add(t, root, "text", "main", 0, &textItem{Text: "root-main"})

	f := e.factory()
	side, err := f.New(leaf).Region(ctx, "sidebar")
	if err != nil || len(side) != 1 || side[0].(*textItem).Text != "root-side" {
		t.Fatalf("expected inherited root sidebar, got %v (%v)", side, err)
	}
	main, err := f.New(leaf).Region(ctx, "main")
	if err != nil || len(main) != 0 {
		t.Fatalf("non inherited region must stay empty, got %v (%v)", main, err)
	}

	e.add(t, mid, "text", "sidebar", 0, &textItem{Text: "mid-side"})
	side, err = f.New(leaf).Region(ctx, "sidebar")
	if err != nil || len(side) != 1 || side[0].(*textItem).Text != "mid-side" {
		t.Fatalf("nearest ancestor wins without merge, got %v (%v)", side, err)
	}
}

func TestRegionIsCachedPerProxy(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.page(t, nil, "a")
	f := e.factory()
	p := f.New(a)

	if items, _ := p.Region(ctx, "main"); len(items) != 0 {
		t.Fatalf("expected empty region, got %v", items)
	}
	e.add(t, a, "text", "main", 0, &textItem{Text: "late"})
	if items, _ := p.Region(ctx, "main"); len(items) != 0 {
		t.Fatal("existing proxy must keep its cached result")
	}
	if items, _ := f.New(a).Region(ctx, "main"); len(items) != 1 {
		t.Fatal("new proxy must recompute")
	}
}

func TestRegionPropagatesStoreErrors(t *testing.T) {
	e := newEnv(t)
	a := e.page(t, nil, "a")
	boom := errors.New("boom")
	e.store.FailReads(e.form, boom)

	if _, err := e.factory().New(a).Region(context.Background(), "main"); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestInventorySkipsEmptyTypes(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.page(t, nil, "a")
	e.add(t, a, "text", "main", 0, &textItem{Text: "x"})

	provider, err := inventory.NewMemoryProvider(time.Minute)
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	cache, err := inventory.New(provider)
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	f := e.factory(proxy.WithInventory(cache))
	if items, err := f.New(a).Region(ctx, "main"); err != nil || len(items) != 1 {
		t.Fatalf("warm up: %v (%v)", items, err)
	}
	snap, ok, _ := cache.Get(ctx, a.ID)
	if !ok || !snap.Has("main", "text") || snap.Has("main", "form") {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	e.store.FailReads(e.form, errors.New("form table must not be read"))
	if items, err := f.New(a).Region(ctx, "main"); err != nil || len(items) != 1 {
		t.Fatalf("expected form type to be skipped, got %v (%v)", items, err)
	}
}

func TestRequireSealed(t *testing.T) {
	e := newEnv(t)
	a := e.page(t, nil, "a")
	unsealed := contenttypes.NewRegistry()
	f := proxy.NewFactory(unsealed, e.base, e.store, e.repo, proxy.RequireSealed(true))

	if _, err := f.New(a).Region(context.Background(), "main"); !errors.Is(err, proxy.ErrRegistryNotReady) {
		t.Fatalf("expected ErrRegistryNotReady, got %v", err)
	}
}

func TestRenderProcessFinalize(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a := e.page(t, nil, "a")
	e.add(t, a, "text", "main", 0, &textItem{Text: "hello"})
	e.add(t, a, "form", "main", 1, &formItem{Name: "contact"})
	p := e.factory().New(a)

	html, err := p.RenderRegion(ctx, "main", contenttypes.RenderContext{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != "<p>hello</p><form data-region=main>contact</form>" {
		t.Fatalf("unexpected html %q", html)
	}

	handler, err := p.Process(ctx, httptest.NewRequest(http.MethodGet, "/a/", nil))
	if err != nil || handler != nil {
		t.Fatalf("GET must not short circuit, got %v (%v)", handler, err)
	}
	handler, err = p.Process(ctx, httptest.NewRequest(http.MethodPost, "/a/", nil))
	if err != nil || handler == nil {
		t.Fatalf("POST must short circuit, got %v (%v)", handler, err)
	}

	header := http.Header{}
	if err := p.Finalize(ctx, httptest.NewRequest(http.MethodGet, "/a/", nil), header); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if header.Get("Cache-Control") != "no-store" {
		t.Fatalf("expected finalizer header, got %v", header)
	}

	all, err := p.All(ctx)
	if err != nil || len(all["main"]) != 2 || len(all["sidebar"]) != 0 {
		t.Fatalf("unexpected All result %v (%v)", all, err)
	}
}

