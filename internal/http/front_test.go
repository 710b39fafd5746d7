package http_test

import (
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-pagetree/internal/contenttypes"
	"github.com/goliatone/go-pagetree/internal/di"
	pagehttp "github.com/goliatone/go-pagetree/internal/http"
	"github.com/goliatone/go-pagetree/internal/kinds"
	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/goliatone/go-pagetree/internal/runtimeconfig"
)

// feedWidget claims extra paths that start with "feed" and tags responses.
type feedWidget struct {
	contenttypes.Item
	Label string `bun:"label" json:"label"`
}

func (f *feedWidget) Render(context.Context, contenttypes.RenderContext) (string, error) {
	return "<span>" + f.Label + "</span>", nil
}

func (f *feedWidget) Process(ctx context.Context, _ *nethttp.Request) (nethttp.Handler, error) {
	extra := pagehttp.ExtraPath(ctx)
	if !strings.HasPrefix(extra, "feed") {
		return nil, nil
	}
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		_, _ = w.Write([]byte("feed for " + extra))
	}), nil
}

func (f *feedWidget) Finalize(_ context.Context, _ *nethttp.Request, header nethttp.Header) error {
	header.Set("X-Widget", f.Label)
	return nil
}

type harness struct {
	container *di.Container
	router    nethttp.Handler
}

func newHarness(t *testing.T, opts ...pagehttp.FrontOption) harness {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Level = "error"
	c, err := di.NewContainer(context.Background(), cfg,
		di.WithContentType(contenttypes.Define[feedWidget]("feed_widget"), nil),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	front := pagehttp.NewFrontHandler(c.Resolver(), c.ProxyFactory(), c.Templates(),
		append([]pagehttp.FrontOption{pagehttp.WithLogger(logging.NoOp())}, opts...)...)
	return harness{container: c, router: pagehttp.NewRouter(front)}
}

func (h harness) page(t *testing.T, parent *pages.Page, slug string, mutate ...func(*pages.PageInput)) *pages.Page {
	t.Helper()
	in := pages.PageInput{Title: slug, Slug: slug, Active: true, TemplateKey: "standard"}
	if parent != nil {
		in.ParentID = &parent.ID
	}
	for _, fn := range mutate {
		fn(&in)
	}
	result, err := h.container.PageService().Create(context.Background(), pages.CreatePageRequest{PageInput: in})
	require.NoError(t, err)
	return result.Page
}

func (h harness) add(t *testing.T, page *pages.Page, region string, record contenttypes.Content, typ string) {
	t.Helper()
	_, err := h.container.ContentService().AddContent(context.Background(), contenttypes.AddContentRequest{
		Type: typ, PageID: page.ID, Region: region, Record: record,
	})
	require.NoError(t, err)
}

func (h harness) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, path, nil))
	return rec
}

func TestFrontRendersExactMatch(t *testing.T) {
	h := newHarness(t)
	about := h.page(t, nil, "about", func(in *pages.PageInput) { in.MetaTitle = "About us" })
	h.add(t, about, "main", &kinds.RichText{Text: "<p>Hello</p>"}, kinds.RichTextName)
	h.add(t, about, "sidebar", &feedWidget{Label: "news"}, "feed_widget")

	rec := h.get("/about/")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>About us</title>")
	assert.Contains(t, body, `<div class="region" data-region="main"><p>Hello</p></div>`)
	assert.Contains(t, body, "<span>news</span>")
	assert.Equal(t, "news", rec.Header().Get("X-Widget"))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get(pagehttp.ExtraPathHeader))
}

func TestFrontMissReturnsNotFound(t *testing.T) {
	h := newHarness(t)
	h.page(t, nil, "about")

	assert.Equal(t, nethttp.StatusNotFound, h.get("/contact/").Code)
}

func TestFrontRedirectsOnlyExactMatches(t *testing.T) {
	h := newHarness(t)
	target := h.page(t, nil, "target")
	h.page(t, nil, "old", func(in *pages.PageInput) { in.RedirectTo = pages.PageRefPrefix + target.ID.String() })

	rec := h.get("/old/")
	assert.Equal(t, nethttp.StatusFound, rec.Code)
	assert.Equal(t, "/target/", rec.Header().Get("Location"))

	rec = h.get("/old/deeper/")
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, "deeper/", rec.Header().Get(pagehttp.ExtraPathHeader))
}

func TestFrontHandsExtraPathToItems(t *testing.T) {
	h := newHarness(t)
	blog := h.page(t, nil, "blog")
	h.add(t, blog, "main", &feedWidget{Label: "blog"}, "feed_widget")

	rec := h.get("/blog/feed/rss")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "feed for feed/rss/", rec.Body.String())
	assert.Equal(t, "feed/rss/", rec.Header().Get(pagehttp.ExtraPathHeader))

	assert.Equal(t, nethttp.StatusNotFound, h.get("/blog/archive/").Code)
}

func TestFrontCanRenderUnclaimedExtraPath(t *testing.T) {
	h := newHarness(t, pagehttp.AllowExtraPath(true))
	h.page(t, nil, "docs")

	rec := h.get("/docs/intro/")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "intro/", rec.Header().Get(pagehttp.ExtraPathHeader))
}

func TestFrontCustomRendererAndHealth(t *testing.T) {
	renderer := pagehttp.RendererFunc(func(w io.Writer, view pagehttp.PageView) error {
		_, err := io.WriteString(w, view.Page.Title+"|"+string(view.Region("main")))
		return err
	})
	h := newHarness(t, pagehttp.WithRenderer(renderer))
	home := h.page(t, nil, "home")
	h.add(t, home, "main", &kinds.RichText{Text: "<b>hi</b>"}, kinds.RichTextName)

	assert.Equal(t, "home|<b>hi</b>", h.get("/home/").Body.String())

	rec := h.get("/healthz")
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
