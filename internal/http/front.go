package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	nethttp "net/http"

	"github.com/goliatone/go-pagetree/internal/contenttypes"
	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/goliatone/go-pagetree/internal/proxy"
	"github.com/goliatone/go-pagetree/internal/regions"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// ExtraPathHeader carries the unmatched suffix of a best match.
const ExtraPathHeader = "X-Extra-Path"

type contextKey int

const matchKey contextKey = iota

// WithMatch stores the resolved match on ctx.
func WithMatch(ctx context.Context, match *pages.Match) context.Context {
	return context.WithValue(ctx, matchKey, match)
}

// MatchFromContext returns the match stored by the front handler.
func MatchFromContext(ctx context.Context) (*pages.Match, bool) {
	match, ok := ctx.Value(matchKey).(*pages.Match)
	return match, ok && match != nil
}

// ExtraPath returns the unmatched path suffix for the current request.
func ExtraPath(ctx context.Context) string {
	if match, ok := MatchFromContext(ctx); ok {
		return match.ExtraPath
	}
	return ""
}

type Resolver interface {
	Resolve(ctx context.Context, path string) (*pages.Match, error)
}

type ProxyFactory interface {
	New(page *pages.Page) *proxy.Proxy
}

// PageView is handed to the Renderer.
type PageView struct {
	Page      *pages.Page
	Template  *regions.Template
	Regions   map[string]template.HTML
	ExtraPath string
}

// Region returns the rendered markup of key.
func (v PageView) Region(key string) template.HTML {
	return v.Regions[key]
}

type Renderer interface {
	RenderPage(w io.Writer, view PageView) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(w io.Writer, view PageView) error

func (f RendererFunc) RenderPage(w io.Writer, view PageView) error { return f(w, view) }

type FrontHandler struct {
	resolver       Resolver
	proxies        ProxyFactory
	templates      *regions.Registry
	renderer       Renderer
	logger         interfaces.Logger
	allowExtraPath bool
}

type FrontOption func(*FrontHandler)

func WithRenderer(renderer Renderer) FrontOption {
	return func(h *FrontHandler) {
		if renderer != nil {
			h.renderer = renderer
		}
	}
}

func WithLogger(logger interfaces.Logger) FrontOption {
	return func(h *FrontHandler) {
		h.logger = logging.Ensure(logger)
	}
}

// AllowExtraPath renders best matches that no item claimed. By default they
// answer 404.
func AllowExtraPath(allow bool) FrontOption {
	return func(h *FrontHandler) {
		h.allowExtraPath = allow
	}
}

func NewFrontHandler(resolver Resolver, proxies ProxyFactory, templates *regions.Registry, opts ...FrontOption) *FrontHandler {
	h := &FrontHandler{
		resolver:  resolver,
		proxies:   proxies,
		templates: templates,
		renderer:  DefaultRenderer(),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *FrontHandler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	ctx := r.Context()
	logger := h.logger.WithFields(map[string]any{"path": r.URL.Path})

	match, err := h.resolver.Resolve(ctx, r.URL.Path)
	if err != nil {
		if errors.Is(err, pages.ErrPageNotFound) {
			nethttp.NotFound(w, r)
			return
		}
		logger.Error("front.resolve.failed", "error", err)
		nethttp.Error(w, nethttp.StatusText(nethttp.StatusInternalServerError), nethttp.StatusInternalServerError)
		return
	}

	if target, ok := match.Redirect(); ok {
		logger.Debug("front.redirect", "page_id", match.Page.ID, "target", target)
		nethttp.Redirect(w, r, target, nethttp.StatusFound)
		return
	}

	ctx = WithMatch(ctx, match)
	r = r.WithContext(ctx)
	if match.ExtraPath != "" {
		w.Header().Set(ExtraPathHeader, match.ExtraPath)
	}
	logger = logging.WithPageContext(logger, match.Page.ID.String(), match.Page.CachedURL, "")

	p := h.proxies.New(match.Page)
	handler, err := p.Process(ctx, r)
	if err != nil {
		h.fail(w, logger, "front.process.failed", err)
		return
	}
	if handler != nil {
		handler.ServeHTTP(w, r)
		return
	}
	if match.ExtraPath != "" && !h.allowExtraPath {
		nethttp.NotFound(w, r)
		return
	}

	tpl, ok := h.templates.Template(match.Page.TemplateKey)
	if !ok {
		h.fail(w, logger, "front.template.missing", pages.ErrTemplateUnknown)
		return
	}
	view := PageView{
		Page:      match.Page,
		Template:  tpl,
		Regions:   make(map[string]template.HTML, len(tpl.Regions)),
		ExtraPath: match.ExtraPath,
	}
	values := map[string]any{}
	for _, region := range tpl.Regions {
		html, err := p.RenderRegion(ctx, region.Key, contenttypes.RenderContext{Request: r, Values: values})
		if err != nil {
			h.fail(w, logger, "front.render.failed", err)
			return
		}
		view.Regions[region.Key] = template.HTML(html)
	}

	var body bytes.Buffer
	if err := h.renderer.RenderPage(&body, view); err != nil {
		h.fail(w, logger, "front.render.failed", err)
		return
	}
	if err := p.Finalize(ctx, r, w.Header()); err != nil {
		h.fail(w, logger, "front.finalize.failed", err)
		return
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(nethttp.StatusOK)
	_, _ = body.WriteTo(w)
}

func (h *FrontHandler) fail(w nethttp.ResponseWriter, logger interfaces.Logger, event string, err error) {
	logger.Error(event, "error", err)
	nethttp.Error(w, nethttp.StatusText(nethttp.StatusInternalServerError), nethttp.StatusInternalServerError)
}

var defaultLayout = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{with .Page.Language}}{{.}}{{else}}en{{end}}">
<head>
<meta charset="utf-8">
<title>{{with .Page.MetaTitle}}{{.}}{{else}}{{.Page.Title}}{{end}}</title>
{{with .Page.MetaDescription}}<meta name="description" content="{{.}}">
{{end}}</head>
<body data-template="{{.Template.Key}}">
{{range .Template.Regions}}<div class="region" data-region="{{.Key}}">{{$.Region .Key}}</div>
{{end}}</body>
</html>
`))

// DefaultRenderer lays the regions out in template order.
func DefaultRenderer() Renderer {
	return RendererFunc(func(w io.Writer, view PageView) error {
		return defaultLayout.Execute(w, view)
	})
}
