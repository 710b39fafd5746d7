// Package pagetree assembles a page tree with template regions and typed
// region content, and serves it over HTTP.
package pagetree

import (
	"context"
	nethttp "net/http"

	"github.com/google/uuid"

	pagescmd "github.com/goliatone/go-pagetree/internal/commands/pages"
	"github.com/goliatone/go-pagetree/internal/contenttypes"
	"github.com/goliatone/go-pagetree/internal/di"
	pagehttp "github.com/goliatone/go-pagetree/internal/http"
	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/goliatone/go-pagetree/internal/proxy"
	"github.com/goliatone/go-pagetree/internal/regions"
)

type (
	Page          = pages.Page
	PageInput     = pages.PageInput
	CreatePage    = pages.CreatePageRequest
	AddContent    = contenttypes.AddContentRequest
	Match         = pages.Match
	Tree          = pages.Tree
	PageService   = *pages.Service
	ContentItem   = contenttypes.Item
	Content       = contenttypes.Content
	ContentClass  = contenttypes.Class
	ContentType   = contenttypes.Type
	Options       = contenttypes.Options
	RenderContext = contenttypes.RenderContext
	Proxy         = proxy.Proxy
	Template      = regions.Template
	PageView      = pagehttp.PageView
	Renderer      = pagehttp.Renderer
	FrontOption   = pagehttp.FrontOption
	Option        = di.Option
	PageCommands  = *pagescmd.Handlers
)

// ContentService exports the region content service.
type ContentService = *contenttypes.Service

var (
	ErrPageNotFound      = pages.ErrPageNotFound
	ErrInvalidMove       = pages.ErrInvalidMove
	ErrURLCollision      = pages.ErrURLCollision
	ErrSingletonTemplate = pages.ErrSingletonTemplate
	ErrParentIsLeaf      = pages.ErrParentIsLeaf
	ErrUnknownRegion     = contenttypes.ErrUnknownRegion
	ErrRegistryNotReady  = proxy.ErrRegistryNotReady
)

var (
	WithBunDB          = di.WithBunDB
	WithLoggerProvider = di.WithLoggerProvider
	WithCacheProvider  = di.WithCacheProvider
	WithContentType    = di.WithContentType
	WithClock          = di.WithClock

	WithRenderer   = pagehttp.WithRenderer
	AllowExtraPath = pagehttp.AllowExtraPath

	// ExtraPath returns the unmatched path suffix inside item request hooks.
	ExtraPath = pagehttp.ExtraPath
)

// Module is the top level runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a module from cfg. Registries are sealed on return.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

func (m *Module) Pages() PageService {
	return m.container.PageService()
}

func (m *Module) Content() ContentService {
	return m.container.ContentService()
}

// Commands returns the validated page command handlers.
func (m *Module) Commands() PageCommands {
	return m.container.PageCommands()
}

func (m *Module) Tree(ctx context.Context) (*Tree, error) {
	return m.container.PageService().Tree(ctx)
}

// Resolve maps a request path onto a live page.
func (m *Module) Resolve(ctx context.Context, path string) (*Match, error) {
	return m.container.Resolver().Resolve(ctx, path)
}

// Proxy returns a request scoped region reader for page.
func (m *Module) Proxy(page *Page) *Proxy {
	return m.container.ProxyFactory().New(page)
}

// ProxyFor loads the page with id and wraps it.
func (m *Module) ProxyFor(ctx context.Context, id uuid.UUID) (*Proxy, error) {
	page, err := m.container.PageService().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.Proxy(page), nil
}

func (m *Module) Template(key string) (*Template, bool) {
	return m.container.Templates().Template(key)
}

// Handler returns the chi router serving the page tree.
func (m *Module) Handler(opts ...FrontOption) nethttp.Handler {
	opts = append([]FrontOption{
		pagehttp.WithLogger(logging.HTTPLogger(m.container.LoggerProvider())),
	}, opts...)
	front := pagehttp.NewFrontHandler(
		m.container.Resolver(),
		m.container.ProxyFactory(),
		m.container.Templates(),
		opts...,
	)
	return pagehttp.NewRouter(front)
}

// Close releases connections opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
