package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-pagetree/internal/commands"
	contentcmd "github.com/goliatone/go-pagetree/internal/commands/content"
	pagescmd "github.com/goliatone/go-pagetree/internal/commands/pages"
	"github.com/goliatone/go-pagetree/internal/contenttypes"
	"github.com/goliatone/go-pagetree/internal/inventory"
	"github.com/goliatone/go-pagetree/internal/kinds"
	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/goliatone/go-pagetree/internal/proxy"
	"github.com/goliatone/go-pagetree/internal/regions"
	"github.com/goliatone/go-pagetree/internal/runtimeconfig"
	"github.com/goliatone/go-pagetree/internal/storage"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// BaseName is the content base every page content type binds to. Content
// tables are named page_<kind>.
const BaseName = "page"

// ContentTypeBinding registers a host defined content class.
type ContentTypeBinding struct {
	Class   contenttypes.Class
	Options contenttypes.Options
}

// Container owns the registries and services of one page tree module.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger
	now            func() time.Time

	db     *bun.DB
	ownsDB bool

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	cacheProvider interfaces.CacheProvider
	redisClient   *redis.Client

	templates    *regions.Registry
	contentTypes *contenttypes.Registry
	base         *contenttypes.Base
	extraTypes   []ContentTypeBinding
	syncResult   regions.SyncResult

	store      contenttypes.Store
	pageRepo   pages.Repository
	pageSvc    *pages.Service
	contentSvc *contenttypes.Service
	resolver   *pages.Resolver
	inventory  *inventory.Cache
	proxies    *proxy.Factory

	pageCommands  *pagescmd.Handlers
	moveContent   *contentcmd.MoveContentHandler
	deleteContent *contentcmd.DeleteContentHandler
}

// Option mutates the container before it is assembled.
type Option func(*Container)

// WithBunDB uses db instead of opening one from the storage config. The
// caller keeps ownership.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.db = db
	}
}

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCacheProvider overrides the inventory cache backend.
func WithCacheProvider(provider interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.cacheProvider = provider
	}
}

// WithRepositoryCache overrides the go-repository-cache collaborators used
// for the region and template repositories.
func WithRepositoryCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.now = now
		}
	}
}

// WithContentType registers a host defined content class after the
// configured kinds.
func WithContentType(class contenttypes.Class, opts contenttypes.Options) Option {
	return func(c *Container) {
		c.extraTypes = append(c.extraTypes, ContentTypeBinding{Class: class, Options: opts})
	}
}

// NewContainer validates cfg and assembles the module. Registries are
// sealed before it returns.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	if c.loggerProvider == nil {
		provider, err := NewLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}
	c.logger = logging.RegistryLogger(c.loggerProvider)

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"templates", c.configureTemplates},
		{"storage", c.configureStorage},
		{"content_types", c.configureContentTypes},
		{"inventory", c.configureInventory},
		{"services", c.configureServices},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("di: %s: %w", step.name, err)
		}
	}

	c.logger.Info("container.ready",
		"templates", len(c.templates.Templates()),
		"content_types", len(c.contentTypes.Types(BaseName)),
		"persistent", c.db != nil,
		"inventory", c.inventory != nil,
	)
	return c, nil
}

func (c *Container) configureTemplates(context.Context) error {
	c.templates = regions.NewRegistry(
		regions.WithLogger(c.logger),
		regions.WithNow(c.now),
	)
	specs := make([]regions.TemplateSpec, 0, len(c.Config.Templates))
	for _, tpl := range c.Config.Templates {
		spec := regions.TemplateSpec{
			Key:         tpl.Key,
			Title:       tpl.Title,
			Path:        tpl.Path,
			Singleton:   tpl.Singleton,
			EnforceLeaf: tpl.EnforceLeaf,
		}
		for _, region := range tpl.Regions {
			spec.Regions = append(spec.Regions, regions.RegionSpec{
				Key:       region.Key,
				Title:     region.Title,
				Inherited: region.Inherited,
			})
		}
		specs = append(specs, spec)
	}
	return c.templates.RegisterTemplates(specs...)
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.db == nil && strings.TrimSpace(c.Config.Storage.Driver) != "" {
		db, err := storage.Open(ctx, storage.Config{
			Driver:       c.Config.Storage.Driver,
			DSN:          c.Config.Storage.DSN,
			MaxOpenConns: c.Config.Storage.MaxOpenConns,
		})
		if err != nil {
			return err
		}
		c.db = db
		c.ownsDB = true
	}
	if c.db == nil {
		return nil
	}

	if c.Config.Storage.Migrate {
		if err := storage.Migrate(ctx, c.db, c.Config.Storage.Driver); err != nil {
			return err
		}
	}

	if c.cacheService == nil && c.Config.Cache.Enabled {
		cacheCfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cacheCfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cacheCfg)
		if err != nil {
			return fmt.Errorf("repository cache: %w", err)
		}
		c.cacheService = service
	}
	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}

	result, err := c.templates.Sync(ctx,
		regions.NewBunRegionRepositoryWithCache(c.db, c.cacheService, c.keySerializer),
		regions.NewBunTemplateRepositoryWithCache(c.db, c.cacheService, c.keySerializer),
	)
	if err != nil {
		return err
	}
	c.syncResult = result
	return nil
}

func (c *Container) configureContentTypes(context.Context) error {
	c.contentTypes = contenttypes.NewRegistry(contenttypes.WithLogger(c.logger))
	c.base = contenttypes.NewBase(BaseName, c.templates)

	selected := make([]kinds.Registration, 0, len(c.Config.ContentTypes))
	for _, ct := range c.Config.ContentTypes {
		selected = append(selected, kinds.Registration{
			Name:    strings.TrimSpace(ct.Kind),
			Options: contenttypes.Options(ct.Options),
		})
	}
	if _, err := kinds.Register(c.contentTypes, c.base, selected...); err != nil {
		return err
	}
	for _, binding := range c.extraTypes {
		if _, err := c.contentTypes.CreateContentType(c.base, binding.Class, binding.Options); err != nil {
			return err
		}
	}
	c.contentTypes.Seal()
	return nil
}

func (c *Container) configureInventory(ctx context.Context) error {
	if !c.Config.Cache.Enabled {
		return nil
	}
	if c.cacheProvider == nil {
		switch strings.ToLower(strings.TrimSpace(c.Config.Cache.Provider)) {
		case "redis":
			client, err := inventory.ConnectRedis(ctx, inventory.RedisConfig{
				Addr:     c.Config.Cache.Redis.Addr,
				Password: c.Config.Cache.Redis.Password,
				DB:       c.Config.Cache.Redis.DB,
			})
			if err != nil {
				return err
			}
			c.redisClient = client
			c.cacheProvider = inventory.NewRedisProvider(client)
		default:
			provider, err := inventory.NewMemoryProvider(c.Config.Cache.TTL)
			if err != nil {
				return fmt.Errorf("inventory cache: %w", err)
			}
			c.cacheProvider = provider
		}
	}

	opts := []inventory.Option{inventory.WithLogger(logging.ProxyLogger(c.loggerProvider))}
	if c.Config.Cache.TTL > 0 {
		opts = append(opts, inventory.WithTTL(c.Config.Cache.TTL))
	}
	if prefix := strings.TrimSpace(c.Config.Cache.KeyPrefix); prefix != "" {
		opts = append(opts, inventory.WithKeyPrefix(prefix))
	}
	cache, err := inventory.New(c.cacheProvider, opts...)
	if err != nil {
		return err
	}
	c.inventory = cache
	return nil
}

func (c *Container) configureServices(ctx context.Context) error {
	if c.db != nil {
		c.store = contenttypes.NewBunStore(c.db)
		c.pageRepo = pages.NewBunRepositoryWithCache(c.db, c.cacheService, c.keySerializer)
	} else {
		c.store = contenttypes.NewMemoryStore()
		c.pageRepo = pages.NewMemoryRepository()
	}

	contentOpts := []contenttypes.ServiceOption{
		contenttypes.WithNow(c.now),
		contenttypes.WithServiceLogger(logging.ContentLogger(c.loggerProvider)),
	}
	pageOpts := []pages.ServiceOption{
		pages.WithClock(c.now),
		pages.WithLogger(logging.PagesLogger(c.loggerProvider)),
	}
	if c.inventory != nil {
		contentOpts = append(contentOpts, contenttypes.WithInvalidator(c.inventory))
		pageOpts = append(pageOpts, pages.WithInvalidator(c.inventory))
	}

	c.contentSvc = contenttypes.NewService(c.contentTypes, c.base, c.store, pageTemplates{c}, contentOpts...)
	pageOpts = append(pageOpts, pages.WithContentCleaner(c.contentSvc))
	c.pageSvc = pages.NewService(c.pageRepo, c.templates, pageOpts...)

	if err := c.contentSvc.EnsureSchemas(ctx); err != nil {
		return err
	}

	c.resolver = pages.NewResolver(c.pageRepo,
		pages.WithResolverClock(c.now),
		pages.WithResolverLogger(logging.ResolverLogger(c.loggerProvider)),
	)

	proxyOpts := []proxy.Option{
		proxy.RequireSealed(c.Config.Registry.RequireSealed),
		proxy.WithLogger(logging.ProxyLogger(c.loggerProvider)),
	}
	if c.inventory != nil {
		proxyOpts = append(proxyOpts, proxy.WithInventory(c.inventory))
	}
	c.proxies = proxy.NewFactory(c.contentTypes, c.base, c.store, c.pageRepo, proxyOpts...)

	c.pageCommands = pagescmd.NewHandlers(c.pageSvc, commands.CommandLogger(c.loggerProvider, "pages"))
	contentLogger := commands.CommandLogger(c.loggerProvider, "content")
	c.moveContent = contentcmd.NewMoveContentHandler(c.contentSvc, contentLogger)
	c.deleteContent = contentcmd.NewDeleteContentHandler(c.contentSvc, contentLogger)
	return nil
}

// pageTemplates defers the page lookup until the page service exists.
type pageTemplates struct {
	c *Container
}

func (p pageTemplates) PageTemplate(ctx context.Context, id uuid.UUID) (string, error) {
	if p.c.pageSvc == nil {
		return "", pages.ErrRepositoryUnavailable
	}
	return p.c.pageSvc.PageTemplate(ctx, id)
}

// Close releases the connections the container opened itself.
func (c *Container) Close() error {
	var errs []error
	if c.redisClient != nil {
		errs = append(errs, c.redisClient.Close())
		c.redisClient = nil
	}
	if c.db != nil && c.ownsDB {
		errs = append(errs, c.db.Close())
		c.db = nil
	}
	return errors.Join(errs...)
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
func (c *Container) DB() *bun.DB                               { return c.db }
func (c *Container) Templates() *regions.Registry              { return c.templates }
func (c *Container) ContentTypes() *contenttypes.Registry      { return c.contentTypes }
func (c *Container) Base() *contenttypes.Base                  { return c.base }
func (c *Container) Store() contenttypes.Store                 { return c.store }
func (c *Container) PageRepository() pages.Repository          { return c.pageRepo }
func (c *Container) PageService() *pages.Service               { return c.pageSvc }
func (c *Container) ContentService() *contenttypes.Service     { return c.contentSvc }
func (c *Container) Resolver() *pages.Resolver                 { return c.resolver }
func (c *Container) ProxyFactory() *proxy.Factory              { return c.proxies }
func (c *Container) PageCommands() *pagescmd.Handlers          { return c.pageCommands }
func (c *Container) SyncResult() regions.SyncResult            { return c.syncResult }

// Inventory returns nil when the inventory cache is disabled.
func (c *Container) Inventory() *inventory.Cache { return c.inventory }

func (c *Container) MoveContentHandler() *contentcmd.MoveContentHandler {
	return c.moveContent
}

func (c *Container) DeleteContentHandler() *contentcmd.DeleteContentHandler {
	return c.deleteContent
}
