package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagetree/internal/contenttypes"
	"github.com/goliatone/go-pagetree/internal/inventory"
	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/internal/pages"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

var ErrRegistryNotReady = errors.New("proxy: content type registry is not sealed")

// PageSource loads parent pages while walking inherited regions.
type PageSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*pages.Page, error)
}

// Inventory reports which types hold content per page region.
type Inventory interface {
	Get(ctx context.Context, pageID uuid.UUID) (inventory.Snapshot, bool, error)
	Set(ctx context.Context, snap inventory.Snapshot) error
}

// Factory builds request scoped proxies over shared registries.
type Factory struct {
	registry      *contenttypes.Registry
	base          *contenttypes.Base
	store         contenttypes.Store
	pages         PageSource
	inventory     Inventory
	requireSealed bool
	logger        interfaces.Logger
}

type Option func(*Factory)

func WithInventory(inv Inventory) Option {
	return func(f *Factory) {
		f.inventory = inv
	}
}

// RequireSealed makes proxies refuse to read until the registry is sealed.
func RequireSealed(required bool) Option {
	return func(f *Factory) {
		f.requireSealed = required
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(f *Factory) {
		f.logger = logging.Ensure(logger)
	}
}

func NewFactory(registry *contenttypes.Registry, base *contenttypes.Base, store contenttypes.Store, source PageSource, opts ...Option) *Factory {
	f := &Factory{
		registry: registry,
		base:     base,
		store:    store,
		pages:    source,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// New returns a proxy for page. Each proxy caches region lookups for its own
// lifetime only.
func (f *Factory) New(page *pages.Page) *Proxy {
	return &Proxy{
		factory: f,
		page:    page,
		regions: make(map[string][]entry),
	}
}

type entry struct {
	typ     *contenttypes.Type
	content contenttypes.Content
}

// Proxy exposes the content of one page by region key.
type Proxy struct {
	factory *Factory

	page    *pages.Page
	mu      sync.Mutex
	regions map[string][]entry
}

func (p *Proxy) Page() *pages.Page { return p.page }

// Region returns the items of region key in display order. Inherited regions
// that are empty on the page are taken from the nearest ancestor that has
// items for them.
func (p *Proxy) Region(ctx context.Context, key string) ([]contenttypes.Content, error) {
	entries, err := p.region(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make([]contenttypes.Content, len(entries))
	for i, e := range entries {
		out[i] = e.content
	}
	return out, nil
}

func (p *Proxy) region(ctx context.Context, key string) ([]entry, error) {
	f := p.factory
	if f.requireSealed && !f.registry.Sealed() {
		return nil, ErrRegistryNotReady
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if cached, ok := p.regions[key]; ok {
		return cached, nil
	}

	region, ok := f.base.Templates.Region(key)
	if !ok {
		p.regions[key] = []entry{}
		return p.regions[key], nil
	}

	current := p.page
	var entries []entry
	for {
		var err error
		entries, err = f.collect(ctx, current.ID, key)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 || !region.Inherited || current.IsRoot() {
			break
		}
		parent, err := f.pages.GetByID(ctx, *current.ParentID)
		if err != nil {
			return nil, fmt.Errorf("load parent of %s: %w", current.ID, err)
		}
		current = parent
	}
	if entries == nil {
		entries = []entry{}
	}
	p.regions[key] = entries
	return entries, nil
}

// collect queries every registered type for (pageID, region) and orders the
// union by ordering, registration index, then id.
func (f *Factory) collect(ctx context.Context, pageID uuid.UUID, region string) ([]entry, error) {
	snap, known := f.snapshot(ctx, pageID)

	var entries []entry
	for _, t := range f.registry.Types(f.base.Name) {
		if known && !snap.Has(region, t.Name()) {
			continue
		}
		records, err := f.store.List(ctx, t, pageID, region)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			entries = append(entries, entry{typ: t, content: record})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		ai, bi := a.content.ContentItem(), b.content.ContentItem()
		if ai.Ordering != bi.Ordering {
			return ai.Ordering < bi.Ordering
		}
		if a.typ.Index() != b.typ.Index() {
			return a.typ.Index() < b.typ.Index()
		}
		return ai.ID.String() < bi.ID.String()
	})
	return entries, nil
}

// snapshot returns the inventory for pageID, building it on a miss. Cache
// failures degrade to querying every type.
func (f *Factory) snapshot(ctx context.Context, pageID uuid.UUID) (inventory.Snapshot, bool) {
	if f.inventory == nil {
		return inventory.Snapshot{}, false
	}
	snap, ok, err := f.inventory.Get(ctx, pageID)
	if err != nil {
		f.logger.Warn("proxy.inventory.get_failed", "page_id", pageID, "error", err)
		return inventory.Snapshot{}, false
	}
	if ok {
		return snap, true
	}

	snap = inventory.NewSnapshot(pageID)
	for _, t := range f.registry.Types(f.base.Name) {
		records, err := f.store.ListByPage(ctx, t, pageID)
		if err != nil {
			f.logger.Warn("proxy.inventory.build_failed", "page_id", pageID, "content_type", t.Name(), "error", err)
			return inventory.Snapshot{}, false
		}
		for _, record := range records {
			snap.Add(record.ContentItem().Region, t.Name())
		}
	}
	if err := f.inventory.Set(ctx, snap); err != nil {
		f.logger.Warn("proxy.inventory.set_failed", "page_id", pageID, "error", err)
	}
	return snap, true
}

// All returns the items of every region of the page template keyed by
// region.
func (p *Proxy) All(ctx context.Context) (map[string][]contenttypes.Content, error) {
	out := make(map[string][]contenttypes.Content)
	for _, key := range p.regionKeys() {
		items, err := p.Region(ctx, key)
		if err != nil {
			return nil, err
		}
		out[key] = items
	}
	return out, nil
}

// RenderRegion renders every item of region key and concatenates the
// output.
func (p *Proxy) RenderRegion(ctx context.Context, key string, rc contenttypes.RenderContext) (string, error) {
	entries, err := p.region(ctx, key)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, e := range entries {
		itemCtx := rc
		itemCtx.Type = e.typ
		itemCtx.PageID = p.page.ID
		itemCtx.PageURL = p.page.CachedURL
		itemCtx.Region = key
		html, err := e.content.Render(ctx, itemCtx)
		if err != nil {
			return "", fmt.Errorf("render %s %s: %w", e.typ.Name(), e.content.ContentItem().ID, err)
		}
		b.WriteString(html)
	}
	return b.String(), nil
}

// Process runs the request hooks of every item on the page. The first
// handler returned takes over the response.
func (p *Proxy) Process(ctx context.Context, r *http.Request) (http.Handler, error) {
	for _, key := range p.regionKeys() {
		entries, err := p.region(ctx, key)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			processor, ok := e.content.(contenttypes.Processor)
			if !ok {
				continue
			}
			handler, err := processor.Process(ctx, r)
			if err != nil {
				return nil, err
			}
			if handler != nil {
				return handler, nil
			}
		}
	}
	return nil, nil
}

// Finalize runs the response hooks of every item on the page.
func (p *Proxy) Finalize(ctx context.Context, r *http.Request, header http.Header) error {
	for _, key := range p.regionKeys() {
		entries, err := p.region(ctx, key)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if finalizer, ok := e.content.(contenttypes.Finalizer); ok {
				if err := finalizer.Finalize(ctx, r, header); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (p *Proxy) regionKeys() []string {
	tpl, ok := p.factory.base.Templates.Template(p.page.TemplateKey)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(tpl.Regions))
	for _, region := range tpl.Regions {
		keys = append(keys, region.Key)
	}
	return keys
}
