package regions

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-pagetree/internal/identity"
	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

// Registry holds the template and region definitions of one page base.
// It is populated during bootstrap and read concurrently afterwards.
type Registry struct {
	mu            sync.RWMutex
	regions       map[string]*Region
	regionOrder   []string
	templates     map[string]*Template
	templateOrder []string
	logger        interfaces.Logger
	now           func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

func WithLogger(logger interfaces.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logging.Ensure(logger)
	}
}

func WithNow(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		regions:   make(map[string]*Region),
		templates: make(map[string]*Template),
		logger:    logging.NoOp(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterTemplates validates and stores template definitions. Regions are
// created the first time a key is seen and shared afterwards. The call is
// atomic: when any spec is invalid nothing is registered.
func (r *Registry) RegisterTemplates(specs ...TemplateSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	pendingRegions := map[string]*Region{}
	pendingOrder := []string{}
	pendingTemplates := make([]*Template, 0, len(specs))
	seenTemplates := map[string]struct{}{}

	lookup := func(key string) *Region {
		if region, ok := pendingRegions[key]; ok {
			return region
		}
		return r.regions[key]
	}

	for _, spec := range specs {
		key := strings.TrimSpace(spec.Key)
		if key == "" {
			return ErrTemplateKeyRequired
		}
		if _, exists := r.templates[key]; exists {
			return fmt.Errorf("%w: %s", ErrTemplateExists, key)
		}
		if _, dup := seenTemplates[key]; dup {
			return fmt.Errorf("%w: %s", ErrTemplateExists, key)
		}
		seenTemplates[key] = struct{}{}
		if len(spec.Regions) == 0 {
			return fmt.Errorf("%w: %s", ErrTemplateHasNoRegions, key)
		}

		tpl := &Template{
			ID:          identity.TemplateUUID(key),
			Key:         key,
			Title:       firstNonEmpty(spec.Title, key),
			Path:        strings.TrimSpace(spec.Path),
			Singleton:   spec.Singleton,
			EnforceLeaf: spec.EnforceLeaf,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		inTemplate := map[string]struct{}{}
		for _, rs := range spec.Regions {
			regionKey := strings.TrimSpace(rs.Key)
			if regionKey == "" {
				return fmt.Errorf("%w: template %s", ErrRegionKeyRequired, key)
			}
			if _, dup := inTemplate[regionKey]; dup {
				return fmt.Errorf("%w: %s in %s", ErrRegionDuplicate, regionKey, key)
			}
			inTemplate[regionKey] = struct{}{}

			region := lookup(regionKey)
			if region == nil {
				region = &Region{
					ID:        identity.RegionUUID(regionKey),
					Key:       regionKey,
					Title:     firstNonEmpty(rs.Title, regionKey),
					Inherited: rs.Inherited,
					CreatedAt: now,
					UpdatedAt: now,
				}
				pendingRegions[regionKey] = region
				pendingOrder = append(pendingOrder, regionKey)
			} else if region.Inherited != rs.Inherited {
				return &ConflictError{
					Region:   regionKey,
					Template: key,
					Existing: region.Inherited,
					Declared: rs.Inherited,
				}
			}
			tpl.Regions = append(tpl.Regions, region)
			tpl.RegionKeys = append(tpl.RegionKeys, regionKey)
		}
		pendingTemplates = append(pendingTemplates, tpl)
	}

	for _, key := range pendingOrder {
		r.regions[key] = pendingRegions[key]
		r.regionOrder = append(r.regionOrder, key)
	}
	for _, tpl := range pendingTemplates {
		r.templates[tpl.Key] = tpl
		r.templateOrder = append(r.templateOrder, tpl.Key)
		r.logger.Debug("registry.template.registered",
			"template", tpl.Key,
			"regions", tpl.RegionKeys,
			"singleton", tpl.Singleton,
			"enforce_leaf", tpl.EnforceLeaf,
		)
	}
	return nil
}

// Template returns the template registered under key.
func (r *Registry) Template(key string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[strings.TrimSpace(key)]
	return tpl, ok
}

// Region returns the region registered under key.
func (r *Registry) Region(key string) (*Region, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	region, ok := r.regions[strings.TrimSpace(key)]
	return region, ok
}

// Templates lists templates in registration order.
func (r *Registry) Templates() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Template, 0, len(r.templateOrder))
	for _, key := range r.templateOrder {
		out = append(out, r.templates[key])
	}
	return out
}

// Regions lists regions in first-declaration order.
func (r *Registry) Regions() []*Region {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Region, 0, len(r.regionOrder))
	for _, key := range r.regionOrder {
		out = append(out, r.regions[key])
	}
	return out
}

// Empty reports whether no template has been registered yet.
func (r *Registry) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates) == 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
