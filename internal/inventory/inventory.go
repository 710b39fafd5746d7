// Package inventory caches, per page, which content types hold items in
// which regions so region lookups can skip tables known to be empty.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagetree/internal/logging"
	"github.com/goliatone/go-pagetree/pkg/interfaces"
)

const DefaultTTL = 10 * time.Minute

var ErrProviderRequired = errors.New("inventory: cache provider is required")

// Snapshot maps region keys to the names of the content types that have at
// least one item there.
type Snapshot struct {
	PageID  uuid.UUID           `json:"page_id"`
	Regions map[string][]string `json:"regions"`
}

// NewSnapshot returns an empty snapshot for pageID.
func NewSnapshot(pageID uuid.UUID) Snapshot {
	return Snapshot{PageID: pageID, Regions: map[string][]string{}}
}

// Add records that typeName has content in region.
func (s *Snapshot) Add(region, typeName string) {
	if s.Regions == nil {
		s.Regions = map[string][]string{}
	}
	if slices.Contains(s.Regions[region], typeName) {
		return
	}
	s.Regions[region] = append(s.Regions[region], typeName)
}

// Has reports whether typeName has content in region.
func (s Snapshot) Has(region, typeName string) bool {
	return slices.Contains(s.Regions[region], typeName)
}

// Cache stores snapshots on top of a byte oriented provider.
type Cache struct {
	provider interfaces.CacheProvider
	ttl      time.Duration
	prefix   string
	logger   interfaces.Logger
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithKeyPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(c *Cache) {
		c.logger = logging.Ensure(logger)
	}
}

func New(provider interfaces.CacheProvider, opts ...Option) (*Cache, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	c := &Cache{
		provider: provider,
		ttl:      DefaultTTL,
		prefix:   "pagetree:inventory:",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the snapshot stored for pageID. Undecodable entries are dropped
// and reported as a miss.
func (c *Cache) Get(ctx context.Context, pageID uuid.UUID) (Snapshot, bool, error) {
	raw, ok, err := c.provider.Get(ctx, c.key(pageID))
	if err != nil || !ok {
		return Snapshot{}, false, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		c.logger.Warn("inventory.decode_failed", "page_id", pageID, "error", err)
		_ = c.provider.Delete(ctx, c.key(pageID))
		return Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (c *Cache) Set(ctx context.Context, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("inventory: encode snapshot: %w", err)
	}
	return c.provider.Set(ctx, c.key(snap.PageID), raw, c.ttl)
}

// Invalidate drops the snapshots of pageIDs.
func (c *Cache) Invalidate(ctx context.Context, pageIDs ...uuid.UUID) error {
	if len(pageIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(pageIDs))
	for _, id := range pageIDs {
		keys = append(keys, c.key(id))
	}
	return c.provider.Delete(ctx, keys...)
}

func (c *Cache) key(pageID uuid.UUID) string {
	return c.prefix + pageID.String()
}
