package inventory

import (
	"context"
	"errors"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
)

var errNotCached = errors.New("inventory: entry not cached")

// ServiceProvider keeps inventory entries in a go-repository-cache service.
// Entries live for the service TTL; the ttl passed to Set is ignored.
type ServiceProvider struct {
	service repocache.CacheService
}

func NewServiceProvider(service repocache.CacheService) *ServiceProvider {
	return &ServiceProvider{service: service}
}

// NewMemoryProvider returns an in-process provider on a dedicated cache
// service. Early refresh is disabled so entries only change through Set and
// Delete.
func NewMemoryProvider(ttl time.Duration) (*ServiceProvider, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cfg := repocache.DefaultConfig()
	cfg.TTL = ttl
	cfg.EarlyRefresh = nil
	cfg.MissingRecordStorage = false
	service, err := repocache.NewCacheService(cfg)
	if err != nil {
		return nil, err
	}
	return NewServiceProvider(service), nil
}

func (p *ServiceProvider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := repocache.GetOrFetch(ctx, p.service, key, func(context.Context) ([]byte, error) {
		return nil, errNotCached
	})
	switch {
	case errors.Is(err, errNotCached):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	case value == nil:
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (p *ServiceProvider) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	stored := append([]byte(nil), value...)
	fetch := func(context.Context) ([]byte, error) { return stored, nil }

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if err = p.service.Delete(ctx, key); err != nil {
			return err
		}
		// a concurrent Get may share the in-flight fetch and report a miss
		if _, err = repocache.GetOrFetch(ctx, p.service, key, fetch); !errors.Is(err, errNotCached) {
			return err
		}
	}
	return err
}

func (p *ServiceProvider) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return p.service.InvalidateKeys(ctx, keys)
}
