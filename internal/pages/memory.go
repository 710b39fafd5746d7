package pages

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory page store for tests and scaffolding.
type MemoryRepository struct {
	mu    sync.RWMutex
	pages map[uuid.UUID]*Page
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{pages: make(map[uuid.UUID]*Page)}
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return clonePage(page), nil
}

func (m *MemoryRepository) List(_ context.Context) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Page, 0, len(m.pages))
	for _, page := range m.pages {
		out = append(out, clonePage(page))
	}
	sortPages(out)
	return out, nil
}

func (m *MemoryRepository) ListByCachedURLs(_ context.Context, urls []string) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Page
	for _, page := range m.pages {
		if slices.Contains(urls, page.CachedURL) {
			out = append(out, clonePage(page))
		}
	}
	sortPages(out)
	return out, nil
}

// SaveTree applies change under one lock so readers never observe a
// partially recomputed subtree.
func (m *MemoryRepository) SaveTree(_ context.Context, change TreeChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, page := range change.Updated {
		if _, ok := m.pages[page.ID]; !ok {
			return &NotFoundError{Key: page.ID.String()}
		}
	}
	if change.Created != nil {
		m.pages[change.Created.ID] = clonePage(change.Created)
	}
	for _, page := range change.Updated {
		m.pages[page.ID] = clonePage(page)
	}
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if _, ok := m.pages[id]; !ok {
			return &NotFoundError{Key: id.String()}
		}
	}
	for _, id := range ids {
		delete(m.pages, id)
	}
	return nil
}

func sortPages(pages []*Page) {
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Level != pages[j].Level {
			return pages[i].Level < pages[j].Level
		}
		if pages[i].Position != pages[j].Position {
			return pages[i].Position < pages[j].Position
		}
		return pages[i].ID.String() < pages[j].ID.String()
	})
}
