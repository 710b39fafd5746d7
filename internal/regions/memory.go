package regions

import (
	"context"
	"slices"
	"sort"
	"sync"
)

// MemoryRegionRepository keeps region rows in process memory.
type MemoryRegionRepository struct {
	mu   sync.RWMutex
	rows map[string]*Region
}

func NewMemoryRegionRepository() *MemoryRegionRepository {
	return &MemoryRegionRepository{rows: make(map[string]*Region)}
}

func (m *MemoryRegionRepository) Create(_ context.Context, region *Region) (*Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *region
	m.rows[copied.Key] = &copied
	out := copied
	return &out, nil
}

func (m *MemoryRegionRepository) Update(_ context.Context, region *Region) (*Region, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[region.Key]; !ok {
		return nil, &NotFoundError{Resource: "region", Key: region.Key}
	}
	copied := *region
	m.rows[copied.Key] = &copied
	out := copied
	return &out, nil
}

func (m *MemoryRegionRepository) GetByKey(_ context.Context, key string) (*Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[key]
	if !ok {
		return nil, &NotFoundError{Resource: "region", Key: key}
	}
	out := *row
	return &out, nil
}

func (m *MemoryRegionRepository) List(_ context.Context) ([]*Region, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Region, 0, len(m.rows))
	for _, row := range m.rows {
		copied := *row
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// MemoryTemplateRepository keeps template rows in process memory.
type MemoryTemplateRepository struct {
	mu   sync.RWMutex
	rows map[string]*Template
}

func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{rows: make(map[string]*Template)}
}

func (m *MemoryTemplateRepository) Create(_ context.Context, template *Template) (*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[template.Key] = cloneTemplate(template)
	return cloneTemplate(template), nil
}

func (m *MemoryTemplateRepository) Update(_ context.Context, template *Template) (*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[template.Key]; !ok {
		return nil, &NotFoundError{Resource: "template", Key: template.Key}
	}
	m.rows[template.Key] = cloneTemplate(template)
	return cloneTemplate(template), nil
}

func (m *MemoryTemplateRepository) GetByKey(_ context.Context, key string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[key]
	if !ok {
		return nil, &NotFoundError{Resource: "template", Key: key}
	}
	return cloneTemplate(row), nil
}

func (m *MemoryTemplateRepository) List(_ context.Context) ([]*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Template, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, cloneTemplate(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// cloneTemplate drops the resolved Regions slice; persisted rows only keep keys.
func cloneTemplate(src *Template) *Template {
	if src == nil {
		return nil
	}
	copied := *src
	copied.RegionKeys = slices.Clone(src.RegionKeys)
	copied.Regions = nil
	return &copied
}
