package contenttypes

import (
	"context"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps content records in process memory, keyed by type table.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[uuid.UUID]Content
	fail   map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]map[uuid.UUID]Content),
		fail:   make(map[string]error),
	}
}

// FailReads makes every read of t return err. Passing nil clears it.
func (m *MemoryStore) FailReads(t *Type, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, t.Table())
		return
	}
	m.fail[t.Table()] = err
}

func (m *MemoryStore) EnsureSchema(_ context.Context, t *Type) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[t.Table()]; !ok {
		m.tables[t.Table()] = make(map[uuid.UUID]Content)
	}
	return nil
}

func (m *MemoryStore) List(_ context.Context, t *Type, pageID uuid.UUID, region string) ([]Content, error) {
	return m.filter(t, func(item *Item) bool {
		return item.PageID == pageID && item.Region == region
	})
}

func (m *MemoryStore) ListByPage(_ context.Context, t *Type, pageID uuid.UUID) ([]Content, error) {
	return m.filter(t, func(item *Item) bool {
		return item.PageID == pageID
	})
}

func (m *MemoryStore) Get(_ context.Context, t *Type, id uuid.UUID) (Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail[t.Table()]; err != nil {
		return nil, err
	}
	record, ok := m.tables[t.Table()][id]
	if !ok {
		return nil, &ItemNotFoundError{Type: t.Name(), ID: id.String()}
	}
	return cloneRecord(record), nil
}

func (m *MemoryStore) Create(_ context.Context, t *Type, record Content) (Content, error) {
	if !t.Owns(record) {
		return nil, ErrItemTypeMismatch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	table := m.tables[t.Table()]
	if table == nil {
		table = make(map[uuid.UUID]Content)
		m.tables[t.Table()] = table
	}
	stored := cloneRecord(record)
	table[stored.ContentItem().ID] = stored
	return cloneRecord(stored), nil
}

func (m *MemoryStore) Update(_ context.Context, t *Type, record Content) (Content, error) {
	if !t.Owns(record) {
		return nil, ErrItemTypeMismatch
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := record.ContentItem().ID
	if _, ok := m.tables[t.Table()][id]; !ok {
		return nil, &ItemNotFoundError{Type: t.Name(), ID: id.String()}
	}
	stored := cloneRecord(record)
	m.tables[t.Table()][id] = stored
	return cloneRecord(stored), nil
}

func (m *MemoryStore) Delete(_ context.Context, t *Type, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[t.Table()][id]; !ok {
		return &ItemNotFoundError{Type: t.Name(), ID: id.String()}
	}
	delete(m.tables[t.Table()], id)
	return nil
}

func (m *MemoryStore) DeleteByPages(_ context.Context, t *Type, pageIDs []uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, record := range m.tables[t.Table()] {
		if slices.Contains(pageIDs, record.ContentItem().PageID) {
			delete(m.tables[t.Table()], id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) filter(t *Type, keep func(*Item) bool) ([]Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail[t.Table()]; err != nil {
		return nil, err
	}
	out := []Content{}
	for _, record := range m.tables[t.Table()] {
		if keep(record.ContentItem()) {
			out = append(out, cloneRecord(record))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].ContentItem(), out[j].ContentItem()
		if a.Ordering != b.Ordering {
			return a.Ordering < b.Ordering
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

// cloneRecord makes a shallow copy of the struct behind record.
func cloneRecord(record Content) Content {
	value := reflect.ValueOf(record)
	if value.Kind() != reflect.Pointer || value.IsNil() {
		return record
	}
	copied := reflect.New(value.Elem().Type())
	copied.Elem().Set(value.Elem())
	return copied.Interface().(Content)
}
