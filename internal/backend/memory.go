package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/stac-utils/stac-go/internal/stac"
)

// Memory is the in-memory reference Backend named in spec.md §4.8 (its own
// Non-goals exclude concrete production backends). Structurally grounded
// on the teacher's RWMutex-guarded-map idiom (internal/backend/asf.go in
// the teacher repo) and behaviorally on the Rust original's MemoryBackend
// fixture (_examples/original_source/crates/server/src/api.rs tests).
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*stac.Collection
	items       map[string][]*stac.Item // collection id -> items, insertion order
	itemIndex   map[string]map[string]int
}

// NewMemory constructs an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		collections: map[string]*stac.Collection{},
		items:       map[string][]*stac.Item{},
		itemIndex:   map[string]map[string]int{},
	}
}

func (m *Memory) Collections(ctx context.Context) ([]*stac.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*stac.Collection, 0, len(m.collections))
	for _, c := range m.collections {
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) Collection(ctx context.Context, id string) (*stac.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (m *Memory) AddCollection(ctx context.Context, c *stac.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[c.ID] = c
	if _, ok := m.items[c.ID]; !ok {
		m.items[c.ID] = nil
		m.itemIndex[c.ID] = map[string]int{}
	}
	return nil
}

func (m *Memory) AddItem(ctx context.Context, item *stac.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addItemLocked(item)
}

func (m *Memory) addItemLocked(item *stac.Item) error {
	if item.Collection == "" {
		return fmt.Errorf("backend: item %q has no collection", item.ID)
	}
	if _, ok := m.itemIndex[item.Collection]; !ok {
		m.itemIndex[item.Collection] = map[string]int{}
	}
	if idx, exists := m.itemIndex[item.Collection][item.ID]; exists {
		m.items[item.Collection][idx] = item
		return nil
	}
	m.items[item.Collection] = append(m.items[item.Collection], item)
	m.itemIndex[item.Collection][item.ID] = len(m.items[item.Collection]) - 1
	return nil
}

func (m *Memory) AddItems(ctx context.Context, items []*stac.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		if err := m.addItemLocked(it); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) Item(ctx context.Context, collectionID, id string) (*stac.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.itemIndex[collectionID]
	if !ok {
		return nil, nil
	}
	i, ok := idx[id]
	if !ok {
		return nil, nil
	}
	return m.items[collectionID][i], nil
}

// Items lists a single collection's items with limit/skip pagination,
// the Open Question resolution recorded in DESIGN.md (the Rust original's
// additional_fields "skip" mechanism rather than the ASF-specific
// timestamp+seen-ids cursor scheme).
func (m *Memory) Items(ctx context.Context, collectionID string, req stac.Items) (*stac.ItemCollection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.collections[collectionID]; !ok {
		return nil, nil
	}
	items := m.items[collectionID]
	return paginate(items, req)
}

// Search runs req across every matching collection, applying the same
// limit/skip pagination as Items.
func (m *Memory) Search(ctx context.Context, req stac.Search) (*stac.ItemCollection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pool []*stac.Item
	if len(req.Collections) > 0 {
		for _, cid := range req.Collections {
			pool = append(pool, m.items[cid]...)
		}
	} else {
		for _, items := range m.items {
			pool = append(pool, items...)
		}
	}

	if len(req.IDs) > 0 {
		wanted := map[string]bool{}
		for _, id := range req.IDs {
			wanted[id] = true
		}
		var filtered []*stac.Item
		for _, it := range pool {
			if wanted[it.ID] {
				filtered = append(filtered, it)
			}
		}
		pool = filtered
	}

	return paginate(pool, req.Items)
}

func (m *Memory) HasItemSearch() bool { return true }
func (m *Memory) HasFilter() bool     { return false }

func paginate(items []*stac.Item, req stac.Items) (*stac.ItemCollection, error) {
	var matched []*stac.Item
	for _, it := range items {
		ok, err := req.Matches(it)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, it)
		}
	}

	skip := skipOf(req)
	limit := 10
	if req.Limit != nil {
		limit = *req.Limit
	}

	if skip > len(matched) {
		skip = len(matched)
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	page := matched[skip:end]

	total := len(matched)
	ic := stac.NewItemCollection(page)
	ic.NumberMatched = &total

	if end < total {
		ic.Next = map[string]any{"skip": end}
	}
	if skip > 0 {
		prevSkip := skip - limit
		if prevSkip < 0 {
			prevSkip = 0
		}
		ic.Prev = map[string]any{"skip": prevSkip}
	}
	return ic, nil
}

func skipOf(req stac.Items) int {
	if req.AdditionalFields == nil {
		return 0
	}
	v, ok := req.AdditionalFields["skip"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case string:
		var out int
		_, _ = fmt.Sscanf(n, "%d", &out)
		return out
	default:
		return 0
	}
}
