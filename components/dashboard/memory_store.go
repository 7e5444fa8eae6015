package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryItemStore is a concurrency-safe ItemStore and CategoryOrderRepository
// used by tests and by servers started without a database.
type InMemoryItemStore struct {
	mu    sync.RWMutex
	items map[string]Item
	order CategoryOrder
	now   func() time.Time
}

// NewInMemoryItemStore creates an empty store.
func NewInMemoryItemStore() *InMemoryItemStore {
	return &InMemoryItemStore{
		items: make(map[string]Item),
		order: CategoryOrder{},
		now:   time.Now,
	}
}

// ListItems returns every item ordered by category and order index.
func (s *InMemoryItemStore) ListItems(context.Context) ([]Item, error) {
	s.mu.RLock()
	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	s.mu.RUnlock()
	sortStored(out)
	return out, nil
}

// GetItem returns one item or ErrNotFound.
func (s *InMemoryItemStore) GetItem(_ context.Context, id string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return item, nil
}

// CreateItem stores item, assigning an id and creation time when missing.
func (s *InMemoryItemStore) CreateItem(_ context.Context, item Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(item), nil
}

func (s *InMemoryItemStore) insertLocked(item Item) Item {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		// Nudge by one nanosecond per item so bulk inserts keep their order.
		item.CreatedAt = s.now().Add(time.Duration(len(s.items)))
	}
	s.items[item.ID] = item
	return item
}

// UpdateItem applies patch to the stored item.
func (s *InMemoryItemStore) UpdateItem(_ context.Context, id string, patch ItemPatch) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	item = patch.Apply(item)
	s.items[id] = item
	return item, nil
}

// DeleteItem removes an item.
func (s *InMemoryItemStore) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// ReplaceItems inserts items with fresh ids, first clearing the store when
// replaceExisting is set.
func (s *InMemoryItemStore) ReplaceItems(_ context.Context, items []Item, replaceExisting bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if replaceExisting {
		s.items = make(map[string]Item, len(items))
	}
	for _, item := range items {
		item.ID = ""
		item.CreatedAt = time.Time{}
		s.insertLocked(item)
	}
	return len(items), nil
}

// CategoryOrder returns a copy of the stored ranks.
func (s *InMemoryItemStore) CategoryOrder(context.Context) (CategoryOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Clone(), nil
}

// SaveCategoryOrder upserts the given ranks.
func (s *InMemoryItemStore) SaveCategoryOrder(_ context.Context, order CategoryOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, rank := range order {
		s.order[name] = rank
	}
	return nil
}

// DeleteCategoryOrder removes a category's rank.
func (s *InMemoryItemStore) DeleteCategoryOrder(_ context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.order, category)
	return nil
}

// EnsureCategory appends category after the highest rank when it has none.
func (s *InMemoryItemStore) EnsureCategory(_ context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.order[category]; ok {
		return nil
	}
	s.order[category] = nextRank(s.order)
	return nil
}

func nextRank(order CategoryOrder) int {
	next := 0
	for _, rank := range order {
		if rank >= next {
			next = rank + 1
		}
	}
	return next
}

func sortStored(items []Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	SortItems(items)
}
