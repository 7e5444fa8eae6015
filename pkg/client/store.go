package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// State is the load state of the cached item list.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFatal   State = "fatal"
)

const (
	defaultAttempts  = 5
	defaultBaseDelay = time.Second
)

// API is the subset of Client the Store needs.
type API interface {
	ListItems(ctx context.Context) ([]dashboard.Item, error)
	CreateItem(ctx context.Context, input dashboard.ItemInput) (string, error)
	UpdateItem(ctx context.Context, id string, patch dashboard.ItemPatch) error
	DeleteItem(ctx context.Context, id string) error
}

// StoreOptions configures a Store.
type StoreOptions struct {
	API       API
	Logger    *zap.Logger
	Attempts  int
	BaseDelay time.Duration
	// Sleep waits between list attempts; tests replace it.
	Sleep     func(ctx context.Context, d time.Duration) error
}

// Snapshot is a consistent view of the store.
type Snapshot struct {
	Items    []dashboard.Item
	State    State
	Err      error
	Revision uint64
}

// BatchResult reports a category bulk delete.
type BatchResult struct {
	Category string
	Deleted  []string
	Failed   map[string]error
}

// Store caches the item list, retries list failures with exponential backoff
// and refetches after every mutation.
type Store struct {
	api       API
	logger    *zap.Logger
	attempts  int
	baseDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error

	mu       sync.RWMutex
	items    []dashboard.Item
	state    State
	err      error
	revision uint64
	started  uint64
	applied  uint64

	// mutations run one at a time
	mutate sync.Mutex
}

var (
	_ dashboard.ItemSource  = (*Store)(nil)
	_ dashboard.ItemMutator = (*Store)(nil)
)

// NewStore builds a store in the loading state.
func NewStore(opts StoreOptions) (*Store, error) {
	if opts.API == nil {
		return nil, errors.New("client: store requires an api")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Attempts <= 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Store{
		api:       opts.API,
		logger:    opts.Logger,
		attempts:  opts.Attempts,
		baseDelay: opts.BaseDelay,
		sleep:     opts.Sleep,
		state:     StateLoading,
	}, nil
}

// Items returns a copy of the cached list.
func (s *Store) Items() []dashboard.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dashboard.Item(nil), s.items...)
}

// Snapshot returns items, state, last error and revision together.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Items:    append([]dashboard.Item(nil), s.items...),
		State:    s.state,
		Err:      s.err,
		Revision: s.revision,
	}
}

// State returns the load state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Refresh lists items, retrying transient failures with delays of 1s, 2s, 4s
// and 8s. After the last attempt the store turns fatal and wraps
// ErrConnectivity; only another Refresh call retries.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.state = StateLoading
	}
	s.mu.Unlock()

	delay := s.baseDelay
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		err := s.fetch(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsTransient(err) {
			s.fail(err)
			return err
		}
		s.logger.Warn("list items failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.attempts),
			zap.Error(err),
		)
		if attempt == s.attempts {
			break
		}
		if err := s.sleep(ctx, delay); err != nil {
			s.fail(err)
			return err
		}
		delay *= 2
	}
	err := fmt.Errorf("%w: %w", ErrConnectivity, lastErr)
	s.fail(err)
	return err
}

// Create stores a new item and refetches.
func (s *Store) Create(ctx context.Context, input dashboard.ItemInput) (string, error) {
	s.mutate.Lock()
	defer s.mutate.Unlock()
	id, err := s.api.CreateItem(ctx, input)
	if err != nil {
		return "", err
	}
	s.refetch(ctx)
	return id, nil
}

// Update applies a partial update and refetches.
func (s *Store) Update(ctx context.Context, id string, patch dashboard.ItemPatch) error {
	s.mutate.Lock()
	defer s.mutate.Unlock()
	if err := s.api.UpdateItem(ctx, id, patch); err != nil {
		return err
	}
	s.refetch(ctx)
	return nil
}

// Remove deletes one item and refetches.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mutate.Lock()
	defer s.mutate.Unlock()
	if err := s.api.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.refetch(ctx)
	return nil
}

// RemoveByCategory deletes every cached item of category in parallel. Failures
// are logged and collected without stopping the batch, and the list is always
// refetched. The returned error joins the individual failures.
func (s *Store) RemoveByCategory(ctx context.Context, category string) (BatchResult, error) {
	s.mutate.Lock()
	defer s.mutate.Unlock()

	members := dashboard.ItemsInCategory(s.Items(), category)
	result := BatchResult{Category: category, Failed: map[string]error{}}
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, item := range members {
		g.Go(func() error {
			err := s.api.DeleteItem(ctx, item.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error("delete item in category failed",
					zap.String("category", category),
					zap.String("item_id", item.ID),
					zap.Error(err),
				)
				result.Failed[item.ID] = err
				return nil
			}
			result.Deleted = append(result.Deleted, item.ID)
			return nil
		})
	}
	_ = g.Wait()
	s.refetch(ctx)

	if len(result.Failed) == 0 {
		return result, nil
	}
	errs := make([]error, 0, len(result.Failed))
	for id, err := range result.Failed {
		errs = append(errs, fmt.Errorf("item %s: %w", id, err))
	}
	return result, errors.Join(errs...)
}

// refetch runs one list call after a mutation. A failure is logged and kept as
// the last error; the mutation itself already succeeded.
func (s *Store) refetch(ctx context.Context) {
	if err := s.fetch(ctx); err != nil {
		s.logger.Warn("refetch after mutation failed", zap.Error(err))
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}
}

// fetch lists items and applies the result unless a fetch that started later
// has already been applied.
func (s *Store) fetch(ctx context.Context) error {
	s.mu.Lock()
	s.started++
	seq := s.started
	s.mu.Unlock()

	items, err := s.api.ListItems(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		return nil
	}
	dashboard.SortItems(items)
	s.items = items
	s.applied = seq
	s.state = StateReady
	s.err = nil
	s.revision++
	return nil
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.state = StateFatal
	s.err = err
	s.mu.Unlock()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
