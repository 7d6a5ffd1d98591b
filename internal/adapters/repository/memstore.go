package repository

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/providex/internal/domain/model"
	"github.com/okian/providex/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// MemoryStore is an in-memory Store. The provider slices are built once by
// Load and never written again, so readers need no lock. Popularity lives in
// per-id atomic counters: bumps of the same id serialize on the counter and
// bumps of different ids never touch shared state.
type MemoryStore struct {
	all      []model.Provider
	active   []model.Provider
	inactive []model.Provider

	popularity sync.Map // int -> *atomic.Int64
	bumps      atomic.Int64

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
	closeOnce             sync.Once
}

var _ Store = (*MemoryStore)(nil)

// Load validates every raw record and builds a store from them. Any invalid
// record or duplicate id fails the whole load. The returned store runs a
// background metrics updater until Close or ctx cancellation.
func Load(ctx context.Context, source []map[string]any, opts ...Option) (*MemoryStore, error) {
	start := time.Now()

	all := make([]model.Provider, 0, len(source))
	seen := make(map[int]int, len(source))
	for i, raw := range source {
		p, err := model.Decode(i, raw)
		if err != nil {
			metrics.RecordErrorByComponent("repository", "schema")
			return nil, errors.Mark(errors.Wrap(err, "load catalog"), ErrLoad)
		}
		if first, dup := seen[p.ID]; dup {
			metrics.RecordErrorByComponent("repository", "duplicate_id")
			err := errors.WithHintf(
				&model.SchemaError{Index: i, Key: "id", Expected: "unique integer", Actual: "duplicate"},
				"id %d already used by record %d", p.ID, first)
			return nil, errors.Mark(errors.Wrap(err, "load catalog"), ErrLoad)
		}
		seen[p.ID] = i
		all = append(all, p)
	}

	s := &MemoryStore{
		all:                   all,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, p := range all {
		if p.Active {
			s.active = append(s.active, p)
		} else {
			s.inactive = append(s.inactive, p)
		}
	}

	for _, opt := range opts {
		opt(s)
	}

	metrics.RecordRepositoryLoadDuration(float64(time.Since(start).Milliseconds()))
	s.updateMetrics()
	s.startMetricsUpdater(ctx)

	return s, nil
}

// All implements Store.All.
func (s *MemoryStore) All(_ context.Context) []model.Provider {
	return slices.Clone(s.all)
}

// FilterByActive implements Store.FilterByActive.
func (s *MemoryStore) FilterByActive(_ context.Context, active bool) []model.Provider {
	if active {
		return slices.Clone(s.active)
	}
	return slices.Clone(s.inactive)
}

// BumpPopularity implements Store.BumpPopularity.
func (s *MemoryStore) BumpPopularity(_ context.Context, id int) int64 {
	s.bumps.Add(1)
	if c, ok := s.popularity.Load(id); ok {
		return c.(*atomic.Int64).Add(1)
	}
	c, _ := s.popularity.LoadOrStore(id, new(atomic.Int64))
	return c.(*atomic.Int64).Add(1)
}

// PopularityOf implements Store.PopularityOf.
func (s *MemoryStore) PopularityOf(_ context.Context, id int) int64 {
	if c, ok := s.popularity.Load(id); ok {
		return c.(*atomic.Int64).Load()
	}
	return 0
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.all)
}

// ActiveCount returns the number of active providers.
func (s *MemoryStore) ActiveCount() int {
	return len(s.active)
}

// TotalBumps returns the number of popularity increments since load.
func (s *MemoryStore) TotalBumps() int64 {
	return s.bumps.Load()
}

// Close stops the background metrics updater. Popularity is discarded with
// the store.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// startMetricsUpdater starts a background goroutine that updates repository metrics.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics publishes catalog and popularity gauges.
func (s *MemoryStore) updateMetrics() {
	var exposed int
	var maxPopularity int64
	s.popularity.Range(func(_, v any) bool {
		n := v.(*atomic.Int64).Load()
		if n > 0 {
			exposed++
		}
		maxPopularity = max(maxPopularity, n)
		return true
	})

	metrics.UpdateCatalogSize(len(s.all))
	metrics.UpdateCatalogActive(len(s.active))
	metrics.UpdateProvidersExposed(exposed)
	metrics.UpdatePopularityMax(maxPopularity)
}
