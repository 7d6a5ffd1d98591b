// Package service wires the catalog store, the trait filter and the ranker
// into the operations the HTTP API depends on.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/providex/internal/adapters/dataset"
	"github.com/okian/providex/internal/adapters/repository"
	"github.com/okian/providex/internal/domain/model"
	"github.com/okian/providex/internal/domain/ranking"
	"github.com/okian/providex/internal/domain/traits"
	"github.com/okian/providex/internal/domain/types"
	"github.com/okian/providex/pkg/logger"
	"github.com/okian/providex/pkg/metrics"
)

// Service answers provider queries over a catalog loaded at Start.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  *repository.MemoryStore
	filter *traits.Filter

	// Configuration
	datasetPath     string
	datasetOpts     []dataset.Option
	source          []map[string]any
	maxResultLimit  int
	metricsInterval time.Duration
	now             func() time.Time

	// State
	started   bool
	startedAt time.Time
	served    atomic.Int64
	rejected  atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDatasetPath loads the catalog at Start from any location
// dataset.Open understands. opts tune SQL and S3 access.
func WithDatasetPath(path string, opts ...dataset.Option) Option {
	return func(s *Service) {
		s.datasetPath = path
		s.datasetOpts = opts
	}
}

// WithSource loads the catalog from in-memory raw records at Start. It takes
// precedence over WithDatasetPath.
func WithSource(records []map[string]any) Option {
	return func(s *Service) {
		s.source = records
	}
}

// WithMaxResultLimit caps Query.Limit. Zero disables the cap.
func WithMaxResultLimit(limit int) Option {
	return func(s *Service) {
		if limit >= 0 {
			s.maxResultLimit = limit
		}
	}
}

// WithMetricsInterval sets how often the store refreshes its gauges.
func WithMetricsInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.metricsInterval = d
		}
	}
}

// WithClock sets the time source used for age constraints.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		metricsInterval: 5 * time.Second,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.filter = traits.NewFilter(traits.WithClock(s.now))
	return s
}

// Start loads and validates the catalog. A catalog with any invalid record
// fails Start and leaves the service stopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting provider service...")

	source := s.source
	if source == nil {
		if s.datasetPath == "" {
			return errors.WithHint(ErrNoCatalog, "configure dataset_path or pass records with WithSource")
		}
		records, err := dataset.Open(ctx, s.datasetPath, s.datasetOpts...)
		if err != nil {
			s.logger.Error(ctx, "failed to read catalog", logger.String("path", s.datasetPath), logger.Error(err))
			return err
		}
		source = records
	}

	store, err := repository.Load(ctx, source, repository.WithMetricsUpdateInterval(s.metricsInterval))
	if err != nil {
		s.logger.Error(ctx, "failed to load catalog", logger.Error(err))
		return err
	}

	s.store = store
	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "provider service started",
		logger.Int("providers", store.Count(ctx)),
		logger.Int("active", store.ActiveCount()),
		logger.Int("maxResultLimit", s.maxResultLimit),
	)

	return nil
}

// Stop releases the store. Popularity counters are discarded.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping provider service...")
	if s.store != nil {
		_ = s.store.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "provider service stopped")
}

// Query filters the catalog by q, ranks every match and returns the best
// first. Each match has its popularity bumped exactly once, including those
// cut by q.Limit.
func (s *Service) Query(ctx context.Context, q types.Query) ([]model.Provider, error) {
	s.mu.RLock()
	store, started := s.store, s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	limit, err := s.effectiveLimit(q.Limit)
	if err != nil {
		return nil, s.reject(ctx, "bad_request", err)
	}

	spec, err := traits.Parse(q.Traits)
	if err != nil {
		return nil, s.reject(ctx, "filter_parse_error", err)
	}

	var records []model.Provider
	if q.Active == nil {
		records = store.All(ctx)
	} else {
		records = store.FilterByActive(ctx, *q.Active)
	}

	filterStart := time.Now()
	matched, err := s.filter.Evaluate(records, spec)
	if err != nil {
		kind := "filter_parse_error"
		if errors.Is(err, traits.ErrAttributeNotFound) {
			kind = "attribute_not_found"
		}
		return nil, s.reject(ctx, kind, err)
	}
	metrics.RecordFilterLatency(msSince(filterStart))

	rankStart := time.Now()
	ranked := ranking.Rank(ctx, store, matched)
	metrics.RecordRankLatency(msSince(rankStart))
	metrics.RecordCandidates(len(matched))

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	s.served.Add(1)
	metrics.RecordQueryServed()
	metrics.RecordResultSize(len(ranked))
	s.logger.Debug(ctx, "query served",
		logger.String("traits", spec.String()),
		logger.Int("candidates", len(records)),
		logger.Int("matched", len(matched)),
		logger.Int("returned", len(ranked)),
	)

	return ranked, nil
}

// effectiveLimit validates a requested limit and applies the configured cap.
func (s *Service) effectiveLimit(limit int) (int, error) {
	if limit < 0 {
		err := errors.Newf("limit must be >= 0, got %d", limit)
		return 0, errors.Mark(errors.WithHint(err, "omit limit or pass 0 to return every match"), types.ErrInvalidQuery)
	}
	if s.maxResultLimit > 0 && (limit == 0 || limit > s.maxResultLimit) {
		return s.maxResultLimit, nil
	}
	return limit, nil
}

func (s *Service) reject(ctx context.Context, kind string, err error) error {
	s.rejected.Add(1)
	metrics.RecordQueryError(kind)
	s.logger.Warn(ctx, "query rejected", logger.String("kind", kind), logger.Error(err))
	return err
}

// PopularityOf returns the popularity counter of id, 0 when the service is stopped.
func (s *Service) PopularityOf(ctx context.Context, id int) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return 0
	}
	return s.store.PopularityOf(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:         s.started,
		DatasetPath:     s.datasetPath,
		QueriesServed:   s.served.Load(),
		QueriesRejected: s.rejected.Load(),
		MaxResultLimit:  s.maxResultLimit,
	}

	if s.started {
		ctx := context.Background()
		stats.StartedAt = s.startedAt.UTC().Format(time.RFC3339)
		stats.CatalogSize = s.store.Count(ctx)
		stats.ActiveProviders = s.store.ActiveCount()
		stats.PopularityBumps = s.store.TotalBumps()
	}

	return stats
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
