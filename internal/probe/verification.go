package probe

import (
	"context"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/okian/providex/internal/domain/model"
	"github.com/okian/providex/pkg/logger"
)

// verifyOrder checks that ratings never increase down the list.
func verifyOrder(providers []model.Provider) error {
	for i := 1; i < len(providers); i++ {
		if providers[i].Rating > providers[i-1].Rating {
			return errors.Newf("position %d (id %d, rating %g) outranks position %d (id %d, rating %g)",
				i, providers[i].ID, providers[i].Rating, i-1, providers[i-1].ID, providers[i-1].Rating)
		}
	}
	return nil
}

// verifyActive checks every provider's active flag against the requested one.
func verifyActive(providers []model.Provider, want *bool) error {
	if want == nil {
		return nil
	}
	for _, p := range providers {
		if p.Active != *want {
			return errors.Newf("id %d has active=%t, requested %t", p.ID, p.Active, *want)
		}
	}
	return nil
}

// popularityLedger mirrors the service's popularity counters from the
// client side. The mirror is exact only while this probe is the service's
// sole client, sends one query at a time and asks for no limit, since the
// service bumps every candidate whether or not it is returned.
type popularityLedger struct {
	mu     sync.Mutex
	counts map[int]int64
}

func newPopularityLedger() *popularityLedger {
	return &popularityLedger{counts: make(map[int]int64)}
}

// check verifies that equally rated neighbours are ordered by ascending
// popularity and then ascending id, and then counts one appearance for every
// provider in the answer.
func (l *popularityLedger) check(providers []model.Provider) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	for i := 1; i < len(providers) && err == nil; i++ {
		prev, cur := providers[i-1], providers[i]
		if prev.Rating != cur.Rating {
			continue
		}
		pp, cp := l.counts[prev.ID], l.counts[cur.ID]
		if pp > cp || (pp == cp && prev.ID > cur.ID) {
			err = errors.Newf("position %d (id %d, popularity %d) outranks position %d (id %d, popularity %d) at rating %g",
				i-1, prev.ID, pp, i, cur.ID, cp, cur.Rating)
		}
	}
	for _, p := range providers {
		l.counts[p.ID]++
	}
	return err
}

// exposure counts, per trait query, which provider led the result. Repeated
// identical queries should rotate the lead among equally rated providers.
type exposure struct {
	mu      sync.Mutex
	leaders map[string]map[int]int
}

func newExposure() *exposure {
	return &exposure{leaders: make(map[string]map[int]int)}
}

func (e *exposure) record(traits string, providers []model.Provider) {
	if len(providers) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.leaders[traits]
	if !ok {
		m = make(map[int]int)
		e.leaders[traits] = m
	}
	m[providers[0].ID]++
}

// distinctLeaders returns how many different providers led any result.
func (e *exposure) distinctLeaders() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := map[int]struct{}{}
	for _, m := range e.leaders {
		for id := range m {
			ids[id] = struct{}{}
		}
	}
	return len(ids)
}

// report logs the lead distribution of each trait query.
func (e *exposure) report(ctx context.Context, verbose bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := make([]string, 0, len(e.leaders))
	for k := range e.leaders {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		m := e.leaders[k]
		total, top := 0, 0
		for _, n := range m {
			total += n
			top = max(top, n)
		}
		fields := []logger.Field{
			logger.String("traits", k),
			logger.Int("leaders", len(m)),
			logger.Int("results", total),
			logger.Float64("topShare", float64(top)/float64(total)),
		}
		if verbose {
			fields = append(fields, logger.Any("leadCounts", m))
		}
		logger.Get().Info(ctx, "exposure", fields...)
	}
}
