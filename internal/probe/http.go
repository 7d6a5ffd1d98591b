package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/okian/providex/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request tagged with a fresh X-Request-ID.
func (c *HTTPClient) Get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("X-Request-ID", "probe-"+uuid.NewString())
	return c.client.Do(req)
}

// probeQuery is one request in the mix.
type probeQuery struct {
	traits string
	active *bool
	limit  int
}

func (q probeQuery) url(base string) string {
	v := url.Values{}
	if q.traits != "" {
		v.Set("traits", q.traits)
	}
	if q.active != nil {
		v.Set("active", strconv.FormatBool(*q.active))
	}
	if q.limit > 0 {
		v.Set("limit", strconv.Itoa(q.limit))
	}
	if len(v) == 0 {
		return base + "/providers"
	}
	return base + "/providers?" + v.Encode()
}

// buildQueries expands the trait mix with each active setting.
func buildQueries(config *Config) []probeQuery {
	traits := config.Traits
	if len(traits) == 0 {
		traits = DefaultTraits
	}
	yes, no := true, false
	queries := make([]probeQuery, 0, len(traits)*3)
	for _, t := range traits {
		for _, a := range []*bool{nil, &yes, &no} {
			queries = append(queries, probeQuery{traits: t, active: a, limit: config.Limit})
		}
	}
	return queries
}

// fetch sends one query and decodes the ranked list.
func fetch(ctx context.Context, client *HTTPClient, target string) (Response, error) {
	resp, err := client.Get(ctx, target)
	if err != nil {
		return Response{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, errors.Wrap(err, "read body")
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, errors.Newf("status %d: %s", resp.StatusCode, body)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return Response{}, errors.Wrap(err, "decode body")
	}
	return out, nil
}

// runQueries sends config.NumQueries requests across config.Workers workers,
// verifying each answer, and records the outcome in stats and tally. A nil
// ledger skips the popularity order check.
func runQueries(ctx context.Context, config *Config, stats *Stats, tally *exposure, ledger *popularityLedger) error {
	queries := buildQueries(config)
	workers := max(1, min(config.Workers, config.NumQueries))
	logger.Get().Info(ctx, "sending queries",
		logger.Int("queries", config.NumQueries),
		logger.Int("workers", workers),
		logger.Int("distinct", len(queries)))

	client := newHTTPClient(config.Timeout)

	var (
		sent, ok, failed    atomic.Int64
		orderBad, activeBad atomic.Int64
		fairBad             atomic.Int64
		seen                atomic.Int64
		lastReport          atomic.Int64
	)

	jobs := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				q := queries[i%len(queries)]
				resp, err := fetch(ctx, client, q.url(config.BaseURL))
				sent.Add(1)
				if err != nil {
					failed.Add(1)
					if config.Verbose {
						logger.Get().Warn(ctx, "query failed", logger.String("traits", q.traits), logger.Error(err))
					}
					continue
				}
				ok.Add(1)
				seen.Add(int64(len(resp.Providers)))

				if err := verifyOrder(resp.Providers); err != nil {
					orderBad.Add(1)
					logger.Get().Error(ctx, "ranking order violated", logger.String("traits", q.traits), logger.Error(err))
				}
				if err := verifyActive(resp.Providers, q.active); err != nil {
					activeBad.Add(1)
					logger.Get().Error(ctx, "active filter violated", logger.String("traits", q.traits), logger.Error(err))
				}
				if ledger != nil {
					if err := ledger.check(resp.Providers); err != nil {
						fairBad.Add(1)
						logger.Get().Error(ctx, "popularity order violated", logger.String("traits", q.traits), logger.Error(err))
					}
				}
				tally.record(q.traits, resp.Providers)

				now := time.Now().UnixNano()
				if last := lastReport.Load(); now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					fmt.Printf("\rqueries: %d/%d (ok: %d, failed: %d)", sent.Load(), config.NumQueries, ok.Load(), failed.Load())
				}
			}
		}()
	}

	var limiter *rate.Limiter
	if config.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.Rate), 1)
	}

	func() {
		defer close(jobs)
		for i := range config.NumQueries {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()
	fmt.Println()

	stats.QueriesSent = int(sent.Load())
	stats.QueriesOK = int(ok.Load())
	stats.QueriesFailed = int(failed.Load())
	stats.OrderViolations = int(orderBad.Load())
	stats.ActiveViolations = int(activeBad.Load())
	stats.FairnessViolations = int(fairBad.Load())
	stats.ProvidersSeen = int(seen.Load())

	return ctx.Err()
}
