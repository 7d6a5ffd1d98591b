package probe

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"

	"github.com/okian/providex/pkg/logger"
)

// ErrVerification is returned by Run when any answer was misordered or
// ignored the active filter.
var ErrVerification = errors.New("verification failed")

// ErrFairnessSetup is returned by Run when the popularity order check is
// requested with settings under which the client side mirror cannot be exact.
var ErrFairnessSetup = errors.New("fairness check needs a single worker and no limit")

// Run executes a complete probe and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting provider probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("queries", config.NumQueries),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("limit", config.Limit),
		logger.Bool("verbose", config.Verbose),
		logger.Bool("fairness", config.Fairness))

	var ledger *popularityLedger
	if config.Fairness {
		if config.Workers > 1 || config.Limit > 0 {
			return stats, errors.WithHintf(ErrFairnessSetup, "got -workers %d and -limit %d", config.Workers, config.Limit)
		}
		ledger = newPopularityLedger()
	}

	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, errors.Wrap(err, "service health check failed")
	}

	tally := newExposure()
	if err := runQueries(ctx, config, stats, tally, ledger); err != nil {
		return stats, errors.Wrap(err, "query run interrupted")
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	stats.DistinctLeaders = tally.distinctLeaders()

	tally.report(ctx, config.Verbose)
	displayFinalStats(ctx, stats)

	if stats.OrderViolations > 0 || stats.ActiveViolations > 0 || stats.FairnessViolations > 0 {
		return stats, errors.Wrapf(ErrVerification, "%d misordered, %d wrong active flag, %d popularity order",
			stats.OrderViolations, stats.ActiveViolations, stats.FairnessViolations)
	}

	logger.Get().Info(ctx, "probe completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service answers /healthz.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := newHTTPClient(config.Timeout).Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return errors.Wrap(err, "connect to service")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		return errors.Newf("health check returned status %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats logs the probe statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, queriesPerSecond float64

	if stats.QueriesSent > 0 {
		successRate = float64(stats.QueriesOK) / float64(stats.QueriesSent) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		queriesPerSecond = float64(stats.QueriesSent) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("queriesSent", stats.QueriesSent),
		logger.Int("queriesOK", stats.QueriesOK),
		logger.Int("queriesFailed", stats.QueriesFailed),
		logger.Int("orderViolations", stats.OrderViolations),
		logger.Int("activeViolations", stats.ActiveViolations),
		logger.Int("fairnessViolations", stats.FairnessViolations),
		logger.Int("providersSeen", stats.ProvidersSeen),
		logger.Int("distinctLeaders", stats.DistinctLeaders),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("queriesPerSecond", queriesPerSecond))

	table, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Metric", "Value"},
		{"Queries sent", strconv.Itoa(stats.QueriesSent)},
		{"Succeeded", strconv.Itoa(stats.QueriesOK)},
		{"Failed", strconv.Itoa(stats.QueriesFailed)},
		{"Misordered", strconv.Itoa(stats.OrderViolations)},
		{"Wrong active flag", strconv.Itoa(stats.ActiveViolations)},
		{"Popularity order", strconv.Itoa(stats.FairnessViolations)},
		{"Providers seen", strconv.Itoa(stats.ProvidersSeen)},
		{"Distinct leaders", strconv.Itoa(stats.DistinctLeaders)},
		{"Duration", stats.Duration.Round(time.Millisecond).String()},
		{"Success rate", strconv.FormatFloat(successRate, 'f', 1, 64) + "%"},
		{"Queries/s", strconv.FormatFloat(queriesPerSecond, 'f', 1, 64)},
	}).Srender()
	if err != nil {
		logger.Get().Warn(ctx, "render summary table", logger.Error(err))
		return
	}
	fmt.Println(table)
}
