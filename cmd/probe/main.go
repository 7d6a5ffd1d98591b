package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/okian/providex/internal/probe"
	"github.com/okian/providex/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumQueries   = 2000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 10 * time.Second
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numQueries = flag.Int("queries", defaultNumQueries, "Number of queries to send")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		traits     = flag.String("traits", "", "Semicolon separated trait queries (default: built-in mix)")
		limit      = flag.Int("limit", 0, "limit parameter sent with every query")
		qps        = flag.Float64("rate", 0, "Queries per second across all workers (0: unthrottled)")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		generate   = flag.Int("generate", 0, "Write a synthetic catalog with this many providers and exit")
		output     = flag.String("output", "providers.json", "Catalog file for -generate")
		seed       = flag.Uint64("seed", 1, "Seed for -generate")
		logFile    = flag.String("log", "", "Log file for probe output (default: probe_TIMESTAMP.log)")
		logFormat  = flag.String("log-format", logger.FormatText, "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Log every failed query")
		fairness   = flag.Bool("fairness", false, "Check popularity order; needs -workers 1, no -limit and no other clients")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *generate > 0 {
		if err := logger.Init(); err != nil {
			fail("Failed to setup logging: " + err.Error())
		}
		records := probe.GenerateCatalog(*generate, *seed, time.Now())
		if err := probe.WriteCatalog(ctx, *output, records); err != nil {
			fail("Catalog generation failed: " + err.Error())
		}
		return
	}

	if _, err := probe.SetupLogging(*logFile, *logFormat); err != nil {
		fail("Failed to setup logging: " + err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	config := &probe.Config{
		BaseURL:    strings.TrimRight(*baseURL, "/"),
		NumQueries: *numQueries,
		Workers:    *workers,
		Timeout:    *timeout,
		Traits:     splitTraits(*traits),
		Limit:      *limit,
		Rate:       *qps,
		LogFile:    *logFile,
		Verbose:    *verbose,
		Fairness:   *fairness,
	}

	if _, err := probe.Run(ctx, config); err != nil {
		fail("Probe failed: " + err.Error())
	}
}

func splitTraits(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func fail(msg string) {
	_, _ = os.Stderr.WriteString(msg + "\n")
	os.Exit(1)
}
