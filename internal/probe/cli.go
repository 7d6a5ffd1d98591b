package probe

import (
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/providex/pkg/logger"
)

// SetupLogging sends log output to both stdout and a file. An empty logFile
// gets a timestamped name.
func SetupLogging(logFile string, format string) (string, error) {
	if logFile == "" {
		logFile = "probe_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission) //nolint:gosec // operator-supplied path
	if err != nil {
		return "", errors.Wrap(err, "create log file")
	}

	if err := logger.InitWith(io.MultiWriter(os.Stdout, file), format); err != nil {
		return "", errors.Wrap(err, "initialize logger")
	}
	return logFile, nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Provider Query Probe
====================

Sends concurrent GET /providers queries to a running service and checks that
every answer is rating-descending and honours the active filter. Reports how
often each equally rated provider led a result, which shows popularity
rotation at work. Can also write a synthetic catalog for the service to load.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -queries int
        Number of queries to send (default 2000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -traits string
        Semicolon separated trait queries to cycle through (default: built-in mix)
  -limit int
        limit parameter sent with every query (default 0, omitted)
  -rate float
        Queries per second across all workers (default 0, unthrottled)
  -timeout duration
        HTTP request timeout (default 10s)
  -generate int
        Write a synthetic catalog with this many providers and exit
  -output string
        Catalog file for -generate; .yaml/.yml writes YAML (default "providers.json")
  -seed uint
        Seed for -generate (default 1)
  -log string
        Log file for probe output (default: probe_TIMESTAMP.log)
  -verbose
        Log every failed query
  -fairness
        Also check that equally rated providers come in ascending popularity,
        then id, order. Needs -workers 1, no -limit and a service nobody else
        is querying
  -help
        Show this help message

Examples:
  # Generate a catalog, then start the service on it
  go run ./cmd/probe -generate 5000 -output providers.json
  PROVIDERS_DATASET_PATH=providers.json go run ./cmd

  # Probe with a custom query mix
  go run ./cmd/probe -queries 10000 -traits "rating:5;country:spain,age:30-40"
`)
}
