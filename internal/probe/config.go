// Package probe drives a running provider service with concurrent queries and
// checks that every answer is ranked and filtered correctly. It can also
// generate synthetic catalogs to serve.
package probe

import (
	"time"

	"github.com/okian/providex/internal/domain/model"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumQueries int           // Number of queries to send
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Traits     []string      // Trait queries to cycle through; empty means DefaultTraits
	Limit      int           // limit parameter sent with every query; 0 omits it
	Rate       float64       // Queries per second across all workers; 0 is unthrottled
	LogFile    string        // Log file for probe output
	Verbose    bool          // Log every failure
	Fairness   bool          // Check popularity order among equal ratings
}

// DefaultTraits is the query mix used when Config.Traits is empty.
var DefaultTraits = []string{ //nolint:gochecknoglobals // read-only query mix
	"",
	"rating:5",
	"rating:4.5|5",
	"primary_skills:go|python",
	"age:25-45",
	"country:spain|uk",
	"language:english,active:true",
	"secondary_skill:writing,age:30-60",
}

// Response is the body of GET /providers.
type Response struct {
	Providers []model.Provider `json:"providers"`
}

// Stats holds probe statistics.
type Stats struct {
	QueriesSent        int
	QueriesOK          int
	QueriesFailed      int
	OrderViolations    int
	ActiveViolations   int
	FairnessViolations int // Only counted with Config.Fairness
	ProvidersSeen      int
	DistinctLeaders    int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
