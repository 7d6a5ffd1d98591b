// Package types contains request and response shapes shared by the service and the HTTP layer.
package types

import (
	"github.com/okian/providex/internal/domain/model"
)

// Query describes one provider lookup.
type Query struct {
	// Active restricts to active (true) or inactive (false) providers. Nil means both.
	Active *bool
	// Traits is the raw trait query, e.g. "country:uk,age:30-40".
	Traits string
	// Limit truncates the ranked result. Zero means no truncation.
	Limit int
}

// ProviderList is the body of GET /providers.
type ProviderList struct {
	Providers []model.Provider `json:"providers"`
}

// ErrorBody is the body of every non-2xx API response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Stats is the body of GET /stats.
type Stats struct {
	Started         bool   `json:"started"`
	StartedAt       string `json:"started_at,omitempty"`
	DatasetPath     string `json:"dataset_path,omitempty"`
	CatalogSize     int    `json:"catalog_size"`
	ActiveProviders int    `json:"active_providers"`
	QueriesServed   int64  `json:"queries_served"`
	QueriesRejected int64  `json:"queries_rejected"`
	PopularityBumps int64  `json:"popularity_bumps"`
	MaxResultLimit  int    `json:"max_result_limit"`
}

// Bool returns a pointer to b, for building Query.Active.
func Bool(b bool) *bool { return &b }
