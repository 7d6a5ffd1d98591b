// Package repository holds the provider catalog and its popularity counters.
package repository

import (
	"context"

	"github.com/okian/providex/internal/domain/model"
)

// Store provides read access to the catalog and read/write access to the
// per-provider popularity counters.
type Store interface {
	// All returns every provider in load order.
	All(ctx context.Context) []model.Provider

	// FilterByActive returns the providers whose active flag equals active,
	// preserving load order.
	FilterByActive(ctx context.Context, active bool) []model.Provider

	// BumpPopularity increments the popularity of id and returns the new
	// value. Safe for concurrent use.
	BumpPopularity(ctx context.Context, id int) int64

	// PopularityOf returns the current popularity of id, 0 if never bumped.
	PopularityOf(ctx context.Context, id int) int64

	// Count returns the number of providers in the catalog.
	Count(ctx context.Context) int
}
