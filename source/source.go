// Package source defines the acquisition interface shared by the open-data
// API adapter and the browser scrape adapter.
package source

import (
	"context"

	"mandiflow/models"
)

// Source fetches raw records for one filter set. Implementations own any
// network or browser resources they need; Close releases them and must be
// safe to call on every exit path.
type Source interface {
	Name() models.SourceName

	// Fetch returns every raw record matching the filter, or a
	// *models.SourceUnavailableError when the source as a whole cannot
	// serve the query.
	Fetch(ctx context.Context, filter models.Filter) ([]models.RawRecord, error)

	// ResultCap is the maximum record count a single query can return
	// before truncation, or 0 when the source is uncapped. The partitioner
	// uses this both to decide whether partitioning is needed at all and
	// to detect truncated partitions.
	ResultCap() int

	Close() error
}
