// Package storage keeps a log of the searches the front-end ran, for the status endpoint.
package storage

import (
	"context"
	"time"
)

// Entry is one primary search as seen by the front-end.
type Entry struct {
	Site     string
	Query    string
	Page     int
	Total    int
	Failed   bool
	Duration time.Duration
	At       time.Time
}

// QueryCount is a query and how often it was searched.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Stats summarises the log, optionally for one site.
type Stats struct {
	Searches   int64        `json:"searches"`
	Failures   int64        `json:"failures"`
	AvgMillis  float64      `json:"avg_duration_ms"`
	TopQueries []QueryCount `json:"top_queries"`
	SizeBytes  int64        `json:"size_bytes"`
}

// QueryLog records searches and reports on them.
type QueryLog interface {
	Record(ctx context.Context, e Entry) error
	// Stats covers all sites when site is empty. top bounds TopQueries.
	Stats(ctx context.Context, site string, top int) (*Stats, error)
	Close() error
}
