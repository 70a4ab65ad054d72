package storage

import (
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

// Storage is the interface for archive sinks. The scrape pipeline itself
// hands records back in memory; sinks only run when the host chooses to
// persist a finished scrape.
type Storage interface {
	// Store persists a batch of scraped records.
	Store(records []types.ProcessedScrapeData) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}
