package interfaces

import (
	"context"

	"spread-observer/src/models"
)

// -----------------------------------------------------------------------------
// IPairStore persists the tracked pair so it survives restarts.
// -----------------------------------------------------------------------------

type IPairStore interface {

	// Initialize opens the connection and creates the schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// LoadPair returns the stored pair, or an empty pair when none is stored.
	LoadPair(ctx context.Context) (models.MTrackedPair, error)

	// -----------------------------------------------------------------------------

	// SavePair replaces the stored pair.
	SavePair(ctx context.Context, pair models.MTrackedPair) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
