package interfaces

import "spread-observer/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing snapshots with external systems (Server/Push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a snapshot to connected listeners and records it as latest.
	Broadcast(snapshot *models.MSnapshot)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
