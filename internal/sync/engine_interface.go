// Package sync provides synchronization interfaces and implementations.
package sync

import (
	"context"
	"time"

	"github.com/rentnest/rentnest/backend/internal/models"
	"github.com/rentnest/rentnest/backend/internal/sync/conflict"
)

// Engine defines the invocation surface of the sync engine. The rest of the
// application uses this interface only; nothing outside the engine mutates
// the conflict queue or the sync log directly. It also allows mocking in
// tests and alternative implementations.
type Engine interface {
	// SyncAll runs one sync pass over the requested resources.
	SyncAll(ctx context.Context, resources []string) (*SyncResult, error)

	// ResolveConflict resolves the head conflict with per-field choices.
	ResolveConflict(ctx context.Context, resolutions conflict.Resolutions) error

	// RejectConflict discards the head conflict's local copy.
	RejectConflict() error

	// ClearConflicts drops every queued conflict. Irreversible.
	ClearConflicts() int

	// CurrentConflict returns the head of the conflict queue, if any.
	CurrentConflict() (*models.ConflictRecord, bool)

	// Conflicts returns a snapshot of the queued conflicts in order.
	Conflicts() []*models.ConflictRecord

	// PendingConflicts returns the number of queued conflicts.
	PendingConflicts() int

	// Logs returns the retained sync log entries, oldest first.
	Logs() ([]models.SyncLogEntry, error)

	// Status returns the current sync status.
	Status() SyncStatus

	// LastSync returns the timestamp of the last successful sync.
	LastSync() *time.Time

	// LastStats returns the stats of the most recent pass.
	LastStats() *models.SyncStats

	// LastError returns the last sync error.
	LastError() error

	// SetEventHandler sets the handler notified of sync lifecycle events.
	SetEventHandler(h EventHandler)
}

// EventHandler receives sync lifecycle notifications, e.g. for pushing
// progress to a local UI over WebSocket.
type EventHandler interface {
	SyncStarted(resources []string)
	SyncCompleted(result *SyncResult)
	SyncFailed(err error)
	ConflictDetected(c *models.ConflictRecord)
}

var _ Engine = (*SyncEngine)(nil)
