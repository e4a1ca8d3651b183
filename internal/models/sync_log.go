// Package models provides data model definitions for the Rentnest sync core.
package models

import "time"

// SyncLogAction identifies the orchestration or resolution step a log entry
// records.
type SyncLogAction string

const (
	ActionSyncStart       SyncLogAction = "sync_start"
	ActionSyncEnd         SyncLogAction = "sync_end"
	ActionSyncError       SyncLogAction = "sync_error"
	ActionConflictResolve SyncLogAction = "conflict_resolve"
	ActionConflictReject  SyncLogAction = "conflict_reject"
	ActionConflictsClear  SyncLogAction = "conflicts_clear"
)

// SyncLogStatus is the outcome recorded for a step.
type SyncLogStatus string

const (
	StatusPending   SyncLogStatus = "pending"
	StatusCompleted SyncLogStatus = "completed"
	StatusFailed    SyncLogStatus = "failed"
)

// MaxSyncLogEntries caps the sync log; the oldest entries are evicted first.
const MaxSyncLogEntries = 100

// SyncLogEntry is one append-only audit record. Entries are never updated,
// only appended and eventually evicted.
type SyncLogEntry struct {
	ID        string                 `json:"id"`
	Resource  string                 `json:"resource"`
	Action    SyncLogAction          `json:"action"`
	Status    SyncLogStatus          `json:"status"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
