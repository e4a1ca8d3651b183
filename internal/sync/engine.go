// Package sync implements the offline sync and conflict resolution engine.
//
// One SyncEngine instance owns the conflict queue, the sync log and the
// in-progress flag for a session. Records and resources are processed
// strictly sequentially to keep stats accounting and log ordering
// deterministic; see the scheduler package for background invocation.
package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/rentnest/rentnest/backend/internal/errors"
	"github.com/rentnest/rentnest/backend/internal/logging"
	"github.com/rentnest/rentnest/backend/internal/models"
	"github.com/rentnest/rentnest/backend/internal/sync/conflict"
	"github.com/rentnest/rentnest/backend/internal/sync/queue"
)

// SyncStatus represents the current sync status.
type SyncStatus string

const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusFailed  SyncStatus = "failed"
)

// RemoteClient is the request/response access to the remote resource API.
type RemoteClient interface {
	List(ctx context.Context, resource string) ([]models.Record, error)
	Get(ctx context.Context, resource, id string) (models.Record, error)
	Create(ctx context.Context, resource string, record models.Record) (models.Record, error)
	Patch(ctx context.Context, resource, id string, partial models.Record) (models.Record, error)
}

// RecordStore is the durable keyed store for pending records, the log and
// the conflict queue.
type RecordStore interface {
	ReadPending(resource string) ([]models.Record, error)
	RemovePending(resource string, record models.Record) error
	AppendLog(entry models.SyncLogEntry) error
	ReadLog() ([]models.SyncLogEntry, error)
	ReadConflicts() ([]*models.ConflictRecord, error)
	WriteConflicts(conflicts []*models.ConflictRecord) error
}

// SyncResult represents the outcome of one orchestration run.
type SyncResult struct {
	StartTime            time.Time        `json:"start_time"`
	EndTime              time.Time        `json:"end_time"`
	Duration             time.Duration    `json:"duration"`
	Stats                models.SyncStats `json:"stats"`
	TotalConflictsQueued int              `json:"total_conflicts_queued"`
	Error                string           `json:"error,omitempty"`
}

// SyncEngine orchestrates sync passes and conflict resolution. Construct one
// per process/session; all mutation of the queue and log goes through it.
type SyncEngine struct {
	store  RecordStore
	remote RemoteClient
	queue  *queue.ConflictQueue

	// guards status, inProgress, lastSync, lastStats, lastErr, events
	mu         stdsync.Mutex
	inProgress bool
	status     SyncStatus
	lastSync   *time.Time
	lastStats  *models.SyncStats
	lastErr    error
	events     EventHandler
}

// NewSyncEngine creates a new SyncEngine. Conflicts queued by an earlier
// process over the same store are restored.
func NewSyncEngine(store RecordStore, remote RemoteClient) *SyncEngine {
	return &SyncEngine{
		store:  store,
		remote: remote,
		queue:  queue.NewDurableConflictQueue(store),
		status: SyncStatusIdle,
	}
}

// SetEventHandler sets the handler notified of sync lifecycle events.
func (e *SyncEngine) SetEventHandler(h EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = h
}

// handler returns the current event handler, which may be nil.
func (e *SyncEngine) handler() EventHandler {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events
}

// Status returns the current sync status.
func (e *SyncEngine) Status() SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// LastSync returns the timestamp of the last successful sync.
func (e *SyncEngine) LastSync() *time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSync
}

// LastStats returns the stats of the most recent pass.
func (e *SyncEngine) LastStats() *models.SyncStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastStats
}

// LastError returns the last sync error.
func (e *SyncEngine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// PendingConflicts returns the number of queued conflicts.
func (e *SyncEngine) PendingConflicts() int {
	return e.queue.Len()
}

// Conflicts returns a snapshot of the queued conflicts in order.
func (e *SyncEngine) Conflicts() []*models.ConflictRecord {
	return e.queue.Pending()
}

// CurrentConflict returns the head of the conflict queue, if any.
func (e *SyncEngine) CurrentConflict() (*models.ConflictRecord, bool) {
	return e.queue.Current()
}

// Logs returns the retained sync log entries, oldest first.
func (e *SyncEngine) Logs() ([]models.SyncLogEntry, error) {
	return e.store.ReadLog()
}

// SyncAll runs one sync pass over the requested resources, each processed
// independently and in sequence. Record-level remote failures are absorbed
// into the stats and never surfaced as an error; callers must treat
// Conflicts > 0 as "incomplete", not "failed". A second invocation while one
// is in flight fails fast with SYNC_IN_PROGRESS.
func (e *SyncEngine) SyncAll(ctx context.Context, resources []string) (*SyncResult, error) {
	if err := e.begin(); err != nil {
		if h := e.handler(); h != nil {
			h.SyncFailed(err)
		}
		return nil, err
	}

	if h := e.handler(); h != nil {
		h.SyncStarted(resources)
	}
	e.appendLog("", models.ActionSyncStart, models.StatusPending, map[string]interface{}{
		"resources": resources,
	})

	result := &SyncResult{
		StartTime: time.Now(),
		Stats: models.SyncStats{
			Total:   len(resources),
			Results: make(map[string]models.ResourceStats, len(resources)),
		},
	}

	for _, resource := range resources {
		rs, conflicts := e.syncResource(ctx, resource)
		result.Stats.Results[resource] = rs
		result.Stats.Synced += rs.Synced
		result.Stats.Errors += rs.Errors
		result.Stats.Conflicts += conflicts
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.TotalConflictsQueued = e.queue.Len()

	e.appendLog("", models.ActionSyncEnd, models.StatusCompleted, map[string]interface{}{
		"synced":    result.Stats.Synced,
		"errors":    result.Stats.Errors,
		"conflicts": result.Stats.Conflicts,
		"queued":    result.TotalConflictsQueued,
	})
	if h := e.handler(); h != nil {
		h.SyncCompleted(result)
	}

	e.finish(result)
	return result, nil
}

// begin acquires the in-progress flag.
func (e *SyncEngine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inProgress {
		return apperrors.New(apperrors.ErrSyncInProgress, "a sync pass is already running")
	}
	e.inProgress = true
	e.status = SyncStatusSyncing
	e.lastErr = nil
	return nil
}

// finish releases the in-progress flag and records the pass outcome.
func (e *SyncEngine) finish(result *SyncResult) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.inProgress = false
	e.status = SyncStatusIdle
	e.lastStats = &result.Stats
	e.lastSync = &result.EndTime
}

// syncResource processes one resource's pending records sequentially.
// Returns the per-resource stats and the number of conflicts enqueued.
func (e *SyncEngine) syncResource(ctx context.Context, resource string) (models.ResourceStats, int) {
	var stats models.ResourceStats
	conflicts := 0

	e.appendLog(resource, models.ActionSyncStart, models.StatusPending, nil)
	defer func() {
		e.appendLog(resource, models.ActionSyncEnd, models.StatusCompleted, map[string]interface{}{
			"synced":    stats.Synced,
			"errors":    stats.Errors,
			"conflicts": conflicts,
		})
	}()

	records, err := e.store.ReadPending(resource)
	if err != nil {
		e.appendLog(resource, models.ActionSyncError, models.StatusFailed, map[string]interface{}{
			"error": err.Error(),
		})
		stats.Errors++
		return stats, 0
	}
	if len(records) == 0 {
		// Nothing pending; no remote calls.
		return stats, 0
	}

	for _, record := range records {
		if e.queue.Has(resource, record.ID()) {
			// Held: an unresolved conflict blocks re-sync of this record.
			continue
		}

		if !record.HasID() {
			if e.pushCreate(ctx, resource, record) {
				stats.Synced++
			} else {
				stats.Errors++
			}
			continue
		}

		remoteRecord, err := e.remote.Get(ctx, resource, record.ID())
		switch {
		case err != nil && apperrors.Is(err, apperrors.ErrRemoteNotFound):
			// Deleted remotely while a local edit was pending. Never
			// silently recreate or drop: queue it for explicit resolution.
			if e.enqueueConflict(resource, record, nil) {
				conflicts++
			} else {
				stats.Synced++
			}
		case err != nil:
			e.recordError(resource, record.ID(), err)
			stats.Errors++
		default:
			if len(conflict.Detect(record, remoteRecord)) > 0 {
				if e.enqueueConflict(resource, record, remoteRecord) {
					conflicts++
				}
				continue
			}
			if e.pushPatch(ctx, resource, record) {
				stats.Synced++
			} else {
				stats.Errors++
			}
		}
	}

	return stats, conflicts
}

// pushCreate pushes a local-only record upstream. The remote collection is
// listed first so a record that already made it upstream in an interrupted
// pass is not duplicated.
func (e *SyncEngine) pushCreate(ctx context.Context, resource string, record models.Record) bool {
	existing, err := e.remote.List(ctx, resource)
	if err != nil {
		e.recordError(resource, "", err)
		return false
	}
	for _, r := range existing {
		if len(conflict.Detect(record, r)) == 0 {
			// Already upstream; just drop it from pending.
			e.dropPending(resource, record)
			return true
		}
	}

	if _, err := e.remote.Create(ctx, resource, businessFields(record)); err != nil {
		e.recordError(resource, "", err)
		return false
	}
	e.dropPending(resource, record)
	return true
}

// pushPatch pushes a non-conflicting record's business fields as a partial
// update.
func (e *SyncEngine) pushPatch(ctx context.Context, resource string, record models.Record) bool {
	if _, err := e.remote.Patch(ctx, resource, record.ID(), businessFields(record)); err != nil {
		e.recordError(resource, record.ID(), err)
		return false
	}
	e.dropPending(resource, record)
	return true
}

// enqueueConflict routes a diverged record to the conflict queue and reports
// whether one was queued. The record is held, not pushed; it does not count
// as an error. A record whose business fields do not differ has nothing to
// resolve; its pending copy is dropped instead, keeping every queued
// ConflictRecord's field list non-empty.
func (e *SyncEngine) enqueueConflict(resource string, local, remote models.Record) bool {
	fields := conflict.Detect(local, remote)
	if len(fields) == 0 {
		e.dropPending(resource, local)
		return false
	}

	c := &models.ConflictRecord{
		ID:             uuid.New().String(),
		Resource:       resource,
		Local:          local,
		Remote:         remote,
		Fields:         fields,
		Classification: conflict.Classify(local, remote),
		DetectedAt:     time.Now(),
	}
	e.queue.Enqueue(c)
	if h := e.handler(); h != nil {
		h.ConflictDetected(c)
	}
	return true
}

// ResolveConflict resolves the head conflict with the supplied per-field
// choices and pushes the result upstream. Every conflicted field must be
// resolved; a partial mapping fails with INCOMPLETE_RESOLUTION and performs
// no remote write. On remote failure the conflict stays queued for retry.
func (e *SyncEngine) ResolveConflict(ctx context.Context, resolutions conflict.Resolutions) error {
	err := e.queue.ResolveCurrent(func(c *models.ConflictRecord) error {
		patch, err := conflict.BuildPatch(c.Fields, resolutions, c.Local, c.Remote)
		if err != nil {
			return err
		}

		if c.Remote.HasID() {
			if _, err := e.remote.Patch(ctx, c.Resource, c.Remote.ID(), patch); err != nil {
				return err
			}
		} else {
			// Remote side is gone; resolving recreates the record.
			recreated := businessFields(c.Local)
			for f, v := range patch {
				recreated[f] = v
			}
			if _, err := e.remote.Create(ctx, c.Resource, recreated); err != nil {
				return err
			}
		}

		e.dropPending(c.Resource, c.Local)
		e.appendLog(c.Resource, models.ActionConflictResolve, models.StatusCompleted, map[string]interface{}{
			"conflict_id": c.ID,
			"record_id":   c.RecordKey(),
			"fields":      c.Fields,
		})
		return nil
	})

	if err != nil {
		e.appendLog("", models.ActionConflictResolve, models.StatusFailed, map[string]interface{}{
			"error": err.Error(),
		})
	}
	return err
}

// RejectConflict discards the head conflict's local copy, leaving the remote
// record untouched on the next pass. No remote write is issued.
func (e *SyncEngine) RejectConflict() error {
	c, err := e.queue.RejectCurrent()
	if err != nil {
		e.appendLog("", models.ActionConflictReject, models.StatusFailed, map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	e.dropPending(c.Resource, c.Local)
	e.appendLog(c.Resource, models.ActionConflictReject, models.StatusCompleted, map[string]interface{}{
		"conflict_id": c.ID,
		"record_id":   c.RecordKey(),
	})
	return nil
}

// ClearConflicts unconditionally drops every queued conflict and its pending
// local copy, returning the count removed. Irreversible: both sides' edits
// for the dropped entries are abandoned. Callers must obtain explicit user
// confirmation first.
func (e *SyncEngine) ClearConflicts() int {
	pending := e.queue.Pending()
	removed := e.queue.Clear()

	for _, c := range pending {
		e.dropPending(c.Resource, c.Local)
	}

	e.appendLog("", models.ActionConflictsClear, models.StatusCompleted, map[string]interface{}{
		"removed": removed,
	})
	return removed
}

// recordError logs one record-level remote failure. Failures are absorbed
// into the stats; the batch continues.
func (e *SyncEngine) recordError(resource, recordID string, err error) {
	e.appendLog(resource, models.ActionSyncError, models.StatusFailed, map[string]interface{}{
		"record_id": recordID,
		"error":     err.Error(),
	})
	logging.Warn("Record push failed", map[string]interface{}{
		"resource":  resource,
		"record_id": recordID,
		"error":     err.Error(),
	})
}

// dropPending removes a record from the pending store, logging rather than
// failing: the push already happened and must not be double-counted.
func (e *SyncEngine) dropPending(resource string, record models.Record) {
	if err := e.store.RemovePending(resource, record); err != nil {
		logging.Warn("Failed to drop pending record", map[string]interface{}{
			"resource": resource,
			"error":    err.Error(),
		})
	}
}

// appendLog writes one audit entry; log failures are reported but never
// interrupt a pass.
func (e *SyncEngine) appendLog(resource string, action models.SyncLogAction, status models.SyncLogStatus, details map[string]interface{}) {
	entry := models.SyncLogEntry{
		ID:        uuid.New().String(),
		Resource:  resource,
		Action:    action,
		Status:    status,
		Details:   details,
		Timestamp: time.Now(),
	}
	if err := e.store.AppendLog(entry); err != nil {
		logging.Warn("Failed to append sync log entry", map[string]interface{}{
			"action": string(action),
			"error":  err.Error(),
		})
	}
}

// businessFields strips the metadata fields from a record, leaving the
// payload to push upstream.
func businessFields(record models.Record) models.Record {
	out := models.Record{}
	for k, v := range record {
		if !models.MetadataFields[k] {
			out[k] = v
		}
	}
	return out
}
