// Package queue provides the FIFO conflict queue for offline sync.
//
// The queue never reorders entries and never drops one except through Clear
// or a successful resolve/reject of the head. A failed resolution leaves the
// head in place; there is no partial dequeue. Queues built over a Persistence
// write every mutation through, so queued conflicts survive process restarts.
package queue

import (
	"sync"

	apperrors "github.com/rentnest/rentnest/backend/internal/errors"
	"github.com/rentnest/rentnest/backend/internal/logging"
	"github.com/rentnest/rentnest/backend/internal/models"
)

// Persistence stores queue snapshots durably.
type Persistence interface {
	ReadConflicts() ([]*models.ConflictRecord, error)
	WriteConflicts(conflicts []*models.ConflictRecord) error
}

// ConflictQueue holds pending conflicts in arrival order.
type ConflictQueue struct {
	mu      sync.Mutex
	entries []*models.ConflictRecord
	persist Persistence
}

// NewConflictQueue creates an empty in-memory queue.
func NewConflictQueue() *ConflictQueue {
	return &ConflictQueue{}
}

// NewDurableConflictQueue loads the persisted queue and writes every
// mutation back through p. An unreadable snapshot starts the queue empty
// rather than failing construction.
func NewDurableConflictQueue(p Persistence) *ConflictQueue {
	q := &ConflictQueue{persist: p}

	entries, err := p.ReadConflicts()
	if err != nil {
		logging.Warn("Failed to load persisted conflict queue", map[string]interface{}{
			"error": err.Error(),
		})
		return q
	}
	q.entries = entries

	if len(entries) > 0 {
		logging.Info("Restored persisted conflict queue", map[string]interface{}{
			"queued": len(entries),
		})
	}
	return q
}

// save writes the current entries through to the persistence layer.
// Callers hold q.mu.
func (q *ConflictQueue) save() {
	if q.persist == nil {
		return
	}
	if err := q.persist.WriteConflicts(q.entries); err != nil {
		logging.Warn("Failed to persist conflict queue", map[string]interface{}{
			"queued": len(q.entries),
			"error":  err.Error(),
		})
	}
}

// Enqueue appends a conflict to the tail.
func (q *ConflictQueue) Enqueue(c *models.ConflictRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, c)
	q.save()

	logging.Info("Conflict queued", map[string]interface{}{
		"conflict_id": c.ID,
		"resource":    c.Resource,
		"fields":      c.Fields,
		"queued":      len(q.entries),
	})
}

// Current returns the head conflict without removing it.
func (q *ConflictQueue) Current() (*models.ConflictRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return nil, false
	}
	return q.entries[0], true
}

// ResolveCurrent applies fn to the head conflict and removes it only if fn
// succeeds. On failure the head stays queued, so a crash or remote error
// mid-resolution never loses the conflict.
func (q *ConflictQueue) ResolveCurrent(fn func(*models.ConflictRecord) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return apperrors.New(apperrors.ErrEmptyQueue, "no conflict pending")
	}

	head := q.entries[0]
	if err := fn(head); err != nil {
		return err
	}

	q.entries = q.entries[1:]
	q.save()
	return nil
}

// RejectCurrent removes the head conflict without any remote write, leaving
// the remote record untouched on the next pass. Returns the rejected entry.
func (q *ConflictQueue) RejectCurrent() (*models.ConflictRecord, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return nil, apperrors.New(apperrors.ErrEmptyQueue, "no conflict pending")
	}

	head := q.entries[0]
	q.entries = q.entries[1:]
	q.save()

	logging.Info("Conflict rejected", map[string]interface{}{
		"conflict_id": head.ID,
		"resource":    head.Resource,
	})
	return head, nil
}

// Clear removes every entry unconditionally and returns the count removed.
// Irreversible; callers must require explicit user confirmation first.
func (q *ConflictQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := len(q.entries)
	q.entries = nil
	q.save()

	if removed > 0 {
		logging.Warn("Conflict queue cleared", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed
}

// Len returns the number of queued conflicts.
func (q *ConflictQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Has reports whether a record of a resource is already queued. Sync passes
// use this to hold re-sync of a record with an unresolved conflict.
func (q *ConflictQueue) Has(resource, recordKey string) bool {
	if recordKey == "" {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, c := range q.entries {
		if c.Resource == resource && c.RecordKey() == recordKey {
			return true
		}
	}
	return false
}

// Pending returns a snapshot of the queued conflicts in order.
func (q *ConflictQueue) Pending() []*models.ConflictRecord {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*models.ConflictRecord, len(q.entries))
	copy(out, q.entries)
	return out
}
