// Package store implements the durable keyed store backing the sync core.
//
// Pending records for a resource live under the fixed key "data_<resource>",
// the sync log under "sync_logs" and the conflict queue under
// "conflict_queue", all as JSON documents. The log is
// capped at models.MaxSyncLogEntries; the oldest entries are trimmed on write
// so the cap holds across process restarts.
package store

import (
	"database/sql"
	"encoding/json"
	"time"

	apperrors "github.com/rentnest/rentnest/backend/internal/errors"
	"github.com/rentnest/rentnest/backend/internal/db"
	"github.com/rentnest/rentnest/backend/internal/models"
)

const (
	dataKeyPrefix = "data_"
	logKey        = "sync_logs"
	conflictsKey  = "conflict_queue"
)

// Store provides read/write access to pending records and the sync log.
type Store struct {
	db *db.DB
}

// New creates a Store over an open database.
func New(database *db.DB) *Store {
	return &Store{db: database}
}

// ReadPending returns the locally mutated/created records awaiting sync for
// a resource. A resource with no pending data yields an empty slice.
func (s *Store) ReadPending(resource string) ([]models.Record, error) {
	raw, err := s.get(dataKeyPrefix + resource)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var records []models.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "corrupt pending data for "+resource, err)
	}
	return records, nil
}

// WritePending replaces the pending collection for a resource.
func (s *Store) WritePending(resource string, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to encode pending data", err)
	}
	return s.set(dataKeyPrefix+resource, string(raw))
}

// RemovePending drops one record from a resource's pending collection once it
// has been pushed, resolved or rejected. Records are matched by remote id
// when present, otherwise by identical JSON encoding.
func (s *Store) RemovePending(resource string, record models.Record) error {
	records, err := s.ReadPending(resource)
	if err != nil {
		return err
	}

	target, err := json.Marshal(record)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to encode record", err)
	}

	kept := make([]models.Record, 0, len(records))
	removed := false
	for _, r := range records {
		if !removed {
			if id := record.ID(); id != "" && r.ID() == id {
				removed = true
				continue
			}
			if enc, err := json.Marshal(r); err == nil && string(enc) == string(target) {
				removed = true
				continue
			}
		}
		kept = append(kept, r)
	}

	if !removed {
		return nil
	}
	return s.WritePending(resource, kept)
}

// AppendLog appends one entry to the sync log, trimming to the newest
// models.MaxSyncLogEntries entries.
func (s *Store) AppendLog(entry models.SyncLogEntry) error {
	entries, err := s.ReadLog()
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if len(entries) > models.MaxSyncLogEntries {
		entries = entries[len(entries)-models.MaxSyncLogEntries:]
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to encode sync log", err)
	}
	return s.set(logKey, string(raw))
}

// ReadLog returns the retained sync log entries, oldest first.
func (s *Store) ReadLog() ([]models.SyncLogEntry, error) {
	raw, err := s.get(logKey)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var entries []models.SyncLogEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "corrupt sync log", err)
	}
	return entries, nil
}

// ReadConflicts returns the persisted conflict queue, oldest first.
func (s *Store) ReadConflicts() ([]*models.ConflictRecord, error) {
	raw, err := s.get(conflictsKey)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var conflicts []*models.ConflictRecord
	if err := json.Unmarshal([]byte(raw), &conflicts); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "corrupt conflict queue", err)
	}
	return conflicts, nil
}

// WriteConflicts replaces the persisted conflict queue. Queued conflicts
// outlive the process; only an explicit resolve, reject or clear removes one.
func (s *Store) WriteConflicts(conflicts []*models.ConflictRecord) error {
	if conflicts == nil {
		conflicts = []*models.ConflictRecord{}
	}
	raw, err := json.Marshal(conflicts)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to encode conflict queue", err)
	}
	return s.set(conflictsKey, string(raw))
}

// get reads one key, returning "" when absent.
func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabase, "failed to read key "+key, err)
	}
	return value, nil
}

// set upserts one key.
func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to write key "+key, err)
	}
	return nil
}
