// Package models provides data model definitions for the Rentnest sync core.
package models

import "time"

// Classification is an advisory label describing why a field or record
// diverged. It drives resolution suggestions only; detection itself is
// classification-agnostic.
type Classification string

const (
	ClassificationModified      Classification = "modified"
	ClassificationNumericChange Classification = "numeric_change"
	ClassificationLocalAdded    Classification = "local_added"
	ClassificationRemoteDeleted Classification = "remote_deleted"
)

// ConflictRecord captures a local/remote divergence awaiting explicit
// resolution. Fields holds the differing non-metadata field names in
// detection order, each exactly once; it is never empty.
type ConflictRecord struct {
	ID             string         `json:"id"`
	Resource       string         `json:"resource"`
	Local          Record         `json:"local"`
	Remote         Record         `json:"remote"`
	Fields         []string       `json:"conflicted_fields"`
	Classification Classification `json:"classification"`
	DetectedAt     time.Time      `json:"detected_at"`
}

// RecordKey identifies the conflicted record within its resource.
// Local-side key falls back to the remote one for remote-only records.
func (c *ConflictRecord) RecordKey() string {
	if id := c.Local.ID(); id != "" {
		return id
	}
	return c.Remote.ID()
}
