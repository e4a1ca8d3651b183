// Package models provides data model definitions for the Rentnest sync core.
package models

// ResourceStats accounts for one resource within a sync pass.
type ResourceStats struct {
	Synced int `json:"synced"`
	Errors int `json:"errors"`
}

// SyncStats aggregates one orchestration run. Produced fresh per run and
// never mutated after return.
type SyncStats struct {
	// Total is the count of resources requested.
	Total int `json:"total"`
	// Synced is the count of records successfully pushed.
	Synced int `json:"synced"`
	// Errors is the count of records that failed to push.
	Errors int `json:"errors"`
	// Conflicts is the count of records routed to the conflict queue.
	Conflicts int `json:"conflicts"`
	// Results holds the per-resource breakdown.
	Results map[string]ResourceStats `json:"results"`
}
