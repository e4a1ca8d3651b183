// Package models provides data model definitions for the Rentnest sync core.
package models

import "strconv"

// Record is one item within a resource, as an opaque field-to-value mapping.
// Values are the shapes produced by encoding/json: map[string]interface{},
// []interface{}, float64, string, bool and nil.
type Record map[string]interface{}

// Metadata field names excluded from conflict comparison. They are
// bookkeeping, not business state.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
	FieldDeletedAt = "deleted_at"
)

// MetadataFields is the fixed set of fields skipped by conflict detection.
var MetadataFields = map[string]bool{
	FieldID:        true,
	FieldCreatedAt: true,
	FieldUpdatedAt: true,
	FieldDeletedAt: true,
}

// ID returns the record's remote identity, or "" if it has none yet.
// Identities assigned by the remote store are immutable.
func (r Record) ID() string {
	v, ok := r[FieldID]
	if !ok || v == nil {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case float64:
		// JSON numbers decode as float64; remote ids are integral.
		return formatNumericID(id)
	default:
		return ""
	}
}

// HasID reports whether the record has been persisted remotely.
func (r Record) HasID() bool {
	return r.ID() != ""
}

// Clone returns a shallow copy of the record. Field values are shared;
// callers must not mutate nested structures of a clone.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func formatNumericID(f float64) string {
	// Avoid scientific notation for large ids.
	return strconv.FormatFloat(f, 'f', -1, 64)
}
