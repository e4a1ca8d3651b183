// Package conflict provides field-level conflict detection and resolution
// for offline synchronization.
package conflict

import (
	"reflect"
	"sort"

	"github.com/rentnest/rentnest/backend/internal/models"
)

// Detect returns the names of non-metadata fields whose values differ
// structurally between the local and remote copies of a record. A field
// present on one side and absent on the other counts as differing.
//
// Field names are compared in sorted order, so detection is deterministic
// and each differing field appears exactly once. Detect is pure: it never
// mutates its inputs and has no side effects.
func Detect(local, remote models.Record) []string {
	fields := fieldUnion(local, remote)

	var conflicted []string
	for _, f := range fields {
		lv, lok := local[f]
		rv, rok := remote[f]
		if lok != rok || !deepEqual(lv, rv) {
			conflicted = append(conflicted, f)
		}
	}
	return conflicted
}

// Classify labels a record-level divergence for the resolution suggestion
// helper. The label is advisory; it does not change detection.
func Classify(local, remote models.Record) models.Classification {
	switch {
	case len(remote) == 0:
		return models.ClassificationLocalAdded
	case len(local) == 0:
		return models.ClassificationRemoteDeleted
	default:
		return models.ClassificationModified
	}
}

// ClassifyField labels a single field divergence.
func ClassifyField(field string, local, remote models.Record) models.Classification {
	lv, lok := local[field]
	rv, rok := remote[field]

	switch {
	case lok && !rok:
		return models.ClassificationLocalAdded
	case !lok && rok:
		return models.ClassificationRemoteDeleted
	case isNumber(lv) && isNumber(rv):
		return models.ClassificationNumericChange
	default:
		return models.ClassificationModified
	}
}

// fieldUnion returns the sorted union of non-metadata field names.
func fieldUnion(local, remote models.Record) []string {
	seen := make(map[string]bool, len(local)+len(remote))
	for f := range local {
		if !models.MetadataFields[f] {
			seen[f] = true
		}
	}
	for f := range remote {
		if !models.MetadataFields[f] {
			seen[f] = true
		}
	}

	fields := make([]string, 0, len(seen))
	for f := range seen {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// deepEqual compares two JSON-decoded values structurally: maps are
// order-independent, slices positional, scalars exact.
func deepEqual(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case float64, int, int64:
		return true
	default:
		return false
	}
}
