package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rentnest/rentnest/backend/internal/models"
)

func TestDetectEqualRecords(t *testing.T) {
	local := models.Record{"name": "Flat 4B", "rent": 1000.0}
	remote := models.Record{"name": "Flat 4B", "rent": 1000.0}

	assert.Empty(t, Detect(local, remote))
}

func TestDetectIgnoresMetadata(t *testing.T) {
	local := models.Record{
		"id":         5.0,
		"created_at": "2026-01-01T00:00:00Z",
		"updated_at": "2026-02-01T00:00:00Z",
		"deleted_at": nil,
		"name":       "Flat 4B",
	}
	remote := models.Record{
		"id":         5.0,
		"created_at": "2025-12-31T00:00:00Z",
		"updated_at": "2026-03-01T00:00:00Z",
		"name":       "Flat 4B",
	}

	assert.Empty(t, Detect(local, remote))
}

func TestDetectDifferingField(t *testing.T) {
	local := models.Record{"id": 5.0, "rent": 1000.0}
	remote := models.Record{"id": 5.0, "rent": 1200.0}

	assert.Equal(t, []string{"rent"}, Detect(local, remote))
}

func TestDetectFieldPresentOnOneSide(t *testing.T) {
	local := models.Record{"name": "Flat 4B", "notes": "repainted"}
	remote := models.Record{"name": "Flat 4B"}

	assert.Equal(t, []string{"notes"}, Detect(local, remote))

	// Symmetric: remote-only fields also differ.
	assert.Equal(t, []string{"notes"}, Detect(remote, local))
}

func TestDetectNilValueVersusAbsent(t *testing.T) {
	local := models.Record{"name": "Flat 4B", "notes": nil}
	remote := models.Record{"name": "Flat 4B"}

	assert.Equal(t, []string{"notes"}, Detect(local, remote))
}

func TestDetectNestedStructures(t *testing.T) {
	local := models.Record{
		"address": map[string]interface{}{"street": "High St", "number": 4.0},
		"tags":    []interface{}{"a", "b"},
	}
	remote := models.Record{
		// Same object content; map key order is irrelevant in Go maps.
		"address": map[string]interface{}{"number": 4.0, "street": "High St"},
		"tags":    []interface{}{"b", "a"},
	}

	// Objects compare structurally, arrays positionally.
	assert.Equal(t, []string{"tags"}, Detect(local, remote))
}

func TestDetectDeterministicAndIdempotent(t *testing.T) {
	local := models.Record{"b": 1.0, "a": "x", "c": true}
	remote := models.Record{"b": 2.0, "a": "y", "c": false}

	first := Detect(local, remote)
	assert.Equal(t, []string{"a", "b", "c"}, first)

	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Detect(local, remote))
	}
}

func TestDetectAbsentRemote(t *testing.T) {
	local := models.Record{"id": 5.0, "name": "Flat 4B", "rent": 1000.0}

	fields := Detect(local, nil)
	assert.Equal(t, []string{"name", "rent"}, fields)
}

func TestClassify(t *testing.T) {
	local := models.Record{"name": "Flat 4B"}
	remote := models.Record{"name": "Unit 4B"}

	assert.Equal(t, models.ClassificationLocalAdded, Classify(local, nil))
	assert.Equal(t, models.ClassificationRemoteDeleted, Classify(nil, remote))
	assert.Equal(t, models.ClassificationModified, Classify(local, remote))
}

func TestClassifyField(t *testing.T) {
	local := models.Record{"rent": 1000.0, "notes": "repainted", "name": "Flat 4B"}
	remote := models.Record{"rent": 1200.0, "wifi": true, "name": "Unit 4B"}

	assert.Equal(t, models.ClassificationNumericChange, ClassifyField("rent", local, remote))
	assert.Equal(t, models.ClassificationLocalAdded, ClassifyField("notes", local, remote))
	assert.Equal(t, models.ClassificationRemoteDeleted, ClassifyField("wifi", local, remote))
	assert.Equal(t, models.ClassificationModified, ClassifyField("name", local, remote))
}
