package conflict

import (
	apperrors "github.com/rentnest/rentnest/backend/internal/errors"
	"github.com/rentnest/rentnest/backend/internal/models"
)

// Source selects which side of a conflict a field value is taken from.
// It is a tagged strategy so a future proper three-way merge can be added
// without touching the queue or orchestrator contracts.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceMerge  Source = "merge"
)

// Resolutions maps a conflicted field name to its chosen source.
type Resolutions map[string]Source

// ResolveField returns the value a field resolves to under the given source.
//
// SourceMerge is a local-bias heuristic, not a CRDT merge: when both values
// are JSON objects the result is their key union with local precedence on
// collisions; otherwise the local value wins when present, else the remote.
func ResolveField(field string, source Source, local, remote models.Record) (interface{}, error) {
	switch source {
	case SourceRemote:
		return remote[field], nil
	case SourceLocal:
		return local[field], nil
	case SourceMerge:
		return mergeValues(local[field], remote[field], local, remote, field), nil
	default:
		return nil, apperrors.Newf(apperrors.ErrUnknownResolutionSource,
			"unknown resolution source %q for field %q", source, field)
	}
}

// BuildPatch validates a resolution set against the conflicted fields and
// produces the partial record to push upstream. Every conflicted field must
// be resolved; otherwise BuildPatch fails with INCOMPLETE_RESOLUTION and no
// partial result is returned (all-or-nothing at the record level).
func BuildPatch(fields []string, resolutions Resolutions, local, remote models.Record) (models.Record, error) {
	var missing []string
	for _, f := range fields {
		if _, ok := resolutions[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.Newf(apperrors.ErrIncompleteResolution,
			"missing resolutions for fields %v", missing)
	}

	patch := models.Record{}
	for _, f := range fields {
		value, err := ResolveField(f, resolutions[f], local, remote)
		if err != nil {
			return nil, err
		}
		patch[f] = value
	}
	return patch, nil
}

// Suggest proposes a non-binding default source for a classification.
// Generic modifications have no suggestion; the caller must choose.
func Suggest(c models.Classification) (Source, bool) {
	switch c {
	case models.ClassificationLocalAdded:
		return SourceLocal, true
	case models.ClassificationRemoteDeleted:
		return SourceRemote, true
	default:
		return "", false
	}
}

// SuggestResolutions proposes defaults for every conflicted field that has
// one. Fields without a suggestion are absent from the result and must be
// chosen explicitly.
func SuggestResolutions(c *models.ConflictRecord) Resolutions {
	suggestions := Resolutions{}
	for _, f := range c.Fields {
		if source, ok := Suggest(ClassifyField(f, c.Local, c.Remote)); ok {
			suggestions[f] = source
		}
	}
	return suggestions
}

// mergeValues implements the SourceMerge policy for one field.
func mergeValues(lv, rv interface{}, local, remote models.Record, field string) interface{} {
	lm, lIsMap := lv.(map[string]interface{})
	rm, rIsMap := rv.(map[string]interface{})
	if lIsMap && rIsMap {
		merged := make(map[string]interface{}, len(lm)+len(rm))
		for k, v := range rm {
			merged[k] = v
		}
		for k, v := range lm {
			merged[k] = v
		}
		return merged
	}

	if _, ok := local[field]; ok {
		return lv
	}
	return rv
}
