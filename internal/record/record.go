// Package record defines the canonical Record value: a JSON object plus the
// three reserved metadata keys the engine owns (_id, _created_at, _updated_at).
package record

import (
	"time"

	"github.com/google/uuid"
)

// Reserved metadata keys. These are never treated as user fields.
const (
	KeyID        = "_id"
	KeyCreatedAt = "_created_at"
	KeyUpdatedAt = "_updated_at"
)

// Record is a schemaless JSON object. It decodes directly from and encodes
// directly to a JSON object; reserved keys live alongside user fields at the
// top level, matching the on-disk shape.
type Record map[string]any

// Clone returns a deep-enough copy of r: the top-level map is new, and any
// nested map/slice value is itself deep-copied so callers can mutate the
// clone without aliasing the original (required by the File Cache's
// copy-out contract).
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	default:
		return v
	}
}

// ID returns the record's _id field, or "" if absent or not a string.
func (r Record) ID() string {
	s, _ := r[KeyID].(string)
	return s
}

// IsObject reports whether v decoded from JSON as a top-level object, the
// only shape insert() accepts.
func IsObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// New builds a fresh Record from an inserted JSON object, stamping the
// reserved fields. now is injected so callers can test deterministically.
func New(fields map[string]any, now time.Time) Record {
	r := make(Record, len(fields)+2)
	for k, v := range fields {
		r[k] = v
	}
	r[KeyID] = uuid.NewString()
	r[KeyCreatedAt] = now.UTC().Format(time.RFC3339Nano)
	delete(r, KeyUpdatedAt)
	return r
}

// ApplyPatch performs the shallow merge required by update-by-query and
// update-by-id: top-level keys in patch overwrite those in r, reserved keys
// in patch are ignored, and _updated_at is stamped with now.
func (r Record) ApplyPatch(patch map[string]any, now time.Time) {
	for k, v := range patch {
		if k == KeyID || k == KeyCreatedAt || k == KeyUpdatedAt {
			continue
		}
		r[k] = v
	}
	r[KeyUpdatedAt] = now.UTC().Format(time.RFC3339Nano)
}
