package audit

import (
	"time"

	"github.com/gofrs/uuid"
)

// Change records a single field transition inside an UPDATE audit entry.
type Change struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// Diff maps field names to changes. Unchanged fields are never present, so
// an empty diff means the update was a no-op and no audit row is written.
// Equality is typed per field: exact string comparison, instant comparison
// for timestamps, value comparison for UUIDs. Nothing is coerced through
// string formatting.
type Diff map[string]Change

func NewDiff() Diff {
	return make(Diff)
}

func (d Diff) Empty() bool {
	return len(d) == 0
}

func (d Diff) Str(field, old, new string) {
	if old != new {
		d[field] = Change{Old: old, New: new}
	}
}

func (d Diff) StrPtr(field string, old, new *string) {
	if equalStrPtr(old, new) {
		return
	}
	d[field] = Change{Old: derefStr(old), New: derefStr(new)}
}

func (d Diff) TimePtr(field string, old, new *time.Time) {
	if equalTimePtr(old, new) {
		return
	}
	d[field] = Change{Old: formatTime(old), New: formatTime(new)}
}

func (d Diff) UUIDPtr(field string, old, new *uuid.UUID) {
	if equalUUIDPtr(old, new) {
		return
	}
	d[field] = Change{Old: formatUUID(old), New: formatUUID(new)}
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func equalUUIDPtr(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func derefStr(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func formatTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatUUID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
