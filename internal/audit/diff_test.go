package audit

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDiffStr(t *testing.T) {
	d := NewDiff()
	d.Str("title", "old title", "new title")
	d.Str("description", "same", "same")

	assert.False(t, d.Empty())
	assert.Len(t, d, 1)
	assert.Equal(t, Change{Old: "old title", New: "new title"}, d["title"])
	_, present := d["description"]
	assert.False(t, present)
}

func TestDiffEmpty(t *testing.T) {
	d := NewDiff()
	assert.True(t, d.Empty())

	d.Str("x", "a", "a")
	assert.True(t, d.Empty())
}

func TestDiffTimePtrEqualInstantsDifferentZones(t *testing.T) {
	utc := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	offset := utc.In(time.FixedZone("CEST", 2*60*60))

	d := NewDiff()
	d.TimePtr("dueDate", &utc, &offset)

	// Same instant in a different zone is not a change.
	assert.True(t, d.Empty())
}

func TestDiffTimePtrNilTransitions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	d := NewDiff()
	d.TimePtr("completedAt", nil, &now)
	assert.Equal(t, Change{Old: nil, New: "2025-06-01T12:00:00Z"}, d["completedAt"])

	d2 := NewDiff()
	d2.TimePtr("completedAt", &now, nil)
	assert.Equal(t, Change{Old: "2025-06-01T12:00:00Z", New: nil}, d2["completedAt"])

	d3 := NewDiff()
	d3.TimePtr("completedAt", nil, nil)
	assert.True(t, d3.Empty())
}

func TestDiffUUIDPtr(t *testing.T) {
	a := uuid.Must(uuid.NewV4())
	b := uuid.Must(uuid.NewV4())
	aCopy := a

	d := NewDiff()
	d.UUIDPtr("assigneeId", &a, &aCopy)
	assert.True(t, d.Empty())

	d.UUIDPtr("assigneeId", &a, &b)
	assert.Equal(t, Change{Old: a.String(), New: b.String()}, d["assigneeId"])

	d2 := NewDiff()
	d2.UUIDPtr("assigneeId", &a, nil)
	assert.Equal(t, Change{Old: a.String(), New: nil}, d2["assigneeId"])
}

func TestDiffStrPtr(t *testing.T) {
	low := "Low"
	high := "High"

	d := NewDiff()
	d.StrPtr("priority", &low, &high)
	assert.Equal(t, Change{Old: "Low", New: "High"}, d["priority"])

	d2 := NewDiff()
	d2.StrPtr("priority", nil, &low)
	assert.Equal(t, Change{Old: nil, New: "Low"}, d2["priority"])

	d3 := NewDiff()
	d3.StrPtr("priority", &low, &low)
	assert.True(t, d3.Empty())
}
