package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalTriState(t *testing.T) {
	var patch struct {
		DueDate Optional[string] `json:"due_date"`
	}

	// Key absent: UnmarshalJSON never runs, Set stays false.
	require.NoError(t, json.Unmarshal([]byte(`{}`), &patch))
	assert.False(t, patch.DueDate.Set)

	// Explicit null: present but cleared.
	patch.DueDate = Optional[string]{}
	require.NoError(t, json.Unmarshal([]byte(`{"due_date": null}`), &patch))
	assert.True(t, patch.DueDate.Set)
	assert.Nil(t, patch.DueDate.Value)

	// Value present.
	patch.DueDate = Optional[string]{}
	require.NoError(t, json.Unmarshal([]byte(`{"due_date": "2025-06-01"}`), &patch))
	assert.True(t, patch.DueDate.Set)
	require.NotNil(t, patch.DueDate.Value)
	assert.Equal(t, "2025-06-01", *patch.DueDate.Value)
}

func TestOptionalMarshal(t *testing.T) {
	v := "x"
	data, err := json.Marshal(Optional[string]{Set: true, Value: &v})
	require.NoError(t, err)
	assert.Equal(t, `"x"`, string(data))

	data, err = json.Marshal(Optional[string]{Set: true})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, pageSize         int
		wantPage, wantPageSize int
	}{
		{1, 20, 1, 20},
		{0, 20, 1, 20},
		{-3, 0, 1, 20},
		{2, 500, 2, 100},
		{3, 1, 3, 1},
	}

	for _, tt := range tests {
		page, pageSize := NormalizePage(tt.page, tt.pageSize)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantPageSize, pageSize)
	}
}

func TestNewPageMetaRoundsUp(t *testing.T) {
	meta := NewPageMeta(45, 3, 20)
	assert.Equal(t, 3, meta.TotalPages)

	assert.Equal(t, 0, NewPageMeta(0, 1, 20).TotalPages)
	assert.Equal(t, 1, NewPageMeta(20, 1, 20).TotalPages)
	assert.Equal(t, 2, NewPageMeta(21, 1, 20).TotalPages)
}
