package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	t.Run("NaiveIsLocal", func(t *testing.T) {
		ts, err := ParseTimestamp("2024-03-05 14:07:09")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local), ts.Time)
		assert.Equal(t, "2024-03-05 14:07:09", ts.String())
	})

	t.Run("RFC3339", func(t *testing.T) {
		ts, err := ParseTimestamp("2024-03-05T14:07:09Z")
		require.NoError(t, err)
		assert.True(t, ts.Equal(time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)))
	})

	t.Run("Empty", func(t *testing.T) {
		ts, err := ParseTimestamp("")
		require.NoError(t, err)
		assert.True(t, ts.IsZero())
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := ParseTimestamp("yesterday")
		assert.Error(t, err)
	})
}

func TestProblemJSON(t *testing.T) {
	var p Problem
	raw := `{"id":"7","problem":"p","solution":"s","category":"","timestamp":"2024-01-01 10:00:00","updated_at":null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "7", p.ID)
	assert.Equal(t, DefaultCategory, p.DisplayCategory())
	assert.True(t, p.UpdatedAt.IsZero())
	assert.False(t, p.Updated())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"timestamp":42}`), &p))
}

func TestUpdated(t *testing.T) {
	created := NewTimestamp(time.Date(2024, 1, 1, 10, 0, 0, 500, time.Local))
	assert.Zero(t, created.Nanosecond())

	tests := []struct {
		name    string
		updated Timestamp
		want    bool
	}{
		{"Never", Timestamp{}, false},
		{"SameInstant", created, false},
		{"Later", NewTimestamp(created.Add(time.Minute)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Problem{Timestamp: created, UpdatedAt: tt.updated}
			assert.Equal(t, tt.want, p.Updated())
		})
	}
}
