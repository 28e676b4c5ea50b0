package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-06-01"`), &d))
	assert.Equal(t, NewDate(2024, time.June, 1), d)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-06-01"`, string(out))
}

func TestDateJSONRejectsMalformed(t *testing.T) {
	for _, raw := range []string{`"2024-13-01"`, `"01/06/2024"`, `"2024-06-01T10:00:00Z"`, `20240601`, `""`} {
		t.Run(raw, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(raw), &d)
			var dateErr *DateError
			assert.ErrorAs(t, err, &dateErr)
		})
	}
}

func TestDateScan(t *testing.T) {
	want := NewDate(2024, time.June, 1)

	tests := []struct {
		name string
		src  any
	}{
		{"time", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{"time with offset", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.FixedZone("X", 3*3600))},
		{"string", "2024-06-01"},
		{"bytes", []byte("2024-06-01")},
		{"timestamp text", "2024-06-01 00:00:00"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tc.src))
			assert.Equal(t, want, d)
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("June 1st"))
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(2024, time.February, 29).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", v)
}

func TestTaskJSONShape(t *testing.T) {
	task := Task{
		ID:         1,
		Name:       "Write report",
		Deadline:   NewDate(2024, time.June, 1),
		TotalSteps: 5,
		StepName:   "Draft",
		Type:       "writing",
	}

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1,
		"name": "Write report",
		"deadline": "2024-06-01",
		"total_steps": 5,
		"completed_steps": 0,
		"step_name": "Draft",
		"type": "writing",
		"image_url": null
	}`, string(out))
}
