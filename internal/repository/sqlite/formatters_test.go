package sqlite

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimeForDB(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "Valid time",
			input:    time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC),
			expected: "2024-01-15T10:30:45.000000000Z",
		},
		{
			name:     "Zero time",
			input:    time.Time{},
			expected: "0001-01-01T00:00:00.000000000Z",
		},
		{
			name:     "Time with timezone is stored as UTC",
			input:    time.Date(2024, 6, 15, 14, 30, 0, 0, time.FixedZone("EST", -5*3600)),
			expected: "2024-06-15T19:30:00.000000000Z",
		},
		{
			name:     "Time with nanoseconds",
			input:    time.Date(2024, 3, 10, 9, 15, 30, 123456789, time.UTC),
			expected: "2024-03-10T09:15:30.123456789Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTimeForDB(tt.input))
		})
	}
}

func TestFormatTimePtrForDB(t *testing.T) {
	assert.Nil(t, FormatTimePtrForDB(nil))

	ts := time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)
	assert.Equal(t, "2024-01-15T10:30:45.000000000Z", FormatTimePtrForDB(&ts))
}

func TestParseTimeFromDB(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{
			name:     "stored layout",
			input:    "2024-03-10T09:15:30.123456789Z",
			expected: time.Date(2024, 3, 10, 9, 15, 30, 123456789, time.UTC),
		},
		{
			name:     "plain RFC3339",
			input:    "2024-01-15T10:30:45Z",
			expected: time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:        "garbage",
			input:       "yesterday",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseTimeFromDB(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(result), "expected %v, got %v", tt.expected, result)
		})
	}
}

func TestFormatTimeForDB_SortsLikeTime(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 1, 10, 0, 0, 500, time.UTC),
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600)),
		time.Date(2023, 12, 31, 23, 59, 59, 999999999, time.UTC),
	}

	formatted := make([]string, len(times))
	for i, ts := range times {
		formatted[i] = FormatTimeForDB(ts)
	}
	sort.Strings(formatted)

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	for i, ts := range times {
		assert.Equal(t, FormatTimeForDB(ts), formatted[i])
	}

	roundTrip, err := ParseTimeFromDB(FormatTimeForDB(times[2]))
	require.NoError(t, err)
	assert.True(t, times[2].Equal(roundTrip))
}
