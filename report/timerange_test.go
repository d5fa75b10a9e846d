package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

func TestResolveRange_Presets(t *testing.T) {
	tests := []struct {
		rangeKey  string
		wantKey   string
		wantStart string
	}{
		{"7d", "7d", "2025-03-09"},
		{"30d", "30d", "2025-02-14"},
		{"90d", "90d", "2024-12-16"},
		{"365d", "365d", "2024-03-16"},
	}

	for _, tt := range tests {
		tr, err := ResolveRange(tt.rangeKey, "", "", testNow)
		require.NoError(t, err)
		assert.Equal(t, tt.wantKey, tr.Key)
		assert.Equal(t, tt.wantStart, tr.StartDate)
		assert.Empty(t, tr.EndDate)
	}
}

func TestResolveRange_DefaultAndUnknown(t *testing.T) {
	tr, err := ResolveRange("", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, "30d", tr.Key)
	assert.Equal(t, "2025-02-14", tr.StartDate)

	tr, err = ResolveRange("bogus", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, "30d", tr.Key)
	assert.Equal(t, "2025-02-14", tr.StartDate)
}

func TestResolveRange_DayTokenClamped(t *testing.T) {
	tr, err := ResolveRange("14d", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, "14d", tr.Key)
	assert.Equal(t, "2025-03-02", tr.StartDate)

	// above the clamp, behaves as 365d
	tr, err = ResolveRange("5000d", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-16", tr.StartDate)

	// below the clamp, behaves as 1d
	tr, err = ResolveRange("0d", "", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", tr.StartDate)
}

func TestResolveRange_ExplicitDatesWin(t *testing.T) {
	tr, err := ResolveRange("7d", "2025-01-01", "2025-01-31", testNow)
	require.NoError(t, err)
	assert.Equal(t, CustomRangeKey, tr.Key)
	assert.Equal(t, "2025-01-01", tr.StartDate)
	assert.Equal(t, "2025-01-31", tr.EndDate)
}

func TestResolveRange_RFC3339Normalized(t *testing.T) {
	tr, err := ResolveRange("", "2025-01-01T23:30:00+02:00", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", tr.StartDate)
}

func TestResolveRange_InvalidDate(t *testing.T) {
	_, err := ResolveRange("", "01/02/2025", "", testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")

	_, err = ResolveRange("", "2025-01-01", "not-a-date", testNow)
	require.Error(t, err)
}
