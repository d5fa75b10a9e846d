package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRepo_Loads(t *testing.T) {
	r, err := NewSampleRepo()
	require.NoError(t, err)

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	records := r.GetCampaigns("", "", now)
	require.NotEmpty(t, records)

	for _, rec := range records {
		assert.NotEmpty(t, rec.Date)
		assert.NotEmpty(t, rec.Campaign)
		assert.Greater(t, rec.Sent, 0.0)
	}
}

func TestSampleRepo_WindowFilter(t *testing.T) {
	r, err := NewSampleRepo()
	require.NoError(t, err)

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	all := r.GetCampaigns("", "", now)
	week := r.GetCampaigns("2025-03-08", "", now)

	assert.Less(t, len(week), len(all))
	for _, rec := range week {
		assert.GreaterOrEqual(t, rec.Date, "2025-03-08")
	}

	none := r.GetCampaigns("2030-01-01", "", now)
	assert.Empty(t, none)
}
