package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/info-321/React-Email-Dashboard/entity"
)

func testKey(source string) *entity.ReportKey {
	return &entity.ReportKey{
		RangeKey:  "30d",
		StartDate: "2025-01-01",
		Source:    source,
	}
}

func twoCampaigns() []*entity.CampaignRecord {
	return []*entity.CampaignRecord{
		{
			Date:      "2025-01-01",
			Campaign:  "January kickoff",
			Sent:      100,
			Delivered: 100,
			Opened:    50,
			Clicked:   10,
			Devices:   []string{"Mobile"},
		},
		{
			Date:      "2025-01-02",
			Campaign:  "Follow-up",
			Sent:      200,
			Delivered: 180,
			Opened:    90,
			Clicked:   20,
			Devices:   []string{"Mobile", "Desktop"},
		},
	}
}

func TestBuild_TwoCampaigns(t *testing.T) {
	rep := Build(testKey(entity.SourceNotion), twoCampaigns(), testNow)

	require.NotNil(t, rep.Metrics)
	assert.Equal(t, int64(300), rep.Metrics.Sent)
	assert.Equal(t, int64(280), rep.Metrics.Delivered)
	assert.Equal(t, int64(140), rep.Metrics.Opened)
	assert.Equal(t, int64(20), rep.Metrics.Undelivered)

	require.Len(t, rep.Cards, 4)

	sent := rep.Cards[0]
	assert.Equal(t, "Sent", sent.Label)
	assert.Equal(t, 300.0, sent.Value)
	require.NotNil(t, sent.Delta)
	assert.Equal(t, 100.0, *sent.Delta)
	assert.Equal(t, "up", sent.Trend)

	open := rep.Cards[1]
	assert.Equal(t, "Open rate", open.Label)
	assert.Equal(t, 50.0, open.Value)

	require.Len(t, rep.Timeline, 2)
	assert.Equal(t, "2025-01-01", rep.Timeline[0].Date)
	assert.Equal(t, "2025-01-02", rep.Timeline[1].Date)

	// table is newest first
	require.Len(t, rep.Table, 2)
	assert.Equal(t, "Follow-up", rep.Table[0].Campaign)

	assert.Equal(t, entity.SourceNotion, rep.Source)
}

func TestBuild_Idempotent(t *testing.T) {
	a := Build(testKey(entity.SourceNotion), twoCampaigns(), testNow)
	b := Build(testKey(entity.SourceNotion), twoCampaigns(), testNow.Add(time.Hour))

	// identical apart from the generation timestamp
	a.GeneratedAt = ""
	b.GeneratedAt = ""
	assert.Equal(t, a, b)
}

func TestBuild_Empty(t *testing.T) {
	rep := Build(testKey(entity.SourceSample), nil, testNow)

	require.NotNil(t, rep.Metrics)
	assert.Equal(t, int64(0), rep.Metrics.Sent)
	assert.Equal(t, 0.0, rep.Metrics.OpenRate)
	assert.Empty(t, rep.Timeline)
	assert.Empty(t, rep.Table)
	require.Len(t, rep.Cards, 4)
	for _, c := range rep.Cards {
		assert.Equal(t, 0.0, c.Value)
		assert.Nil(t, c.Delta)
	}
}

func TestBuild_RatesClamped(t *testing.T) {
	records := []*entity.CampaignRecord{
		{Date: "2025-01-01", Campaign: "Overcount", Sent: 10, Delivered: 10, Opened: 500, Clicked: 500},
	}

	rep := Build(testKey(entity.SourceNotion), records, testNow)

	assert.Equal(t, 100.0, rep.Metrics.OpenRate)
	for _, p := range rep.Timeline {
		assert.LessOrEqual(t, p.OpenRate, 100.0)
		assert.GreaterOrEqual(t, p.OpenRate, 0.0)
	}
	for _, row := range rep.Table {
		assert.LessOrEqual(t, row.OpenRate, 100.0)
	}
}

func TestBuild_DeliveredDefaultsToSent(t *testing.T) {
	records := []*entity.CampaignRecord{
		{Date: "2025-01-01", Campaign: "No delivery stat", Sent: 40, Opened: 10},
	}

	rep := Build(testKey(entity.SourceNotion), records, testNow)

	assert.Equal(t, int64(40), rep.Metrics.Delivered)
	assert.Equal(t, 25.0, rep.Metrics.OpenRate)
	assert.Equal(t, int64(0), rep.Metrics.Undelivered)
}

func TestBuild_UndatedRecords(t *testing.T) {
	records := []*entity.CampaignRecord{
		{Campaign: "No date", Sent: 50, Opened: 25},
	}

	rep := Build(testKey(entity.SourceNotion), records, testNow)

	assert.Equal(t, int64(50), rep.Metrics.Sent)
	assert.Empty(t, rep.Timeline)
	require.Len(t, rep.Table, 1)
}

func TestBuild_UntitledCampaign(t *testing.T) {
	records := []*entity.CampaignRecord{
		{Date: "2025-01-01", Sent: 10},
	}

	rep := Build(testKey(entity.SourceNotion), records, testNow)

	require.Len(t, rep.Table, 1)
	assert.Equal(t, "Untitled campaign", rep.Table[0].Campaign)
}

func TestBuild_DeviceBuckets(t *testing.T) {
	records := []*entity.CampaignRecord{
		{Date: "2025-01-01", Sent: 10, Opened: 4, Clicked: 1, Devices: []string{"Mobile"}},
		{Date: "2025-01-02", Sent: 10, Opened: 6, Clicked: 2, Devices: []string{"Mobile", "Desktop"}},
		{Date: "2025-01-03", Sent: 10, Opened: 2, Clicked: 1},
	}

	rep := Build(testKey(entity.SourceNotion), records, testNow)

	require.Len(t, rep.Devices, 3)
	// alphabetical
	assert.Equal(t, "Desktop", rep.Devices[0].Device)
	assert.Equal(t, "Mobile", rep.Devices[1].Device)
	assert.Equal(t, "Other", rep.Devices[2].Device)
	assert.Equal(t, 10.0, rep.Devices[1].Opened)
}

func TestBuildMailbox(t *testing.T) {
	stats := []*entity.FolderStat{
		{Folder: "inbox", Count: 80},
		{Folder: "sent", Count: 100},
		{Folder: "trash", Count: 10},
		{Folder: "spam", Count: 5},
	}

	rep := BuildMailbox(testKey(entity.SourceGmail), stats, testNow)

	require.NotNil(t, rep.Metrics)
	assert.Equal(t, int64(100), rep.Metrics.Sent)
	assert.Equal(t, int64(80), rep.Metrics.Opened)
	assert.Equal(t, int64(95), rep.Metrics.Delivered)

	require.Len(t, rep.Cards, 4)
	assert.Equal(t, 80.0, rep.Cards[1].Value)

	assert.Empty(t, rep.Timeline)
	assert.Equal(t, entity.SourceGmail, rep.Source)

	require.Len(t, rep.Table, 4)
	assert.Equal(t, "Inbox", rep.Table[0].Campaign)
	assert.Equal(t, int64(80), rep.Table[0].Sent)
}

func TestBuildMailbox_Empty(t *testing.T) {
	rep := BuildMailbox(testKey(entity.SourceGmail), nil, testNow)

	assert.Equal(t, int64(0), rep.Metrics.Sent)
	assert.Equal(t, 0.0, rep.Metrics.OpenRate)
	require.Len(t, rep.Cards, 4)
}
