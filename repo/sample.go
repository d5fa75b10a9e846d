package repo

import (
	_ "embed"
	"encoding/json"
	"time"

	"github.com/info-321/React-Email-Dashboard/entity"
)

//go:embed sample_campaigns.json
var sampleCampaigns []byte

// sampleRecord stores dates as offsets from "today" so the bundled dataset
// never ages out of the dashboard's preset ranges.
type sampleRecord struct {
	DaysAgo      int      `json:"daysAgo"`
	Campaign     string   `json:"campaign"`
	Sent         float64  `json:"sent"`
	Delivered    float64  `json:"delivered"`
	Opened       float64  `json:"opened"`
	Clicked      float64  `json:"clicked"`
	Bounced      float64  `json:"bounced"`
	Unsubscribed float64  `json:"unsubscribed"`
	Spam         float64  `json:"spam"`
	Devices      []string `json:"devices"`
}

// SampleRepo serves the embedded demo dataset used when no Notion database is
// configured.
type SampleRepo struct {
	records []*sampleRecord
}

func NewSampleRepo() (*SampleRepo, error) {
	var records []*sampleRecord
	if err := json.Unmarshal(sampleCampaigns, &records); err != nil {
		return nil, err
	}
	return &SampleRepo{records: records}, nil
}

// GetCampaigns materializes records whose date falls within [startDate,
// endDate], both optional, dates relative to now.
func (r *SampleRepo) GetCampaigns(startDate, endDate string, now time.Time) []*entity.CampaignRecord {
	const layout = "2006-01-02"

	today := now.UTC()

	out := make([]*entity.CampaignRecord, 0, len(r.records))
	for _, rec := range r.records {
		date := today.AddDate(0, 0, -rec.DaysAgo).Format(layout)
		if startDate != "" && date < startDate {
			continue
		}
		if endDate != "" && date > endDate {
			continue
		}

		out = append(out, &entity.CampaignRecord{
			Date:         date,
			Campaign:     rec.Campaign,
			Sent:         rec.Sent,
			Delivered:    rec.Delivered,
			Opened:       rec.Opened,
			Clicked:      rec.Clicked,
			Bounced:      rec.Bounced,
			Unsubscribed: rec.Unsubscribed,
			Spam:         rec.Spam,
			Devices:      rec.Devices,
		})
	}

	return out
}
