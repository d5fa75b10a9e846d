package entity

import "fmt"

// Report sources. The source discriminator makes fallback paths explicit so
// the dashboard can label approximate or sample data.
const (
	SourceNotion = "notion"
	SourceSample = "sample"
	SourceGmail  = "gmail"
)

// CampaignRecord is one row of campaign metrics, read from Notion or the
// bundled sample dataset. Constructed per request, discarded after
// aggregation.
type CampaignRecord struct {
	Date         string   `json:"date"`
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

// FolderStat is the mailbox-derived pseudo-record: a date-bounded message
// count for one Gmail folder.
type FolderStat struct {
	Folder string `json:"folder"`
	Count  int64  `json:"count"`
}

// ReportKey holds every parameter that discriminates one analytics request
// from another.
type ReportKey struct {
	RangeKey  string
	Mailbox   string
	StartDate string
	EndDate   string
	Source    string
}

// CacheKey serializes the key deterministically, field order fixed.
func (k *ReportKey) CacheKey() string {
	return fmt.Sprintf("analytics:%s:%s:%s:%s:%s", k.Source, k.RangeKey, k.Mailbox, k.StartDate, k.EndDate)
}

type SummaryCard struct {
	Label    string   `json:"label"`
	Value    float64  `json:"value"`
	Unit     string   `json:"unit"`
	Delta    *float64 `json:"delta"`
	Trend    string   `json:"trend"`
	HelpText string   `json:"helpText"`
}

type DeliveryRow struct {
	Label string  `json:"label"`
	Rate  float64 `json:"rate"`
}

type TimelinePoint struct {
	Date      string  `json:"date"`
	Sent      float64 `json:"sent"`
	OpenRate  float64 `json:"openRate"`
	ClickRate float64 `json:"clickRate"`
}

type DeviceUsage struct {
	Device  string  `json:"device"`
	Opened  float64 `json:"opened"`
	Clicked float64 `json:"clicked"`
}

type TableRow struct {
	Campaign         string  `json:"campaign"`
	Date             string  `json:"date"`
	Sent             int64   `json:"sent"`
	OpenRate         float64 `json:"openRate"`
	ClickRate        float64 `json:"clickRate"`
	ClickThroughRate float64 `json:"clickThroughRate"`
}

type MetricsSummary struct {
	Sent            int64   `json:"sent"`
	Opened          int64   `json:"opened"`
	Delivered       int64   `json:"delivered"`
	OpenRate        float64 `json:"openRate"`
	DeliveryRate    float64 `json:"deliveryRate"`
	Undelivered     int64   `json:"undelivered"`
	UndeliveredRate float64 `json:"undeliveredRate"`
}

// AnalyticsReport is the full dashboard payload for one resolved time range.
// Immutable once built; identical inputs produce identical reports apart from
// GeneratedAt.
type AnalyticsReport struct {
	Source      string           `json:"source"`
	RangeKey    string           `json:"rangeKey"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate,omitempty"`
	GeneratedAt string           `json:"generatedAt"`
	Cards       []*SummaryCard   `json:"cards"`
	Delivery    []*DeliveryRow   `json:"delivery"`
	Timeline    []*TimelinePoint `json:"timeline"`
	Devices     []*DeviceUsage   `json:"devices"`
	Table       []*TableRow      `json:"table"`
	Metrics     *MetricsSummary  `json:"metrics"`
}
