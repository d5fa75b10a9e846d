package report

import (
	"math"
	"sort"
	"time"

	"github.com/info-321/React-Email-Dashboard/entity"
)

const untitledCampaign = "Untitled campaign"

// Mailbox folders folded by the gmail-derived path, in display order.
var mailboxFolders = []string{"inbox", "sent", "trash", "spam"}

var folderDisplay = map[string]string{
	"inbox": "Inbox",
	"sent":  "Sent",
	"trash": "Trash",
	"spam":  "Spam",
}

// Build folds campaign records into the full dashboard report. Records
// without a date still count toward totals and the detail table but are
// excluded from the timeline. Zero records yield an all-zero report.
func Build(key *entity.ReportKey, records []*entity.CampaignRecord, now time.Time) *entity.AnalyticsReport {
	var (
		totSent, totDelivered, totOpened, totClicked float64
		totBounced, totUnsubscribed, totSpam         float64

		timeline = make([]*entity.TimelinePoint, 0, len(records))
		table    = make([]*entity.TableRow, 0, len(records))
		devices  = make(map[string]*entity.DeviceUsage)
	)

	for _, rec := range records {
		delivered := rec.Delivered
		if delivered == 0 {
			delivered = rec.Sent
		}

		totSent += rec.Sent
		totDelivered += delivered
		totOpened += rec.Opened
		totClicked += rec.Clicked
		totBounced += rec.Bounced
		totUnsubscribed += rec.Unsubscribed
		totSpam += rec.Spam

		if rec.Date != "" {
			denom := delivered
			if denom == 0 {
				denom = rec.Sent
			}
			timeline = append(timeline, &entity.TimelinePoint{
				Date:      rec.Date,
				Sent:      rec.Sent,
				OpenRate:  round2(clampPct(rate(rec.Opened, denom))),
				ClickRate: round2(clampPct(rate(rec.Clicked, denom))),
			})

			tags := rec.Devices
			if len(tags) == 0 {
				tags = []string{"Other"}
			}
			for _, tag := range tags {
				if tag == "" {
					tag = "Other"
				}
				bucket, ok := devices[tag]
				if !ok {
					bucket = &entity.DeviceUsage{Device: tag}
					devices[tag] = bucket
				}
				bucket.Opened += rec.Opened
				bucket.Clicked += rec.Clicked
			}
		}

		campaign := rec.Campaign
		if campaign == "" {
			campaign = untitledCampaign
		}
		sentDenom := rec.Sent
		if sentDenom == 0 {
			sentDenom = 1
		}
		table = append(table, &entity.TableRow{
			Campaign:         campaign,
			Date:             rec.Date,
			Sent:             int64(rec.Sent),
			OpenRate:         round2(clampPct(rate(rec.Opened, sentDenom))),
			ClickRate:        round2(clampPct(rate(rec.Clicked, sentDenom))),
			ClickThroughRate: round2(clampPct(rate(rec.Clicked, sentDenom))),
		})
	}

	sort.SliceStable(timeline, func(i, j int) bool { return timeline[i].Date < timeline[j].Date })
	sort.SliceStable(table, func(i, j int) bool { return table[i].Date > table[j].Date })

	sentSeries := make([]float64, 0, len(timeline))
	openSeries := make([]float64, 0, len(timeline))
	clickSeries := make([]float64, 0, len(timeline))
	for _, p := range timeline {
		sentSeries = append(sentSeries, p.Sent)
		openSeries = append(openSeries, p.OpenRate)
		clickSeries = append(clickSeries, p.ClickRate)
	}

	openRate := round2(clampPct(rate(totOpened, totDelivered)))
	clickRate := round2(clampPct(rate(totClicked, totDelivered)))
	clickThrough := round2(clampPct(rate(totClicked, totSent)))

	cards := []*entity.SummaryCard{
		card("Sent", totSent, "messages", seriesDelta(sentSeries), "Total messages sent in range"),
		card("Open rate", openRate, "%", seriesDelta(openSeries), "Opens over delivered messages"),
		card("Click rate", clickRate, "%", seriesDelta(clickSeries), "Clicks over delivered messages"),
		card("Click-through", clickThrough, "%", nil, "Clicks over sent messages"),
	}

	sentDenom := totSent
	if sentDenom == 0 {
		sentDenom = 1
	}
	delivery := []*entity.DeliveryRow{
		{Label: "Delivered", Rate: round2(clampPct(rate(totDelivered, sentDenom)))},
		{Label: "Hard bounced", Rate: round2(clampPct(rate(totBounced, sentDenom)))},
		{Label: "Unsubscribed", Rate: round2(clampPct(rate(totUnsubscribed, sentDenom)))},
		{Label: "Marked as spam", Rate: round2(clampPct(rate(totSpam, sentDenom)))},
	}

	undelivered := totSent - totDelivered
	if undelivered < 0 {
		undelivered = 0
	}
	metrics := &entity.MetricsSummary{
		Sent:            int64(totSent),
		Opened:          int64(totOpened),
		Delivered:       int64(totDelivered),
		OpenRate:        openRate,
		DeliveryRate:    round2(clampPct(rate(totDelivered, sentDenom))),
		Undelivered:     int64(undelivered),
		UndeliveredRate: round2(clampPct(rate(undelivered, sentDenom))),
	}

	return &entity.AnalyticsReport{
		Source:      key.Source,
		RangeKey:    key.RangeKey,
		StartDate:   key.StartDate,
		EndDate:     key.EndDate,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Cards:       cards,
		Delivery:    delivery,
		Timeline:    timeline,
		Devices:     sortDevices(devices),
		Table:       table,
		Metrics:     metrics,
	}
}

// BuildMailbox folds per-folder message counts into a simplified report.
// There is no open or click tracking on plain email delivery, so engagement
// numbers are volume ratios: opened is approximated by inbox volume and
// clicked by inbox volume net of trash. The result is labeled with the
// "gmail" source so clients can present it as an approximation.
func BuildMailbox(key *entity.ReportKey, stats []*entity.FolderStat, now time.Time) *entity.AnalyticsReport {
	counts := make(map[string]int64, len(stats))
	for _, s := range stats {
		counts[s.Folder] += s.Count
	}

	var (
		sent  = float64(counts["sent"])
		inbox = float64(counts["inbox"])
		trash = float64(counts["trash"])
		spam  = float64(counts["spam"])
	)

	opened := inbox
	clicked := inbox - trash
	if clicked < 0 {
		clicked = 0
	}
	delivered := sent - spam
	if delivered < 0 {
		delivered = 0
	}

	sentDenom := sent
	if sentDenom == 0 {
		sentDenom = 1
	}

	openRate := round2(clampPct(rate(opened, sentDenom)))
	clickRate := round2(clampPct(rate(clicked, sentDenom)))

	cards := []*entity.SummaryCard{
		card("Sent", sent, "messages", nil, "Messages sent in range"),
		card("Open rate", openRate, "%", nil, "Approximated by inbox volume over sent volume"),
		card("Click rate", clickRate, "%", nil, "Approximated by retained inbox volume over sent volume"),
		card("Click-through", clickRate, "%", nil, "Approximated by retained inbox volume over sent volume"),
	}

	delivery := []*entity.DeliveryRow{
		{Label: "Delivered", Rate: round2(clampPct(rate(delivered, sentDenom)))},
		{Label: "Hard bounced", Rate: round2(clampPct(rate(trash, sentDenom)))},
		{Label: "Unsubscribed", Rate: 0},
		{Label: "Marked as spam", Rate: round2(clampPct(rate(spam, sentDenom)))},
	}

	devices := make([]*entity.DeviceUsage, 0, len(mailboxFolders))
	table := make([]*entity.TableRow, 0, len(mailboxFolders))
	for _, folder := range mailboxFolders {
		devices = append(devices, &entity.DeviceUsage{
			Device: folderDisplay[folder],
			Opened: float64(counts[folder]),
		})
		table = append(table, &entity.TableRow{
			Campaign: folderDisplay[folder],
			Sent:     counts[folder],
		})
	}

	undelivered := sent - delivered
	if undelivered < 0 {
		undelivered = 0
	}
	metrics := &entity.MetricsSummary{
		Sent:            int64(sent),
		Opened:          int64(opened),
		Delivered:       int64(delivered),
		OpenRate:        openRate,
		DeliveryRate:    round2(clampPct(rate(delivered, sentDenom))),
		Undelivered:     int64(undelivered),
		UndeliveredRate: round2(clampPct(rate(undelivered, sentDenom))),
	}

	return &entity.AnalyticsReport{
		Source:      key.Source,
		RangeKey:    key.RangeKey,
		StartDate:   key.StartDate,
		EndDate:     key.EndDate,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Cards:       cards,
		Delivery:    delivery,
		Timeline:    []*entity.TimelinePoint{},
		Devices:     devices,
		Table:       table,
		Metrics:     metrics,
	}
}

func card(label string, value float64, unit string, delta *float64, help string) *entity.SummaryCard {
	trend := "flat"
	if delta != nil {
		switch {
		case *delta > 0:
			trend = "up"
		case *delta < 0:
			trend = "down"
		}
	}
	return &entity.SummaryCard{
		Label:    label,
		Value:    value,
		Unit:     unit,
		Delta:    delta,
		Trend:    trend,
		HelpText: help,
	}
}

// seriesDelta is the percent change between the first and last values of a
// series, nil when the series has fewer than two points or starts at zero.
func seriesDelta(series []float64) *float64 {
	if len(series) < 2 {
		return nil
	}
	first, last := series[0], series[len(series)-1]
	if first == 0 {
		return nil
	}
	d := round2((last - first) / first * 100)
	return &d
}

func rate(n, d float64) float64 {
	if d <= 0 {
		return 0
	}
	return n / d * 100
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortDevices(m map[string]*entity.DeviceUsage) []*entity.DeviceUsage {
	out := make([]*entity.DeviceUsage, 0, len(m))
	for _, d := range m {
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Device < out[j].Device })
	return out
}
