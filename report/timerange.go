package report

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	DateLayout = "2006-01-02"

	DefaultRangeKey = "30d"
	CustomRangeKey  = "custom"

	minRangeDays = 1
	maxRangeDays = 365
)

var presetDays = map[string]int{
	"7d":   7,
	"30d":  30,
	"90d":  90,
	"365d": 365,
}

var dayToken = regexp.MustCompile(`^(\d+)d$`)

// TimeRange is a resolved analytics window. EndDate is empty for preset
// ranges, which are open-ended through "now".
type TimeRange struct {
	Key       string
	StartDate string
	EndDate   string
}

// ResolveRange maps a range token, or an explicit start/end override, to a
// canonical window. An explicit start date wins over the token and yields a
// "custom" range. Unknown tokens fall back to the 30d preset; <N>d tokens are
// clamped to [1, 365] days.
func ResolveRange(rangeKey, startDate, endDate string, now time.Time) (*TimeRange, error) {
	if startDate != "" {
		start, err := parseDate(startDate)
		if err != nil {
			return nil, err
		}

		var end string
		if endDate != "" {
			if end, err = parseDate(endDate); err != nil {
				return nil, err
			}
		}

		return &TimeRange{
			Key:       CustomRangeKey,
			StartDate: start,
			EndDate:   end,
		}, nil
	}

	if rangeKey == "" {
		rangeKey = DefaultRangeKey
	}

	days, ok := presetDays[rangeKey]
	if !ok {
		if m := dayToken.FindStringSubmatch(rangeKey); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				n = 0
			}
			if n < minRangeDays {
				n = minRangeDays
			}
			if n > maxRangeDays {
				n = maxRangeDays
			}
			days = n
		} else {
			rangeKey = DefaultRangeKey
			days = presetDays[DefaultRangeKey]
		}
	}

	start := now.UTC().AddDate(0, 0, -(days - 1)).Format(DateLayout)

	return &TimeRange{
		Key:       rangeKey,
		StartDate: start,
	}, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339, normalizing timezone-aware inputs
// to UTC before truncating to a calendar date.
func parseDate(s string) (string, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.Format(DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(DateLayout), nil
	}
	return "", fmt.Errorf("invalid date: %s", s)
}
