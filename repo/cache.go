package repo

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/info-321/React-Email-Dashboard/entity"
)

// ReportCache holds built analytics reports keyed by their request
// parameters.
type ReportCache interface {
	Get(key string) (*entity.AnalyticsReport, bool)
	Set(key string, report *entity.AnalyticsReport)
	Flush()
}

type reportCache struct {
	cache *gocache.Cache
}

// NewReportCache builds a TTL cache for analytics reports. A non-positive ttl
// disables caching entirely.
func NewReportCache(ttl time.Duration) ReportCache {
	if ttl <= 0 {
		return new(noopCache)
	}
	return &reportCache{
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *reportCache) Get(key string) (*entity.AnalyticsReport, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}

	report, ok := v.(*entity.AnalyticsReport)
	if !ok {
		return nil, false
	}
	return report, true
}

func (c *reportCache) Set(key string, report *entity.AnalyticsReport) {
	c.cache.SetDefault(key, report)
}

func (c *reportCache) Flush() {
	c.cache.Flush()
}

type noopCache struct{}

func (c *noopCache) Get(_ string) (*entity.AnalyticsReport, bool) {
	return nil, false
}

func (c *noopCache) Set(_ string, _ *entity.AnalyticsReport) {}

func (c *noopCache) Flush() {}
