package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/info-321/React-Email-Dashboard/config"
	"github.com/info-321/React-Email-Dashboard/dep"
	"github.com/info-321/React-Email-Dashboard/entity"
	"github.com/info-321/React-Email-Dashboard/pkg/errutil"
	"github.com/info-321/React-Email-Dashboard/pkg/validator"
	"github.com/info-321/React-Email-Dashboard/report"
	"github.com/info-321/React-Email-Dashboard/repo"
)

type AnalyticsHandler struct {
	cfg        *config.Config
	notion     dep.NotionClient
	factory    *dep.GmailFactory
	sampleRepo *repo.SampleRepo
	emailRepo  *repo.EmailListRepo
	cache      repo.ReportCache

	// now is swappable in tests.
	now func() time.Time
}

func NewAnalyticsHandler(
	cfg *config.Config,
	notion dep.NotionClient,
	factory *dep.GmailFactory,
	sampleRepo *repo.SampleRepo,
	emailRepo *repo.EmailListRepo,
	cache repo.ReportCache,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		cfg:        cfg,
		notion:     notion,
		factory:    factory,
		sampleRepo: sampleRepo,
		emailRepo:  emailRepo,
		cache:      cache,
		now:        time.Now,
	}
}

type GetAnalyticsRequest struct {
	Range     *string `json:"range,omitempty" schema:"range"`
	StartDate *string `json:"startDate,omitempty" schema:"startDate"`
	EndDate   *string `json:"endDate,omitempty" schema:"endDate"`
	Mailbox   *string `json:"mailbox,omitempty" schema:"mailbox"`
	Source    *string `json:"source,omitempty" schema:"source"`
}

func (m *GetAnalyticsRequest) GetRange() string {
	if m != nil && m.Range != nil {
		return *m.Range
	}
	return ""
}

func (m *GetAnalyticsRequest) GetStartDate() string {
	if m != nil && m.StartDate != nil {
		return *m.StartDate
	}
	return ""
}

func (m *GetAnalyticsRequest) GetEndDate() string {
	if m != nil && m.EndDate != nil {
		return *m.EndDate
	}
	return ""
}

func (m *GetAnalyticsRequest) GetMailbox() string {
	if m != nil && m.Mailbox != nil {
		return *m.Mailbox
	}
	return ""
}

func (m *GetAnalyticsRequest) GetSource() string {
	if m != nil && m.Source != nil {
		return *m.Source
	}
	return ""
}

var GetAnalyticsValidator = validator.MustForm(map[string]validator.Validator{
	"range":     &validator.String{Optional: true},
	"startDate": &validator.String{Optional: true},
	"endDate":   &validator.String{Optional: true},
	"mailbox":   &validator.String{Optional: true},
	"source": &validator.String{Optional: true, UnsetZero: true, Validators: []validator.StringFunc{
		func(s string) error {
			switch s {
			case entity.SourceNotion, entity.SourceSample, entity.SourceGmail:
				return nil
			}
			return fmt.Errorf("unknown source: %s", s)
		},
	}},
})

// GetAnalytics resolves the requested time window, picks a data source, and
// returns the aggregated report, serving repeats from cache.
//
// Source selection: an explicit source param wins; otherwise a mailbox param
// selects the mailbox-derived path, and campaign analytics come from Notion
// when configured, the bundled sample dataset when not. A Notion failure on
// the implicit path degrades to the sample dataset instead of failing the
// dashboard.
func (h *AnalyticsHandler) GetAnalytics(ctx context.Context, req *GetAnalyticsRequest, res *entity.AnalyticsReport) error {
	if err := GetAnalyticsValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	now := h.now()

	tr, err := report.ResolveRange(req.GetRange(), req.GetStartDate(), req.GetEndDate(), now)
	if err != nil {
		return errutil.BadRequestError(err)
	}

	source := req.GetSource()
	explicit := source != ""
	if !explicit {
		switch {
		case req.GetMailbox() != "":
			source = entity.SourceGmail
		case h.notion.Configured():
			source = entity.SourceNotion
		default:
			source = entity.SourceSample
		}
	}

	key := &entity.ReportKey{
		RangeKey:  tr.Key,
		Mailbox:   req.GetMailbox(),
		StartDate: tr.StartDate,
		EndDate:   tr.EndDate,
		Source:    source,
	}

	if cached, ok := h.cache.Get(key.CacheKey()); ok {
		*res = *cached
		return nil
	}

	var built *entity.AnalyticsReport
	switch source {
	case entity.SourceGmail:
		built, err = h.buildFromMailbox(ctx, key, now)
	case entity.SourceNotion:
		built, err = h.buildFromNotion(ctx, key, now)
		if err != nil && !explicit {
			log.Ctx(ctx).Warn().Msgf("notion query failed, falling back to sample data: %v", err)
			key.Source = entity.SourceSample
			built, err = h.buildFromSample(key, now), nil
		}
	default:
		built = h.buildFromSample(key, now)
	}
	if err != nil {
		return err
	}

	h.cache.Set(key.CacheKey(), built)

	*res = *built

	return nil
}

func (h *AnalyticsHandler) buildFromNotion(ctx context.Context, key *entity.ReportKey, now time.Time) (*entity.AnalyticsReport, error) {
	records, err := h.notion.QueryCampaigns(ctx, key.StartDate, key.EndDate)
	if err != nil {
		return nil, err
	}
	return report.Build(key, records, now), nil
}

func (h *AnalyticsHandler) buildFromSample(key *entity.ReportKey, now time.Time) *entity.AnalyticsReport {
	records := h.sampleRepo.GetCampaigns(key.StartDate, key.EndDate, now)
	return report.Build(key, records, now)
}

func (h *AnalyticsHandler) buildFromMailbox(ctx context.Context, key *entity.ReportKey, now time.Time) (*entity.AnalyticsReport, error) {
	if key.Mailbox == "" {
		return nil, errutil.BadRequestError(fmt.Errorf("mailbox is required for %s analytics", entity.SourceGmail))
	}

	allowed, err := h.emailRepo.Contains(key.Mailbox)
	if err != nil {
		return nil, errutil.InternalServerError(err)
	}
	if !allowed {
		return nil, errutil.ForbiddenError(ErrMailboxNotAllowed)
	}

	svc, err := h.factory.ForMailbox(ctx, key.Mailbox)
	if err != nil {
		return nil, err
	}

	stats, err := svc.FolderStats(ctx, key.StartDate, key.EndDate)
	if err != nil {
		return nil, err
	}

	return report.BuildMailbox(key, stats, now), nil
}
