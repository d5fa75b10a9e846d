package dep

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/info-321/React-Email-Dashboard/config"
	"github.com/info-321/React-Email-Dashboard/entity"
	"github.com/info-321/React-Email-Dashboard/pkg/errutil"
)

const (
	notionBaseURL  = "https://api.notion.com"
	notionPageSize = 100

	// Hard ceiling on query pagination. Results past this point are silently
	// truncated.
	maxQueryPages = 200

	notionQueryTimeout = 30 * time.Second
)

var ErrNotionNotConfigured = errors.New("notion credentials are not configured")

type NotionClient interface {
	Configured() bool
	QueryCampaigns(ctx context.Context, startDate, endDate string) ([]*entity.CampaignRecord, error)
	Close(ctx context.Context) error
}

type notionClient struct {
	cfg     config.Notion
	baseURL string
	client  *http.Client
}

func NewNotionClient(_ context.Context, cfg config.Notion) NotionClient {
	return &notionClient{
		cfg:     cfg,
		baseURL: notionBaseURL,
		client: &http.Client{
			Timeout: notionQueryTimeout,
		},
	}
}

func (c *notionClient) Configured() bool {
	return c.cfg.Configured()
}

type dateCondition struct {
	OnOrAfter  string `json:"on_or_after,omitempty"`
	OnOrBefore string `json:"on_or_before,omitempty"`
}

type propertyFilter struct {
	Property string         `json:"property"`
	Date     *dateCondition `json:"date,omitempty"`
}

type queryFilter struct {
	And []*propertyFilter `json:"and"`
}

type querySort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type queryRequest struct {
	Filter      *queryFilter `json:"filter"`
	Sorts       []*querySort `json:"sorts"`
	StartCursor string       `json:"start_cursor,omitempty"`
	PageSize    int          `json:"page_size"`
}

type notionPage struct {
	ID         string                    `json:"id"`
	Properties map[string]*PropertyValue `json:"properties"`
}

type queryResponse struct {
	Results    []*notionPage `json:"results"`
	HasMore    bool          `json:"has_more"`
	NextCursor string        `json:"next_cursor"`
}

type notionErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QueryCampaigns fetches every database row whose date falls on or after
// startDate (and on or before endDate when set), ascending by date, following
// the continuation cursor up to the page cap. Upstream failures propagate
// with the status code Notion reported, no retry.
func (c *notionClient) QueryCampaigns(ctx context.Context, startDate, endDate string) ([]*entity.CampaignRecord, error) {
	if !c.Configured() {
		return nil, errutil.InternalServerError(ErrNotionNotConfigured)
	}

	filters := []*propertyFilter{
		{Property: c.cfg.Schema.Date, Date: &dateCondition{OnOrAfter: startDate}},
	}
	if endDate != "" {
		filters = append(filters, &propertyFilter{
			Property: c.cfg.Schema.Date,
			Date:     &dateCondition{OnOrBefore: endDate},
		})
	}

	var (
		records []*entity.CampaignRecord
		cursor  string
	)

	for page := 0; page < maxQueryPages; page++ {
		body := &queryRequest{
			Filter: &queryFilter{And: filters},
			Sorts: []*querySort{
				{Property: c.cfg.Schema.Date, Direction: "ascending"},
			},
			StartCursor: cursor,
			PageSize:    notionPageSize,
		}

		res, err := c.query(ctx, body)
		if err != nil {
			return nil, err
		}

		for _, p := range res.Results {
			records = append(records, c.toRecord(p))
		}

		if !res.HasMore || res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}

	return records, nil
}

func (c *notionClient) query(ctx context.Context, body *queryRequest) (*queryResponse, error) {
	js, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, c.cfg.DatabaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(js))
	if err != nil {
		return nil, err
	}

	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.cfg.APISecret))
	req.Header.Add("Notion-Version", c.cfg.APIVersion)
	req.Header.Add("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = res.Body.Close()
	}()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		notionErr := new(notionErrorBody)
		_ = json.Unmarshal(b, notionErr)
		msg := notionErr.Message
		if msg == "" {
			msg = res.Status
		}
		return nil, errutil.UpstreamError(res.StatusCode, fmt.Errorf("notion API error: %s", msg))
	}

	queryRes := new(queryResponse)
	if err := json.Unmarshal(b, queryRes); err != nil {
		return nil, err
	}

	return queryRes, nil
}

func (c *notionClient) toRecord(p *notionPage) *entity.CampaignRecord {
	s := c.cfg.Schema
	props := p.Properties

	return &entity.CampaignRecord{
		Date:         DateValue(props[s.Date]),
		Campaign:     TextValue(props[s.Campaign]),
		Sent:         NumberValue(props[s.Sent]),
		Delivered:    NumberValue(props[s.Delivered]),
		Opened:       NumberValue(props[s.Opened]),
		Clicked:      NumberValue(props[s.Clicked]),
		Bounced:      NumberValue(props[s.Bounced]),
		Unsubscribed: NumberValue(props[s.Unsubscribed]),
		Spam:         NumberValue(props[s.Spam]),
		Devices:      ListValue(props[s.Device]),
	}
}

func (c *notionClient) Close(_ context.Context) error {
	return nil
}
